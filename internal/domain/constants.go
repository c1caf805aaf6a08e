package domain

import "time"

// Expiry windows per urgency, measured from creation
const (
	ImmediateExpiryWindow = 2 * time.Hour
	ScheduledExpiryWindow = 24 * time.Hour
	FlexibleExpiryWindow  = 72 * time.Hour
)

// Pagination defaults for list fetches
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Validation limits
const (
	MaxTitleLength              = 200
	MaxDescriptionLength        = 5000
	MaxCancellationReasonLength = 500
	MaxQuoteMessageLength       = 1000
)

// ActiveStatuses statuses in which a request can still be accepted, updated or cancelled
var ActiveStatuses = []RequestStatus{
	StatusOpen,
	StatusMatched,
}

// TerminalStatuses statuses with no outgoing transitions
var TerminalStatuses = []RequestStatus{
	StatusExpired,
	StatusCancelled,
	StatusCompleted,
}

// AllStatuses every known status in lifecycle order
var AllStatuses = []RequestStatus{
	StatusOpen,
	StatusMatched,
	StatusAccepted,
	StatusExpired,
	StatusCancelled,
	StatusCompleted,
}

// ParseStatus validates a raw status string
func ParseStatus(s string) (RequestStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ParseUrgency validates a raw urgency string
func ParseUrgency(s string) (Urgency, bool) {
	switch u := Urgency(s); u {
	case UrgencyImmediate, UrgencyScheduled, UrgencyFlexible:
		return u, true
	}
	return "", false
}

// ParseRole validates a raw role string
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleSeeker, RoleProvider:
		return r, true
	}
	return "", false
}
