package domain

import (
	"slices"
	"time"
)

// transitions lists the allowed target statuses for each source status.
// Terminal statuses have no entry.
var transitions = map[RequestStatus][]RequestStatus{
	StatusOpen:     {StatusMatched, StatusCancelled, StatusExpired},
	StatusMatched:  {StatusAccepted, StatusCancelled, StatusExpired},
	StatusAccepted: {StatusCompleted},
}

// CanTransition returns true if the lifecycle allows moving from one status to another
func CanTransition(from, to RequestStatus) bool {
	return slices.Contains(transitions[from], to)
}

// CanTransitionAt is CanTransition plus the time-driven guard on expiry
func CanTransitionAt(r *ServiceRequest, to RequestStatus, now time.Time) bool {
	if !CanTransition(r.Status, to) {
		return false
	}
	if to == StatusExpired {
		return !now.Before(r.ExpiresAt)
	}
	return true
}

// IsTerminal returns true if no transition leaves the status
func IsTerminal(status RequestStatus) bool {
	return slices.Contains(TerminalStatuses, status)
}

// CanAccept returns true if the provider may accept the request at the given moment.
// Matching membership is required for open requests as well as matched ones.
// A record without matchedProviderIds is refused here; the backend still re-validates every accept.
func CanAccept(r *ServiceRequest, providerID string, now time.Time) bool {
	if r == nil || providerID == "" {
		return false
	}
	if !r.IsActive() || IsExpiredAt(r, now) {
		return false
	}
	return r.IsMatchedProvider(providerID)
}

// CanCancel returns true if the user owns the request and it is still active
func CanCancel(r *ServiceRequest, userID string) bool {
	return r != nil && r.IsOwnedBy(userID) && r.IsActive()
}

// CanUpdate follows the same ownership rule as cancellation
func CanUpdate(r *ServiceRequest, userID string) bool {
	return CanCancel(r, userID)
}

// ExpiryWindow returns how long a request of the given urgency stays open
func ExpiryWindow(urgency Urgency) time.Duration {
	switch urgency {
	case UrgencyImmediate:
		return ImmediateExpiryWindow
	case UrgencyFlexible:
		return FlexibleExpiryWindow
	default:
		return ScheduledExpiryWindow
	}
}

// ComputeExpiry returns the expiry moment for a request created at createdAt.
// A request never stays acceptable past its service start.
func ComputeExpiry(urgency Urgency, createdAt, serviceStart time.Time) time.Time {
	expiresAt := createdAt.Add(ExpiryWindow(urgency))
	if serviceStart.After(createdAt) && serviceStart.Before(expiresAt) {
		return serviceStart
	}
	return expiresAt
}

// IsExpiredAt returns true if an active request outlived its expiry
func IsExpiredAt(r *ServiceRequest, now time.Time) bool {
	return r.IsActive() && !now.Before(r.ExpiresAt)
}

// ExpireAt returns an expired copy of the request. ExpiresAt is clamped to now so the
// expired record never claims a future expiry.
func ExpireAt(r *ServiceRequest, now time.Time) *ServiceRequest {
	c := r.Clone()
	c.Status = StatusExpired
	if c.ExpiresAt.After(now) {
		c.ExpiresAt = now
	}
	c.UpdatedAt = now
	return c
}
