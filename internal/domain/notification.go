package domain

import "time"

// NotificationKind classifies user-facing notifications raised by realtime events
type NotificationKind string

const (
	NotificationRequestMatched  NotificationKind = "request_matched"
	NotificationRequestAccepted NotificationKind = "request_accepted"
	NotificationNewMatch        NotificationKind = "new_match"
	NotificationRequestExpired  NotificationKind = "request_expired"
	// NotificationOrderCreated is navigation-worthy: the UI should open the order
	NotificationOrderCreated NotificationKind = "order_created"
)

// Notification is a typed event for the UI layer. Translating it into a screen
// transition is up to the UI.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	RequestID string           `json:"requestId"`
	OrderID   *string          `json:"orderId,omitempty"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"createdAt"`
}
