package domain

import (
	"encoding/json"
	"time"
)

// EventOutcome describes what the reconciler did with a realtime event
type EventOutcome string

const (
	OutcomeApplied EventOutcome = "applied"
	OutcomeIgnored EventOutcome = "ignored"
	OutcomeDropped EventOutcome = "dropped"
)

// JournalEntry is one realtime event as received and handled by the reconciler
type JournalEntry struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Role       Role            `json:"role"`
	Event      string          `json:"event"`
	RequestID  string          `json:"requestId,omitempty"`
	Outcome    EventOutcome    `json:"outcome"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ReceivedAt time.Time       `json:"receivedAt"`
}
