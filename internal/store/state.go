package store

import (
	"slices"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// Op names a pending-flag owner
type Op string

const (
	OpLoading   Op = "loading"
	OpCreating  Op = "creating"
	OpAccepting Op = "accepting"
)

// State is the full client-side view of service requests for one session.
// Records are shared between views by pointer and are never mutated once published.
type State struct {
	MyRequests             []*domain.ServiceRequest `json:"myRequests"`
	TotalMyRequests        int                      `json:"totalMyRequests"`
	AvailableRequests      []*domain.ServiceRequest `json:"availableRequests"`
	TotalAvailableRequests int                      `json:"totalAvailableRequests"`
	CurrentRequest         *domain.ServiceRequest   `json:"currentRequest"`

	Loading   bool   `json:"loading"`
	Creating  bool   `json:"creating"`
	Accepting bool   `json:"accepting"`
	Error     string `json:"error,omitempty"`

	Filters domain.ListFilters `json:"filters"`
}

// Initial returns the empty state a session starts with
func Initial() State {
	return State{
		MyRequests:        []*domain.ServiceRequest{},
		AvailableRequests: []*domain.ServiceRequest{},
		Filters: domain.ListFilters{
			Page:  domain.DefaultPage,
			Limit: domain.DefaultLimit,
		},
	}
}

// Transition is a pure function from one state to the next
type Transition func(State) State

// clone copies the collections so a snapshot can be handed out freely
func (s State) clone() State {
	c := s
	c.MyRequests = slices.Clone(s.MyRequests)
	c.AvailableRequests = slices.Clone(s.AvailableRequests)
	return c
}
