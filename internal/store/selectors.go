package store

import (
	"fmt"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// IsPending reports whether the flag owned by op is raised
func (s State) IsPending(op Op) bool {
	switch op {
	case OpCreating:
		return s.Creating
	case OpAccepting:
		return s.Accepting
	default:
		return s.Loading
	}
}

// LastError returns the message of the last failed command, empty if none
func (s State) LastError() string {
	return s.Error
}

// ByID looks the request up in CurrentRequest first, then MyRequests, then AvailableRequests
func (s State) ByID(id string) (*domain.ServiceRequest, bool) {
	if id == "" {
		return nil, false
	}
	if s.CurrentRequest != nil && s.CurrentRequest.ID == id {
		return s.CurrentRequest, true
	}
	for _, r := range s.MyRequests {
		if r.ID == id {
			return r, true
		}
	}
	for _, r := range s.AvailableRequests {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// CheckInvariants validates every held record and verifies that all views
// share one canonical pointer per id
func (s State) CheckInvariants() error {
	canonical := make(map[string]*domain.ServiceRequest)

	check := func(view string, r *domain.ServiceRequest) error {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: %s id=%s: %v", ErrInvalidRecord, view, r.ID, err)
		}
		if held, ok := canonical[r.ID]; ok && held != r {
			return fmt.Errorf("%w: %s id=%s", ErrDivergentCopies, view, r.ID)
		}
		canonical[r.ID] = r
		return nil
	}

	for name, list := range map[string][]*domain.ServiceRequest{
		"myRequests":        s.MyRequests,
		"availableRequests": s.AvailableRequests,
	} {
		seen := make(map[string]bool, len(list))
		for _, r := range list {
			if seen[r.ID] {
				return fmt.Errorf("%w: %s id=%s", ErrDuplicateRecord, name, r.ID)
			}
			seen[r.ID] = true
			if err := check(name, r); err != nil {
				return err
			}
		}
	}

	if s.CurrentRequest != nil {
		return check("currentRequest", s.CurrentRequest)
	}
	return nil
}
