package store

import (
	"slices"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// Reducers are pure: they never modify the slices or records of the state they receive.

// Upsert replaces the record with the same id in every view that already holds it.
// It never inserts into a view.
func Upsert(s State, r *domain.ServiceRequest) State {
	if r == nil || r.ID == "" {
		return s
	}

	s.MyRequests = replaceByID(s.MyRequests, r)
	s.AvailableRequests = replaceByID(s.AvailableRequests, r)
	if s.CurrentRequest != nil && s.CurrentRequest.ID == r.ID {
		s.CurrentRequest = r
	}
	return s
}

// AddToMine prepends a new request to MyRequests. A request that is already
// listed is upserted instead, so the total is unchanged.
func AddToMine(s State, r *domain.ServiceRequest) State {
	if r == nil || r.ID == "" {
		return s
	}

	listed := containsID(s.MyRequests, r.ID)
	s = Upsert(s, r)
	if listed {
		return s
	}

	s.MyRequests = prepend(s.MyRequests, r)
	s.TotalMyRequests++
	return s
}

// AddToAvailable prepends a new request to AvailableRequests with the same
// dedup rule as AddToMine.
func AddToAvailable(s State, r *domain.ServiceRequest) State {
	if r == nil || r.ID == "" {
		return s
	}

	listed := containsID(s.AvailableRequests, r.ID)
	s = Upsert(s, r)
	if listed {
		return s
	}

	s.AvailableRequests = prepend(s.AvailableRequests, r)
	s.TotalAvailableRequests++
	return s
}

// RemoveFromAvailable drops the request from AvailableRequests only.
// MyRequests and CurrentRequest keep their copy.
func RemoveFromAvailable(s State, id string) State {
	if !containsID(s.AvailableRequests, id) {
		return s
	}

	s.AvailableRequests = slices.DeleteFunc(slices.Clone(s.AvailableRequests), func(r *domain.ServiceRequest) bool {
		return r.ID == id
	})
	if s.TotalAvailableRequests > 0 {
		s.TotalAvailableRequests--
	}
	return s
}

// ApplyCreated adds the created request to MyRequests and focuses it
func ApplyCreated(s State, r *domain.ServiceRequest) State {
	if r == nil {
		return s
	}
	s = AddToMine(s, r)
	s.CurrentRequest = r
	return s
}

// ApplyListMineResult replaces MyRequests with a fetched page
func ApplyListMineResult(s State, page *domain.RequestPage) State {
	if page == nil {
		return s
	}
	s.MyRequests = nonNil(page.Requests)
	s.TotalMyRequests = page.Total
	return upsertAll(s, page.Requests)
}

// ApplyListAvailableResult replaces AvailableRequests with a fetched page
func ApplyListAvailableResult(s State, page *domain.RequestPage) State {
	if page == nil {
		return s
	}
	s.AvailableRequests = nonNil(page.Requests)
	s.TotalAvailableRequests = page.Total
	return upsertAll(s, page.Requests)
}

// ApplyFetchedOne focuses the fetched request and refreshes every view holding it
func ApplyFetchedOne(s State, r *domain.ServiceRequest) State {
	if r == nil {
		return s
	}
	s = Upsert(s, r)
	s.CurrentRequest = r
	return s
}

// ApplyAccepted merges the accepted request. The order id travels on the record.
func ApplyAccepted(s State, result *domain.AcceptResult) State {
	if result == nil {
		return s
	}
	return Upsert(s, result.Request)
}

// ApplyUpdated merges an updated request
func ApplyUpdated(s State, r *domain.ServiceRequest) State {
	return Upsert(s, r)
}

// ApplyCancelled merges a cancelled request
func ApplyCancelled(s State, r *domain.ServiceRequest) State {
	return Upsert(s, r)
}

// SetPending raises or lowers the flag owned by op
func SetPending(s State, op Op, pending bool) State {
	switch op {
	case OpCreating:
		s.Creating = pending
	case OpAccepting:
		s.Accepting = pending
	default:
		s.Loading = pending
	}
	return s
}

// SetError records the last error message
func SetError(s State, message string) State {
	s.Error = message
	return s
}

// ClearError drops the last error message
func ClearError(s State) State {
	s.Error = ""
	return s
}

// SetFilters stores the filters used by the latest list fetch
func SetFilters(s State, f domain.ListFilters) State {
	s.Filters = f
	return s
}

// Reset returns the empty session state
func Reset(State) State {
	return Initial()
}

func upsertAll(s State, records []*domain.ServiceRequest) State {
	for _, r := range records {
		s = Upsert(s, r)
	}
	return s
}

func replaceByID(list []*domain.ServiceRequest, r *domain.ServiceRequest) []*domain.ServiceRequest {
	if !containsID(list, r.ID) {
		return list
	}

	out := slices.Clone(list)
	for i, existing := range out {
		if existing.ID == r.ID {
			out[i] = r
		}
	}
	return out
}

func containsID(list []*domain.ServiceRequest, id string) bool {
	return slices.ContainsFunc(list, func(r *domain.ServiceRequest) bool {
		return r.ID == id
	})
}

func prepend(list []*domain.ServiceRequest, r *domain.ServiceRequest) []*domain.ServiceRequest {
	out := make([]*domain.ServiceRequest, 0, len(list)+1)
	out = append(out, r)
	return append(out, list...)
}

func nonNil(list []*domain.ServiceRequest) []*domain.ServiceRequest {
	if list == nil {
		return []*domain.ServiceRequest{}
	}
	return slices.Clone(list)
}
