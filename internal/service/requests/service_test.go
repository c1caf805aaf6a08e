package requests

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
	"github.com/m04kA/SMC-RequestSync/internal/store"
	"github.com/m04kA/SMC-RequestSync/pkg/clock"
	"github.com/m04kA/SMC-RequestSync/pkg/logger"
)

var now = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

// fakeGateway проверяет состояние хранилища в момент вызова через hook
type fakeGateway struct {
	calls int

	created  *domain.ServiceRequest
	page     *domain.RequestPage
	fetched  *domain.ServiceRequest
	accepted *domain.AcceptResult
	updated  *domain.ServiceRequest
	err      error

	filters domain.ListFilters
	hook    func()
}

func (f *fakeGateway) call() error {
	f.calls++
	if f.hook != nil {
		f.hook()
	}
	return f.err
}

func (f *fakeGateway) Create(context.Context, *domain.RequestDraft) (*domain.ServiceRequest, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.created, nil
}

func (f *fakeGateway) ListMine(_ context.Context, filters domain.ListFilters) (*domain.RequestPage, error) {
	f.filters = filters
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.page, nil
}

func (f *fakeGateway) ListAvailable(_ context.Context, filters domain.ListFilters) (*domain.RequestPage, error) {
	f.filters = filters
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.page, nil
}

func (f *fakeGateway) GetByID(context.Context, string) (*domain.ServiceRequest, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.fetched, nil
}

func (f *fakeGateway) Accept(context.Context, string, domain.AcceptQuote) (*domain.AcceptResult, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.accepted, nil
}

func (f *fakeGateway) Update(context.Context, string, *domain.RequestPatch) (*domain.ServiceRequest, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.updated, nil
}

func (f *fakeGateway) Cancel(context.Context, string, *string) (*domain.ServiceRequest, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return f.updated, nil
}

func strPtr(s string) *string { return &s }

func request(id string, status domain.RequestStatus) *domain.ServiceRequest {
	r := &domain.ServiceRequest{
		ID:                 id,
		SeekerID:           "S",
		CategoryID:         "cat-1",
		Title:              "Tile the bathroom",
		Status:             status,
		MatchedProviderIDs: []string{"P"},
		ExpiresAt:          now.Add(time.Hour),
		CreatedAt:          now.Add(-time.Hour),
	}
	if status == domain.StatusAccepted || status == domain.StatusCompleted {
		r.AcceptedProviderID = strPtr("P")
		r.OrderID = strPtr("O1")
	}
	return r
}

func newService(gw Gateway) (*Service, *store.Store) {
	st := store.New()
	return NewService(gw, st, clock.NewMockClock(now), logger.NewNop()), st
}

func seedAvailable(st *store.Store, r *domain.ServiceRequest) {
	st.Dispatch(func(s store.State) store.State { return store.AddToAvailable(s, r) })
}

func seedMine(st *store.Store, r *domain.ServiceRequest) {
	st.Dispatch(func(s store.State) store.State { return store.AddToMine(s, r) })
}

func TestAccept_HappyPath(t *testing.T) {
	gw := &fakeGateway{}
	svc, st := newService(gw)

	r := request("R", domain.StatusMatched)
	seedAvailable(st, r)

	accepted := request("R", domain.StatusAccepted)
	gw.accepted = &domain.AcceptResult{Request: accepted, OrderID: "O1"}
	gw.hook = func() { assert.True(t, st.Snapshot().Accepting) }

	result, err := svc.Accept(context.Background(), "P", "R", domain.AcceptQuote{Price: 500})
	require.NoError(t, err)
	assert.Equal(t, "O1", result.OrderID)

	state := st.Snapshot()
	require.Len(t, state.AvailableRequests, 1)
	assert.Same(t, accepted, state.AvailableRequests[0])
	assert.Equal(t, 1, state.TotalAvailableRequests)
	assert.False(t, state.Accepting)
	assert.Empty(t, state.Error)
	assert.NoError(t, state.CheckInvariants())
}

func TestAccept_LostRace(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("%w: status 409: already accepted", requestservice.ErrConflict)}
	svc, st := newService(gw)

	r := request("R", domain.StatusMatched)
	seedAvailable(st, r)
	before := r.Clone()

	_, err := svc.Accept(context.Background(), "P", "R", domain.AcceptQuote{Price: 500})
	require.ErrorIs(t, err, requestservice.ErrConflict)

	state := st.Snapshot()
	require.Len(t, state.AvailableRequests, 1)
	assert.Same(t, r, state.AvailableRequests[0])
	assert.Empty(t, cmp.Diff(before, state.AvailableRequests[0]))
	assert.Equal(t, ConflictMessage, state.Error)
	assert.False(t, state.Accepting)
}

func TestAccept_NonPositivePriceNeverReachesNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	gw := requestservice.NewClient(srv.URL, time.Second, nil, logger.NewNop())
	svc, st := newService(gw)

	for _, price := range []float64{0, -5} {
		_, err := svc.Accept(context.Background(), "P", "R", domain.AcceptQuote{Price: price})
		assert.ErrorIs(t, err, requestservice.ErrValidation)
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
	assert.NotEmpty(t, st.Snapshot().Error)
	assert.False(t, st.Snapshot().Accepting)
}

func TestAccept_LocalPolicyRejects(t *testing.T) {
	tests := []struct {
		name       string
		providerID string
		mutate     func(r *domain.ServiceRequest)
		expired    bool
	}{
		{name: "not matched", providerID: "Q"},
		{name: "expired window", providerID: "P", mutate: func(r *domain.ServiceRequest) { r.ExpiresAt = now.Add(-time.Minute) }, expired: true},
		{name: "already cancelled", providerID: "P", mutate: func(r *domain.ServiceRequest) { r.Status = domain.StatusCancelled }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			svc, st := newService(gw)

			r := request("R", domain.StatusMatched)
			if tt.mutate != nil {
				tt.mutate(r)
			}
			seedAvailable(st, r)

			_, err := svc.Accept(context.Background(), tt.providerID, "R", domain.AcceptQuote{Price: 10})
			assert.ErrorIs(t, err, ErrNotAcceptable)
			assert.Contains(t, err.Error(), fmt.Sprintf("expired=%t", tt.expired))
			assert.Equal(t, 0, gw.calls)
			assert.NotEmpty(t, st.Snapshot().Error)
		})
	}
}

func TestCreate(t *testing.T) {
	created := request("N", domain.StatusOpen)
	gw := &fakeGateway{created: created}
	svc, st := newService(gw)
	st.Dispatch(func(s store.State) store.State { return store.SetError(s, "old failure") })

	gw.hook = func() {
		assert.True(t, st.Snapshot().Creating)
		assert.False(t, st.Snapshot().Loading)
	}

	got, err := svc.Create(context.Background(), &domain.RequestDraft{Title: "Tile the bathroom"})
	require.NoError(t, err)
	assert.Same(t, created, got)

	state := st.Snapshot()
	assert.Same(t, created, state.CurrentRequest)
	assert.Same(t, created, state.MyRequests[0])
	assert.Equal(t, 1, state.TotalMyRequests)
	assert.False(t, state.Creating)
	assert.Empty(t, state.Error)
}

func TestCreate_FailureRecordsMessage(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("%w: status 401: token expired", requestservice.ErrAuth)}
	svc, st := newService(gw)

	_, err := svc.Create(context.Background(), &domain.RequestDraft{})
	require.ErrorIs(t, err, requestservice.ErrAuth)

	state := st.Snapshot()
	assert.Equal(t, err.Error(), state.Error)
	assert.False(t, state.Creating)
	assert.Empty(t, state.MyRequests)
}

func TestListMine_StoresFiltersAndPage(t *testing.T) {
	status := domain.StatusOpen
	gw := &fakeGateway{page: &domain.RequestPage{
		Requests: []*domain.ServiceRequest{request("a", domain.StatusOpen), request("b", domain.StatusOpen)},
		Total:    42,
	}}
	svc, st := newService(gw)
	gw.hook = func() { assert.True(t, st.Snapshot().Loading) }

	_, err := svc.ListMine(context.Background(), domain.ListFilters{Status: &status, Limit: 500})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultPage, gw.filters.Page)
	assert.Equal(t, domain.MaxLimit, gw.filters.Limit)

	state := st.Snapshot()
	assert.Len(t, state.MyRequests, 2)
	assert.Equal(t, 42, state.TotalMyRequests)
	assert.Equal(t, gw.filters, state.Filters)
	assert.False(t, state.Loading)
}

func TestListAvailable_FailureKeepsList(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("%w: dial tcp: refused", requestservice.ErrTransport)}
	svc, st := newService(gw)
	seedAvailable(st, request("R", domain.StatusMatched))

	_, err := svc.ListAvailable(context.Background(), domain.ListFilters{CategoryID: strPtr("cat-1")})
	require.ErrorIs(t, err, requestservice.ErrTransport)

	state := st.Snapshot()
	assert.Len(t, state.AvailableRequests, 1)
	assert.NotEmpty(t, state.Error)
	assert.Nil(t, gw.filters.Status)
	assert.Equal(t, "cat-1", *state.Filters.CategoryID)
	assert.False(t, state.Loading)
}

func TestFetchOne(t *testing.T) {
	fetched := request("R", domain.StatusMatched)
	gw := &fakeGateway{fetched: fetched}
	svc, st := newService(gw)
	seedMine(st, request("R", domain.StatusOpen))

	_, err := svc.FetchOne(context.Background(), "R")
	require.NoError(t, err)

	state := st.Snapshot()
	assert.Same(t, fetched, state.CurrentRequest)
	assert.Same(t, fetched, state.MyRequests[0])
}

func TestCancel(t *testing.T) {
	t.Run("owner cancels", func(t *testing.T) {
		cancelled := request("R", domain.StatusCancelled)
		cancelled.CancellationReason = strPtr("changed plans")
		gw := &fakeGateway{updated: cancelled}
		svc, st := newService(gw)
		seedMine(st, request("R", domain.StatusOpen))

		_, err := svc.Cancel(context.Background(), "S", "R", strPtr("changed plans"))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, st.Snapshot().MyRequests[0].Status)
	})

	t.Run("stranger is rejected locally", func(t *testing.T) {
		gw := &fakeGateway{}
		svc, st := newService(gw)
		seedMine(st, request("R", domain.StatusOpen))

		_, err := svc.Cancel(context.Background(), "X", "R", nil)
		assert.ErrorIs(t, err, ErrNotOwner)
		assert.Equal(t, 0, gw.calls)
	})

	t.Run("accepted request cannot be cancelled", func(t *testing.T) {
		gw := &fakeGateway{}
		svc, st := newService(gw)
		seedMine(st, request("R", domain.StatusAccepted))

		_, err := svc.Cancel(context.Background(), "S", "R", nil)
		assert.ErrorIs(t, err, ErrNotCancellable)
		assert.Equal(t, 0, gw.calls)
	})

	t.Run("unknown request goes to the backend", func(t *testing.T) {
		gw := &fakeGateway{err: fmt.Errorf("%w: status 404", requestservice.ErrNotFound)}
		svc, _ := newService(gw)

		_, err := svc.Cancel(context.Background(), "S", "missing", nil)
		assert.ErrorIs(t, err, requestservice.ErrNotFound)
		assert.Equal(t, 1, gw.calls)
	})
}

func TestUpdate(t *testing.T) {
	updated := request("R", domain.StatusOpen)
	updated.Title = "Retile the bathroom"
	gw := &fakeGateway{updated: updated}
	svc, st := newService(gw)
	seedMine(st, request("R", domain.StatusOpen))

	_, err := svc.Update(context.Background(), "S", "R", &domain.RequestPatch{Title: strPtr("Retile the bathroom")})
	require.NoError(t, err)
	assert.Equal(t, "Retile the bathroom", st.Snapshot().MyRequests[0].Title)

	seedMine(st, request("E", domain.StatusExpired))
	_, err = svc.Update(context.Background(), "S", "E", &domain.RequestPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestClearError(t *testing.T) {
	svc, st := newService(&fakeGateway{})
	st.Dispatch(func(s store.State) store.State { return store.SetError(s, "boom") })

	svc.ClearError()
	assert.Empty(t, st.Snapshot().Error)
}

func TestPendingFlagStaysUpWhileAnotherCommandRuns(t *testing.T) {
	gw := &fakeGateway{page: &domain.RequestPage{}}
	svc, st := newService(gw)

	// второй вызов выполняется, пока первый еще не завершен
	nested := false
	gw.hook = func() {
		if nested {
			return
		}
		nested = true
		_, err := svc.ListAvailable(context.Background(), domain.ListFilters{})
		require.NoError(t, err)
		assert.True(t, st.Snapshot().Loading)
	}

	_, err := svc.ListMine(context.Background(), domain.ListFilters{})
	require.NoError(t, err)
	assert.False(t, st.Snapshot().Loading)
}
