package requests

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
	"github.com/m04kA/SMC-RequestSync/internal/store"
)

// Service сервис команд над заявками.
// Каждая команда поднимает свой флаг на время вызова, а результат применяет через редьюсер хранилища.
type Service struct {
	gateway Gateway
	store   Store
	clock   TimeProvider
	logger  Logger

	// inflight число незавершенных команд на флаг; флаг опускается с последней из них
	mu       sync.Mutex
	inflight map[store.Op]int
}

// NewService создает новый экземпляр сервиса команд
func NewService(gateway Gateway, st Store, clock TimeProvider, logger Logger) *Service {
	return &Service{
		gateway:  gateway,
		store:    st,
		clock:    clock,
		logger:   logger,
		inflight: make(map[store.Op]int),
	}
}

// Create создает заявку и делает ее текущей
func (s *Service) Create(ctx context.Context, draft *domain.RequestDraft) (*domain.ServiceRequest, error) {
	s.logger.Info("Create: creating request")

	var created *domain.ServiceRequest
	err := s.run(store.OpCreating, func() (store.Transition, error) {
		var err error
		created, err = s.gateway.Create(ctx, draft)
		if err != nil {
			return nil, err
		}
		return func(st store.State) store.State { return store.ApplyCreated(st, created) }, nil
	})
	if err != nil {
		s.logFailure("Create", "", err)
		return nil, err
	}

	s.logger.Info("Create: successfully created request id=%s", created.ID)
	return created, nil
}

// ListMine загружает заявки искателя и запоминает использованные фильтры
func (s *Service) ListMine(ctx context.Context, filters domain.ListFilters) (*domain.RequestPage, error) {
	filters = normalizeFilters(filters)
	filters.CategoryID, filters.Urgency = nil, nil
	s.logger.Info("ListMine: fetching page=%d limit=%d", filters.Page, filters.Limit)

	var page *domain.RequestPage
	err := s.run(store.OpLoading, func() (store.Transition, error) {
		var err error
		page, err = s.gateway.ListMine(ctx, filters)
		if err != nil {
			return nil, err
		}
		return func(st store.State) store.State { return store.ApplyListMineResult(st, page) }, nil
	}, func(st store.State) store.State { return store.SetFilters(st, filters) })
	if err != nil {
		s.logFailure("ListMine", "", err)
		return nil, err
	}

	s.logger.Info("ListMine: fetched %d of %d requests", len(page.Requests), page.Total)
	return page, nil
}

// ListAvailable загружает пул заявок исполнителя и запоминает использованные фильтры
func (s *Service) ListAvailable(ctx context.Context, filters domain.ListFilters) (*domain.RequestPage, error) {
	filters = normalizeFilters(filters)
	filters.Status = nil
	s.logger.Info("ListAvailable: fetching page=%d limit=%d", filters.Page, filters.Limit)

	var page *domain.RequestPage
	err := s.run(store.OpLoading, func() (store.Transition, error) {
		var err error
		page, err = s.gateway.ListAvailable(ctx, filters)
		if err != nil {
			return nil, err
		}
		return func(st store.State) store.State { return store.ApplyListAvailableResult(st, page) }, nil
	}, func(st store.State) store.State { return store.SetFilters(st, filters) })
	if err != nil {
		s.logFailure("ListAvailable", "", err)
		return nil, err
	}

	s.logger.Info("ListAvailable: fetched %d of %d requests", len(page.Requests), page.Total)
	return page, nil
}

// FetchOne загружает заявку и делает ее текущей
func (s *Service) FetchOne(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	s.logger.Info("FetchOne: fetching request id=%s", id)

	var req *domain.ServiceRequest
	err := s.run(store.OpLoading, func() (store.Transition, error) {
		var err error
		req, err = s.gateway.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return func(st store.State) store.State { return store.ApplyFetchedOne(st, req) }, nil
	})
	if err != nil {
		s.logFailure("FetchOne", id, err)
		return nil, err
	}

	return req, nil
}

// Accept принимает заявку от имени исполнителя
// Если заявка известна локально и политика жизненного цикла ее не допускает, сеть не вызывается.
// Проигранная гонка (ErrConflict) оставляет исходную запись без изменений.
func (s *Service) Accept(ctx context.Context, providerID, id string, quote domain.AcceptQuote) (*domain.AcceptResult, error) {
	s.logger.Info("Accept: provider=%s accepting request id=%s", providerID, id)

	now := s.clock.Now()
	if rec, ok := s.store.Snapshot().ByID(id); ok && !domain.CanAccept(rec, providerID, now) {
		err := fmt.Errorf("%w: status=%s, expired=%t", ErrNotAcceptable, rec.Status, domain.IsExpiredAt(rec, now))
		s.reject("Accept", id, err)
		return nil, err
	}

	var result *domain.AcceptResult
	err := s.run(store.OpAccepting, func() (store.Transition, error) {
		var err error
		result, err = s.gateway.Accept(ctx, id, quote)
		if err != nil {
			return nil, err
		}
		return func(st store.State) store.State { return store.ApplyAccepted(st, result) }, nil
	})
	if err != nil {
		s.logFailure("Accept", id, err)
		return nil, err
	}

	s.logger.Info("Accept: successfully accepted request id=%s, order id=%s", id, result.OrderID)
	return result, nil
}

// Update изменяет заявку владельца, пока она активна
func (s *Service) Update(ctx context.Context, userID, id string, patch *domain.RequestPatch) (*domain.ServiceRequest, error) {
	s.logger.Info("Update: user=%s updating request id=%s", userID, id)

	if rec, ok := s.store.Snapshot().ByID(id); ok && !domain.CanUpdate(rec, userID) {
		err := ownershipError(rec, userID, ErrNotEditable)
		s.reject("Update", id, err)
		return nil, err
	}

	var updated *domain.ServiceRequest
	err := s.run(store.OpLoading, func() (store.Transition, error) {
		var err error
		updated, err = s.gateway.Update(ctx, id, patch)
		if err != nil {
			return nil, err
		}
		return func(st store.State) store.State { return store.ApplyUpdated(st, updated) }, nil
	})
	if err != nil {
		s.logFailure("Update", id, err)
		return nil, err
	}

	s.logger.Info("Update: successfully updated request id=%s", id)
	return updated, nil
}

// Cancel отменяет заявку владельца, пока она активна
func (s *Service) Cancel(ctx context.Context, userID, id string, reason *string) (*domain.ServiceRequest, error) {
	s.logger.Info("Cancel: user=%s cancelling request id=%s", userID, id)

	if rec, ok := s.store.Snapshot().ByID(id); ok && !domain.CanCancel(rec, userID) {
		err := ownershipError(rec, userID, ErrNotCancellable)
		s.reject("Cancel", id, err)
		return nil, err
	}

	var cancelled *domain.ServiceRequest
	err := s.run(store.OpLoading, func() (store.Transition, error) {
		var err error
		cancelled, err = s.gateway.Cancel(ctx, id, reason)
		if err != nil {
			return nil, err
		}
		return func(st store.State) store.State { return store.ApplyCancelled(st, cancelled) }, nil
	})
	if err != nil {
		s.logFailure("Cancel", id, err)
		return nil, err
	}

	s.logger.Info("Cancel: successfully cancelled request id=%s", id)
	return cancelled, nil
}

// ClearError сбрасывает последнюю ошибку
func (s *Service) ClearError() {
	s.store.Dispatch(store.ClearError)
}

// Вспомогательные методы

// run поднимает флаг op, выполняет вызов и применяет результат либо сохраняет ошибку.
// onIssue применяется вместе с поднятием флага.
func (s *Service) run(op store.Op, call func() (store.Transition, error), onIssue ...store.Transition) error {
	s.begin(op, onIssue...)

	apply, err := call()
	if err != nil {
		message := err.Error()
		if errors.Is(err, requestservice.ErrConflict) {
			message = ConflictMessage
		}
		s.settle(op, func(st store.State) store.State { return store.SetError(st, message) })
		return err
	}

	s.settle(op, func(st store.State) store.State { return store.ClearError(apply(st)) })
	return nil
}

func (s *Service) begin(op store.Op, onIssue ...store.Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight[op]++
	s.store.Dispatch(func(st store.State) store.State {
		for _, t := range onIssue {
			st = t(st)
		}
		return store.SetPending(st, op, true)
	})
}

func (s *Service) settle(op store.Op, outcome store.Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight[op]--
	pending := s.inflight[op] > 0
	s.store.Dispatch(func(st store.State) store.State {
		return store.SetPending(outcome(st), op, pending)
	})
}

// reject сохраняет ошибку локальной проверки без сетевого вызова
func (s *Service) reject(method, id string, err error) {
	s.logger.Warn("%s: request id=%s rejected locally: %v", method, id, err)
	message := err.Error()
	s.store.Dispatch(func(st store.State) store.State { return store.SetError(st, message) })
}

// logFailure логирует ошибку команды с уровнем по ее классу
func (s *Service) logFailure(method, id string, err error) {
	switch {
	case errors.Is(err, requestservice.ErrConflict):
		s.logger.Warn("%s: request id=%s is no longer available: %v", method, id, err)
	case errors.Is(err, requestservice.ErrValidation),
		errors.Is(err, requestservice.ErrNotFound),
		errors.Is(err, requestservice.ErrAuth):
		s.logger.Warn("%s: request id=%s failed: %v", method, id, err)
	default:
		s.logger.Error("%s: request id=%s failed: %v", method, id, err)
	}
}

// ownershipError отличает чужую заявку от заявки в неактивном статусе
func ownershipError(rec *domain.ServiceRequest, userID string, inactive error) error {
	if !rec.IsOwnedBy(userID) {
		return ErrNotOwner
	}
	return fmt.Errorf("%w: status=%s", inactive, rec.Status)
}

func normalizeFilters(f domain.ListFilters) domain.ListFilters {
	if f.Page < 1 {
		f.Page = domain.DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = domain.DefaultLimit
	}
	if f.Limit > domain.MaxLimit {
		f.Limit = domain.MaxLimit
	}
	return f
}
