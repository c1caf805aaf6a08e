package reconciler

import (
	"fmt"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/realtime"
	"github.com/m04kA/SMC-RequestSync/internal/store"
)

// result итог обработки события для метрик и журнала
type result struct {
	requestID string
	outcome   domain.EventOutcome
}

type handleFunc func(r *Reconciler, b *binding, msg realtime.Message) (result, error)

type listener struct {
	event  string
	handle handleFunc
}

// commonListeners события, которые получают обе роли
func commonListeners() []listener {
	return []listener{
		{event: EventRequestUpdated, handle: (*Reconciler).onRequestUpdated},
		{event: EventRequestExpired, handle: (*Reconciler).onRequestExpired},
	}
}

// seekerListeners события собственных заявок искателя
func seekerListeners() []listener {
	return []listener{
		{event: EventRequestCreated, handle: (*Reconciler).onRequestCreated},
		{event: EventOrderCreated, handle: (*Reconciler).onOrderCreated},
	}
}

// providerListeners события пула доступных заявок исполнителя
func providerListeners() []listener {
	return []listener{
		{event: EventNewMatch, handle: (*Reconciler).onNewMatch},
		{event: EventRequestUnavailable, handle: (*Reconciler).onRequestUnavailable},
	}
}

// listenersFor собирает набор обработчиков для роли
func listenersFor(role domain.Role) []listener {
	listeners := commonListeners()
	switch role {
	case domain.RoleSeeker:
		listeners = append(listeners, seekerListeners()...)
	case domain.RoleProvider:
		listeners = append(listeners, providerListeners()...)
	}
	return listeners
}

// onRequestUpdated заменяет запись во всех представлениях, где она уже есть.
// Искатель получает уведомление, когда его заявка перешла в matched или accepted.
func (r *Reconciler) onRequestUpdated(b *binding, msg realtime.Message) (result, error) {
	req, err := decodeRequest(msg.Payload)
	if err != nil {
		return result{}, err
	}

	var (
		known    bool
		previous domain.RequestStatus
	)
	r.dispatcher.Dispatch(func(s store.State) store.State {
		if prev, ok := s.ByID(req.ID); ok {
			known, previous = true, prev.Status
		}
		return store.Upsert(s, req)
	})

	statusChanged := !known || previous != req.Status
	if b.role == domain.RoleSeeker && req.IsOwnedBy(b.userID) && statusChanged {
		switch req.Status {
		case domain.StatusMatched:
			r.notify(domain.NotificationRequestMatched, req.ID, nil,
				"Request matched", fmt.Sprintf("%q has been matched with providers", req.Title))
		case domain.StatusAccepted:
			r.notify(domain.NotificationRequestAccepted, req.ID, req.OrderID,
				"Request accepted", fmt.Sprintf("%q has been accepted by a provider", req.Title))
		}
	}

	if !known {
		return result{requestID: req.ID, outcome: domain.OutcomeIgnored}, nil
	}
	return result{requestID: req.ID, outcome: domain.OutcomeApplied}, nil
}

// onRequestExpired переводит локальную запись в expired.
// Запись, которой нет локально, не ошибка: состояние не меняется.
func (r *Reconciler) onRequestExpired(b *binding, msg realtime.Message) (result, error) {
	id, err := decodeRequestID(msg.Payload)
	if err != nil {
		return result{}, err
	}

	now := r.clock.Now()
	var (
		found   bool
		status  domain.RequestStatus
		expired *domain.ServiceRequest
	)
	r.dispatcher.Dispatch(func(s store.State) store.State {
		rec, ok := s.ByID(id)
		if !ok {
			return s
		}
		found, status = true, rec.Status
		if !domain.CanTransition(rec.Status, domain.StatusExpired) {
			return s
		}
		expired = domain.ExpireAt(rec, now)
		return store.Upsert(s, expired)
	})

	switch {
	case !found:
		return result{requestID: id, outcome: domain.OutcomeIgnored}, nil
	case expired == nil:
		if status != domain.StatusExpired {
			r.log.Warn("Reconciler: expiry of request id=%s ignored in status %s", id, status)
		}
		return result{requestID: id, outcome: domain.OutcomeIgnored}, nil
	}

	if expired.IsOwnedBy(b.userID) {
		r.notify(domain.NotificationRequestExpired, id, nil,
			"Request expired", fmt.Sprintf("%q has expired without being accepted", expired.Title))
	}
	return result{requestID: id, outcome: domain.OutcomeApplied}, nil
}

// onRequestCreated добавляет заявку, созданную искателем (в том числе с другого устройства)
func (r *Reconciler) onRequestCreated(b *binding, msg realtime.Message) (result, error) {
	req, err := decodeRequest(msg.Payload)
	if err != nil {
		return result{}, err
	}

	if !req.IsOwnedBy(b.userID) {
		r.log.Warn("Reconciler: created request id=%s belongs to another seeker", req.ID)
		return result{requestID: req.ID, outcome: domain.OutcomeIgnored}, nil
	}

	r.dispatcher.Dispatch(func(s store.State) store.State {
		return store.AddToMine(s, req)
	})
	return result{requestID: req.ID, outcome: domain.OutcomeApplied}, nil
}

// onOrderCreated уведомляет искателя о заказе, созданном из его заявки
func (r *Reconciler) onOrderCreated(b *binding, msg realtime.Message) (result, error) {
	p, err := decodeOrderCreated(msg.Payload)
	if err != nil {
		return result{}, err
	}

	var req *domain.ServiceRequest
	for _, mine := range r.dispatcher.Snapshot().MyRequests {
		if mine.ID == p.RequestID {
			req = mine
			break
		}
	}
	if req == nil {
		return result{requestID: p.RequestID, outcome: domain.OutcomeIgnored}, nil
	}

	orderID := p.OrderID
	r.notify(domain.NotificationOrderCreated, p.RequestID, &orderID,
		"Order created", fmt.Sprintf("Order %s was created for %q", orderID, req.Title))
	return result{requestID: p.RequestID, outcome: domain.OutcomeApplied}, nil
}

// onNewMatch добавляет новую подобранную заявку в пул исполнителя
func (r *Reconciler) onNewMatch(b *binding, msg realtime.Message) (result, error) {
	req, err := decodeRequest(msg.Payload)
	if err != nil {
		return result{}, err
	}

	if !req.IsActive() {
		r.log.Warn("Reconciler: new match id=%s arrived in status %s", req.ID, req.Status)
		return result{requestID: req.ID, outcome: domain.OutcomeIgnored}, nil
	}

	var listed bool
	r.dispatcher.Dispatch(func(s store.State) store.State {
		for _, a := range s.AvailableRequests {
			if a.ID == req.ID {
				listed = true
				break
			}
		}
		return store.AddToAvailable(s, req)
	})

	if !listed {
		r.notify(domain.NotificationNewMatch, req.ID, nil,
			"New matching request", fmt.Sprintf("%q matches your services", req.Title))
	}
	return result{requestID: req.ID, outcome: domain.OutcomeApplied}, nil
}

// onRequestUnavailable убирает заявку, принятую другим исполнителем, только из пула
func (r *Reconciler) onRequestUnavailable(b *binding, msg realtime.Message) (result, error) {
	id, err := decodeRequestID(msg.Payload)
	if err != nil {
		return result{}, err
	}

	var removed bool
	r.dispatcher.Dispatch(func(s store.State) store.State {
		next := store.RemoveFromAvailable(s, id)
		removed = len(next.AvailableRequests) != len(s.AvailableRequests)
		return next
	})

	if !removed {
		return result{requestID: id, outcome: domain.OutcomeIgnored}, nil
	}
	return result{requestID: id, outcome: domain.OutcomeApplied}, nil
}
