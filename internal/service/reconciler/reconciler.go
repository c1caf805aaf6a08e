package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/realtime"
)

// binding активная привязка к пользователю
type binding struct {
	userID string
	role   domain.Role
	topics []string
	subs   []realtime.Subscription
}

// Reconciler применяет push-события канала к хранилищу заявок.
// Обработчики выполняются в горутине чтения транспорта и не блокируют ее.
type Reconciler struct {
	transport  Transport
	dispatcher Dispatcher
	notifier   Notifier
	recorder   Recorder
	metrics    MetricsRecorder
	clock      TimeProvider
	log        Logger

	mu     sync.Mutex
	bound  *binding
	active atomic.Pointer[binding]
}

// New создает новый экземпляр reconciler
func New(
	transport Transport,
	dispatcher Dispatcher,
	notifier Notifier,
	recorder Recorder,
	metrics MetricsRecorder,
	clock TimeProvider,
	log Logger,
) *Reconciler {
	return &Reconciler{
		transport:  transport,
		dispatcher: dispatcher,
		notifier:   notifier,
		recorder:   recorder,
		metrics:    metrics,
		clock:      clock,
		log:        log,
	}
}

// Bind входит в канал пользователя (и исполнителя для роли provider) и регистрирует обработчики роли.
// Повторный Bind того же пользователя с той же ролью ничего не делает.
func (r *Reconciler) Bind(ctx context.Context, userID string, role domain.Role) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidBinding)
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidBinding, role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bound != nil {
		if r.bound.userID == userID && r.bound.role == role {
			return nil
		}
		return fmt.Errorf("%w: bound to user %s", ErrAlreadyBound, r.bound.userID)
	}

	b := &binding{userID: userID, role: role}
	r.active.Store(b)

	// Обработчики регистрируются до входа в каналы, чтобы не пропустить первые события
	for _, l := range listenersFor(role) {
		b.subs = append(b.subs, r.transport.On(l.event, r.wrap(b, l)))
	}
	b.subs = append(b.subs, r.transport.On(realtime.EventUnhandled, r.dropUnknown(b)))

	for _, topic := range topicsFor(userID, role) {
		if err := r.transport.Join(ctx, topic); err != nil {
			r.active.Store(nil)
			if releaseErr := r.release(ctx, b); releaseErr != nil {
				r.log.Warn("Bind: failed to roll back user_id=%s: %v", userID, releaseErr)
			}
			r.log.Error("Bind: failed to join %s: %v", topic, err)
			return fmt.Errorf("%w: %s: %v", ErrJoinFailed, topic, err)
		}
		b.topics = append(b.topics, topic)
	}

	r.bound = b
	r.log.Info("Bind: user_id=%s role=%s topics=%v", userID, role, b.topics)
	return nil
}

// Unbind снимает все обработчики, покидает каналы и сбрасывает привязку.
// Вызов без привязки ничего не делает.
func (r *Reconciler) Unbind(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bound == nil {
		return nil
	}

	b := r.bound
	r.bound = nil
	r.active.Store(nil)

	if err := r.release(ctx, b); err != nil {
		r.log.Warn("Unbind: user_id=%s: %v", b.userID, err)
		return err
	}

	r.log.Info("Unbind: user_id=%s role=%s", b.userID, b.role)
	return nil
}

// Bound возвращает текущую привязку
func (r *Reconciler) Bound() (userID string, role domain.Role, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bound == nil {
		return "", "", false
	}
	return r.bound.userID, r.bound.role, true
}

// release снимает обработчики и покидает каналы, продолжая после ошибок
func (r *Reconciler) release(ctx context.Context, b *binding) error {
	for _, sub := range b.subs {
		r.transport.Off(sub)
	}
	b.subs = nil

	var errs []error
	for _, topic := range b.topics {
		if err := r.transport.Leave(ctx, topic); err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", topic, err))
		}
	}
	b.topics = nil

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrLeaveFailed, errors.Join(errs...))
	}
	return nil
}

// wrap оборачивает обработчик: отсекает события устаревшей привязки,
// отбрасывает некорректные и записывает итог в метрики и журнал
func (r *Reconciler) wrap(b *binding, l listener) realtime.Handler {
	return func(msg realtime.Message) {
		if r.active.Load() != b {
			return
		}

		res, err := l.handle(r, b, msg)
		if err != nil {
			r.log.Warn("Reconciler: dropped %s on %s: %v", msg.Event, msg.Topic, err)
			res.outcome = domain.OutcomeDropped
		}
		r.finish(b, msg, res)
	}
}

func (r *Reconciler) dropUnknown(b *binding) realtime.Handler {
	return func(msg realtime.Message) {
		if r.active.Load() != b {
			return
		}

		r.log.Warn("Reconciler: dropped unknown event %s on %s", msg.Event, msg.Topic)
		r.finish(b, msg, result{outcome: domain.OutcomeDropped})
	}
}

func (r *Reconciler) finish(b *binding, msg realtime.Message, res result) {
	if r.metrics != nil {
		r.metrics.IncRealtimeEvent(msg.Event, string(res.outcome))
	}

	r.recorder.Record(domain.JournalEntry{
		ID:         uuid.NewString(),
		UserID:     b.userID,
		Role:       b.role,
		Event:      msg.Event,
		RequestID:  res.requestID,
		Outcome:    res.outcome,
		Payload:    msg.Payload,
		ReceivedAt: r.clock.Now(),
	})
}

func (r *Reconciler) notify(kind domain.NotificationKind, requestID string, orderID *string, title, body string) {
	r.notifier.Publish(domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		RequestID: requestID,
		OrderID:   orderID,
		Title:     title,
		Body:      body,
		CreatedAt: r.clock.Now(),
	})

	if r.metrics != nil {
		r.metrics.IncNotification(string(kind))
	}
}

func topicsFor(userID string, role domain.Role) []string {
	topics := []string{userTopicPrefix + userID}
	if role == domain.RoleProvider {
		topics = append(topics, providerTopicPrefix+userID)
	}
	return topics
}
