package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/store"
)

// Manager связывает компоненты синхронизации с аутентифицированной сессией.
// Смена пользователя всегда проходит через полный Unbind предыдущего.
type Manager struct {
	tokens     TokenHolder
	connection Connection
	binder     Binder
	store      Store
	inbox      Inbox
	clock      TimeProvider
	logger     Logger

	mu      sync.Mutex
	current *Session
}

// NewManager создает новый экземпляр менеджера сессии
func NewManager(
	tokens TokenHolder,
	connection Connection,
	binder Binder,
	st Store,
	inbox Inbox,
	clock TimeProvider,
	logger Logger,
) *Manager {
	return &Manager{
		tokens:     tokens,
		connection: connection,
		binder:     binder,
		store:      st,
		inbox:      inbox,
		clock:      clock,
		logger:     logger,
	}
}

// Bind привязывает сессию: токен для REST API, соединение канала и reconciler.
// Повторный Bind того же пользователя с той же ролью только обновляет токен REST API.
func (m *Manager) Bind(ctx context.Context, creds Credentials) (*Session, error) {
	if err := validateCredentials(creds); err != nil {
		m.logger.Warn("Bind: %v", err)
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		if m.current.UserID == creds.UserID && m.current.Role == creds.Role {
			m.tokens.SetToken(creds.Token)
			m.logger.Info("Bind: user_id=%s already bound, token refreshed", creds.UserID)
			s := *m.current
			return &s, nil
		}

		m.logger.Info("Bind: switching from user_id=%s to user_id=%s", m.current.UserID, creds.UserID)
		if err := m.unbindLocked(ctx); err != nil {
			m.logger.Warn("Bind: previous session released with errors: %v", err)
		}
	}

	m.tokens.SetToken(creds.Token)

	if err := m.connection.Connect(ctx, creds.Token); err != nil {
		m.tokens.SetToken("")
		m.logger.Error("Bind: failed to connect realtime channel for user_id=%s: %v", creds.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	if err := m.binder.Bind(ctx, creds.UserID, creds.Role); err != nil {
		if disconnectErr := m.connection.Disconnect(); disconnectErr != nil {
			m.logger.Warn("Bind: failed to close realtime channel after bind failure: %v", disconnectErr)
		}
		m.tokens.SetToken("")
		m.logger.Error("Bind: failed to bind user_id=%s: %v", creds.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrBind, err)
	}

	m.current = &Session{
		UserID:  creds.UserID,
		Role:    creds.Role,
		BoundAt: m.clock.Now(),
	}

	m.logger.Info("Bind: session bound user_id=%s role=%s", creds.UserID, creds.Role)
	s := *m.current
	return &s, nil
}

// Unbind освобождает сессию. Вызов без сессии ничего не делает.
func (m *Manager) Unbind(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	return m.unbindLocked(ctx)
}

// Current возвращает текущую сессию
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// unbindLocked выполняет все шаги освобождения даже после ошибки одного из них
func (m *Manager) unbindLocked(ctx context.Context) error {
	userID := m.current.UserID
	m.current = nil

	var errs []error

	// Сначала снимаем обработчики, чтобы события старой сессии не попали в сброшенное хранилище
	if err := m.binder.Unbind(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := m.connection.Disconnect(); err != nil {
		errs = append(errs, err)
	}

	m.store.Dispatch(store.Reset)

	if dropped := m.inbox.Drain(); len(dropped) > 0 {
		m.logger.Info("Unbind: discarded %d pending notifications", len(dropped))
	}

	m.tokens.SetToken("")

	if len(errs) > 0 {
		m.logger.Warn("Unbind: user_id=%s released with errors: %v", userID, errors.Join(errs...))
		return fmt.Errorf("%w: %v", ErrUnbind, errors.Join(errs...))
	}

	m.logger.Info("Unbind: session released user_id=%s", userID)
	return nil
}

func validateCredentials(c Credentials) error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidCredentials)
	}
	if _, ok := domain.ParseRole(string(c.Role)); !ok {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidCredentials, c.Role)
	}
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidCredentials)
	}
	return nil
}
