package session

import (
	"time"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// Credentials данные аутентифицированной сессии
type Credentials struct {
	UserID string
	Role   domain.Role
	Token  string
}

// Session текущая привязанная сессия (без токена)
type Session struct {
	UserID  string      `json:"userId"`
	Role    domain.Role `json:"role"`
	BoundAt time.Time   `json:"boundAt"`
}
