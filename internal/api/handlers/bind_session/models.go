package bind_session

import (
	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/service/session"
)

// BindSessionRequest HTTP request model
type BindSessionRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

// ToCredentials конвертирует HTTP запрос в данные сессии
func (r *BindSessionRequest) ToCredentials() session.Credentials {
	return session.Credentials{
		UserID: r.UserID,
		Role:   domain.Role(r.Role),
		Token:  r.Token,
	}
}
