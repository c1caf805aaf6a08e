package bind_session

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/service/session"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidCredentials = "некорректные данные сессии: нужны userId, role (seeker|provider) и token"
	msgRealtimeFailed     = "не удалось подключиться к каналу событий"
)

type Handler struct {
	manager SessionManager
	logger  Logger
}

func NewHandler(manager SessionManager, logger Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// Handle POST /api/v1/session
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req BindSessionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /session - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	s, err := h.manager.Bind(r.Context(), req.ToCredentials())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			h.logger.Warn("POST /session - Invalid credentials: user_id=%s, role=%s", req.UserID, req.Role)
			handlers.RespondBadRequest(w, msgInvalidCredentials)

		case errors.Is(err, session.ErrConnect), errors.Is(err, session.ErrBind):
			h.logger.Error("POST /session - Realtime channel unavailable: user_id=%s, error=%v", req.UserID, err)
			handlers.RespondBadGateway(w, msgRealtimeFailed)

		default:
			h.logger.Error("POST /session - Failed to bind session: user_id=%s, error=%v", req.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /session - Session bound: user_id=%s, role=%s", s.UserID, s.Role)
	handlers.RespondJSON(w, http.StatusOK, s)
}
