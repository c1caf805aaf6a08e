package unbind_session

import (
	"net/http"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/api/middleware"
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

// Handle DELETE /api/v1/session
// Сессия освобождается полностью даже при ошибках отдельных шагов, поэтому ответ всегда 204.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.manager.Unbind(r.Context()); err != nil {
		h.logger.Warn("DELETE /session - Session released with errors: user_id=%s, error=%v", userID, err)
	} else {
		h.logger.Info("DELETE /session - Session released: user_id=%s", userID)
	}

	handlers.RespondNoContent(w)
}
