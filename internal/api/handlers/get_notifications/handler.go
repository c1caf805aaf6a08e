package get_notifications

import (
	"net/http"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

type Handler struct {
	inbox Inbox
}

func NewHandler(inbox Inbox) *Handler {
	return &Handler{inbox: inbox}
}

// Handle GET /api/v1/notifications
// Возвращает накопленные уведомления и очищает очередь
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	items := h.inbox.Drain()
	if items == nil {
		items = []domain.Notification{}
	}
	handlers.RespondJSON(w, http.StatusOK, items)
}
