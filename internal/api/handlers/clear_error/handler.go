package clear_error

import (
	"net/http"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
)

type Handler struct {
	service RequestService
}

func NewHandler(service RequestService) *Handler {
	return &Handler{service: service}
}

// Handle DELETE /api/v1/state/error
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	h.service.ClearError()
	handlers.RespondNoContent(w)
}
