package list_available_requests

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/api/middleware"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
)

const (
	msgInvalidParams      = "некорректные параметры запроса"
	msgUnauthorized       = "сессия не авторизована в сервисе заявок"
	msgBackendUnavailable = "сервис заявок недоступен"
)

type Handler struct {
	service RequestService
	logger  Logger
}

func NewHandler(service RequestService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/requests/available
// Query params: categoryId, urgency, page, limit (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	query := r.URL.Query()
	filters, err := ToFilters(query.Get("categoryId"), query.Get("urgency"), query.Get("page"), query.Get("limit"))
	if err != nil {
		h.logger.Warn("GET /requests/available - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	page, err := h.service.ListAvailable(r.Context(), filters)
	if err != nil {
		switch {
		case errors.Is(err, requestservice.ErrValidation):
			h.logger.Warn("GET /requests/available - Validation failed: user_id=%s, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, requestservice.ErrAuth):
			h.logger.Warn("GET /requests/available - Not authorized: user_id=%s", userID)
			handlers.RespondUnauthorized(w, msgUnauthorized)

		case errors.Is(err, requestservice.ErrTransport), errors.Is(err, requestservice.ErrInvalidResponse):
			h.logger.Error("GET /requests/available - Backend unavailable: user_id=%s, error=%v", userID, err)
			handlers.RespondBadGateway(w, msgBackendUnavailable)

		default:
			h.logger.Error("GET /requests/available - Failed to list requests: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /requests/available - Requests retrieved successfully: user_id=%s, count=%d, total=%d",
		userID, len(page.Requests), page.Total)
	handlers.RespondJSON(w, http.StatusOK, page)
}
