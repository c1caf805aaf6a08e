package get_request

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
)

const (
	msgInvalidRequestID   = "некорректный ID заявки"
	msgNotFound           = "заявка не найдена"
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

// Handle GET /api/v1/requests/{requestId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(mux.Vars(r)["requestId"])
	if requestID == "" {
		h.logger.Warn("GET /requests/{id} - Empty request ID")
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	req, err := h.service.FetchOne(r.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, requestservice.ErrValidation):
			h.logger.Warn("GET /requests/{id} - Invalid request ID: request_id=%s", requestID)
			handlers.RespondBadRequest(w, msgInvalidRequestID)

		case errors.Is(err, requestservice.ErrNotFound):
			h.logger.Warn("GET /requests/{id} - Request not found: request_id=%s", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, requestservice.ErrAuth):
			h.logger.Warn("GET /requests/{id} - Not authorized: request_id=%s", requestID)
			handlers.RespondUnauthorized(w, msgUnauthorized)

		case errors.Is(err, requestservice.ErrTransport), errors.Is(err, requestservice.ErrInvalidResponse):
			h.logger.Error("GET /requests/{id} - Backend unavailable: request_id=%s, error=%v", requestID, err)
			handlers.RespondBadGateway(w, msgBackendUnavailable)

		default:
			h.logger.Error("GET /requests/{id} - Failed to get request: request_id=%s, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /requests/{id} - Request retrieved successfully: request_id=%s, status=%s", requestID, req.Status)
	handlers.RespondJSON(w, http.StatusOK, req)
}
