package cancel_request

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/api/middleware"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
	"github.com/m04kA/SMC-RequestSync/internal/service/requests"
)

const (
	msgInvalidRequestID   = "некорректный ID заявки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgValidationFailed   = "причина отмены слишком длинная"
	msgNotFound           = "заявка не найдена"
	msgNotOwner           = "заявка принадлежит другому пользователю"
	msgNotCancellable     = "заявку в текущем статусе нельзя отменить"
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

// Handle POST /api/v1/requests/{requestId}/cancel
// Тело запроса необязательно
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(mux.Vars(r)["requestId"])
	if requestID == "" {
		h.logger.Warn("POST /requests/{id}/cancel - Empty request ID")
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	var req CancelRequestRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /requests/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	cancelled, err := h.service.Cancel(r.Context(), userID, requestID, req.CancellationReason)
	if err != nil {
		switch {
		case errors.Is(err, requestservice.ErrValidation):
			h.logger.Warn("POST /requests/{id}/cancel - Validation failed: request_id=%s, error=%v", requestID, err)
			handlers.RespondBadRequest(w, msgValidationFailed)

		case errors.Is(err, requests.ErrNotOwner):
			h.logger.Warn("POST /requests/{id}/cancel - Not owner: request_id=%s, user_id=%s", requestID, userID)
			handlers.RespondForbidden(w, msgNotOwner)

		case errors.Is(err, requests.ErrNotCancellable):
			h.logger.Warn("POST /requests/{id}/cancel - Not cancellable: request_id=%s", requestID)
			handlers.RespondConflict(w, msgNotCancellable)

		case errors.Is(err, requestservice.ErrConflict):
			h.logger.Warn("POST /requests/{id}/cancel - Request no longer available: request_id=%s", requestID)
			handlers.RespondConflict(w, requests.ConflictMessage)

		case errors.Is(err, requestservice.ErrNotFound):
			h.logger.Warn("POST /requests/{id}/cancel - Request not found: request_id=%s", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, requestservice.ErrAuth):
			h.logger.Warn("POST /requests/{id}/cancel - Not authorized: request_id=%s, user_id=%s", requestID, userID)
			handlers.RespondUnauthorized(w, msgUnauthorized)

		case errors.Is(err, requestservice.ErrTransport), errors.Is(err, requestservice.ErrInvalidResponse):
			h.logger.Error("POST /requests/{id}/cancel - Backend unavailable: request_id=%s, error=%v", requestID, err)
			handlers.RespondBadGateway(w, msgBackendUnavailable)

		default:
			h.logger.Error("POST /requests/{id}/cancel - Failed to cancel request: request_id=%s, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /requests/{id}/cancel - Request cancelled successfully: request_id=%s, user_id=%s", requestID, userID)
	handlers.RespondJSON(w, http.StatusOK, cancelled)
}
