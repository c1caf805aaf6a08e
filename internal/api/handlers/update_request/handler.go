package update_request

import (
	"errors"
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
	msgInvalidFields      = "некорректные даты или срочность, даты ожидаются в формате RFC3339"
	msgValidationFailed   = "изменения не прошли проверку"
	msgNotFound           = "заявка не найдена"
	msgNotOwner           = "заявка принадлежит другому пользователю"
	msgNotEditable        = "заявку в текущем статусе нельзя изменить"
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

// Handle PATCH /api/v1/requests/{requestId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(mux.Vars(r)["requestId"])
	if requestID == "" {
		h.logger.Warn("PATCH /requests/{id} - Empty request ID")
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	var req UpdateRequestRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /requests/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		h.logger.Warn("PATCH /requests/{id} - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFields)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, requestID, patch)
	if err != nil {
		switch {
		case errors.Is(err, requestservice.ErrValidation):
			h.logger.Warn("PATCH /requests/{id} - Validation failed: request_id=%s, error=%v", requestID, err)
			handlers.RespondBadRequest(w, msgValidationFailed)

		case errors.Is(err, requests.ErrNotOwner):
			h.logger.Warn("PATCH /requests/{id} - Not owner: request_id=%s, user_id=%s", requestID, userID)
			handlers.RespondForbidden(w, msgNotOwner)

		case errors.Is(err, requests.ErrNotEditable):
			h.logger.Warn("PATCH /requests/{id} - Not editable: request_id=%s", requestID)
			handlers.RespondConflict(w, msgNotEditable)

		case errors.Is(err, requestservice.ErrConflict):
			h.logger.Warn("PATCH /requests/{id} - Request no longer available: request_id=%s", requestID)
			handlers.RespondConflict(w, requests.ConflictMessage)

		case errors.Is(err, requestservice.ErrNotFound):
			h.logger.Warn("PATCH /requests/{id} - Request not found: request_id=%s", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, requestservice.ErrAuth):
			h.logger.Warn("PATCH /requests/{id} - Not authorized: request_id=%s, user_id=%s", requestID, userID)
			handlers.RespondUnauthorized(w, msgUnauthorized)

		case errors.Is(err, requestservice.ErrTransport), errors.Is(err, requestservice.ErrInvalidResponse):
			h.logger.Error("PATCH /requests/{id} - Backend unavailable: request_id=%s, error=%v", requestID, err)
			handlers.RespondBadGateway(w, msgBackendUnavailable)

		default:
			h.logger.Error("PATCH /requests/{id} - Failed to update request: request_id=%s, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /requests/{id} - Request updated successfully: request_id=%s, user_id=%s", requestID, userID)
	handlers.RespondJSON(w, http.StatusOK, updated)
}
