package accept_request

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/api/middleware"
	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
	"github.com/m04kA/SMC-RequestSync/internal/service/requests"
)

const (
	msgInvalidRequestID   = "некорректный ID заявки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgProviderOnly       = "принимать заявки может только исполнитель"
	msgInvalidQuote       = "цена должна быть положительной"
	msgNotAcceptable      = "заявку нельзя принять: она неактивна, истекла или вы не в числе подобранных исполнителей"
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

// Handle POST /api/v1/requests/{requestId}/accept
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(mux.Vars(r)["requestId"])
	if requestID == "" {
		h.logger.Warn("POST /requests/{id}/accept - Empty request ID")
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	providerID, _ := middleware.GetUserID(r.Context())
	if role, _ := middleware.GetRole(r.Context()); role != domain.RoleProvider {
		h.logger.Warn("POST /requests/{id}/accept - Role %s cannot accept: user_id=%s", role, providerID)
		handlers.RespondForbidden(w, msgProviderOnly)
		return
	}

	var req AcceptRequestRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /requests/{id}/accept - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Accept(r.Context(), providerID, requestID, req.ToQuote())
	if err != nil {
		switch {
		case errors.Is(err, requestservice.ErrValidation):
			h.logger.Warn("POST /requests/{id}/accept - Invalid quote: request_id=%s, error=%v", requestID, err)
			handlers.RespondBadRequest(w, msgInvalidQuote)

		case errors.Is(err, requests.ErrNotAcceptable):
			h.logger.Warn("POST /requests/{id}/accept - Not acceptable: request_id=%s, provider_id=%s", requestID, providerID)
			handlers.RespondConflict(w, msgNotAcceptable)

		case errors.Is(err, requestservice.ErrConflict):
			h.logger.Warn("POST /requests/{id}/accept - Lost race: request_id=%s, provider_id=%s", requestID, providerID)
			handlers.RespondConflict(w, requests.ConflictMessage)

		case errors.Is(err, requestservice.ErrNotFound):
			h.logger.Warn("POST /requests/{id}/accept - Request not found: request_id=%s", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, requestservice.ErrAuth):
			h.logger.Warn("POST /requests/{id}/accept - Not authorized: request_id=%s, provider_id=%s", requestID, providerID)
			handlers.RespondUnauthorized(w, msgUnauthorized)

		case errors.Is(err, requestservice.ErrTransport), errors.Is(err, requestservice.ErrInvalidResponse):
			h.logger.Error("POST /requests/{id}/accept - Backend unavailable: request_id=%s, error=%v", requestID, err)
			handlers.RespondBadGateway(w, msgBackendUnavailable)

		default:
			h.logger.Error("POST /requests/{id}/accept - Failed to accept request: request_id=%s, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /requests/{id}/accept - Request accepted successfully: request_id=%s, order_id=%s, provider_id=%s",
		requestID, result.OrderID, providerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
