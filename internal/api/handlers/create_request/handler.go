package create_request

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/api/middleware"
	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDates       = "некорректные даты или срочность, даты ожидаются в формате RFC3339"
	msgSeekerOnly         = "создавать заявки может только заказчик"
	msgValidationFailed   = "заявка не прошла проверку"
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

// Handle POST /api/v1/requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	if role, _ := middleware.GetRole(r.Context()); role != domain.RoleSeeker {
		h.logger.Warn("POST /requests - Role %s cannot create requests: user_id=%s", role, userID)
		handlers.RespondForbidden(w, msgSeekerOnly)
		return
	}

	var req CreateRequestRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /requests - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		h.logger.Warn("POST /requests - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	created, err := h.service.Create(r.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, requestservice.ErrValidation):
			h.logger.Warn("POST /requests - Validation failed: user_id=%s, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgValidationFailed)

		case errors.Is(err, requestservice.ErrAuth):
			h.logger.Warn("POST /requests - Not authorized: user_id=%s", userID)
			handlers.RespondUnauthorized(w, msgUnauthorized)

		case errors.Is(err, requestservice.ErrTransport), errors.Is(err, requestservice.ErrInvalidResponse):
			h.logger.Error("POST /requests - Backend unavailable: user_id=%s, error=%v", userID, err)
			handlers.RespondBadGateway(w, msgBackendUnavailable)

		default:
			h.logger.Error("POST /requests - Failed to create request: user_id=%s, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /requests - Request created successfully: request_id=%s, user_id=%s", created.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, created)
}
