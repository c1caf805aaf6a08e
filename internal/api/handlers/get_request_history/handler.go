package get_request_history

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/service/journal"
)

const (
	msgInvalidRequestID = "некорректный ID заявки"
	msgInvalidLimit     = "некорректный limit"
	msgJournalDisabled  = "журнал событий выключен"
)

type Handler struct {
	service HistoryService
	logger  Logger
}

func NewHandler(service HistoryService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/requests/{requestId}/history
// Query params: limit (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(mux.Vars(r)["requestId"])
	if requestID == "" {
		h.logger.Warn("GET /requests/{id}/history - Empty request ID")
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.logger.Warn("GET /requests/{id}/history - Invalid limit: %s", limitStr)
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
		limit = parsed
	}

	events, err := h.service.History(r.Context(), requestID, limit)
	if err != nil {
		switch {
		case errors.Is(err, journal.ErrDisabled):
			h.logger.Warn("GET /requests/{id}/history - Journal disabled")
			handlers.RespondError(w, http.StatusServiceUnavailable, msgJournalDisabled)

		case errors.Is(err, journal.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestID)

		default:
			h.logger.Error("GET /requests/{id}/history - Failed to get history: request_id=%s, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if events == nil {
		events = []*domain.JournalEntry{}
	}

	h.logger.Info("GET /requests/{id}/history - History retrieved successfully: request_id=%s, count=%d", requestID, len(events))
	handlers.RespondJSON(w, http.StatusOK, HistoryResponse{RequestID: requestID, Events: events})
}
