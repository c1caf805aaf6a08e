package get_state

import (
	"context"
	"net/http"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
)

const msgInvalidParams = "некорректные параметры запроса"

type Handler struct {
	source StateSource
	logger Logger
}

func NewHandler(source StateSource, logger Logger) *Handler {
	return &Handler{
		source: source,
		logger: logger,
	}
}

// Handle GET /api/v1/state
// Query params: after (версия), wait (секунды long-poll, только вместе с after)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	params, err := parsePollParams(r.URL.Query().Get("after"), r.URL.Query().Get("wait"))
	if err != nil {
		h.logger.Warn("GET /state - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	if params.wait == 0 {
		state, version := h.source.SnapshotWithVersion()
		handlers.RespondJSON(w, http.StatusOK, StateResponse{Version: version, State: state})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), params.wait)
	defer cancel()

	state, version := h.source.WaitNewer(ctx, params.after)
	handlers.RespondJSON(w, http.StatusOK, StateResponse{Version: version, State: state})
}
