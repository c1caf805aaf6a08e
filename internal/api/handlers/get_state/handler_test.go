package get_state

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RequestSync/internal/store"
	"github.com/m04kA/SMC-RequestSync/pkg/logger"
)

func get(t *testing.T, h *Handler, url string) (int, StateResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, url, nil))

	var resp StateResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestHandle_Snapshot(t *testing.T) {
	st := store.New()
	st.Dispatch(func(s store.State) store.State { return store.SetError(s, "boom") })

	code, resp := get(t, NewHandler(st, logger.NewNop()), "/api/v1/state")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(1), resp.Version)
	assert.Equal(t, "boom", resp.State.Error)
}

func TestHandle_LongPollReturnsOnChange(t *testing.T) {
	st := store.New()
	h := NewHandler(st, logger.NewNop())

	go func() {
		time.Sleep(50 * time.Millisecond)
		st.Dispatch(func(s store.State) store.State { return store.SetError(s, "later") })
	}()

	code, resp := get(t, h, "/api/v1/state?after=0&wait=5")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(1), resp.Version)
	assert.Equal(t, "later", resp.State.Error)
}

func TestHandle_InvalidParams(t *testing.T) {
	h := NewHandler(store.New(), logger.NewNop())

	for _, url := range []string{"/api/v1/state?after=x", "/api/v1/state?after=1&wait=-1"} {
		code, _ := get(t, h, url)
		assert.Equal(t, http.StatusBadRequest, code, url)
	}
}
