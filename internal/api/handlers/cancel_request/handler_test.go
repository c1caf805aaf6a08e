package cancel_request

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/api/middleware"
	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
	"github.com/m04kA/SMC-RequestSync/internal/service/requests"
	"github.com/m04kA/SMC-RequestSync/pkg/logger"
)

type fakeService struct {
	result *domain.ServiceRequest
	err    error

	userID    string
	requestID string
	reason    *string
	calls     int
}

func (f *fakeService) Cancel(_ context.Context, userID, id string, reason *string) (*domain.ServiceRequest, error) {
	f.calls++
	f.userID, f.requestID, f.reason = userID, id, reason
	return f.result, f.err
}

func serve(svc RequestService, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/requests/{requestId}/cancel", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPost)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/requests/R/cancel", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/requests/R/cancel", strings.NewReader(body))
	}
	req = req.WithContext(middleware.WithSession(req.Context(), "S", domain.RoleSeeker))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	t.Run("with reason", func(t *testing.T) {
		svc := &fakeService{result: &domain.ServiceRequest{ID: "R", Status: domain.StatusCancelled}}

		rec := serve(svc, `{"cancellationReason":"changed plans"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.ServiceRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, domain.StatusCancelled, got.Status)

		assert.Equal(t, "S", svc.userID)
		assert.Equal(t, "R", svc.requestID)
		require.NotNil(t, svc.reason)
		assert.Equal(t, "changed plans", *svc.reason)
	})

	t.Run("without body", func(t *testing.T) {
		svc := &fakeService{result: &domain.ServiceRequest{ID: "R", Status: domain.StatusCancelled}}

		rec := serve(svc, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, svc.calls)
		assert.Nil(t, svc.reason)
	})
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "validation", err: fmt.Errorf("%w: reason too long", requestservice.ErrValidation), status: http.StatusBadRequest, message: msgValidationFailed},
		{name: "not owner", err: fmt.Errorf("%w: owner=S2", requests.ErrNotOwner), status: http.StatusForbidden, message: msgNotOwner},
		{name: "not cancellable", err: fmt.Errorf("%w: status=accepted", requests.ErrNotCancellable), status: http.StatusConflict, message: msgNotCancellable},
		{name: "conflict", err: fmt.Errorf("%w: status 409", requestservice.ErrConflict), status: http.StatusConflict, message: requests.ConflictMessage},
		{name: "not found", err: fmt.Errorf("%w: status 404", requestservice.ErrNotFound), status: http.StatusNotFound, message: msgNotFound},
		{name: "auth", err: fmt.Errorf("%w: status 401", requestservice.ErrAuth), status: http.StatusUnauthorized, message: msgUnauthorized},
		{name: "transport", err: fmt.Errorf("%w: dial tcp: refused", requestservice.ErrTransport), status: http.StatusBadGateway, message: msgBackendUnavailable},
		{name: "unexpected", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, message: "внутренняя ошибка сервера"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, "")
			require.Equal(t, tt.status, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestHandle_MalformedBody(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, `{"cancellationReason":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}
