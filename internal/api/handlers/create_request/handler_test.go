package create_request

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/api/middleware"
	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
	"github.com/m04kA/SMC-RequestSync/pkg/logger"
)

const validBody = `{
	"categoryId": "cat-1",
	"title": "Tile the bathroom",
	"description": "About 6 square meters",
	"serviceStartDate": "2026-05-12T09:00:00Z",
	"serviceEndDate": "2026-05-12T17:00:00Z",
	"urgency": "immediate"
}`

type fakeService struct {
	result *domain.ServiceRequest
	err    error

	draft *domain.RequestDraft
	calls int
}

func (f *fakeService) Create(_ context.Context, draft *domain.RequestDraft) (*domain.ServiceRequest, error) {
	f.calls++
	f.draft = draft
	return f.result, f.err
}

func serve(svc RequestService, role domain.Role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(body))
	req = req.WithContext(middleware.WithSession(req.Context(), "S", role))

	rec := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &fakeService{result: &domain.ServiceRequest{ID: "N", Status: domain.StatusOpen}}

	rec := serve(svc, domain.RoleSeeker, validBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.ServiceRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "N", got.ID)

	require.NotNil(t, svc.draft)
	assert.Equal(t, "cat-1", svc.draft.CategoryID)
	assert.Equal(t, domain.UrgencyImmediate, svc.draft.Urgency)
	assert.Equal(t, 9, svc.draft.ServiceStartDate.Hour())
	assert.Equal(t, 17, svc.draft.ServiceEndDate.Hour())
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "validation", err: fmt.Errorf("%w: title is required", requestservice.ErrValidation), status: http.StatusBadRequest, message: msgValidationFailed},
		{name: "auth", err: fmt.Errorf("%w: status 401", requestservice.ErrAuth), status: http.StatusUnauthorized, message: msgUnauthorized},
		{name: "transport", err: fmt.Errorf("%w: dial tcp: refused", requestservice.ErrTransport), status: http.StatusBadGateway, message: msgBackendUnavailable},
		{name: "unexpected", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, message: "внутренняя ошибка сервера"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, domain.RoleSeeker, validBody)
			require.Equal(t, tt.status, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestHandle_RejectsBeforeService(t *testing.T) {
	tests := []struct {
		name   string
		role   domain.Role
		body   string
		status int
	}{
		{name: "provider role", role: domain.RoleProvider, body: validBody, status: http.StatusForbidden},
		{name: "malformed body", role: domain.RoleSeeker, body: `{"title":`, status: http.StatusBadRequest},
		{name: "missing dates", role: domain.RoleSeeker, body: `{"categoryId":"cat-1","title":"x"}`, status: http.StatusBadRequest},
		{name: "unknown urgency", role: domain.RoleSeeker, body: strings.Replace(validBody, `"immediate"`, `"asap"`, 1), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := serve(svc, tt.role, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Zero(t, svc.calls)
		})
	}
}
