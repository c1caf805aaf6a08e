package requestservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// Client клиент для работы с ресурсом service-requests backend
// Без кэширования и повторов: каждая ошибка классифицируется и возвращается вызывающему
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    MetricsRecorder
	log        Logger

	mu    sync.RWMutex
	token string
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, metrics MetricsRecorder, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		log:     log,
	}
}

// SetToken устанавливает bearer-токен текущей сессии (пустая строка сбрасывает его)
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Create создает заявку от имени искателя
func (c *Client) Create(ctx context.Context, draft *domain.RequestDraft) (*domain.ServiceRequest, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	var created domain.ServiceRequest
	if err := c.do(ctx, opCreate, http.MethodPost, "/service-requests", nil, draft, &created); err != nil {
		return nil, err
	}

	if err := c.checkRecord(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListMine получает заявки текущего искателя
// Фильтры: status, page, limit
func (c *Client) ListMine(ctx context.Context, filters domain.ListFilters) (*domain.RequestPage, error) {
	query := paginationQuery(filters)
	if filters.Status != nil {
		query.Set("status", string(*filters.Status))
	}

	return c.list(ctx, opListMine, "/service-requests/my-requests", query)
}

// ListAvailable получает пул заявок, подобранных для текущего исполнителя
// Фильтры: categoryId, urgency, page, limit
func (c *Client) ListAvailable(ctx context.Context, filters domain.ListFilters) (*domain.RequestPage, error) {
	query := paginationQuery(filters)
	if filters.CategoryID != nil {
		query.Set("categoryId", *filters.CategoryID)
	}
	if filters.Urgency != nil {
		query.Set("urgency", string(*filters.Urgency))
	}

	return c.list(ctx, opListAvailable, "/service-requests/available", query)
}

// GetByID получает заявку по идентификатору
func (c *Client) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var req domain.ServiceRequest
	if err := c.do(ctx, opGetByID, http.MethodGet, "/service-requests/"+url.PathEscape(id), nil, nil, &req); err != nil {
		return nil, err
	}

	if err := c.checkRecord(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Accept принимает заявку с котировкой
// Неположительная цена отклоняется до сетевого вызова.
// ErrConflict означает, что заявку уже принял другой исполнитель.
func (c *Client) Accept(ctx context.Context, id string, quote domain.AcceptQuote) (*domain.AcceptResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := validateQuote(quote); err != nil {
		return nil, err
	}

	var result domain.AcceptResult
	path := "/service-requests/" + url.PathEscape(id) + "/accept"
	if err := c.do(ctx, opAccept, http.MethodPost, path, nil, quote, &result); err != nil {
		return nil, err
	}

	if result.Request == nil {
		c.log.Error("Accept: response for request id=%s has no request", id)
		return nil, fmt.Errorf("%w: accept response has no request", ErrInvalidResponse)
	}

	// Нормализуем: orderId может прийти только в одном из мест
	if result.OrderID == "" && result.Request.OrderID != nil {
		result.OrderID = *result.Request.OrderID
	}
	if result.Request.OrderID == nil && result.OrderID != "" {
		orderID := result.OrderID
		result.Request.OrderID = &orderID
	}

	if err := c.checkRecord(result.Request); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update частично обновляет заявку (только владелец, пока статус open/matched)
func (c *Client) Update(ctx context.Context, id string, patch *domain.RequestPatch) (*domain.ServiceRequest, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var updated domain.ServiceRequest
	if err := c.do(ctx, opUpdate, http.MethodPatch, "/service-requests/"+url.PathEscape(id), nil, patch, &updated); err != nil {
		return nil, err
	}

	if err := c.checkRecord(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Cancel отменяет заявку (только владелец, пока статус open/matched)
func (c *Client) Cancel(ctx context.Context, id string, reason *string) (*domain.ServiceRequest, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}

	var cancelled domain.ServiceRequest
	path := "/service-requests/" + url.PathEscape(id) + "/cancel"
	if err := c.do(ctx, opCancel, http.MethodPost, path, nil, cancelRequest{Reason: reason}, &cancelled); err != nil {
		return nil, err
	}

	if err := c.checkRecord(&cancelled); err != nil {
		return nil, err
	}
	return &cancelled, nil
}

func (c *Client) list(ctx context.Context, op, path string, query url.Values) (*domain.RequestPage, error) {
	var page domain.RequestPage
	if err := c.do(ctx, op, http.MethodGet, path, query, nil, &page); err != nil {
		return nil, err
	}

	if page.Requests == nil {
		page.Requests = []*domain.ServiceRequest{}
	}
	for _, r := range page.Requests {
		if r == nil {
			return nil, fmt.Errorf("%w: %s returned a null request", ErrInvalidResponse, op)
		}
		if err := c.checkRecord(r); err != nil {
			return nil, err
		}
	}

	return &page, nil
}

// checkRecord отбрасывает записи, нарушающие инварианты жизненного цикла
func (c *Client) checkRecord(r *domain.ServiceRequest) error {
	if err := r.Validate(); err != nil {
		c.log.Error("Backend returned inconsistent request id=%s: %v", r.ID, err)
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// do выполняет запрос и записывает метрики по исходу
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	start := time.Now()
	err := c.doRequest(ctx, op, method, path, query, body, out)

	if c.metrics != nil {
		c.metrics.ObserveGatewayRequest(op, outcome(err), time.Since(start))
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %s - failed to encode body: %v", ErrValidation, op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: %s - failed to create request: %v", ErrTransport, op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Info("%s: %s %s request_id=%s", op, method, path, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("%s: request failed request_id=%s: %v", op, requestID, err)
		return fmt.Errorf("%w: %s - failed to execute request: %v", ErrTransport, op, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return c.statusError(op, requestID, resp, ErrValidation)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return c.statusError(op, requestID, resp, ErrAuth)
	case resp.StatusCode == http.StatusNotFound:
		return c.statusError(op, requestID, resp, ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return c.statusError(op, requestID, resp, ErrConflict)
	case resp.StatusCode >= 500:
		return c.statusError(op, requestID, resp, ErrTransport)
	default:
		return c.statusError(op, requestID, resp, ErrInvalidResponse)
	}

	if out == nil {
		return nil
	}

	// Парсим ответ
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Error("%s: failed to decode response request_id=%s: %v", op, requestID, err)
		return fmt.Errorf("%w: %s - failed to decode response: %v", ErrInvalidResponse, op, err)
	}

	return nil
}

// statusError читает тело ошибки и оборачивает его в классифицированную ошибку
func (c *Client) statusError(op, requestID string, resp *http.Response, kind error) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	message := string(bytes.TrimSpace(raw))
	var errResp ErrorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.text() != "" {
		message = errResp.text()
	}

	if errors.Is(kind, ErrTransport) || errors.Is(kind, ErrInvalidResponse) {
		c.log.Error("%s: unexpected status %d request_id=%s: %s", op, resp.StatusCode, requestID, message)
	} else {
		c.log.Warn("%s: status %d request_id=%s: %s", op, resp.StatusCode, requestID, message)
	}

	return fmt.Errorf("%w: status %d: %s", kind, resp.StatusCode, message)
}

func paginationQuery(filters domain.ListFilters) url.Values {
	query := url.Values{}
	if filters.Page > 0 {
		query.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.Limit > 0 {
		query.Set("limit", strconv.Itoa(filters.Limit))
	}
	return query
}

// outcome классифицирует результат вызова для метрик
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "invalid_response"
	}
}
