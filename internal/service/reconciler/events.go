package reconciler

import (
	"encoding/json"
	"fmt"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// Push-события backend
const (
	EventRequestUpdated     = "service-request-updated"
	EventNewMatch           = "new-service-request-match"
	EventRequestUnavailable = "service-request-unavailable"
	EventRequestCreated     = "service-request-created"
	EventRequestExpired     = "service-request-expired"
	EventOrderCreated       = "order-created-from-request"
)

const (
	userTopicPrefix     = "user:"
	providerTopicPrefix = "provider:"
)

type requestPayload struct {
	Request *domain.ServiceRequest `json:"request"`
}

type requestIDPayload struct {
	RequestID string `json:"requestId"`
}

type orderCreatedPayload struct {
	OrderID   string `json:"orderId"`
	RequestID string `json:"requestId"`
}

// decodeRequest достает полную запись заявки и проверяет ее инварианты
func decodeRequest(raw json.RawMessage) (*domain.ServiceRequest, error) {
	var p requestPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	if p.Request == nil {
		return nil, fmt.Errorf("%w: request is missing", errMalformedPayload)
	}
	if err := p.Request.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	return p.Request, nil
}

func decodeRequestID(raw json.RawMessage) (string, error) {
	var p requestIDPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	if p.RequestID == "" {
		return "", fmt.Errorf("%w: requestId is missing", errMalformedPayload)
	}
	return p.RequestID, nil
}

func decodeOrderCreated(raw json.RawMessage) (orderCreatedPayload, error) {
	var p orderCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	if p.RequestID == "" || p.OrderID == "" {
		return p, fmt.Errorf("%w: requestId and orderId are required", errMalformedPayload)
	}
	return p, nil
}
