package domain

import "errors"

var (
	ErrMissingID          = errors.New("domain: service request has no id")
	ErrAcceptanceMismatch = errors.New("domain: acceptedProviderId must be set iff status is accepted or completed")
	ErrOrderLinkMismatch  = errors.New("domain: orderId must be set iff acceptedProviderId is set")
	ErrInvalidBudget      = errors.New("domain: budget min exceeds max")
)
