package cancel_request

// CancelRequestRequest HTTP request model
type CancelRequestRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}
