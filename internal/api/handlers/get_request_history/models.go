package get_request_history

import (
	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// HistoryResponse HTTP response model
type HistoryResponse struct {
	RequestID string                 `json:"requestId"`
	Events    []*domain.JournalEntry `json:"events"`
}
