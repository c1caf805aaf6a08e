package accept_request

import (
	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// AcceptRequestRequest HTTP request model
type AcceptRequestRequest struct {
	Price                   float64 `json:"price"`
	Message                 *string `json:"message,omitempty"`
	EstimatedCompletionTime *string `json:"estimatedCompletionTime,omitempty"`
}

// ToQuote конвертирует HTTP запрос в предложение исполнителя
func (r *AcceptRequestRequest) ToQuote() domain.AcceptQuote {
	return domain.AcceptQuote{
		Price:                   r.Price,
		Message:                 r.Message,
		EstimatedCompletionTime: r.EstimatedCompletionTime,
	}
}
