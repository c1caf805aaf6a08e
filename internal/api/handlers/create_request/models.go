package create_request

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// CreateRequestRequest HTTP request model
type CreateRequestRequest struct {
	CategoryID       string           `json:"categoryId"`
	SubCategoryID    *string          `json:"subCategoryId,omitempty"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Address          string           `json:"address,omitempty"`
	AddressID        *string          `json:"addressId,omitempty"`
	Location         *domain.Location `json:"location,omitempty"`
	ServiceStartDate string           `json:"serviceStartDate"` // RFC3339
	ServiceEndDate   string           `json:"serviceEndDate"`   // RFC3339
	Urgency          string           `json:"urgency,omitempty"`
	Budget           *domain.Budget   `json:"budget,omitempty"`
}

// ToDraft конвертирует HTTP запрос в черновик заявки (с парсингом дат)
func (r *CreateRequestRequest) ToDraft() (*domain.RequestDraft, error) {
	start, err := time.Parse(time.RFC3339, r.ServiceStartDate)
	if err != nil {
		return nil, fmt.Errorf("serviceStartDate: %w", err)
	}
	end, err := time.Parse(time.RFC3339, r.ServiceEndDate)
	if err != nil {
		return nil, fmt.Errorf("serviceEndDate: %w", err)
	}

	draft := &domain.RequestDraft{
		CategoryID:       r.CategoryID,
		SubCategoryID:    r.SubCategoryID,
		Title:            r.Title,
		Description:      r.Description,
		Address:          r.Address,
		AddressID:        r.AddressID,
		Location:         r.Location,
		ServiceStartDate: start,
		ServiceEndDate:   end,
		Budget:           r.Budget,
	}

	if r.Urgency != "" {
		urgency, ok := domain.ParseUrgency(r.Urgency)
		if !ok {
			return nil, fmt.Errorf("unknown urgency %q", r.Urgency)
		}
		draft.Urgency = urgency
	}

	return draft, nil
}
