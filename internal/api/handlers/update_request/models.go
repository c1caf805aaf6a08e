package update_request

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/pkg/ptr"
)

// UpdateRequestRequest HTTP request model, отсутствующие поля не меняются
type UpdateRequestRequest struct {
	SubCategoryID    *string          `json:"subCategoryId,omitempty"`
	Title            *string          `json:"title,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Address          *string          `json:"address,omitempty"`
	Location         *domain.Location `json:"location,omitempty"`
	ServiceStartDate *string          `json:"serviceStartDate,omitempty"` // RFC3339
	ServiceEndDate   *string          `json:"serviceEndDate,omitempty"`   // RFC3339
	Urgency          *string          `json:"urgency,omitempty"`
	Budget           *domain.Budget   `json:"budget,omitempty"`
}

// ToPatch конвертирует HTTP запрос в изменение заявки
func (r *UpdateRequestRequest) ToPatch() (*domain.RequestPatch, error) {
	patch := &domain.RequestPatch{
		SubCategoryID: r.SubCategoryID,
		Title:         r.Title,
		Description:   r.Description,
		Address:       r.Address,
		Location:      r.Location,
		Budget:        r.Budget,
	}

	if r.ServiceStartDate != nil {
		start, err := time.Parse(time.RFC3339, *r.ServiceStartDate)
		if err != nil {
			return nil, fmt.Errorf("serviceStartDate: %w", err)
		}
		patch.ServiceStartDate = ptr.Ptr(start)
	}

	if r.ServiceEndDate != nil {
		end, err := time.Parse(time.RFC3339, *r.ServiceEndDate)
		if err != nil {
			return nil, fmt.Errorf("serviceEndDate: %w", err)
		}
		patch.ServiceEndDate = ptr.Ptr(end)
	}

	if r.Urgency != nil {
		urgency, ok := domain.ParseUrgency(*r.Urgency)
		if !ok {
			return nil, fmt.Errorf("unknown urgency %q", *r.Urgency)
		}
		patch.Urgency = ptr.Ptr(urgency)
	}

	return patch, nil
}
