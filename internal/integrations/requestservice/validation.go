package requestservice

import (
	"fmt"
	"math"
	"strings"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// Локальные проверки отсекают только заведомо бесполезные запросы.
// Полная валидация остается на стороне backend.

// validateID проверяет, что идентификатор заявки указан
func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: request id is required", ErrValidation)
	}
	return nil
}

// validateDraft проверяет обязательные поля черновика заявки
func validateDraft(d *domain.RequestDraft) error {
	if d == nil {
		return fmt.Errorf("%w: draft is required", ErrValidation)
	}

	if strings.TrimSpace(d.CategoryID) == "" {
		return fmt.Errorf("%w: categoryId is required", ErrValidation)
	}

	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(d.Title) > domain.MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrValidation, domain.MaxTitleLength)
	}

	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(d.Description) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, domain.MaxDescriptionLength)
	}

	if d.ServiceStartDate.IsZero() || d.ServiceEndDate.IsZero() {
		return fmt.Errorf("%w: serviceStartDate and serviceEndDate are required", ErrValidation)
	}
	if d.ServiceEndDate.Before(d.ServiceStartDate) {
		return fmt.Errorf("%w: serviceEndDate is before serviceStartDate", ErrValidation)
	}

	// Нужна либо геопозиция, либо ссылка на сохраненный адрес
	hasAddressRef := d.AddressID != nil && strings.TrimSpace(*d.AddressID) != ""
	if d.Location == nil && !hasAddressRef {
		return fmt.Errorf("%w: location or addressId is required", ErrValidation)
	}

	if d.Urgency != "" {
		if _, ok := domain.ParseUrgency(string(d.Urgency)); !ok {
			return fmt.Errorf("%w: unknown urgency %q", ErrValidation, d.Urgency)
		}
	}

	return validateBudget(d.Budget)
}

// validatePatch проверяет частичное обновление заявки
func validatePatch(p *domain.RequestPatch) error {
	if p == nil || p.IsEmpty() {
		return fmt.Errorf("%w: patch has no fields", ErrValidation)
	}

	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	if p.ServiceStartDate != nil && p.ServiceEndDate != nil && p.ServiceEndDate.Before(*p.ServiceStartDate) {
		return fmt.Errorf("%w: serviceEndDate is before serviceStartDate", ErrValidation)
	}

	if p.Urgency != nil {
		if _, ok := domain.ParseUrgency(string(*p.Urgency)); !ok {
			return fmt.Errorf("%w: unknown urgency %q", ErrValidation, *p.Urgency)
		}
	}

	return validateBudget(p.Budget)
}

// validateQuote проверяет котировку до сетевого вызова: цена должна быть положительной
func validateQuote(q domain.AcceptQuote) error {
	if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) || q.Price <= 0 {
		return fmt.Errorf("%w: price must be a positive number", ErrValidation)
	}
	if q.Message != nil && len(*q.Message) > domain.MaxQuoteMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrValidation, domain.MaxQuoteMessageLength)
	}
	return nil
}

// validateReason проверяет причину отмены
func validateReason(reason *string) error {
	if reason != nil && len(*reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrValidation, domain.MaxCancellationReasonLength)
	}
	return nil
}

func validateBudget(b *domain.Budget) error {
	if b == nil {
		return nil
	}
	if b.Min < 0 || b.Max < 0 {
		return fmt.Errorf("%w: budget cannot be negative", ErrValidation)
	}
	if b.Min > b.Max {
		return fmt.Errorf("%w: budget min exceeds max", ErrValidation)
	}
	return nil
}
