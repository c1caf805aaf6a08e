package list_available_requests

import (
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// ToFilters формирует фильтры из query параметров
func ToFilters(categoryID, urgencyStr, pageStr, limitStr string) (domain.ListFilters, error) {
	var filters domain.ListFilters

	if categoryID != "" {
		filters.CategoryID = &categoryID
	}

	if urgencyStr != "" {
		urgency, ok := domain.ParseUrgency(urgencyStr)
		if !ok {
			return filters, fmt.Errorf("unknown urgency %q", urgencyStr)
		}
		filters.Urgency = &urgency
	}

	if pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return filters, fmt.Errorf("invalid page value %q", pageStr)
		}
		filters.Page = page
	}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return filters, fmt.Errorf("invalid limit value %q", limitStr)
		}
		filters.Limit = limit
	}

	return filters, nil
}
