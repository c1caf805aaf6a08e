package list_my_requests

import (
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// ToFilters формирует фильтры из query параметров
func ToFilters(statusStr, pageStr, limitStr string) (domain.ListFilters, error) {
	var filters domain.ListFilters

	if statusStr != "" {
		status, ok := domain.ParseStatus(statusStr)
		if !ok {
			return filters, fmt.Errorf("unknown status %q", statusStr)
		}
		filters.Status = &status
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
