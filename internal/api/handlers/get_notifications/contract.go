package get_notifications

import (
	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

type Inbox interface {
	Drain() []domain.Notification
}
