package notifications

import (
	"sync"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Inbox ограниченная FIFO-очередь уведомлений для UI.
// При переполнении вытесняется самое старое уведомление.
type Inbox struct {
	mu       sync.Mutex
	items    []domain.Notification
	capacity int
	log      Logger
}

// NewInbox создает очередь заданной емкости (не меньше 1)
func NewInbox(capacity int, log Logger) *Inbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Inbox{
		items:    make([]domain.Notification, 0, capacity),
		capacity: capacity,
		log:      log,
	}
}

// Publish добавляет уведомление, не блокируя вызывающего
func (i *Inbox) Publish(n domain.Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.items) == i.capacity {
		evicted := i.items[0]
		i.items = append(i.items[:0], i.items[1:]...)
		i.log.Warn("Inbox: full, evicted %s notification id=%s", evicted.Kind, evicted.ID)
	}
	i.items = append(i.items, n)
}

// Drain возвращает накопленные уведомления в порядке поступления и очищает очередь
func (i *Inbox) Drain() []domain.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]domain.Notification, len(i.items))
	copy(out, i.items)
	i.items = i.items[:0]
	return out
}

// Len возвращает количество непрочитанных уведомлений
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.items)
}
