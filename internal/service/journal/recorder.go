package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

const (
	outcomeWritten = "written"
	outcomeDropped = "dropped"
	outcomeFailed  = "failed"

	flushTimeout = 5 * time.Second
)

// Recorder асинхронно пишет события в журнал через буферизованный канал.
// Record никогда не блокирует: при заполненном буфере событие отбрасывается.
type Recorder struct {
	repo    Repository
	entries chan domain.JournalEntry
	metrics MetricsRecorder
	log     Logger
}

// NewRecorder создает новый экземпляр recorder
func NewRecorder(repo Repository, bufferSize int, metrics MetricsRecorder, log Logger) *Recorder {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Recorder{
		repo:    repo,
		entries: make(chan domain.JournalEntry, bufferSize),
		metrics: metrics,
		log:     log,
	}
}

// Record ставит событие в очередь на запись
func (r *Recorder) Record(entry domain.JournalEntry) {
	select {
	case r.entries <- entry:
	default:
		r.log.Warn("Journal: buffer full, dropped %s event id=%s", entry.Event, entry.ID)
		r.observe(outcomeDropped)
	}
}

// Run пишет события из очереди, пока ctx не завершен, затем дописывает остаток
func (r *Recorder) Run(ctx context.Context) {
	r.log.Info("Journal: recorder started")

	for {
		select {
		case entry := <-r.entries:
			r.write(ctx, entry)
		case <-ctx.Done():
			r.flush()
			r.log.Info("Journal: recorder stopped")
			return
		}
	}
}

// History возвращает события заявки, новые первыми
func (r *Recorder) History(ctx context.Context, requestID string, limit int) ([]*domain.JournalEntry, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}

	entries, err := r.repo.ListByRequest(ctx, requestID, limit)
	if err != nil {
		r.log.Error("History: failed to list events for request_id=%s: %v", requestID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return entries, nil
}

func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for {
		select {
		case entry := <-r.entries:
			r.write(ctx, entry)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, entry domain.JournalEntry) {
	if err := r.repo.Append(ctx, &entry); err != nil {
		r.log.Error("Journal: failed to append %s event id=%s: %v", entry.Event, entry.ID, err)
		r.observe(outcomeFailed)
		return
	}
	r.observe(outcomeWritten)
}

func (r *Recorder) observe(outcome string) {
	if r.metrics != nil {
		r.metrics.IncJournalWrite(outcome)
	}
}

// Noop используется, когда журнал выключен
type Noop struct{}

func (Noop) Record(domain.JournalEntry) {}

func (Noop) History(context.Context, string, int) ([]*domain.JournalEntry, error) {
	return nil, ErrDisabled
}
