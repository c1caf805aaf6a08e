package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/pkg/psqlbuilder"
)

const (
	tableName = "request_events"

	// DefaultListLimit ограничение выборки истории по умолчанию
	DefaultListLimit = 50
)

// Repository репозиторий журнала realtime-событий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append сохраняет одно событие
func (r *Repository) Append(ctx context.Context, entry *domain.JournalEntry) error {
	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"id",
			"user_id",
			"role",
			"event",
			"request_id",
			"outcome",
			"payload",
			"received_at",
		).
		Values(
			entry.ID,
			entry.UserID,
			string(entry.Role),
			entry.Event,
			nullString(entry.RequestID),
			string(entry.Outcome),
			nullPayload(entry.Payload),
			entry.ReceivedAt,
		).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListByRequest получает события заявки, новые первыми
func (r *Repository) ListByRequest(ctx context.Context, requestID string, limit int) ([]*domain.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"user_id",
		"role",
		"event",
		"request_id",
		"outcome",
		"payload",
		"received_at",
	).
		From(tableName).
		Where(squirrel.Eq{"request_id": requestID}).
		OrderBy("received_at DESC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByRequest - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRequest - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.JournalEntry, 0)
	for rows.Next() {
		var (
			entry     domain.JournalEntry
			role      string
			outcome   string
			requestID sql.NullString
			payload   []byte
		)

		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&role,
			&entry.Event,
			&requestID,
			&outcome,
			&payload,
			&entry.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListByRequest - scan row: %v", ErrScanRow, err)
		}

		entry.Role = domain.Role(role)
		entry.Outcome = domain.EventOutcome(outcome)
		entry.RequestID = requestID.String
		if len(payload) > 0 {
			entry.Payload = payload
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByRequest - iterate rows: %v", ErrScanRow, err)
	}

	return entries, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullPayload сохраняет пустой payload как NULL, иначе как текст для колонки jsonb
func nullPayload(p []byte) interface{} {
	if len(p) == 0 {
		return nil
	}
	return string(p)
}
