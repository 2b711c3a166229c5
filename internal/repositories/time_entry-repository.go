package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"fleet-system/internal/entities"
	apperrors "fleet-system/pkg/errors"
)

const (
	timeEntryTable  = "time_entries"
	timeEntryFields = "id, work_order_id, technician_id, start_time, end_time, break_minutes, hourly_rate, is_overtime, total_hours, total_cost, created_at, updated_at"

	openTechnicianIndex = "uniq_time_entries_open_technician"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type dbTimeEntry struct {
	ID           uuid.UUID
	WorkOrderID  uint64
	TechnicianID uint64
	StartTime    time.Time
	EndTime      *time.Time
	BreakMinutes int
	HourlyRate   float64
	IsOvertime   bool
	TotalHours   *float64
	TotalCost    *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (db *dbTimeEntry) targets() []interface{} {
	return []interface{}{
		&db.ID, &db.WorkOrderID, &db.TechnicianID, &db.StartTime, &db.EndTime,
		&db.BreakMinutes, &db.HourlyRate, &db.IsOvertime, &db.TotalHours, &db.TotalCost,
		&db.CreatedAt, &db.UpdatedAt,
	}
}

func (db *dbTimeEntry) toEntity() *entities.TimeEntry {
	e := &entities.TimeEntry{
		ID:           db.ID,
		WorkOrderID:  db.WorkOrderID,
		TechnicianID: db.TechnicianID,
		StartTime:    db.StartTime,
		EndTime:      db.EndTime,
		BreakMinutes: db.BreakMinutes,
		HourlyRate:   db.HourlyRate,
		IsOvertime:   db.IsOvertime,
		TotalHours:   db.TotalHours,
		TotalCost:    db.TotalCost,
	}
	createdAt, updatedAt := db.CreatedAt, db.UpdatedAt
	e.CreatedAt = &createdAt
	e.UpdatedAt = &updatedAt
	return e
}

type TimeEntryRepositoryInterface interface {
	CreateTimeEntry(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error)
	CloseTimeEntry(ctx context.Context, id uuid.UUID, fields entities.TimeEntryClose) (*entities.TimeEntry, error)
	FindOpenEntry(ctx context.Context, technicianID uint64) (*entities.TimeEntry, error)
	FindTimeEntry(ctx context.Context, id uuid.UUID) (*entities.TimeEntry, error)
	SetBreakMinutes(ctx context.Context, id uuid.UUID, breakMinutes int) (*entities.TimeEntry, error)
	GetTimeEntries(ctx context.Context, filter entities.TimeEntryFilter) ([]entities.TimeEntry, uint64, error)
	GetWorkOrderSummary(ctx context.Context, workOrderID uint64) (*entities.WorkOrderLaborSummary, error)
}

type TimeEntryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTimeEntryRepository(storage *pgxpool.Pool, logger *zap.Logger) TimeEntryRepositoryInterface {
	return &TimeEntryRepository{storage: storage, logger: logger}
}

func (r *TimeEntryRepository) scanOne(row pgx.Row) (*entities.TimeEntry, error) {
	var dbRow dbTimeEntry
	if err := row.Scan(dbRow.targets()...); err != nil {
		return nil, err
	}
	return dbRow.toEntity(), nil
}

func (r *TimeEntryRepository) CreateTimeEntry(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error) {
	query := fmt.Sprintf(`INSERT INTO %s (id, work_order_id, technician_id, start_time, break_minutes, hourly_rate, is_overtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING %s`, timeEntryTable, timeEntryFields)

	created, err := r.scanOne(r.storage.QueryRow(ctx, query,
		entry.ID, entry.WorkOrderID, entry.TechnicianID, entry.StartTime,
		entry.BreakMinutes, entry.HourlyRate, entry.IsOvertime,
	))
	if err != nil {
		return nil, mapTimeEntryWriteError(err)
	}
	return created, nil
}

func (r *TimeEntryRepository) CloseTimeEntry(ctx context.Context, id uuid.UUID, fields entities.TimeEntryClose) (*entities.TimeEntry, error) {
	query := fmt.Sprintf(`UPDATE %s SET
			end_time = @end_time,
			is_overtime = @is_overtime,
			total_hours = @total_hours,
			total_cost = @total_cost,
			updated_at = NOW()
		WHERE id = @id AND end_time IS NULL AND break_minutes = @break_minutes
		RETURNING %s`, timeEntryTable, timeEntryFields)

	args := pgx.NamedArgs{
		"id":            id,
		"end_time":      fields.EndTime,
		"break_minutes": fields.BreakMinutes,
		"is_overtime":   fields.IsOvertime,
		"total_hours":   fields.TotalHours,
		"total_cost":    fields.TotalCost,
	}

	closed, err := r.scanOne(r.storage.QueryRow(ctx, query, args))
	if err != nil {
		// Сессия закрыта параллельно, не существует или перерыв успел измениться
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, mapTimeEntryWriteError(err)
	}
	return closed, nil
}

func (r *TimeEntryRepository) FindOpenEntry(ctx context.Context, technicianID uint64) (*entities.TimeEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE technician_id = $1 AND end_time IS NULL
		ORDER BY start_time DESC LIMIT 1`, timeEntryFields, timeEntryTable)

	entry, err := r.scanOne(r.storage.QueryRow(ctx, query, technicianID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *TimeEntryRepository) FindTimeEntry(ctx context.Context, id uuid.UUID) (*entities.TimeEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", timeEntryFields, timeEntryTable)

	entry, err := r.scanOne(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *TimeEntryRepository) SetBreakMinutes(ctx context.Context, id uuid.UUID, breakMinutes int) (*entities.TimeEntry, error) {
	query := fmt.Sprintf(`UPDATE %s SET break_minutes = @break_minutes, updated_at = NOW()
		WHERE id = @id AND end_time IS NULL RETURNING %s`, timeEntryTable, timeEntryFields)

	entry, err := r.scanOne(r.storage.QueryRow(ctx, query, pgx.NamedArgs{"id": id, "break_minutes": breakMinutes}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, mapTimeEntryWriteError(err)
	}
	return entry, nil
}

func applyTimeEntryFilter(builder sq.SelectBuilder, filter entities.TimeEntryFilter) sq.SelectBuilder {
	if filter.WorkOrderID != nil {
		builder = builder.Where(sq.Eq{"work_order_id": *filter.WorkOrderID})
	}
	if filter.TechnicianID != nil {
		builder = builder.Where(sq.Eq{"technician_id": *filter.TechnicianID})
	}
	switch filter.State {
	case entities.TimeEntryOpen:
		builder = builder.Where(sq.Eq{"end_time": nil})
	case entities.TimeEntryClosed:
		builder = builder.Where(sq.NotEq{"end_time": nil})
	}
	if filter.StartedFrom != nil {
		builder = builder.Where(sq.GtOrEq{"start_time": *filter.StartedFrom})
	}
	if filter.StartedTo != nil {
		builder = builder.Where(sq.Lt{"start_time": *filter.StartedTo})
	}
	return builder
}

func (r *TimeEntryRepository) GetTimeEntries(ctx context.Context, filter entities.TimeEntryFilter) ([]entities.TimeEntry, uint64, error) {
	countSQL, countArgs, err := applyTimeEntryFilter(
		sq.Select("COUNT(*)").From(timeEntryTable).PlaceholderFormat(sq.Dollar), filter,
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("count ToSql: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.TimeEntry{}, 0, nil
	}

	builder := applyTimeEntryFilter(
		sq.Select(timeEntryFields).From(timeEntryTable).PlaceholderFormat(sq.Dollar), filter,
	).OrderBy("start_time DESC", "id")
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit).Offset(filter.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ToSql: %w", err)
	}
	r.logger.Debug("GetTimeEntries", zap.String("query", query), zap.Any("args", args))

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]entities.TimeEntry, 0)
	for rows.Next() {
		var dbRow dbTimeEntry
		if err := rows.Scan(dbRow.targets()...); err != nil {
			return nil, 0, err
		}
		list = append(list, *dbRow.toEntity())
	}
	return list, total, rows.Err()
}

func (r *TimeEntryRepository) GetWorkOrderSummary(ctx context.Context, workOrderID uint64) (*entities.WorkOrderLaborSummary, error) {
	query := fmt.Sprintf(`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE end_time IS NULL),
			COALESCE(SUM(total_hours), 0),
			COALESCE(SUM(total_cost), 0)
		FROM %s WHERE work_order_id = $1`, timeEntryTable)

	summary := &entities.WorkOrderLaborSummary{WorkOrderID: workOrderID}
	err := r.storage.QueryRow(ctx, query, workOrderID).Scan(
		&summary.EntriesCount, &summary.OpenCount, &summary.TotalHours, &summary.TotalCost,
	)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// mapTimeEntryWriteError переводит нарушения ограничений БД в доменные ошибки.
func mapTimeEntryWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == openTechnicianIndex:
		return apperrors.ErrDuplicateActiveSession
	case pgErr.Code == pgForeignKeyViolation:
		return apperrors.ErrReferenceNotFound
	}
	return err
}
