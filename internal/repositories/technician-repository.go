package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleet-system/internal/entities"
	apperrors "fleet-system/pkg/errors"
)

// TechnicianRepositoryInterface - только чтение: техниками управляет внешняя система.
type TechnicianRepositoryInterface interface {
	FindTechnician(ctx context.Context, id uint64) (*entities.Technician, error)
}

type TechnicianRepository struct{ storage *pgxpool.Pool }

func NewTechnicianRepository(storage *pgxpool.Pool) TechnicianRepositoryInterface {
	return &TechnicianRepository{storage: storage}
}

func (r *TechnicianRepository) FindTechnician(ctx context.Context, id uint64) (*entities.Technician, error) {
	query := `SELECT id, full_name, hourly_rate, is_active, created_at, updated_at
		FROM technicians WHERE id = $1 AND deleted_at IS NULL`

	var (
		t                    entities.Technician
		createdAt, updatedAt time.Time
	)
	err := r.storage.QueryRow(ctx, query, id).Scan(&t.ID, &t.FullName, &t.HourlyRate, &t.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	t.CreatedAt = &createdAt
	t.UpdatedAt = &updatedAt
	return &t, nil
}
