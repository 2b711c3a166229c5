//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"fleet-system/internal/entities"
	"fleet-system/pkg/database/migrations"
	"fleet-system/pkg/database/postgresql"
	apperrors "fleet-system/pkg/errors"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "fleet",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "pass",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(90 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://test:pass@%s:%s/fleet?sslmode=disable", host, port.Port())

	logger := zap.NewNop()
	pool, err := postgresql.ConnectDB(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.Up(ctx, pool, logger))

	_, err = pool.Exec(ctx, `INSERT INTO technicians (id, full_name, hourly_rate) VALUES (1, 'Иванов И.', 40), (2, 'Петров П.', 55)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO work_orders (id, title) VALUES (100, 'ТО-1 погрузчика')`)
	require.NoError(t, err)
	return pool
}

func TestTimeEntryRepository_Postgres(t *testing.T) {
	pool := startPostgres(t)
	repo := NewTimeEntryRepository(pool, zap.NewNop())
	techRepo := NewTechnicianRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := &entities.TimeEntry{ID: uuid.New(), WorkOrderID: 100, TechnicianID: 1, StartTime: start, HourlyRate: 40}

	created, err := repo.CreateTimeEntry(ctx, entry)
	require.NoError(t, err)
	assert.True(t, created.IsOpen())
	assert.True(t, created.StartTime.Equal(start))

	t.Run("уникальный индекс на открытую сессию", func(t *testing.T) {
		dup := &entities.TimeEntry{ID: uuid.New(), WorkOrderID: 100, TechnicianID: 1, StartTime: start, HourlyRate: 40}
		_, err := repo.CreateTimeEntry(ctx, dup)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateActiveSession)
	})

	t.Run("внешний ключ", func(t *testing.T) {
		bad := &entities.TimeEntry{ID: uuid.New(), WorkOrderID: 999, TechnicianID: 2, StartTime: start, HourlyRate: 40}
		_, err := repo.CreateTimeEntry(ctx, bad)
		assert.ErrorIs(t, err, apperrors.ErrReferenceNotFound)
	})

	t.Run("поиск открытой сессии", func(t *testing.T) {
		open, err := repo.FindOpenEntry(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, created.ID, open.ID)

		_, err = repo.FindOpenEntry(ctx, 2)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("перерыв и закрытие", func(t *testing.T) {
		withBreak, err := repo.SetBreakMinutes(ctx, created.ID, 30)
		require.NoError(t, err)
		assert.Equal(t, 30, withBreak.BreakMinutes)

		end := time.Date(2025, 3, 10, 13, 15, 0, 0, time.UTC)
		_, err = repo.CloseTimeEntry(ctx, created.ID, entities.TimeEntryClose{
			EndTime: end, BreakMinutes: 0, TotalHours: 4.25, TotalCost: 170,
		})
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound, "итоги по устаревшему перерыву не записываются")

		closed, err := repo.CloseTimeEntry(ctx, created.ID, entities.TimeEntryClose{
			EndTime: end, BreakMinutes: 30, TotalHours: 3.75, TotalCost: 150,
		})
		require.NoError(t, err)
		assert.False(t, closed.IsOpen())
		assert.InDelta(t, 3.75, *closed.TotalHours, 1e-9)

		_, err = repo.CloseTimeEntry(ctx, created.ID, entities.TimeEntryClose{EndTime: end})
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

		_, err = repo.SetBreakMinutes(ctx, created.ID, 15)
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("фильтр и сводка", func(t *testing.T) {
		second := &entities.TimeEntry{ID: uuid.New(), WorkOrderID: 100, TechnicianID: 1, StartTime: start.Add(5 * time.Hour), HourlyRate: 40}
		_, err := repo.CreateTimeEntry(ctx, second)
		require.NoError(t, err)

		workOrderID := uint64(100)
		list, total, err := repo.GetTimeEntries(ctx, entities.TimeEntryFilter{WorkOrderID: &workOrderID, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), total)
		require.Len(t, list, 1)
		assert.Equal(t, second.ID, list[0].ID, "сначала самые поздние")

		list, total, err = repo.GetTimeEntries(ctx, entities.TimeEntryFilter{State: entities.TimeEntryClosed})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		assert.Equal(t, created.ID, list[0].ID)

		summary, err := repo.GetWorkOrderSummary(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), summary.EntriesCount)
		assert.Equal(t, uint64(1), summary.OpenCount)
		assert.InDelta(t, 3.75, summary.TotalHours, 1e-9)
		assert.InDelta(t, 150.0, summary.TotalCost, 1e-9)
	})

	t.Run("техник", func(t *testing.T) {
		tech, err := techRepo.FindTechnician(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 55.0, tech.HourlyRate)

		_, err = techRepo.FindTechnician(ctx, 42)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
