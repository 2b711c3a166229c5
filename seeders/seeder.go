package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"fleet-system/internal/repositories"
)

// SeedReferences наполняет справочники техников и заказ-нарядов для разработки.
// Существующие записи не трогает.
func SeedReferences(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("▶️  Запуск наполнения справочников...")

	err := repositories.NewTxManager(db).RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := seedTechnicians(ctx, tx, logger); err != nil {
			return fmt.Errorf("техники: %w", err)
		}
		if err := seedWorkOrders(ctx, tx, logger); err != nil {
			return fmt.Errorf("заказ-наряды: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("✅ Наполнение справочников завершено!")
	return nil
}

func seedTechnicians(ctx context.Context, tx pgx.Tx, logger *zap.Logger) error {
	logger.Info("  - Наполнение таблицы 'technicians'...")
	query := `INSERT INTO technicians (id, full_name, hourly_rate) VALUES ($1, $2, $3)
			  ON CONFLICT (id) DO NOTHING;`

	for _, t := range techniciansData {
		if _, err := tx.Exec(ctx, query, t.ID, t.FullName, t.HourlyRate); err != nil {
			logger.Error("Ошибка при вставке техника", zap.String("name", t.FullName), zap.Error(err))
			return err
		}
	}
	return syncSequence(ctx, tx, "technicians")
}

func seedWorkOrders(ctx context.Context, tx pgx.Tx, logger *zap.Logger) error {
	logger.Info("  - Наполнение таблицы 'work_orders'...")
	query := `INSERT INTO work_orders (id, title, vehicle_id, equipment_id) VALUES ($1, $2, $3, $4)
			  ON CONFLICT (id) DO NOTHING;`

	for _, w := range workOrdersData {
		if _, err := tx.Exec(ctx, query, w.ID, w.Title, w.VehicleID, w.EquipmentID); err != nil {
			logger.Error("Ошибка при вставке заказ-наряда", zap.String("title", w.Title), zap.Error(err))
			return err
		}
	}
	return syncSequence(ctx, tx, "work_orders")
}

// syncSequence сдвигает bigserial после вставки с явными id.
func syncSequence(ctx context.Context, tx pgx.Tx, table string) error {
	query := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT MAX(id) FROM %[1]s))`, table)
	_, err := tx.Exec(ctx, query)
	return err
}
