package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleet-system/internal/entities"
	"fleet-system/internal/events"
	"fleet-system/internal/repositories"
	"fleet-system/internal/services"
	"fleet-system/pkg/eventbus"
)

// LaborListener сбрасывает закешированную сводку заказ-наряда,
// когда по нему открывается или закрывается сессия.
type LaborListener struct {
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewLaborListener(cache repositories.CacheRepositoryInterface, logger *zap.Logger) *LaborListener {
	return &LaborListener{cache: cache, logger: logger}
}

func (l *LaborListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.TimeEntryStartedName, l.handleTimeEntryChanged)
	bus.Subscribe(events.TimeEntryClosedName, l.handleTimeEntryChanged)
	l.logger.Info("LaborListener подписан на события сессий",
		zap.Strings("events", []string{events.TimeEntryStartedName, events.TimeEntryClosedName}),
	)
}

func (l *LaborListener) handleTimeEntryChanged(ctx context.Context, e eventbus.Event) error {
	var entry entities.TimeEntry
	switch ev := e.(type) {
	case events.TimeEntryStartedEvent:
		entry = ev.Entry
	case events.TimeEntryClosedEvent:
		entry = ev.Entry
	default:
		return fmt.Errorf("неожиданный тип события: %T", e)
	}

	key := services.SummaryCacheKey(entry.WorkOrderID)
	if err := l.cache.Del(ctx, key); err != nil {
		return fmt.Errorf("не удалось сбросить сводку %s: %w", key, err)
	}

	l.logger.Debug("Сводка заказ-наряда сброшена",
		zap.String("event", e.Name()),
		zap.Uint64("workOrderID", entry.WorkOrderID),
		zap.String("entryID", entry.ID.String()),
	)
	return nil
}
