package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleet-system/internal/entities"
	"fleet-system/internal/events"
	"fleet-system/internal/repositories"
	"fleet-system/pkg/config"
	apperrors "fleet-system/pkg/errors"
	"fleet-system/pkg/eventbus"
	"fleet-system/pkg/labor"
)

type TimeEntryServiceInterface interface {
	StartSession(ctx context.Context, workOrderID, technicianID uint64, hourlyRate *float64) (*entities.TimeEntry, error)
	StopSession(ctx context.Context, id uuid.UUID, isOvertime bool) (*entities.TimeEntry, error)
	SetBreak(ctx context.Context, id uuid.UUID, breakMinutes int) (*entities.TimeEntry, error)
	FindTimeEntry(ctx context.Context, id uuid.UUID) (*entities.TimeEntry, error)
	FindActiveSession(ctx context.Context, technicianID uint64) (*entities.TimeEntry, error)
	GetTimeEntries(ctx context.Context, filter entities.TimeEntryFilter) ([]entities.TimeEntry, uint64, error)
	GetWorkOrderSummary(ctx context.Context, workOrderID uint64) (*entities.WorkOrderLaborSummary, error)
}

// SummaryCacheKey - ключ сводки трудозатрат заказ-наряда в кеше.
func SummaryCacheKey(workOrderID uint64) string {
	return fmt.Sprintf("labor:summary:work_order:%d", workOrderID)
}

// TimeEntryService ведёт открытие и закрытие рабочих сессий техников.
//
// Проверка "одна открытая сессия на техника" делается чтением перед вставкой;
// при гонке параллельных запросов её дублирует уникальный индекс в БД,
// и репозиторий возвращает ту же ErrDuplicateActiveSession.
type TimeEntryService struct {
	repo           repositories.TimeEntryRepositoryInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	cache          repositories.CacheRepositoryInterface
	bus            *eventbus.Bus
	cfg            config.LaborConfig
	logger         *zap.Logger

	clock func() time.Time
}

func NewTimeEntryService(
	repo repositories.TimeEntryRepositoryInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	cfg config.LaborConfig,
	logger *zap.Logger,
) *TimeEntryService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &TimeEntryService{
		repo:           repo,
		technicianRepo: technicianRepo,
		cache:          cache,
		bus:            bus,
		cfg:            cfg,
		logger:         logger,
		clock:          time.Now,
	}
}

func (s *TimeEntryService) now() time.Time {
	return s.clock().In(s.cfg.Location)
}

func (s *TimeEntryService) StartSession(ctx context.Context, workOrderID, technicianID uint64, hourlyRate *float64) (*entities.TimeEntry, error) {
	existing, err := s.repo.FindOpenEntry(ctx, technicianID)
	switch {
	case err == nil:
		s.logger.Warn("Попытка открыть вторую сессию",
			zap.Uint64("technicianID", technicianID),
			zap.String("openEntryID", existing.ID.String()),
		)
		return nil, apperrors.ErrDuplicateActiveSession
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	rate, err := s.resolveRate(ctx, technicianID, hourlyRate)
	if err != nil {
		return nil, err
	}

	entry := &entities.TimeEntry{
		ID:           uuid.New(),
		WorkOrderID:  workOrderID,
		TechnicianID: technicianID,
		StartTime:    labor.RoundToQuarter(s.now()),
		HourlyRate:   rate,
	}

	created, err := s.repo.CreateTimeEntry(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Сессия открыта",
		zap.String("entryID", created.ID.String()),
		zap.Uint64("workOrderID", workOrderID),
		zap.Uint64("technicianID", technicianID),
		zap.Time("startTime", created.StartTime),
	)
	s.invalidateSummary(ctx, workOrderID)
	s.publish(ctx, events.TimeEntryStartedEvent{Entry: *created})
	return created, nil
}

// resolveRate фиксирует ставку: явно переданную или текущую ставку техника.
// Сессию можно открыть только на активного техника.
func (s *TimeEntryService) resolveRate(ctx context.Context, technicianID uint64, hourlyRate *float64) (float64, error) {
	if hourlyRate != nil && *hourlyRate < 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Ставка не может быть отрицательной", apperrors.ErrBadRequest)
	}
	technician, err := s.technicianRepo.FindTechnician(ctx, technicianID)
	if err != nil {
		return 0, err
	}
	if !technician.IsActive {
		return 0, apperrors.ErrTechnicianInactive
	}
	if hourlyRate != nil {
		return *hourlyRate, nil
	}
	return technician.HourlyRate, nil
}

// closeAttempts - сколько раз StopSession перечитывает сессию, если перерыв
// меняется параллельно с остановкой.
const closeAttempts = 3

// StopSession закрывает сессию с итогами, посчитанными по перерыву, который
// хранится в записи в момент закрытия.
func (s *TimeEntryService) StopSession(ctx context.Context, id uuid.UUID, isOvertime bool) (*entities.TimeEntry, error) {
	for attempt := 1; attempt <= closeAttempts; attempt++ {
		entry, err := s.repo.FindTimeEntry(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrSessionNotFound
			}
			return nil, err
		}
		if !entry.IsOpen() {
			return nil, apperrors.ErrSessionNotFound
		}

		totals := labor.Close(entry.StartTime, s.now(), entry.BreakMinutes, entry.HourlyRate, isOvertime)

		closed, err := s.repo.CloseTimeEntry(ctx, id, entities.TimeEntryClose{
			EndTime:      totals.End,
			BreakMinutes: entry.BreakMinutes,
			IsOvertime:   isOvertime,
			TotalHours:   totals.TotalHours,
			TotalCost:    totals.TotalCost,
		})
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			s.logger.Debug("Сессия изменилась до закрытия, перечитываем",
				zap.String("entryID", id.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("Сессия закрыта",
			zap.String("entryID", id.String()),
			zap.Float64("totalHours", totals.TotalHours),
			zap.Float64("totalCost", totals.TotalCost),
			zap.Bool("overtime", isOvertime),
		)
		s.invalidateSummary(ctx, closed.WorkOrderID)
		s.publish(ctx, events.TimeEntryClosedEvent{Entry: *closed})
		return closed, nil
	}
	return nil, apperrors.ErrSessionChanged
}

func (s *TimeEntryService) SetBreak(ctx context.Context, id uuid.UUID, breakMinutes int) (*entities.TimeEntry, error) {
	if !labor.IsValidBreak(breakMinutes) {
		return nil, apperrors.ErrInvalidBreak
	}
	return s.repo.SetBreakMinutes(ctx, id, breakMinutes)
}

func (s *TimeEntryService) FindTimeEntry(ctx context.Context, id uuid.UUID) (*entities.TimeEntry, error) {
	return s.repo.FindTimeEntry(ctx, id)
}

func (s *TimeEntryService) FindActiveSession(ctx context.Context, technicianID uint64) (*entities.TimeEntry, error) {
	entry, err := s.repo.FindOpenEntry(ctx, technicianID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *TimeEntryService) GetTimeEntries(ctx context.Context, filter entities.TimeEntryFilter) ([]entities.TimeEntry, uint64, error) {
	return s.repo.GetTimeEntries(ctx, filter)
}

// GetWorkOrderSummary читает сводку из кеша; ошибки кеша не мешают ответу из БД.
func (s *TimeEntryService) GetWorkOrderSummary(ctx context.Context, workOrderID uint64) (*entities.WorkOrderLaborSummary, error) {
	key := SummaryCacheKey(workOrderID)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var summary entities.WorkOrderLaborSummary
		if jsonErr := json.Unmarshal([]byte(cached), &summary); jsonErr == nil {
			return &summary, nil
		}
		s.logger.Warn("Повреждённая сводка в кеше", zap.String("key", key))
	} else if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("Кеш недоступен", zap.String("key", key), zap.Error(err))
	}

	summary, err := s.repo.GetWorkOrderSummary(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cfg.SummaryCacheTTL); err != nil {
			s.logger.Warn("Не удалось сохранить сводку в кеш", zap.String("key", key), zap.Error(err))
		}
	}
	return summary, nil
}

// invalidateSummary сбрасывает сводку сразу после записи. LaborListener
// повторяет удаление по событию.
func (s *TimeEntryService) invalidateSummary(ctx context.Context, workOrderID uint64) {
	key := SummaryCacheKey(workOrderID)
	if err := s.cache.Del(ctx, key); err != nil {
		s.logger.Warn("Не удалось сбросить сводку в кеше", zap.String("key", key), zap.Error(err))
	}
}

func (s *TimeEntryService) publish(ctx context.Context, event eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}
