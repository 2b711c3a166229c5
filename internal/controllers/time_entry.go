package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fleet-system/internal/dto"
	"fleet-system/internal/entities"
	"fleet-system/internal/services"
	"fleet-system/pkg/api"
	apperrors "fleet-system/pkg/errors"
	"fleet-system/pkg/middleware"
	"fleet-system/pkg/utils"
)

type TimeEntryController struct {
	timeEntryService services.TimeEntryServiceInterface
	requestTimeout   time.Duration
	logger           *zap.Logger
}

func NewTimeEntryController(
	timeEntryService services.TimeEntryServiceInterface,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *TimeEntryController {
	return &TimeEntryController{
		timeEntryService: timeEntryService,
		requestTimeout:   requestTimeout,
		logger:           logger,
	}
}

func (c *TimeEntryController) StartSession(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var req dto.StartSessionDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err),
			c.logger,
		)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if operatorID, err := middleware.UserIDFromContext(reqCtx); err == nil {
		c.logger.Debug("Открытие сессии", zap.Uint64("operatorID", operatorID), zap.Any("request", req))
	}

	entry, err := c.timeEntryService.StartSession(reqCtx, req.WorkOrderID, req.TechnicianID, req.HourlyRate.Ptr())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Сессия открыта", dto.NewTimeEntryDTO(entry))
}

func (c *TimeEntryController) StopSession(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	// Тело необязательно: без него сессия закрывается как обычная.
	var req dto.StopSessionDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err),
			c.logger,
		)
	}

	entry, err := c.timeEntryService.StopSession(reqCtx, id, req.IsOvertime)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Сессия закрыта", dto.NewTimeEntryDTO(entry))
}

func (c *TimeEntryController) SetBreak(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.SetBreakDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err),
			c.logger,
		)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	entry, err := c.timeEntryService.SetBreak(reqCtx, id, req.BreakMinutes)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Перерыв обновлён", dto.NewTimeEntryDTO(entry))
}

func (c *TimeEntryController) FindTimeEntry(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	id, err := utils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	entry, err := c.timeEntryService.FindTimeEntry(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Сессия найдена", dto.NewTimeEntryDTO(entry))
}

func (c *TimeEntryController) GetTimeEntries(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	filter, err := c.parseFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	limit, offset, page := utils.ParsePaginationParams(ctx.QueryParams())
	filter.Limit, filter.Offset = limit, offset

	list, total, err := c.timeEntryService.GetTimeEntries(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Список сессий получен", dto.NewTimeEntryDTOs(list), total, page, limit)
}

func (c *TimeEntryController) parseFilter(ctx echo.Context) (entities.TimeEntryFilter, error) {
	var (
		filter entities.TimeEntryFilter
		err    error
	)
	if filter.WorkOrderID, err = utils.ParseUint64Query(ctx, "work_order_id"); err != nil {
		return filter, err
	}
	if filter.TechnicianID, err = utils.ParseUint64Query(ctx, "technician_id"); err != nil {
		return filter, err
	}
	if filter.StartedFrom, err = utils.ParseTimeQuery(ctx, "date_from"); err != nil {
		return filter, err
	}
	if filter.StartedTo, err = utils.ParseTimeQuery(ctx, "date_to"); err != nil {
		return filter, err
	}

	switch state := entities.TimeEntryState(ctx.QueryParam("state")); state {
	case "":
	case entities.TimeEntryOpen, entities.TimeEntryClosed:
		filter.State = state
	default:
		return filter, apperrors.NewHttpError(http.StatusBadRequest, "state должен быть OPEN или CLOSED", nil)
	}
	return filter, nil
}

func (c *TimeEntryController) FindActiveSession(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	technicianID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	entry, err := c.timeEntryService.FindActiveSession(reqCtx, technicianID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Открытая сессия найдена", dto.NewTimeEntryDTO(entry))
}

func (c *TimeEntryController) GetWorkOrderSummary(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	workOrderID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	summary, err := c.timeEntryService.GetWorkOrderSummary(reqCtx, workOrderID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, summary, "Сводка трудозатрат получена", http.StatusOK)
}

func (c *TimeEntryController) ExportWorkOrderLabor(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	workOrderID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	// Limit = 0: выгружаем все сессии заказ-наряда
	list, _, err := c.timeEntryService.GetTimeEntries(reqCtx, entities.TimeEntryFilter{WorkOrderID: &workOrderID})
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	f, err := buildLaborWorkbook(list)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("labor_work_order_%d_%s.xlsx", workOrderID, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

const laborSheet = "Трудозатраты"

var laborHeaders = []string{
	"ID сессии", "Техник", "Начало", "Окончание", "Перерыв (мин)", "Ставка", "Сверхурочно", "Часы", "Стоимость",
}

func laborRow(e entities.TimeEntry) []interface{} {
	const dateTimeFmt = "02.01.2006 15:04"
	var endTime string
	if e.EndTime != nil {
		endTime = e.EndTime.Format(dateTimeFmt)
	}
	overtime := "нет"
	if e.IsOvertime {
		overtime = "да"
	}
	return []interface{}{
		e.ID.String(), e.TechnicianID, e.StartTime.Format(dateTimeFmt), endTime, e.BreakMinutes,
		e.HourlyRate, overtime, utils.SafeDeref(e.TotalHours), utils.SafeDeref(e.TotalCost),
	}
}

// buildLaborWorkbook собирает лист сессий и строку итогов по закрытым сессиям.
func buildLaborWorkbook(list []entities.TimeEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", laborSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(laborSheet, "A1", &laborHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(laborSheet, "A1", "I1", style); err != nil {
		return nil, err
	}

	var totalHours, totalCost float64
	for i, item := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := laborRow(item)
		if err := f.SetSheetRow(laborSheet, cell, &row); err != nil {
			return nil, err
		}
		totalHours += utils.SafeDeref(item.TotalHours)
		totalCost += utils.SafeDeref(item.TotalCost)
	}

	totalCell, err := excelize.CoordinatesToCellName(1, len(list)+2)
	if err != nil {
		return nil, err
	}
	totals := []interface{}{"Итого", "", "", "", "", "", "", totalHours, totalCost}
	if err := f.SetSheetRow(laborSheet, totalCell, &totals); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(laborSheet, "A", "A", 38); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(laborSheet, "C", "D", 18); err != nil {
		return nil, err
	}
	return f, nil
}
