package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"fleet-system/internal/controllers"
	"fleet-system/internal/services"
	"fleet-system/pkg/config"
)

func runTimeEntryRouter(
	secureGroup *echo.Group,
	timeEntryService services.TimeEntryServiceInterface,
	cfg config.LaborConfig,
	logger *zap.Logger,
) {
	ctrl := controllers.NewTimeEntryController(timeEntryService, cfg.RequestTimeout, logger)

	secureGroup.POST("/time-entries/start", ctrl.StartSession)
	secureGroup.POST("/time-entries/:id/stop", ctrl.StopSession)
	secureGroup.PUT("/time-entries/:id/break", ctrl.SetBreak)
	secureGroup.GET("/time-entries/:id", ctrl.FindTimeEntry)
	secureGroup.GET("/time-entries", ctrl.GetTimeEntries)

	secureGroup.GET("/technicians/:id/active-session", ctrl.FindActiveSession)

	secureGroup.GET("/work-orders/:id/labor", ctrl.GetWorkOrderSummary)
	secureGroup.GET("/work-orders/:id/labor/export", ctrl.ExportWorkOrderLabor)
}
