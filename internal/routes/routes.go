package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"fleet-system/internal/listeners"
	"fleet-system/internal/repositories"
	"fleet-system/internal/services"
	"fleet-system/pkg/config"
	"fleet-system/pkg/eventbus"
	"fleet-system/pkg/middleware"
	"fleet-system/pkg/service"
)

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger.Named("auth"))
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 1. РЕПОЗИТОРИИ ---
	timeEntryRepo := repositories.NewTimeEntryRepository(dbConn, logger.Named("labor"))
	technicianRepo := repositories.NewTechnicianRepository(dbConn)

	// --- 2. СЕРВИСЫ И СЛУШАТЕЛИ ---
	timeEntryService := services.NewTimeEntryService(timeEntryRepo, technicianRepo, cacheRepo, bus, cfg.Labor, logger.Named("labor"))
	listeners.NewLaborListener(cacheRepo, logger.Named("labor")).Register(bus)

	// --- 3. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)
	runTimeEntryRouter(secureGroup, timeEntryService, cfg.Labor, logger.Named("labor"))

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}
