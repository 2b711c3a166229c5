package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"fleet-system/pkg/config"
	"fleet-system/pkg/database/migrations"
	"fleet-system/pkg/database/postgresql"
	applogger "fleet-system/pkg/logger"
	"fleet-system/seeders"
)

func main() {
	runMigrate := flag.Bool("migrate", false, "Применить миграции перед наполнением")
	runReferences := flag.Bool("references", false, "Наполнить справочники техников и заказ-нарядов")
	runAll := flag.Bool("all", false, "Запустить всё (эквивалентно -migrate -references)")
	flag.Parse()

	if !*runMigrate && !*runReferences && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("Пример: go run ./seeders/cmd/seed -all")
		return
	}

	cfg := config.New()
	logger, err := applogger.NewLogger(config.LoggerConfig{Level: cfg.Logger.Level})
	if err != nil {
		log.Fatalf("не удалось создать логгер: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if *runAll || *runMigrate {
		if err := migrations.Up(ctx, dbPool, logger); err != nil {
			logger.Fatal("❌ Ошибка применения миграций", zap.Error(err))
		}
	}
	if *runAll || *runReferences {
		if err := seeders.SeedReferences(ctx, dbPool, logger); err != nil {
			logger.Fatal("❌ Ошибка наполнения справочников", zap.Error(err))
		}
	}

	logger.Info("✅ Все указанные операции сидирования успешно завершены.")
}
