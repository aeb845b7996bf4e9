package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/service"
	"github.com/YEYOLABS/boundless-fleet/internal/config"
	httpiface "github.com/YEYOLABS/boundless-fleet/internal/interfaces/http"
	"github.com/YEYOLABS/boundless-fleet/internal/reconciliation"
	"github.com/YEYOLABS/boundless-fleet/internal/repository"
	"github.com/YEYOLABS/boundless-fleet/migrations"
	"github.com/YEYOLABS/boundless-fleet/pkg/database"
	"github.com/YEYOLABS/boundless-fleet/pkg/locks"
	"github.com/YEYOLABS/boundless-fleet/pkg/utils"
)

func main() {
	// Local .env overrides are optional; absence is not an error.
	_ = gotenv.Load()

	configPath := os.Getenv("FLEET_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting fleet ledger service",
		zap.String("organisation", cfg.Fleet.OrganisationID),
		zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(ctx, migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	vehicleRepo := repository.NewVehicleRepository(db, logger)
	driverRepo := repository.NewDriverRepository(db, logger)
	tourRepo := repository.NewTourRepository(db, logger)
	floatRepo := repository.NewFloatRepository(db, logger)
	expenseRepo := repository.NewExpenseRepository(db, logger)
	issueRepo := repository.NewIssueRepository(db, logger)
	historyRepo := repository.NewAssignmentHistoryRepository(db, logger)
	txManager := repository.NewTxManager(db)

	// One lock instance for every vehicle mutation in the process.
	vehicleMu := locks.NewKeyedMutex()

	vehicleService := service.NewVehicleService(vehicleRepo, vehicleMu, logger)
	assignmentService := service.NewAssignmentService(
		vehicleRepo,
		driverRepo,
		tourRepo,
		floatRepo,
		issueRepo,
		historyRepo,
		txManager,
		vehicleMu,
		logger,
	)
	tourService := service.NewTourService(tourRepo, assignmentService, txManager, logger)
	floatService := service.NewFloatService(floatRepo, expenseRepo, driverRepo, tourRepo, txManager, logger)
	issueService := service.NewIssueService(issueRepo, vehicleRepo, assignmentService, logger)
	scheduleService := service.NewScheduleService(vehicleRepo, driverRepo, tourRepo, floatRepo, logger)

	statementAggregator := reconciliation.NewAggregator(floatRepo, expenseRepo, logger)
	statementExporter := reconciliation.NewStatementExporter(reconciliation.ExporterConfig{
		OutputDir:   cfg.Export.OutputDir,
		CompanyName: cfg.Export.CompanyName,
		Currency:    cfg.Export.Currency,
	}, statementAggregator, logger)

	server := httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		httpiface.FleetConfig{
			OrganisationID:     cfg.Fleet.OrganisationID,
			TimelineWindowDays: cfg.Fleet.TimelineWindowDays,
		},
		vehicleService,
		assignmentService,
		tourService,
		floatService,
		issueService,
		scheduleService,
		statementExporter,
		logger,
	)

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
