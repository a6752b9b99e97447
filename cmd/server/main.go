package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/fraktion/expense-management/internal/application/dispatcher"
	"github.com/fraktion/expense-management/internal/application/policy"
	"github.com/fraktion/expense-management/internal/application/service"
	"github.com/fraktion/expense-management/internal/config"
	"github.com/fraktion/expense-management/internal/domain/event"
	"github.com/fraktion/expense-management/internal/infrastructure/persistence/repository"
	httpadapter "github.com/fraktion/expense-management/internal/interfaces/http"
	"github.com/fraktion/expense-management/pkg/database"
	"github.com/fraktion/expense-management/pkg/utils"
)

func main() {
	// Load .env if present before reading configuration
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
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

	logger.Info("Starting expense management service",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
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

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Wire repositories, authorization policy, and application service
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)

	authorizer := policy.NewAuthorizer(userRepo)

	kvLogger := utils.NewKVLogger(logger)

	// Domain events: every lifecycle mutation is published and logged
	events := dispatcher.NewDispatcher(dispatcher.WithLogger(kvLogger))
	defer events.Close()

	auditLog := func(ctx context.Context, evt *event.Event) error {
		kvLogger.Info("Expense lifecycle event",
			"event_type", evt.Type,
			"expense_id", evt.ExpenseID.String(),
			"actor_id", evt.ActorID.String(),
			"state", evt.PayloadString("state"),
			"amount", evt.PayloadFloat("amount"),
		)
		return nil
	}
	for _, typ := range []event.Type{
		event.TypeExpenseCreated,
		event.TypeExpenseSubmitted,
		event.TypeExpenseApproved,
		event.TypeExpenseWithdrawn,
		event.TypeExpenseRevoked,
	} {
		events.Subscribe(typ, "audit-log", auditLog)
	}

	expenseService := service.NewExpenseService(expenseRepo, authorizer, kvLogger,
		service.WithEventDispatcher(events),
		service.WithTransactor(db))

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, expenseService, kvLogger)

	// Run until interrupted, then shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
