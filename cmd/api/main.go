package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trugen/triage-service/internal/agent"
	httptransport "github.com/trugen/triage-service/internal/api/http"
	"github.com/trugen/triage-service/internal/api/http/handlers"
	"github.com/trugen/triage-service/internal/config"
	"github.com/trugen/triage-service/internal/events"
	"github.com/trugen/triage-service/internal/observability"
	"github.com/trugen/triage-service/internal/persistence"
	"github.com/trugen/triage-service/internal/pipeline"
	"github.com/trugen/triage-service/internal/queue"
	"github.com/trugen/triage-service/internal/repository"
	"github.com/trugen/triage-service/internal/service"
	"github.com/trugen/triage-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	logRepo := repository.NewTicketLogRepository(pool)
	managerRepo := repository.NewManagerRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		LogRepo:       logRepo,
		ManagerRepo:   managerRepo,
		UserRepo:      userRepo,
		Dispatcher:    dispatcher,
		MaxIDAttempts: cfg.Pipeline.MaxIDAttempts,
	})
	authService := service.NewAuthService(cfg.Auth)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	collaborator := agent.NewOpenAICollaborator(cfg.OpenAI, logger)
	orchestrator := pipeline.NewOrchestrator(collaborator, logger, metrics)
	recorder := pipeline.NewRecorder(pipeline.RecorderDependencies{
		TicketRepo:          ticketRepo,
		LogRepo:             logRepo,
		ManagerRepo:         managerRepo,
		Dispatcher:          dispatcher,
		Logger:              logger,
		FailureDetailLength: cfg.Pipeline.FailureDetailLength,
	})

	analysisQueue := queue.NewAnalysisQueue(redis.Client, cfg.Pipeline.VisibilityTimeout)
	analysisWorker := worker.NewAnalysisWorker(worker.AnalysisWorkerDependencies{
		Queue:        analysisQueue,
		Orchestrator: orchestrator,
		Recorder:     recorder,
		TicketRepo:   ticketRepo,
		LogRepo:      logRepo,
		Logger:       logger,
		Metrics:      metrics,
		Workers:      cfg.Pipeline.Workers,
		PollInterval: cfg.Pipeline.PollInterval,
	})
	analysisWorker.RegisterHandlers(dispatcher)
	go analysisWorker.Run(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:      handlers.NewTicketsHandler(ticketService),
		Admin:        handlers.NewAdminHandler(ticketService, authService),
		TokenManager: authService.TokenManager(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
