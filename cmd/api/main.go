package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fluxdesk/helpdesk/internal/api/http"
	"github.com/fluxdesk/helpdesk/internal/api/http/handlers"
	"github.com/fluxdesk/helpdesk/internal/auth"
	"github.com/fluxdesk/helpdesk/internal/cache"
	"github.com/fluxdesk/helpdesk/internal/config"
	"github.com/fluxdesk/helpdesk/internal/events"
	"github.com/fluxdesk/helpdesk/internal/notify"
	"github.com/fluxdesk/helpdesk/internal/observability"
	"github.com/fluxdesk/helpdesk/internal/persistence"
	"github.com/fluxdesk/helpdesk/internal/repository"
	"github.com/fluxdesk/helpdesk/internal/service"
	"github.com/fluxdesk/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	emailSettingsRepo := repository.NewEmailSettingsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	listCache := cache.NewTicketListCache(redis.Client, cfg.Cache.CacheTTL(), logger)
	listCache.RegisterInvalidation(dispatcher)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:        ticketRepo,
		HistoryRepo:       historyRepo,
		UserRepo:          userRepo,
		ListCache:         listCache,
		Dispatcher:        dispatcher,
		MaxAttachmentSize: cfg.Upload.MaxSizeBytes,
	})
	suggestionService := service.NewSuggestionService(ticketRepo, historyRepo, cfg.Suggestion)
	reportService := service.NewReportService(ticketRepo)
	departmentService := service.NewDepartmentService(departmentRepo)
	userService := service.NewUserService(userRepo, cfg.Auth)

	hub := notify.NewHub(logger)
	mailer := notify.NewSettingsMailer(emailSettingsRepo, cfg.SMTP, logger)
	emailSettingsService := service.NewEmailSettingsService(emailSettingsRepo, mailer)
	notifier := notify.NewNotifier(notify.NotifierDependencies{
		UserRepo:    userRepo,
		Hub:         hub,
		Mailer:      mailer,
		Logger:      logger,
		FrontendURL: cfg.App.FrontendURL,
	})
	worker.StartNotificationWorker(notifier, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(userService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()
	metrics.ObserveEvents(dispatcher)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxSizeBytes) * 4,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService, suggestionService, cfg.Upload.MaxSizeBytes),
		Users:          handlers.NewUsersHandler(userService),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		Reports:        handlers.NewReportsHandler(reportService),
		EmailSettings:  handlers.NewEmailSettingsHandler(emailSettingsService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		WS:             handlers.NewWSHandler(hub, authMiddleware, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
