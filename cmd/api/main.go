package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ontimely/admin-portal/internal/api/http"
	"github.com/ontimely/admin-portal/internal/api/http/handlers"
	"github.com/ontimely/admin-portal/internal/auth"
	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/events"
	"github.com/ontimely/admin-portal/internal/observability"
	"github.com/ontimely/admin-portal/internal/persistence"
	"github.com/ontimely/admin-portal/internal/repository"
	"github.com/ontimely/admin-portal/internal/service"
	"github.com/ontimely/admin-portal/internal/worker"
)

const (
	emailQueueSize    = 256
	emailQueueWorkers = 2
	shutdownTimeout   = 10 * time.Second
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

	pool := pg.PoolHandle()
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	staffRepo := repository.NewStaffRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	crashRepo := repository.NewCrashReportRepository(pool)
	paymentRepo := repository.NewPaymentEventRepository(pool)
	uploadRepo := repository.NewUploadRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger.Named("events"))

	emailQueue := worker.NewEmailQueue(service.NewEmailSender(cfg.Notification, logger), emailQueueSize, logger.Named("email"))
	emailQueue.Start(ctx, emailQueueWorkers)
	defer emailQueue.Stop()

	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, emailQueue, logger, cfg.Notification))

	staffService := service.NewStaffService(*cfg, service.StaffDependencies{
		StaffRepo:  staffRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	resetService := service.NewPasswordResetService(*cfg, service.PasswordResetDependencies{
		StaffRepo:  staffRepo,
		ResetRepo:  resetRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		StaffRepo:  staffRepo,
		Dispatcher: dispatcher,
	})
	dashboardService := service.NewDashboardService(staffRepo, ticketRepo, crashRepo)
	crashService := service.NewCrashReportService(crashRepo, dispatcher, logger)
	paymentService := service.NewPaymentWebhookService(paymentRepo, dispatcher, cfg.Payments.WebhookSecret, logger)
	uploadService := service.NewUploadService(cfg.Uploads, uploadRepo, service.DiskStorage{Dir: cfg.Uploads.Dir}, logger)
	// Document emails are sent synchronously so the operator sees provider failures.
	emailService := service.NewEmailService(service.NewEmailSender(cfg.Notification, logger), cfg.Notification.EmailFrom, logger)

	if cfg.Payments.WebhookSecret == "" {
		logger.Warn("PAYMENTS_WEBHOOK_SECRET not set; payment webhooks will be rejected")
	}

	sessions := auth.NewSessionFactory(*cfg, redis.Client, staffRepo, logger.Named("session"))
	sessionMiddleware := auth.NewSessionMiddleware(sessions, cfg.Session.CookieName, cfg.App.Env != "development")

	metrics := observability.NewMetrics("ontimely_portal")

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Uploads.MaxBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.CORS.AllowedOrigins)
	app.Static(cfg.Uploads.PublicPrefix, cfg.Uploads.Dir)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Session:           handlers.NewSessionHandler(metrics),
		Password:          handlers.NewPasswordHandler(resetService, staffService),
		Staff:             handlers.NewStaffHandler(staffService),
		Tickets:           handlers.NewTicketsHandler(ticketService),
		Dashboard:         handlers.NewDashboardHandler(dashboardService),
		CrashReports:      handlers.NewCrashReportsHandler(crashService),
		Payments:          handlers.NewPaymentWebhookHandler(paymentService),
		Uploads:           handlers.NewUploadsHandler(uploadService),
		Email:             handlers.NewEmailHandler(emailService),
		SessionMiddleware: sessionMiddleware,
		Metrics:           metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
