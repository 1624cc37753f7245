package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/salon-reservation/internal/config"
	"github.com/iliyamo/salon-reservation/internal/database"
	"github.com/iliyamo/salon-reservation/internal/handler"
	"github.com/iliyamo/salon-reservation/internal/jobs"
	"github.com/iliyamo/salon-reservation/internal/logger"
	"github.com/iliyamo/salon-reservation/internal/middleware"
	"github.com/iliyamo/salon-reservation/internal/notify"
	"github.com/iliyamo/salon-reservation/internal/queue"
	"github.com/iliyamo/salon-reservation/internal/repository"
	"github.com/iliyamo/salon-reservation/internal/router"
	"github.com/iliyamo/salon-reservation/internal/service"
	"github.com/iliyamo/salon-reservation/internal/storage"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("logger init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()

	venues := repository.NewVenueRepo(db)
	services := repository.NewServiceRepo(db)
	slots := repository.NewTimeSlotRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	bookings := repository.NewBookingRepo(db)

	notifier := buildNotifier(ctx, cfg.Notify)
	manager := service.NewBookingManager(service.NewSQLBookingStore(db), notifier)
	userSvc := service.NewUserService(users, cfg.BcryptCost)
	authSvc := service.NewAuthService(users, tokens, service.AuthConfig{
		Secret:         cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
	})

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	mw := router.Middleware{
		RateLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:       middleware.NewRedisCache(cacheCfg, rdb),
		Invalidator: middleware.NewCacheInvalidator(rdb, cacheCfg.Prefix),
	}

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, userSvc),
		Bookings: handler.NewBookingHandler(manager),
		Catalog:  handler.NewCatalogHandler(venues, services, slots),
		Users:    handler.NewUserHandler(userSvc),
		Reports:  handler.NewReportHandler(bookings),
	}
	if cfg.S3.Enabled() {
		store, err := storage.NewS3Storage(ctx, storage.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("s3 storage init failed")
		}
		h.Upload = handler.NewUploadHandler(store, storage.DefaultPhotoProcessor())
	} else {
		log.Info().Msg("S3_BUCKET not set; photo uploads disabled")
	}

	if cfg.Twilio.Enabled() {
		job := jobs.NewReminderJob(manager, jobs.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From))
		sched, err := job.Schedule(cfg.Twilio.ReminderCron)
		if err != nil {
			log.Fatal().Err(err).Msg("reminder job not scheduled")
		}
		defer sched.Stop()
		log.Info().Str("cron", cfg.Twilio.ReminderCron).Msg("sms reminders scheduled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: corsOrigins(cfg.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestLogger())
	router.RegisterRoutes(e, cfg.JWTSecret, h, mw)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// buildNotifier picks the confirmation transport.  The queue transport
// also starts the consumer that mails published confirmations.
func buildNotifier(ctx context.Context, cfg config.NotifyConfig) service.Notifier {
	mailer := notify.NewMailer(notify.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.From,
	})
	switch cfg.Transport {
	case "smtp":
		log.Info().Str("host", cfg.SMTPHost).Msg("confirmations sent over smtp")
		return mailer
	case "queue":
		if cfg.RabbitMQURL == "" {
			log.Fatal().Msg("NOTIFY_TRANSPORT=queue requires RABBITMQ_URL")
		}
		go func() {
			err := queue.StartBookingConsumer(ctx, cfg.RabbitMQURL, cfg.Queue, mailer.HandleEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("booking consumer stopped")
			}
		}()
		log.Info().Str("queue", cfg.Queue).Msg("confirmations published to rabbitmq")
		return notify.NewQueueNotifier(queue.NewPublisher(cfg.RabbitMQURL, cfg.Queue))
	}
	log.Info().Msg("mail disabled; confirmations are only logged")
	return notify.LogNotifier{}
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
