package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/clock"
	"github.com/iliyamo/gaming-lounge-booking/internal/config"
	"github.com/iliyamo/gaming-lounge-booking/internal/database"
	"github.com/iliyamo/gaming-lounge-booking/internal/handler"
	"github.com/iliyamo/gaming-lounge-booking/internal/logger"
	"github.com/iliyamo/gaming-lounge-booking/internal/middleware"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/queue"
	"github.com/iliyamo/gaming-lounge-booking/internal/repository"
	"github.com/iliyamo/gaming-lounge-booking/internal/router"
	"github.com/iliyamo/gaming-lounge-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional outside development

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn().Msg("redis unavailable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var (
		events service.EventPublisher
		pub    *queue.Publisher
	)
	qcfg := config.LoadQueueConfig()
	if qcfg.Enabled {
		pub = queue.NewPublisher(qcfg.URL, qcfg.Exchange, log.With().Str("component", "publisher").Logger())
		events = pub
		if qcfg.StartConsumer {
			audit := &queue.AuditConsumer{
				URL:      qcfg.URL,
				Exchange: qcfg.Exchange,
				Queue:    qcfg.AuditQueue,
				LogPath:  qcfg.AuditLogPath,
				Log:      log.With().Str("component", "audit").Logger(),
			}
			go func() {
				if err := audit.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("audit consumer stopped")
				}
			}()
		}
	}

	// repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	shopRepo := repository.NewShopRepo(db)
	stationRepo := repository.NewStationRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	tournamentRepo := repository.NewTournamentRepo(db)

	clk := clock.System{}
	seedAdmin(ctx, userRepo, clk, cfg.BcryptCost)

	// services
	bcfg := config.LoadBookingConfig()
	images := service.LocalImageStore{Root: cfg.UploadDir}
	reservations := service.NewReservationService(reservationRepo, clk, service.ReservationOptions{
		InUseGrace:    bcfg.InUseGrace,
		HideCompleted: bcfg.HideCompleted,
		Loyalty:       bcfg.Loyalty,
	}, events)
	stations := service.NewStationService(stationRepo, clk, bcfg.SearchWindow)
	tournaments := service.NewTournamentService(tournamentRepo, shopRepo, images, clk, events)
	shops := service.NewShopService(shopRepo, stationRepo, userRepo, clk)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recover())
	e.Static("/uploads", cfg.UploadDir)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo, clk), cfg.JWTSecret, limit)
	router.RegisterPublic(e,
		handler.NewStationHandler(stations),
		handler.NewShopHandler(shops),
		handler.NewTournamentHandler(tournaments),
		cache)
	router.RegisterCustomer(e,
		handler.NewReservationHandler(reservations),
		handler.NewTournamentHandler(tournaments),
		cfg.JWTSecret, limit)
	router.RegisterAdmin(e, handler.NewAdminHandler(shops, tournaments), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if pub != nil {
		if err := pub.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("event buffer not flushed")
		}
	}
}

// seedAdmin creates the operator account named by ADMIN_EMAIL and
// ADMIN_PASSWORD when both are set. An existing account is left alone.
func seedAdmin(ctx context.Context, users *repository.UserRepo, clk clock.Clock, cost int) {
	email, pass := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")
	if email == "" || pass == "" {
		return
	}
	_, err := users.Create(ctx, repository.NewUser{
		Email:     email,
		Password:  pass,
		FirstName: "Lounge",
		LastName:  "Admin",
		Caps:      model.CapAdmin,
		CreatedAt: clk.Now(),
	}, cost)
	switch {
	case err == nil:
		logger.Get().Info().Str("email", email).Msg("admin account created")
	case errors.Is(err, repository.ErrEmailExists):
	default:
		logger.Get().Error().Err(err).Msg("admin seeding failed")
	}
}
