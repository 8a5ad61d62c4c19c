package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hostel-server/config"
	"hostel-server/database"
	"hostel-server/jobs"
	"hostel-server/repository"
	"hostel-server/routes"
	"hostel-server/services"
	"hostel-server/sessions"
	"hostel-server/storage"
	"hostel-server/telemetry"
	ws "hostel-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid configuration")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.OTLPInsecure)

	health := map[string]routes.Pinger{}

	// Storage
	var store repository.Store
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("⚠️ Using in-memory store, data is lost on restart")
		store = repository.NewMemoryStore()
	default:
		db, err := database.Open(cfg.DatabaseURL, cfg.DBLogLevel)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to initialize database")
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to migrate database")
		}
		store = repository.NewGormStore(db)
	}
	health["database"] = store.Ping

	// Redis backs sessions and the e-mail queue when configured
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = storage.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to connect to Redis")
		}
		defer rdb.Close()
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Msg("✅ Connected to Redis")
	}

	var sessionStore sessions.Store
	if rdb != nil {
		sessionStore = sessions.NewRedisStore(rdb)
	} else {
		mem := sessions.NewMemoryStore()
		sweeper := jobs.NewSweepJob(mem, 10*time.Minute)
		sweeper.Start()
		defer sweeper.Stop()
		sessionStore = mem
		log.Warn().Msg("⚠️ REDIS_URL not set, sessions are kept in memory")
	}

	// Room board
	hub := ws.NewHub(store.Rooms().List)
	go hub.Run(ctx)

	// Confirmation e-mails
	var queue services.ConfirmationQueue
	if rdb != nil {
		var sender jobs.Sender = jobs.LogSender{}
		if cfg.MailEnabled() {
			sender = jobs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		}
		jobs.NewConfirmationWorker(rdb, store, sender, cfg.HostelName).Start(ctx, cfg.MailWorkers)
		queue = jobs.NewDispatcher(rdb)
	} else {
		log.Warn().Msg("⚠️ Confirmation e-mails disabled (no Redis)")
	}

	// Document photo uploads
	var media services.MediaStore
	if cfg.CloudinaryEnabled() {
		cld, err := storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to configure Cloudinary")
		}
		media = cld
	}

	deps := routes.Dependencies{
		Auth:    services.NewAuthService(store.Workers(), sessionStore, cfg.JWTSecret, cfg.SessionTTL()),
		Clients: services.NewClientService(store.Clients()),
		Rooms:   services.NewRoomService(store.Rooms(), hub),
		Reservations: services.NewReservationService(store, services.ReservationConfig{
			Location:    cfg.Location(),
			CheckInHour: cfg.CheckInHour,
			Publisher:   hub,
			Mail:        queue,
		}),
		Stays:  services.NewStayService(store, media, hub),
		Hub:    hub,
		Health: health,
	}

	if cfg.GinMode == gin.ReleaseMode || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(deps, routes.Options{
		HostelName:     cfg.HostelName,
		SessionCookie:  cfg.SessionCookie,
		CookieSecure:   cfg.CookieSecure,
		SessionTTL:     cfg.SessionTTL(),
		AllowedOrigins: cfg.Origins(),
		LoginPerMinute: cfg.LoginRateLimit,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("hostel", cfg.HostelName).Msg("🚀 Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ Server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown error")
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
