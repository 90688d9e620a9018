package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/circuitbreaker"
	"github.com/AyushSingh360/Aryan-portfolio/internal/config"
	"github.com/AyushSingh360/Aryan-portfolio/internal/healthcheck"
	"github.com/AyushSingh360/Aryan-portfolio/internal/middleware"
	"github.com/AyushSingh360/Aryan-portfolio/internal/notify"
	"github.com/AyushSingh360/Aryan-portfolio/internal/ratelimit"
	"github.com/AyushSingh360/Aryan-portfolio/internal/repository"
	"github.com/AyushSingh360/Aryan-portfolio/internal/server"
	"github.com/AyushSingh360/Aryan-portfolio/internal/service"
	"github.com/AyushSingh360/Aryan-portfolio/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	// Load env if it exists
	godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := server.Dependencies{
		Health: healthcheck.NewChecker(healthcheck.Config{}),
	}

	var redis *storage.RedisClient
	if cfg.Redis.Enabled() {
		redis, err = storage.NewRedis(cfg.Redis.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redis.Close()

		log.Println("Connected to redis successfully")
		deps.Health.Register("redis", redis)
	}

	if cfg.Database.Enabled() {
		postgres, err := storage.NewPostgres(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		requestLogRepo := repository.NewRequestLogRepository(postgres)

		// Stopped by srv.Shutdown once in-flight requests have drained
		recorder := middleware.NewRequestLogRecorder(requestLogRepo, cfg.Database.RequestLogBuffer)
		recorder.Start(context.Background())

		service.NewRetentionService(requestLogRepo, cfg.Database.RetentionDays).Start(ctx, 24*time.Hour)

		log.Println("Request logging to database enabled")
		deps.Health.Register("database", postgres)
		deps.RequestLog = recorder
	}

	deps.Health.Start(ctx)

	limiter, err := ratelimit.NewLimiter(
		redis,
		cfg.RateLimit.Algorithm,
		cfg.RateLimit.MaxRequests,
		cfg.RateLimit.Window.Duration,
		ratelimit.SystemClock,
	)
	if err != nil {
		log.Fatalf("Failed to create rate limiter: %v", err)
	}
	if sweeper, ok := limiter.(ratelimit.Sweeper); ok {
		ratelimit.StartJanitor(ctx, sweeper, cfg.RateLimit.SweepInterval.Duration)
	}
	deps.Limiter = limiter

	log.Printf("Rate limit: algorithm=%s max=%d window=%s",
		cfg.RateLimit.Algorithm, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window.Duration)

	deps.Notifier, deps.MailBreaker = buildNotifier(cfg.Mail)

	srv := server.New(cfg, deps)

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// buildNotifier also returns the SMTP circuit breaker, nil for the log
// notifier.
func buildNotifier(cfg config.MailConfig) (notify.Notifier, *circuitbreaker.Breaker) {
	if cfg.ResendAPIKey != "" {
		log.Println("RESEND_API_KEY is set but no Resend transport exists; it is ignored")
	}

	if cfg.Provider != "smtp" {
		log.Println("Mail provider: log (submissions are logged, not mailed)")
		return notify.NewLogNotifier(nil), nil
	}

	log.Printf("Mail provider: smtp via %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:        "smtp",
		MaxFailures: 5,
		CoolDown:    time.Minute,
	})
	return notify.NewResilient(notify.NewSMTPNotifier(cfg.SMTP), breaker, 3, 200*time.Millisecond), breaker
}
