package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ironvault/auth-service/config"
	"github.com/ironvault/auth-service/db"
	"github.com/ironvault/auth-service/internal/auth/delivery"
	"github.com/ironvault/auth-service/internal/auth/domain"
	"github.com/ironvault/auth-service/internal/auth/handler"
	"github.com/ironvault/auth-service/internal/auth/recaptcha"
	"github.com/ironvault/auth-service/internal/auth/repository/memory"
	"github.com/ironvault/auth-service/internal/auth/repository/postgres"
	redisrepo "github.com/ironvault/auth-service/internal/auth/repository/redis"
	"github.com/ironvault/auth-service/internal/auth/service"
	"github.com/ironvault/auth-service/internal/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var users domain.UserStore = memory.NewUserStore()
	if cfg.DBURL != "" {
		if err := db.Migrate(ctx, cfg.DBURL); err != nil {
			log.Fatal("apply migrations", zap.Error(err))
		}
		pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
		if err != nil {
			log.Fatal("connect to postgres", zap.Error(err))
		}
		defer pool.Close()
		users = postgres.NewUserStore(pool)
	}

	guard := service.NewGuard(cfg.CaptchaThreshold, time.Duration(cfg.FailureWindowMin)*time.Minute)
	sweepers := []interface{ Sweep() }{guard}

	var revoked domain.RevokedTokenStore
	var challengeStore domain.ChallengeStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal("connect to redis", zap.Error(err))
		}
		revoked = redisrepo.NewRevokedTokenStore(client)
		challengeStore = redisrepo.NewChallengeStore(client)
	} else {
		revoked = memory.NewRevokedTokenStore()
		memChallenges := memory.NewChallengeStore()
		challengeStore = memChallenges
		sweepers = append(sweepers, memChallenges)
	}

	var captcha domain.CaptchaVerifier
	if cfg.RecaptchaSecret != "" {
		captcha = recaptcha.NewVerifier(cfg.RecaptchaSecret)
	} else {
		log.Warn("RECAPTCHA_SECRET not set, accepting every captcha token")
		captcha = recaptcha.InsecureAllowAll{}
	}

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenExpiryMin, revoked)
	challenges := service.NewChallengeManager(challengeStore, delivery.NewLogSender(log), cfg.TwoFAExpiryMin)
	loginService := service.NewLoginService(users, tokenService, guard, challenges, captcha, log)
	authHandler := handler.NewAuthHandler(loginService, cfg.ClientIDHeader)

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.Env == "production"})
	app.Use(handler.RequestLogger(log))
	handler.RegisterRoutes(app, authHandler)

	// Expired guard and challenge entries are evicted lazily on access; the
	// sweep keeps the maps bounded when a key is never touched again.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.FailureWindowMin) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, s := range sweepers {
					s.Sweep()
				}
			}
		}
	}()

	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
