// @title                       Marketplace Agro API
// @version                     1.0
// @description                 Agricultural marketplace: producer listings, buyer browsing and account administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/agromarket/marketplace-api/internal/api"
	"github.com/agromarket/marketplace-api/internal/core/ports"
	"github.com/agromarket/marketplace-api/internal/core/service"
	"github.com/agromarket/marketplace-api/internal/infrastructure/config"
	redisstore "github.com/agromarket/marketplace-api/internal/infrastructure/db/redis"
	"github.com/agromarket/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/agromarket/marketplace-api/internal/infrastructure/security"
	"github.com/agromarket/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		boot := logger.Init(logger.Options{Pretty: true})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "marketplace-api",
		Env:     cfg.Env,
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hasher, err := security.NewHasher(cfg.Auth.HashAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil)

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	health := st.health
	var guard ports.RegistrationGuard
	if cfg.Redis.Addr != "" {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		guard = redisstore.NewRegistrationGuard(client, redisstore.DefaultClaimTTL)
		health = append(health, handlers.Dependency{Name: "redis", Ping: redisstore.Pinger(client)})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("registration guard enabled")
	}

	router := api.NewRouter(api.Deps{
		Auth:     service.NewAuthService(st.users, hasher, tokens, logger.Component("auth")),
		Users:    service.NewUserService(st.users, hasher, guard, logger.Component("users")),
		Products: service.NewProductService(st.products, logger.Component("products")),
		Health:   health,
		Logger:   logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
