package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"food-ordering-api/config"
	"food-ordering-api/events"
	"food-ordering-api/handlers"
	"food-ordering-api/logging"
	"food-ordering-api/middleware"
	"food-ordering-api/routes"
	"food-ordering-api/services"
	"food-ordering-api/store"
	"food-ordering-api/tokens"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure logging")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is not set; using the development secret")
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if err := store.AutoMigrate(db); err != nil {
		return err
	}
	st := store.New(db)
	defer st.Close()
	log.WithField("driver", cfg.DBDriver).Info("database ready")

	// Revoked refresh tokens live in redis when configured, else in the database.
	var revocations tokens.RevocationStore = tokens.NewSQLRevocations(st)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		revocations = tokens.NewRedisRevocations(rdb)
		log.WithField("addr", cfg.RedisAddr).Info("token revocations stored in redis")
	}

	var publisher events.Publisher = events.Nop{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		log.WithFields(logrus.Fields{"brokers": brokers, "topic": cfg.KafkaTopic}).Info("publishing order events to kafka")
	}
	defer publisher.Close()

	tok := tokens.NewService([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
		tokens.WithRevocations(revocations))
	accounts := services.NewAccountService(st)
	h := handlers.New(accounts, tok, services.NewCatalogService(st), services.NewOrderService(st, publisher), st)
	r := routes.NewRouter(log, h, middleware.NewAuthenticator(tok, accounts))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
