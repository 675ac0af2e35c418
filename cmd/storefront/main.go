package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/handlers"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/stores/jsonstore"
	"storefront/internal/stores/kafka"
	"storefront/internal/tracing"
	"storefront/internal/users"
)

func main() {
	if err := startApp(); err != nil {
		slog.Error("storefront stopped", slog.String("ERROR", err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	config.SetupLogger(cfg.Log.Level)

	shutdownTracing, err := tracing.Setup(cfg.Tracing.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Error("tracer shutdown", slog.String("ERROR", err.Error()))
		}
	}()

	// store
	store := jsonstore.New(cfg.Store.Path)
	if err := store.Init(context.Background()); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	slog.Info("store ready", slog.String("Path", store.Path()))

	// events
	var producer kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaConf, err := kafka.NewConf(cfg.Kafka.Brokers)
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer kafkaConf.Close()
		producer = kafkaConf
		slog.Info("publishing events", slog.Any("Brokers", cfg.Kafka.Brokers))
	}

	// services
	keys, err := auth.NewKeys([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("constructing auth keys: %w", err)
	}
	p, err := products.NewConf(store)
	if err != nil {
		return err
	}
	u, err := users.NewConf(store, keys, producer)
	if err != nil {
		return err
	}
	o, err := orders.NewConf(store, producer)
	if err != nil {
		return err
	}

	// http server
	engine, err := handlers.API(p, u, o, keys, cfg.GinMode)
	if err != nil {
		return err
	}
	api := http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handlers.WithCORS(engine, cfg.HTTP.CORS),
		ReadTimeout:  8 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("main: API listening", slog.String("Addr", api.Addr))
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		slog.Info("main: start shutdown", slog.String("Signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			_ = api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	slog.Info("main: shutdown complete")
	return nil
}
