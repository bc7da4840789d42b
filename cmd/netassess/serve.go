package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/graphstat/netassess/pkg/api"
	"github.com/graphstat/netassess/pkg/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the assessment HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// serverConfig is read from NETASSESS_* environment variables.
type serverConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxWorkers   int
	LogLevel     string
}

func loadServerConfig() serverConfig {
	v := viper.New()
	v.SetEnvPrefix("netassess")
	v.AutomaticEnv()

	v.SetDefault("server_address", ":8080")
	v.SetDefault("server_read_timeout", 30*time.Second)
	v.SetDefault("server_write_timeout", 60*time.Second)
	v.SetDefault("max_workers", 2)
	v.SetDefault("log_level", "info")

	return serverConfig{
		Address:      v.GetString("server_address"),
		ReadTimeout:  v.GetDuration("server_read_timeout"),
		WriteTimeout: v.GetDuration("server_write_timeout"),
		MaxWorkers:   v.GetInt("max_workers"),
		LogLevel:     v.GetString("log_level"),
	}
}

func runServe() error {
	cfg := loadServerConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(level)

	log.Info().
		Str("address", cfg.Address).
		Int("max_workers", cfg.MaxWorkers).
		Msg("starting assessment service")

	svc := service.New(cfg.MaxWorkers, log.Logger)
	defer svc.Close()

	handlers := api.NewHandlers(svc)
	router := mux.NewRouter()
	api.SetupRoutes(router, handlers)
	router.Use(api.LoggingMiddleware)
	router.Use(api.RecoveryMiddleware)

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      cors.Default().Handler(router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info().Str("address", cfg.Address).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
