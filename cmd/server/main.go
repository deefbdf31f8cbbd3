package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hallkal/internal/audit"
	"hallkal/internal/config"
	"hallkal/internal/metrics"
	"hallkal/internal/model"
	"hallkal/internal/server"
	"hallkal/internal/service"
	"hallkal/internal/snapshot"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("HALLKAL_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Snapshot.URL == "" && cfg.Snapshot.File == "" {
		logger.Fatal().Msg("set snapshot.url or snapshot.file in config")
	}

	var auditDB *audit.DB
	if cfg.Audit.Enabled {
		auditDB, err = audit.NewDB(cfg.Audit.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("open audit db error")
		}
		defer auditDB.Close()
	}

	var fetcher service.Fetcher
	if cfg.Snapshot.URL != "" {
		client := snapshot.NewClient(cfg.Snapshot.URL, cfg.FetchTimeout())
		if cfg.Redis.Address != "" && cfg.SnapshotCacheTTL() > 0 {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Address,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			client.UseRedisCache(rdb, cfg.SnapshotCacheTTL())
		}
		fetcher = client
	} else {
		fetcher = fileFetcher{path: cfg.Snapshot.File}
	}

	var recorder service.LoadRecorder
	if auditDB != nil {
		recorder = auditDB
	}
	svc := service.New(fetcher, recorder, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout())
	if err := svc.Reload(loadCtx); err != nil {
		// The server still starts; /readyz stays unready and a manual
		// reload can recover once the origin comes back.
		logger.Error().Err(err).Msg("initial snapshot load failed")
	}
	cancel()

	logger.Info().Int("port", cfg.Server.ListenPort).Msg("calendar server started")
	srv := server.New(svc, auditDB, &logger)
	if err := srv.Run(ctx, cfg.Server.ListenPort, cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// fileFetcher adapts a local snapshot file to the Fetcher interface.
type fileFetcher struct {
	path string
}

func (f fileFetcher) Fetch(context.Context) (*model.Snapshot, error) {
	return snapshot.LoadFile(f.path)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
