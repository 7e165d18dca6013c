package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/farecast/config"
	"github.com/Domenick1991/farecast/internal/bootstrap"
	"github.com/Domenick1991/farecast/internal/cache"
	"github.com/Domenick1991/farecast/internal/kafka"
	"github.com/Domenick1991/farecast/internal/repository"
	"github.com/Domenick1991/farecast/internal/service/analysis"
	"github.com/Domenick1991/farecast/internal/service/forecast"
	"github.com/Domenick1991/farecast/pkg/logger"
	"github.com/Domenick1991/farecast/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	m := metrics.New("farecast")
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Analysis.CacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	priceRepo := repository.NewPriceRecordRepository(pool)
	forecastService := forecast.NewForecastService(priceRepo, forecast.NewModelCache(), cfg.Analysis.CrossValidationK, log, m)
	analysisService := analysis.NewAnalysisService(
		priceRepo,
		redisCache,
		forecastService,
		producer,
		cfg.Analysis.ForecastHorizon,
		cfg.Analysis.FlightListLimit,
		log,
		m,
		analysis.WithStatsTopic(cfg.Kafka.StatsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, analysisService, forecastService); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
