package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bjaus/invoke"
	"github.com/bjaus/invoke/internal/charts"
	"github.com/bjaus/invoke/internal/config"
	"github.com/bjaus/invoke/logger"
	"github.com/bjaus/invoke/metric"
)

// operationName is the name the function is deployed under.
const operationName = "default"

type app struct {
	log     *logger.Logger
	handler *invoke.Handler
}

// newApp wires the logger, metrics backend, chart store and service behind a
// Handler with the "default" operation registered.
func newApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, out io.Writer) (*app, error) {
	log, err := newLogger(cfg.Log, out)
	if err != nil {
		return nil, err
	}

	m, err := newMetric(cfg.Metrics, reg)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg.Charts)
	if err != nil {
		return nil, err
	}

	svcLog, err := log.Child(logger.Fields{"component": "charts"})
	if err != nil {
		return nil, err
	}

	svc, err := charts.NewService(charts.Options{
		BaseURL:      cfg.Charts.BaseURL,
		Pages:        cfg.Charts.Pages,
		Airports:     cfg.Charts.Airports,
		SkipAirports: cfg.Charts.SkipAirports,
		Delay:        cfg.Charts.Delay,
		Client:       &http.Client{Timeout: cfg.Charts.Timeout},
		Store:        store,
		Logger:       svcLog,
	})
	if err != nil {
		return nil, err
	}

	h := invoke.NewHandler(log, m)
	h.Handle(operationName, defaultOperation(svc, log))

	return &app{log: log, handler: h}, nil
}

func newLogger(cfg config.LogConfig, out io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logger.New(logger.Options{
		Name:   cfg.Name,
		Level:  level,
		Output: out,
	})
}

func newMetric(cfg config.MetricsConfig, reg prometheus.Registerer) (metric.Metric, error) {
	switch cfg.Backend {
	case "prometheus":
		return metric.NewPrometheus(reg, cfg.Namespace)
	case "noop", "":
		return metric.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", cfg.Backend)
	}
}

func newStore(ctx context.Context, cfg config.ChartsConfig) (charts.Store, error) {
	switch cfg.Store {
	case "s3":
		return charts.NewS3StoreFromEnv(ctx, cfg.Bucket, cfg.Prefix, cfg.Region)
	case "file", "":
		return charts.NewFileStore(cfg.Dir), nil
	default:
		return nil, fmt.Errorf("unknown chart store %q", cfg.Store)
	}
}
