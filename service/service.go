package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/peck/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = 8080

	MetricsHost = "0.0.0.0"
	MetricsPort = 7300
)

// Config holds the listen addresses of the servers.
type Config struct {
	Log         log.Logger
	HealthzHost string
	HealthzPort int
	MetricsHost string
	MetricsPort int
	Status      StatusFunc // Run state served on /healthz, idle when nil
}

func (c Config) healthzAddr() string {
	return net.JoinHostPort(valOr(c.HealthzHost, HealthzHost), strconv.Itoa(portOr(c.HealthzPort, HealthzPort)))
}

func (c Config) metricsAddr() string {
	return net.JoinHostPort(valOr(c.MetricsHost, MetricsHost), strconv.Itoa(portOr(c.MetricsPort, MetricsPort)))
}

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer

	cfg Config
	log log.Logger
}

func New(cfg Config) *Service {
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	s := &Service{
		Healthz: &HealthzServer{log: cfg.Log, status: cfg.Status},
		Metrics: &MetricsServer{},
		cfg:     cfg,
		log:     cfg.Log.New("component", "service"),
	}
	return s
}

func (s *Service) Start(ctx context.Context) {
	s.log.Info("service starting")

	go func() {
		addr := s.cfg.healthzAddr()
		s.log.Info("starting healthz server", "addr", addr)
		if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error starting healthz server", "err", err)
			metrics.RecordErrorDetails("error starting healthz server", err)
		}
	}()

	go func() {
		addr := s.cfg.metricsAddr()
		s.log.Info("starting metrics server", "addr", addr)
		if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error starting metrics server", "err", err)
			metrics.RecordErrorDetails("error starting metrics server", err)
		}
	}()

	s.log.Info("service started")
}

func (s *Service) Shutdown() {
	s.log.Info("service shutting down")

	_ = s.Healthz.Shutdown()
	s.log.Info("healthz stopped")

	_ = s.Metrics.Shutdown()
	s.log.Info("metrics stopped")

	s.log.Info("service stopped")
}

func valOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func portOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
