package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/arkd/internal/config"
	"github.com/tdex-network/arkd/internal/core/application"
	"github.com/tdex-network/arkd/internal/core/ports"
	"github.com/tdex-network/arkd/internal/infrastructure/metrics"
	"github.com/tdex-network/arkd/internal/infrastructure/pubsub"
	"github.com/tdex-network/arkd/internal/interfaces"
	metricsinterface "github.com/tdex-network/arkd/internal/interfaces/metrics"
	"github.com/tdex-network/arkd/pkg/stats"
	"github.com/tdex-network/arkd/pkg/verifier"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to initialize config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	net := config.GetNetwork()
	dbType := config.GetString(config.DBTypeKey)
	profilerEnabled := config.GetBool(config.EnableProfilerKey)
	metricsPort := config.GetInt(config.MetricsPortKey)

	// Signatures can't be verified without a working curve backend.
	engine, err := verifier.NewEngine(net)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize signature engine")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsSvc, err := metrics.NewService(registry)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize metrics")
	}

	pubsubSvc, err := newPubSub()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize webhook notifier")
	}

	appConfig := &application.Config{
		DBType:        dbType,
		DBConfig:      config.GetDBDir(),
		Network:       net,
		Engine:        engine,
		RoundInterval: config.GetRoundInterval(),
		PubSub:        pubsubSvc,
		Metrics:       metricsSvc,
		MaxGeneration: uint32(config.GetInt(config.MaxGenerationKey)),
	}
	svc, err := application.NewService(appConfig)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize coordinator")
	}

	if err := stats.RegisterCollectors(registry, svc); err != nil {
		log.WithError(err).Fatal("failed to register ledger collectors")
	}

	var metricsInterface interfaces.Service
	if metricsPort > 0 {
		metricsInterface, err = metricsinterface.NewService(
			metricsinterface.ServiceOpts{Port: metricsPort, Gatherer: registry},
		)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize metrics interface")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if profilerEnabled {
		stats.EnableStatistics(
			ctx, config.GetStatsInterval(), svc, registry, config.GetProfilerDir(),
		)
	}

	log.Infof("starting coordinator on %s with %s db", net.Name, dbType)

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start coordinator")
	}
	if metricsInterface != nil {
		if err := metricsInterface.Start(); err != nil {
			log.WithError(err).Fatal("failed to start metrics interface")
		}
	}

	log.Infof(
		"coordinator started at round %d, session %s",
		svc.CurrentRoundHeight(), svc.CurrentRoundSessionId(),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down coordinator")
	if metricsInterface != nil {
		metricsInterface.Stop()
	}
	svc.Stop()
	cancel()

	log.Debug("exiting")
}

func newPubSub() (ports.PubSub, error) {
	endpoints := config.GetWebhookEndpoints()
	if len(endpoints) <= 0 {
		return nil, nil
	}

	ps, err := pubsub.NewService(
		config.GetInt(config.WebhookRateLimitKey), pubsub.DefaultRequestTimeout,
	)
	if err != nil {
		return nil, err
	}

	secret := config.GetString(config.WebhookSecretKey)
	for _, endpoint := range endpoints {
		if _, err := ps.Subscribe(ports.AnyTopic, endpoint, secret); err != nil {
			return nil, err
		}
		log.Debugf("notifying all events to %s", endpoint)
	}
	return ps, nil
}
