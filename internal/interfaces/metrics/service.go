package metricsinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	interfaces "github.com/tdex-network/arkd/internal/interfaces"
)

const (
	MetricsPath     = "/metrics"
	shutdownTimeout = 5 * time.Second
)

type service struct {
	opts     ServiceOpts
	server   *http.Server
	listener net.Listener
}

type ServiceOpts struct {
	Port     int
	Gatherer prometheus.Gatherer
}

func (o ServiceOpts) validate() error {
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if o.Gatherer == nil {
		return fmt.Errorf("missing metrics gatherer")
	}
	return nil
}

func (o ServiceOpts) address() string {
	return fmt.Sprintf(":%d", o.Port)
}

// NewService returns the interface serving the daemon metrics in the
// prometheus text format.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(
		opts.Gatherer, promhttp.HandlerOpts{},
	))
	return &service{
		opts:   opts,
		server: &http.Server{Handler: mux},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.address())
	if err != nil {
		return err
	}
	s.listener = lis

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("metrics interface stopped unexpectedly")
		}
	}()

	log.Infof("metrics interface is listening on %s", lis.Addr())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	//nolint
	s.server.Shutdown(ctx)
	log.Debug("stopped metrics interface")
}

// Addr returns the address the interface is listening on.
func (s *service) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
