package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tdex-network/arkd/internal/core/ports"
)

const namespace = "arkd"

type service struct {
	roundHeight       prometheus.Gauge
	roundsTotal       prometheus.Counter
	vtxosCreatedTotal prometheus.Counter
	requestsEnqueued  prometheus.Counter
	requestsDropped   prometheus.Counter
	transfersTotal    prometheus.Counter
	transferInputs    prometheus.Counter
	transferOutputs   prometheus.Counter
	transferFeesTotal prometheus.Counter
	transfersRejected *prometheus.CounterVec
}

// NewService returns a prometheus backed metrics recorder whose collectors
// are registered with the given registerer.
func NewService(reg prometheus.Registerer) (ports.Metrics, error) {
	svc := &service{
		roundHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "round_height",
			Help:      "Height of the latest finalized round.",
		}),
		roundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Number of finalized rounds.",
		}),
		vtxosCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vtxos_created_total",
			Help:      "Number of vtxos created by finalized rounds.",
		}),
		requestsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_enqueued_total",
			Help:      "Number of pending requests submitted to the round batcher.",
		}),
		requestsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_dropped_total",
			Help:      "Number of pending requests dropped by a failed round flush.",
		}),
		transfersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_committed_total",
			Help:      "Number of committed transfers.",
		}),
		transferInputs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_inputs_total",
			Help:      "Number of vtxos spent by committed transfers.",
		}),
		transferOutputs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_outputs_total",
			Help:      "Number of outputs of committed transfers.",
		}),
		transferFeesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_fees_sats_total",
			Help:      "Sum of the implicit fees of committed transfers.",
		}),
		transfersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_rejected_total",
			Help:      "Number of rejected transfers by reason.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{
		svc.roundHeight, svc.roundsTotal, svc.vtxosCreatedTotal,
		svc.requestsEnqueued, svc.requestsDropped, svc.transfersTotal,
		svc.transferInputs, svc.transferOutputs, svc.transferFeesTotal,
		svc.transfersRejected,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func (s *service) RoundFinalized(height uint64, numVtxos int) {
	s.roundHeight.Set(float64(height))
	s.roundsTotal.Inc()
	s.vtxosCreatedTotal.Add(float64(numVtxos))
}

func (s *service) RequestsEnqueued(count int) {
	s.requestsEnqueued.Add(float64(count))
}

func (s *service) RequestsDropped(count int) {
	s.requestsDropped.Add(float64(count))
}

func (s *service) TransferCommitted(numInputs, numOutputs int, fee uint64) {
	s.transfersTotal.Inc()
	s.transferInputs.Add(float64(numInputs))
	s.transferOutputs.Add(float64(numOutputs))
	s.transferFeesTotal.Add(float64(fee))
}

func (s *service) TransferRejected(reason string) {
	s.transfersRejected.WithLabelValues(reason).Inc()
}
