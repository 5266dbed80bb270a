package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/arkd/internal/infrastructure/metrics"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc, err := metrics.NewService(reg)
	require.NoError(t, err)

	svc.RequestsEnqueued(3)
	svc.RoundFinalized(1, 2)
	svc.RequestsDropped(1)
	svc.TransferCommitted(2, 1, 100)
	svc.TransferRejected("invalid_signature")
	svc.TransferRejected("invalid_signature")

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[f.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[f.GetName()] = m.GetGauge().GetValue()
			}
		}
	}

	require.Equal(t, float64(3), values["arkd_requests_enqueued_total"])
	require.Equal(t, float64(1), values["arkd_round_height"])
	require.Equal(t, float64(2), values["arkd_vtxos_created_total"])
	require.Equal(t, float64(1), values["arkd_requests_dropped_total"])
	require.Equal(t, float64(100), values["arkd_transfer_fees_sats_total"])
	require.Equal(t, float64(2), values["arkd_transfers_rejected_total"])

	// Collectors can't be registered twice.
	_, err = metrics.NewService(reg)
	require.Error(t, err)
}
