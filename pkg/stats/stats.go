package stats

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	namespace    = "arkd"
	dumpFilename = "stats"
	megabyte     = 1 << 20
)

// Source exposes the ledger state of the coordinator.
type Source interface {
	CurrentRoundHeight() uint64
	PendingRequests() int
	UnspentVtxos(ctx context.Context) (count int, amount uint64, err error)
}

// Snapshot is the state of the coordinator and of the go process at a given
// time.
type Snapshot struct {
	RoundHeight     uint64
	PendingRequests int
	UnspentVtxos    int
	UnspentAmount   uint64
	HeapAllocMB     float64
	Goroutines      int
}

// TakeSnapshot reads the current state of the given source.
func TakeSnapshot(ctx context.Context, src Source) (*Snapshot, error) {
	if src == nil {
		return nil, fmt.Errorf("missing stats source")
	}
	count, amount, err := src.UnspentVtxos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read unspent vtxos: %w", err)
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &Snapshot{
		RoundHeight:     src.CurrentRoundHeight(),
		PendingRequests: src.PendingRequests(),
		UnspentVtxos:    count,
		UnspentAmount:   amount,
		HeapAllocMB:     float64(memStats.HeapAlloc) / megabyte,
		Goroutines:      runtime.NumGoroutine(),
	}, nil
}

func (s *Snapshot) fields() log.Fields {
	return log.Fields{
		"round":      s.RoundHeight,
		"pending":    s.PendingRequests,
		"vtxos":      s.UnspentVtxos,
		"amount":     s.UnspentAmount,
		"heap_mb":    fmt.Sprintf("%.3f", s.HeapAllocMB),
		"goroutines": s.Goroutines,
	}
}

// EnableStatistics starts a go routine that periodically logs a snapshot of
// the coordinator. When the context is done, the metrics collected by the
// given gatherer are dumped to a file in dumpDir.
func EnableStatistics(
	ctx context.Context, interval time.Duration, src Source,
	gatherer prometheus.Gatherer, dumpDir string,
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				snapshot, err := TakeSnapshot(ctx, src)
				if err != nil {
					log.WithError(err).Warn("failed to take statistics snapshot")
					continue
				}
				log.WithFields(snapshot.fields()).Info("coordinator statistics")
			case <-ctx.Done():
				if err := DumpMetrics(gatherer, dumpDir); err != nil {
					log.WithError(err).Warn("failed to dump metrics")
				}
				return
			}
		}
	}()
}

// RegisterCollectors registers the gauges of the ledger state of the source.
// They are read at every scrape.
func RegisterCollectors(reg prometheus.Registerer, src Source) error {
	if reg == nil {
		return fmt.Errorf("missing metrics registerer")
	}
	if src == nil {
		return fmt.Errorf("missing stats source")
	}
	return reg.Register(newLedgerCollector(src))
}

type ledgerCollector struct {
	src           Source
	pending       *prometheus.Desc
	unspentVtxos  *prometheus.Desc
	unspentAmount *prometheus.Desc
}

func newLedgerCollector(src Source) *ledgerCollector {
	return &ledgerCollector{
		src: src,
		pending: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "pending_requests"),
			"Number of requests waiting for the next round.", nil, nil,
		),
		unspentVtxos: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "unspent_vtxos"),
			"Number of unspent vtxos in the ledger.", nil, nil,
		),
		unspentAmount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "unspent_amount_sats"),
			"Sum of the amounts of the unspent vtxos in the ledger.", nil, nil,
		),
	}
}

func (c *ledgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pending
	ch <- c.unspentVtxos
	ch <- c.unspentAmount
}

func (c *ledgerCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		c.pending, prometheus.GaugeValue, float64(c.src.PendingRequests()),
	)

	count, amount, err := c.src.UnspentVtxos(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to collect unspent vtxos")
		ch <- prometheus.NewInvalidMetric(c.unspentVtxos, err)
		ch <- prometheus.NewInvalidMetric(c.unspentAmount, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(
		c.unspentVtxos, prometheus.GaugeValue, float64(count),
	)
	ch <- prometheus.MustNewConstMetric(
		c.unspentAmount, prometheus.GaugeValue, float64(amount),
	)
}

// DumpMetrics appends the metrics collected by the gatherer to the stats file
// in the given directory.
func DumpMetrics(gatherer prometheus.Gatherer, dir string) error {
	if gatherer == nil {
		return fmt.Errorf("missing metrics gatherer")
	}

	file, err := os.OpenFile(
		filepath.Join(dir, dumpFilename),
		os.O_APPEND|os.O_CREATE|os.O_RDWR,
		0644,
	)
	if err != nil {
		return err
	}
	defer file.Close()

	metricFamily, err := gatherer.Gather()
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}
