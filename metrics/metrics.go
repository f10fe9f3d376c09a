// Package metrics exposes receiver transfer progress and Go runtime state
// as OpenTelemetry instruments, exported through a Prometheus registry.
package metrics

import (
	"context"
	"runtime"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Snapshot is the transfer state polled on every scrape.
type Snapshot struct {
	SymbolsObserved int64
	UniqueSymbols   int64
	Coverage        float64
	DecodeAttempts  int64
	DecodeSuccesses int64
	RejectedSymbols int64
	DecodeComplete  bool
}

var (
	sourceMu sync.RWMutex
	source   func() Snapshot

	meter metric.Meter

	symbolsObservedGauge metric.Int64ObservableGauge
	uniqueSymbolsGauge   metric.Int64ObservableGauge
	coverageGauge        metric.Float64ObservableGauge
	decodeAttemptsGauge  metric.Int64ObservableGauge
	decodeSuccessesGauge metric.Int64ObservableGauge
	rejectedGauge        metric.Int64ObservableGauge
	decodeCompleteGauge  metric.Int64ObservableGauge

	goroutinesGauge metric.Int64ObservableGauge
	heapAllocGauge  metric.Int64ObservableGauge
	gcNumGauge      metric.Int64ObservableGauge
)

// SetSource installs the callback the gauges read from. Passing nil detaches
// the previous source; the transfer gauges then report zero.
func SetSource(fn func() Snapshot) {
	sourceMu.Lock()
	source = fn
	sourceMu.Unlock()
}

func snapshot() Snapshot {
	sourceMu.RLock()
	fn := source
	sourceMu.RUnlock()
	if fn == nil {
		return Snapshot{}
	}
	return fn()
}

// Init registers the observable instruments on the global meter provider.
// InitPrometheus must run first so the readings have somewhere to go.
func Init() error {
	meter = otel.Meter("tightbeam.metrics")

	var err error
	symbolsObservedGauge, err = meter.Int64ObservableGauge(
		"tightbeam.symbols.observed",
		metric.WithDescription("Symbol frames captured, including duplicates"),
		metric.WithUnit("{symbols}"),
	)
	if err != nil {
		return err
	}

	uniqueSymbolsGauge, err = meter.Int64ObservableGauge(
		"tightbeam.symbols.unique_indices",
		metric.WithDescription("Distinct source block indices covered so far"),
		metric.WithUnit("{blocks}"),
	)
	if err != nil {
		return err
	}

	coverageGauge, err = meter.Float64ObservableGauge(
		"tightbeam.coverage",
		metric.WithDescription("Fraction of source blocks referenced by captured symbols"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	decodeAttemptsGauge, err = meter.Int64ObservableGauge(
		"tightbeam.decode.attempts",
		metric.WithDescription("Decode attempts with at least k symbols"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return err
	}

	decodeSuccessesGauge, err = meter.Int64ObservableGauge(
		"tightbeam.decode.successes",
		metric.WithDescription("Successful payload reconstructions"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return err
	}

	rejectedGauge, err = meter.Int64ObservableGauge(
		"tightbeam.symbols.rejected",
		metric.WithDescription("Symbols dropped by integrity verification"),
		metric.WithUnit("{symbols}"),
	)
	if err != nil {
		return err
	}

	decodeCompleteGauge, err = meter.Int64ObservableGauge(
		"tightbeam.decode.complete",
		metric.WithDescription("1 once the payload has been recovered"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	goroutinesGauge, err = meter.Int64ObservableGauge(
		"go.goroutines",
		metric.WithDescription("Number of goroutines"),
		metric.WithUnit("{goroutines}"),
	)
	if err != nil {
		return err
	}

	heapAllocGauge, err = meter.Int64ObservableGauge(
		"go.memory.heap.allocated",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	gcNumGauge, err = meter.Int64ObservableGauge(
		"go.gc.count",
		metric.WithDescription("Number of completed GC cycles"),
		metric.WithUnit("{cycles}"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			s := snapshot()
			o.ObserveInt64(symbolsObservedGauge, s.SymbolsObserved)
			o.ObserveInt64(uniqueSymbolsGauge, s.UniqueSymbols)
			o.ObserveFloat64(coverageGauge, s.Coverage)
			o.ObserveInt64(decodeAttemptsGauge, s.DecodeAttempts)
			o.ObserveInt64(decodeSuccessesGauge, s.DecodeSuccesses)
			o.ObserveInt64(rejectedGauge, s.RejectedSymbols)
			var complete int64
			if s.DecodeComplete {
				complete = 1
			}
			o.ObserveInt64(decodeCompleteGauge, complete)

			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			o.ObserveInt64(goroutinesGauge, int64(runtime.NumGoroutine()))
			o.ObserveInt64(heapAllocGauge, int64(ms.HeapAlloc))
			o.ObserveInt64(gcNumGauge, int64(ms.NumGC))
			return nil
		},
		symbolsObservedGauge,
		uniqueSymbolsGauge,
		coverageGauge,
		decodeAttemptsGauge,
		decodeSuccessesGauge,
		rejectedGauge,
		decodeCompleteGauge,
		goroutinesGauge,
		heapAllocGauge,
		gcNumGauge,
	)
	return err
}
