package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/mss"
)

const (
	metricElementsTotal = "maxscore.scan.elements.total"
	metricRangesTotal   = "maxscore.scan.ranges.total"
	metricMergesTotal   = "maxscore.scan.merges.total"
	metricPrunesTotal   = "maxscore.scan.prunes.total"
	metricFlushesTotal  = "maxscore.scan.flushes.total"
	metricPeakRegister  = "maxscore.scan.register.peak"
	metricCacheLookups  = "maxscore.cache.lookups.total"

	attrCacheResult = "result"
	cacheResultHit  = "hit"
	cacheResultMiss = "miss"

	peakRegisterMaxBound = 65536
)

// ScanMetrics holds OTel instruments fed from mss.Stats.
type ScanMetrics struct {
	elements     metric.Int64Counter
	ranges       metric.Int64Counter
	merges       metric.Int64Counter
	prunes       metric.Int64Counter
	flushes      metric.Int64Counter
	peakRegister metric.Int64Histogram
	cacheLookups metric.Int64Counter
}

// NewScanMetrics creates scan metric instruments from the given meter.
func NewScanMetrics(mt metric.Meter) (*ScanMetrics, error) {
	sm := &ScanMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&sm.elements, metricElementsTotal, "Input elements scanned", "{element}"},
		{&sm.ranges, metricRangesTotal, "Maximal scoring ranges emitted", "{range}"},
		{&sm.merges, metricMergesTotal, "Candidate merges", "{merge}"},
		{&sm.prunes, metricPrunesTotal, "Search index entries pruned", "{entry}"},
		{&sm.flushes, metricFlushesTotal, "Register flushes that emitted ranges", "{flush}"},
		{&sm.cacheLookups, metricCacheLookups, "Result cache lookups by result", "{lookup}"},
	}

	for _, c := range counters {
		counter, err := mt.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}

		*c.dst = counter
	}

	peak, err := mt.Int64Histogram(metricPeakRegister,
		metric.WithDescription("Largest number of pending candidates per scan"),
		metric.WithUnit("{candidate}"),
		metric.WithExplicitBucketBoundaries(1, 4, 16, 64, 256, 1024, 4096, peakRegisterMaxBound),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPeakRegister, err)
	}

	sm.peakRegister = peak

	return sm, nil
}

// RecordScan records the counters of one completed scan.
// Safe to call on a nil receiver (no-op).
func (sm *ScanMetrics) RecordScan(ctx context.Context, stats mss.Stats) {
	if sm == nil {
		return
	}

	sm.elements.Add(ctx, int64(stats.Elements))
	sm.ranges.Add(ctx, int64(stats.Emitted))
	sm.merges.Add(ctx, int64(stats.Merges))
	sm.prunes.Add(ctx, int64(stats.Prunes))
	sm.flushes.Add(ctx, int64(stats.Flushes))
	sm.peakRegister.Record(ctx, int64(stats.PeakRegister))
}

// RecordCacheLookup records one result cache lookup.
// Safe to call on a nil receiver (no-op).
func (sm *ScanMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if sm == nil {
		return
	}

	result := cacheResultMiss
	if hit {
		result = cacheResultHit
	}

	sm.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(attrCacheResult, result)))
}
