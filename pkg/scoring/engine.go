package scoring

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/mss"
	"github.com/Sumatoshi-tech/maxscore/pkg/cache"
	"github.com/Sumatoshi-tech/maxscore/pkg/observability"
	"github.com/Sumatoshi-tech/maxscore/pkg/seqio"
)

const (
	spanFind        = "scoring.find"
	spanFindRecords = "scoring.find_records"
	spanFindStream  = "scoring.find_stream"

	attrElements  = "scoring.elements"
	attrRanges    = "scoring.ranges"
	attrMode      = "scoring.mode"
	attrThreshold = "scoring.threshold"
	attrCached    = "scoring.cached"

	// ctxCheckInterval is how many streamed elements pass between
	// cancellation checks.
	ctxCheckInterval = 4096
)

// Segment is one maximal scoring range and its residual sum.
type Segment struct {
	mss.Range

	Score float64 `json:"score" yaml:"score"`
}

// Result is the outcome of one search.
type Result struct {
	// Threshold is the resolved threshold subtracted from every value.
	Threshold float64
	// Values are the scored inputs. Nil for streamed searches.
	Values []float64
	// Segments are the maximal scoring ranges in ascending order.
	Segments []Segment
	// Stats describes the work done by the scan.
	Stats mss.Stats
	// Cached reports whether the result came from the result cache.
	Cached bool
}

// Deps holds the optional collaborators of an Engine. A nil field disables
// that concern.
type Deps struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.ScanMetrics
	Cache   *cache.ResultCache[*Result]
}

// Engine runs searches. It is safe for concurrent use.
type Engine struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.ScanMetrics
	cache   *cache.ResultCache[*Result]
}

// New creates an Engine.
func New(deps Deps) *Engine {
	eng := &Engine{
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		metrics: deps.Metrics,
		cache:   deps.Cache,
	}

	if eng.logger == nil {
		eng.logger = slog.Default()
	}

	if eng.tracer == nil {
		eng.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return eng
}

// Find resolves the threshold for values and returns their maximal scoring
// segments. Identical inputs are answered from the cache when one is
// configured.
func (e *Engine) Find(ctx context.Context, values []float64, opts Options) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, spanFind, trace.WithAttributes(
		attribute.Int(attrElements, len(values)),
		attribute.String(attrMode, string(opts.Mode)),
	))
	defer span.End()

	threshold, err := opts.Resolve(values)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("resolve threshold: %w", err))
	}

	span.SetAttributes(attribute.Float64(attrThreshold, threshold))

	var key uint64

	if e.cache != nil {
		key = cache.Fingerprint(values, threshold)

		hit, ok := e.cache.Get(key)
		e.metrics.RecordCacheLookup(ctx, ok)

		if ok {
			res := *hit
			res.Values = values
			res.Cached = true

			span.SetAttributes(attribute.Bool(attrCached, true), attribute.Int(attrRanges, len(res.Segments)))

			return &res, nil
		}
	}

	segments, st := scanSegments(slices.Values(values), identity, values, threshold)
	e.record(ctx, st, threshold)

	res := &Result{Threshold: threshold, Values: values, Segments: segments, Stats: st}

	if e.cache != nil {
		stored := *res
		stored.Values = nil
		e.cache.Put(key, &stored)
	}

	span.SetAttributes(attribute.Bool(attrCached, false), attribute.Int(attrRanges, len(res.Segments)))

	return res, nil
}

// FindRecords scores each record with Record.Score and returns the maximal
// scoring segments. Results are not cached.
func (e *Engine) FindRecords(ctx context.Context, records []seqio.Record, opts Options) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, spanFindRecords, trace.WithAttributes(
		attribute.Int(attrElements, len(records)),
		attribute.String(attrMode, string(opts.Mode)),
	))
	defer span.End()

	values := make([]float64, len(records))
	for i, rec := range records {
		values[i] = rec.Score()
	}

	threshold, err := opts.Resolve(values)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("resolve threshold: %w", err))
	}

	segments, st := scanSegments(slices.Values(records), seqio.Record.Score, values, threshold)
	e.record(ctx, st, threshold)

	res := &Result{Threshold: threshold, Values: values, Segments: segments, Stats: st}

	span.SetAttributes(attribute.Float64(attrThreshold, threshold), attribute.Int(attrRanges, len(res.Segments)))

	return res, nil
}

// FindStream scans seq once and hands each range to sink as soon as it is
// final. Only ModeFixed is accepted: a stream cannot be read twice to derive
// a threshold. A cancelled ctx stops the scan early and is reported.
func (e *Engine) FindStream(ctx context.Context, seq iter.Seq[float64], opts Options, sink mss.Sink) (mss.Stats, error) {
	ctx, span := e.tracer.Start(ctx, spanFindStream)
	defer span.End()

	if opts.Mode != ModeFixed && opts.Mode != "" {
		return mss.Stats{}, spanError(span, fmt.Errorf("%w: got %q", ErrStreamMode, opts.Mode))
	}

	threshold, err := opts.Resolve(nil)
	if err != nil {
		return mss.Stats{}, spanError(span, fmt.Errorf("resolve threshold: %w", err))
	}

	var ctxErr error

	guarded := func(yield func(float64) bool) {
		n := 0

		for v := range seq {
			n++
			if n%ctxCheckInterval == 0 {
				if ctxErr = ctx.Err(); ctxErr != nil {
					return
				}
			}

			if !yield(v) {
				return
			}
		}
	}

	st := mss.Scan(guarded, threshold, sink)
	e.record(ctx, st, threshold)

	span.SetAttributes(attribute.Int(attrElements, st.Elements), attribute.Int(attrRanges, st.Emitted))

	if ctxErr != nil {
		return st, spanError(span, fmt.Errorf("stream scan: %w", ctxErr))
	}

	return st, nil
}

// StreamSegments is FindStream with every range scored as it is emitted.
// Only the running totals of positive elements not yet emitted are kept.
func (e *Engine) StreamSegments(ctx context.Context, seq iter.Seq[float64], opts Options, emit func(Segment)) (mss.Stats, error) {
	type mark struct {
		pos           int
		before, after float64
	}

	var (
		pending []mark
		head    int
	)

	tracked := func(yield func(float64) bool) {
		var total float64

		pos := 0

		for v := range seq {
			resid := v - opts.Threshold
			if resid > 0 {
				pending = append(pending, mark{pos: pos, before: total, after: total + resid})
			}

			total += resid
			pos++

			if !yield(v) {
				return
			}
		}
	}

	sink := mss.SinkFunc(func(r mss.Range) {
		seg := Segment{Range: r}

		var lo float64

		for head < len(pending) && pending[head].pos < r.End {
			m := pending[head]
			if m.pos == r.Begin {
				lo = m.before
			}

			seg.Score = m.after - lo
			head++
		}

		if head > 0 && 2*head >= len(pending) {
			pending = pending[:copy(pending, pending[head:])]
			head = 0
		}

		emit(seg)
	})

	return e.FindStream(ctx, tracked, opts, sink)
}

// scanSegments runs the core search and scores each emitted range against
// values.
func scanSegments[E any](seq iter.Seq[E], score func(E) float64, values []float64, threshold float64) ([]Segment, mss.Stats) {
	var segments []Segment

	st := mss.ScanFunc(seq, score, threshold, mss.SinkFunc(func(r mss.Range) {
		segments = append(segments, Segment{Range: r, Score: mss.Score(values, threshold, r)})
	}))

	return segments, st
}

func (e *Engine) record(ctx context.Context, st mss.Stats, threshold float64) {
	e.metrics.RecordScan(ctx, st)
	e.logger.DebugContext(ctx, "scan complete",
		slog.Float64("threshold", threshold),
		slog.Int("elements", st.Elements),
		slog.Int("ranges", st.Emitted),
		slog.Int("merges", st.Merges),
		slog.Int("prunes", st.Prunes),
		slog.Int("peak_register", st.PeakRegister),
	)
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}

func identity(v float64) float64 {
	return v
}
