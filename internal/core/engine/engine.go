// Package engine is the signal extraction entry point.
// It normalizes an evidence bundle, scans every field in a fixed order and
// returns the surviving signals. It never fails: a field that cannot be
// scanned contributes nothing
package engine

import (
	"context"
	"runtime"
	"sync"

	"signalkit/internal/core/detector"
	"signalkit/internal/core/evidence"
	"signalkit/internal/core/rulepack"
	"signalkit/internal/core/signal"
	"signalkit/internal/core/snippet"
	perr "signalkit/internal/platform/errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for recovered field faults (default: no-op)
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithExcerptLimit caps excerpts at n code points, clamped to 1..200
func WithExcerptLimit(n int) Option {
	return func(e *Engine) {
		switch {
		case n < 1:
			n = 1
		case n > snippet.MaxLen:
			n = snippet.MaxLen
		}
		e.limit = n
	}
}

// Engine is immutable after New and safe for concurrent use
type Engine struct {
	pack  *rulepack.Pack
	det   *detector.Detector
	log   zerolog.Logger
	limit int
}

// New builds an engine over a compiled pack
func New(p *rulepack.Pack, opts ...Option) *Engine {
	e := &Engine{pack: p, log: zerolog.Nop(), limit: snippet.MaxLen}
	for _, o := range opts {
		o(e)
	}
	e.det = detector.NewWithOptions(p, detector.Options{ExcerptLimit: e.limit})
	return e
}

var (
	defOnce sync.Once
	def     *Engine
)

// Default returns the engine over the embedded pack, built once
func Default() *Engine {
	defOnce.Do(func() { def = New(rulepack.MustLoad()) })
	return def
}

// ExtractSignals runs the default engine and returns wire strings
func ExtractSignals(raw any) []string {
	return Default().Extract(raw)
}

// Pack returns the rule pack behind the engine
func (e *Engine) Pack() *rulepack.Pack { return e.pack }

// ExcerptLimit returns the effective excerpt cap
func (e *Engine) ExcerptLimit() int { return e.limit }

// Extract returns the signals for raw in wire form ("name" or "name: extra").
// The slice is empty, never nil, when nothing is detected
func (e *Engine) Extract(raw any) []string {
	return signal.Strings(e.ExtractSignals(raw))
}

// ExtractSignals returns the structured signals for raw: field scan order first,
// then rule table order within a field
func (e *Engine) ExtractSignals(raw any) []signal.Signal {
	out := make([]signal.Signal, 0, 4)
	b, ok := e.normalize(raw)
	if !ok {
		return out
	}
	for _, f := range evidence.ScanOrder {
		out = append(out, e.scanField(b, f)...)
	}
	return out
}

func (e *Engine) normalize(raw any) (b evidence.Bundle, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug().Interface("panic", r).Msg("evidence normalize failed")
			ok = false
		}
	}()
	return evidence.Normalize(raw), true
}

// scan is the per-field detector call (seam for fault isolation tests)
var scan = func(d *detector.Detector, f evidence.Field, text string) []detector.Match {
	return d.Scan(f, text)
}

// scanField isolates faults: a panic drops this field's contribution only
func (e *Engine) scanField(b evidence.Bundle, f evidence.Field) (out []signal.Signal) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug().Str("field", string(f)).Interface("panic", r).Msg("signal scan failed; field skipped")
			out = nil
		}
	}()
	for _, m := range scan(e.det, f, b.Text(f)) {
		out = append(out, m.ToSignal())
	}
	return out
}

// ExtractBatch runs Extract over items with at most workers concurrent calls
// (workers <= 0 means GOMAXPROCS). Results keep input order. The only error is
// ctx cancellation, reported with perr.ErrorCodeCanceled
func (e *Engine) ExtractBatch(ctx context.Context, items []any, workers int) ([][]string, error) {
	sigs, err := e.ExtractBatchSignals(ctx, items, workers)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(sigs))
	for i, xs := range sigs {
		out[i] = signal.Strings(xs)
	}
	return out, nil
}

// ExtractBatchSignals is ExtractBatch returning structured signals
func (e *Engine) ExtractBatchSignals(ctx context.Context, items []any, workers int) ([][]signal.Signal, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([][]signal.Signal, len(items))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, item := range items {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out[i] = e.ExtractSignals(item)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, perr.Canceled(err, "engine.batch")
	}
	if err := ctx.Err(); err != nil {
		return nil, perr.Canceled(err, "engine.batch")
	}
	return out, nil
}
