// Package service contains the signals workflows over the extraction engine
package service

import (
	"context"

	"signalkit/internal/core/engine"
	"signalkit/internal/core/signal"
	"signalkit/internal/platform/config"
	perr "signalkit/internal/platform/errors"
	"signalkit/internal/services/api/signals/domain"
)

// Service defines the service contract for signals
type Service interface {
	domain.ServicePort
	domain.PackPort
}

// Svc implements Service
type Svc struct {
	eng *engine.Engine
	cfg config.Signals
}

// New creates a signals service
func New(eng *engine.Engine, cfg config.Signals) *Svc {
	if eng == nil {
		panic("signals.Service requires a non nil engine")
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 100
	}
	return &Svc{eng: eng, cfg: cfg}
}

// Extract classifies one bundle. The engine is total, so the only errors are bad filters
func (s *Svc) Extract(_ context.Context, in domain.ExtractInput) (domain.ExtractOutput, error) {
	keep, err := filter(in.Only)
	if err != nil {
		return domain.ExtractOutput{}, err
	}
	sigs := keep(s.eng.ExtractSignals(in.Evidence))
	out := domain.ExtractOutput{Signals: signal.Strings(sigs)}
	if in.Detailed {
		out.Details = sigs
	}
	return out, nil
}

// Batch classifies every item concurrently, bounded by BatchWorkers
func (s *Svc) Batch(ctx context.Context, in domain.BatchInput) (domain.BatchOutput, error) {
	if n := len(in.Items); n > s.cfg.MaxBatch {
		return domain.BatchOutput{}, perr.WithField(perr.TooLargef("batch of %d items exceeds the limit of %d", n, s.cfg.MaxBatch), "items")
	}
	keep, err := filter(in.Only)
	if err != nil {
		return domain.BatchOutput{}, err
	}

	items := make([]any, len(in.Items))
	for i, it := range in.Items {
		items[i] = it
	}
	res, err := s.eng.ExtractBatchSignals(ctx, items, s.cfg.BatchWorkers)
	if err != nil {
		return domain.BatchOutput{}, err
	}

	out := domain.BatchOutput{Results: make([][]string, len(res))}
	if in.Detailed {
		out.Details = make([][]signal.Signal, len(res))
	}
	for i, sigs := range res {
		sigs = keep(sigs)
		out.Results[i] = signal.Strings(sigs)
		if in.Detailed {
			out.Details[i] = sigs
		}
	}
	return out, nil
}

// Vocabulary describes the loaded pack
func (s *Svc) Vocabulary(_ context.Context) domain.Vocabulary {
	p := s.eng.Pack()
	counts := p.RuleCounts()

	v := domain.Vocabulary{
		PackVersion:  p.Version,
		ExcerptLimit: s.eng.ExcerptLimit(),
		Languages:    make([]string, 0, len(p.Languages)),
		Signals:      make([]domain.VocabularyEntry, 0, len(p.Signals)),
	}
	for _, l := range p.Languages {
		v.Languages = append(v.Languages, l.Tag)
	}
	for _, si := range p.Signals {
		e := domain.VocabularyEntry{Name: si.Name, Description: si.Description, Rules: counts[si.Name]}
		for _, n := range e.Rules {
			e.Total += n
		}
		v.Signals = append(v.Signals, e)
	}
	return v
}

// PackVersion implements domain.PackPort
func (s *Svc) PackVersion() int { return s.eng.Pack().Version }

// RuleTotal implements domain.PackPort
func (s *Svc) RuleTotal() int { return len(s.eng.Pack().Rules) }

// filter returns a function keeping only the named signals; empty keeps all.
// Order within a result is untouched
func filter(only []string) (func([]signal.Signal) []signal.Signal, error) {
	if len(only) == 0 {
		return func(xs []signal.Signal) []signal.Signal { return xs }, nil
	}
	want := make(map[signal.Name]struct{}, len(only))
	for _, o := range only {
		n := signal.Name(o)
		if !signal.IsKnown(n) {
			return nil, perr.WithField(perr.InvalidArgf("unknown signal %q", o), "only")
		}
		want[n] = struct{}{}
	}
	return func(xs []signal.Signal) []signal.Signal {
		out := make([]signal.Signal, 0, len(xs))
		for _, s := range xs {
			if _, ok := want[s.Name]; ok {
				out = append(out, s)
			}
		}
		return out
	}, nil
}
