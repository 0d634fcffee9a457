// Package detector runs the rule pack over one evidence field and yields signal matches
package detector

import (
	"strings"

	"signalkit/internal/core/evidence"
	"signalkit/internal/core/normalize"
	"signalkit/internal/core/rulepack"
	"signalkit/internal/core/script"
	"signalkit/internal/core/signal"
	"signalkit/internal/core/snippet"
)

// Match is one detected signal in one field.
// Start and End are [start,end) byte offsets into the sanitized field text
type Match struct {
	Signal signal.Name
	Source evidence.Field
	Lang   string
	RuleID string
	Start  int
	End    int
	Extra  string
}

// ToSignal converts a match into its output form
func (m Match) ToSignal() signal.Signal {
	return signal.Signal{
		Name:   m.Signal,
		Extra:  m.Extra,
		Source: string(m.Source),
		Lang:   m.Lang,
		RuleID: m.RuleID,
	}
}

// Options controls detector behavior
type Options struct {
	// ExcerptLimit caps excerpts in code points (0 or > snippet.MaxLen means snippet.MaxLen)
	ExcerptLimit int
}

// Detector scans field text with a compiled pack. It holds no per-call state
// and is safe for concurrent use
type Detector struct {
	p    *rulepack.Pack
	opts Options
	sup  resolver
}

// New creates a Detector with default options
func New(p *rulepack.Pack) *Detector {
	return NewWithOptions(p, Options{})
}

// NewWithOptions creates a Detector with custom options
func NewWithOptions(p *rulepack.Pack, opts Options) *Detector {
	if opts.ExcerptLimit <= 0 || opts.ExcerptLimit > snippet.MaxLen {
		opts.ExcerptLimit = snippet.MaxLen
	}
	return &Detector{p: p, opts: opts, sup: newResolver(p)}
}

// Pack returns the rule pack the detector was built with
func (d *Detector) Pack() *rulepack.Pack { return d.p }

// Scan runs every applicable rule over text, keeps the first match per signal
// and applies suppressions. Matches come back in rule table order
func (d *Detector) Scan(field evidence.Field, text string) []Match {
	if text == "" || d.p == nil {
		return nil
	}
	v := normalize.NewView(text)
	if !v.HasContent() {
		return nil
	}
	view := v.Text()
	scripts := script.Of(view)

	var out []Match
	done := make(map[signal.Name]struct{}, len(d.p.Signals))

	for i := range d.p.Rules {
		r := &d.p.Rules[i]
		if _, ok := done[r.Signal]; ok {
			continue
		}
		if !r.AppliesTo(field) || !scripts.Has(r.Scripts) {
			continue
		}
		start, end, ok := find(r, view)
		if !ok {
			continue
		}
		done[r.Signal] = struct{}{}

		srcStart, srcEnd := v.Orig(start), v.Orig(end)
		out = append(out, Match{
			Signal: r.Signal,
			Source: field,
			Lang:   r.Lang,
			RuleID: r.ID,
			Start:  srcStart,
			End:    srcEnd,
			Extra:  snippet.Extract(v.Source(), srcStart, srcEnd, r.Excerpt, d.opts.ExcerptLimit),
		})
	}

	return d.sup.apply(view, out)
}

// find returns the first non-empty, non-vetoed match of r in view
func find(r *rulepack.Rule, view string) (int, int, bool) {
	if r.Re == nil {
		return 0, 0, false
	}
	for _, loc := range r.Re.FindAllStringIndex(view, -1) {
		start, end := loc[0], loc[1]
		if end <= start {
			continue
		}
		if vetoed(r, view, start, end) {
			continue
		}
		return start, end, true
	}
	return 0, 0, false
}

// vetoed checks the view text right around [start,end) against the rule's veto lists.
// RE2 has no look-around so the pack states these as plain strings
func vetoed(r *rulepack.Rule, view string, start, end int) bool {
	before, after := view[:start], view[end:]
	for _, p := range r.NotPrecededBy {
		if strings.HasSuffix(before, p) {
			return true
		}
	}
	for _, p := range r.NotFollowedBy {
		if strings.HasPrefix(after, p) {
			return true
		}
	}
	return false
}
