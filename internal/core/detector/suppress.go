package detector

import (
	"regexp"

	"signalkit/internal/core/rulepack"
	"signalkit/internal/core/signal"
)

// veto drops signals from a field when its lexicon hits the view
type veto struct {
	lexicon string
	re      *regexp.Regexp
	drop    map[signal.Name]struct{}
}

// resolver applies the pack's suppressions to the matches of one field
type resolver struct {
	vetoes []veto
}

func newResolver(p *rulepack.Pack) resolver {
	if p == nil {
		return resolver{}
	}
	var r resolver
	for _, s := range p.Suppressions {
		lx, ok := p.Lexicon(s.When)
		if !ok || lx.Re == nil {
			continue
		}
		v := veto{lexicon: s.When, re: lx.Re, drop: make(map[signal.Name]struct{}, len(s.Suppress))}
		for _, n := range s.Suppress {
			v.drop[n] = struct{}{}
		}
		r.vetoes = append(r.vetoes, v)
	}
	return r
}

// apply filters ms in place. A lexicon is only evaluated when the field holds
// a signal it could drop
func (r resolver) apply(view string, ms []Match) []Match {
	if len(ms) == 0 || len(r.vetoes) == 0 {
		return ms
	}
	for _, v := range r.vetoes {
		if !v.targets(ms) || !v.re.MatchString(view) {
			continue
		}
		kept := ms[:0]
		for _, m := range ms {
			if _, drop := v.drop[m.Signal]; !drop {
				kept = append(kept, m)
			}
		}
		ms = kept
	}
	return ms
}

func (v veto) targets(ms []Match) bool {
	for _, m := range ms {
		if _, ok := v.drop[m.Signal]; ok {
			return true
		}
	}
	return false
}
