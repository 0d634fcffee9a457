// Package signal defines the closed signal vocabulary and its wire form
package signal

import "strings"

// Name is a stable signal identifier from the rule pack vocabulary
type Name string

const (
	// FeatureRequest marks a user asking for new functionality
	FeatureRequest Name = "user_feature_request"
	// ImprovementSuggestion marks a user suggesting an existing behavior be improved
	ImprovementSuggestion Name = "user_improvement_suggestion"
	// BugReport marks a user describing a defect in their own words
	BugReport Name = "user_bug_report"
	// LogError marks error vocabulary in logs, transcripts or events
	LogError Name = "log_error"
	// PerfBottleneck marks slowness or timeout vocabulary
	PerfBottleneck Name = "perf_bottleneck"
	// CapabilityGap marks "not supported" style vocabulary
	CapabilityGap Name = "capability_gap"
)

// Known lists the vocabulary compiled into this build, in pack order.
// The rule pack must not reference names outside this list
var Known = []Name{
	FeatureRequest,
	ImprovementSuggestion,
	BugReport,
	LogError,
	PerfBottleneck,
	CapabilityGap,
}

// IsKnown reports whether n is part of the vocabulary
func IsKnown(n Name) bool {
	for _, k := range Known {
		if k == n {
			return true
		}
	}
	return false
}

// Signal is one classified observation. Source, Lang and RuleID are
// diagnostic and do not appear in the wire form
type Signal struct {
	Name   Name   `json:"name"`
	Extra  string `json:"extra,omitempty"`
	Source string `json:"source"`
	Lang   string `json:"lang,omitempty"`
	RuleID string `json:"rule_id,omitempty"`
}

// String renders the wire form: "name" or "name: extra"
func (s Signal) String() string {
	if s.Extra == "" {
		return string(s.Name)
	}
	return string(s.Name) + ": " + s.Extra
}

// Strings renders a slice of signals in wire form, never returning nil
func Strings(xs []Signal) []string {
	out := make([]string, 0, len(xs))
	for _, s := range xs {
		out = append(out, s.String())
	}
	return out
}

// Parse splits a wire string back into name and extra.
// The excerpt itself may contain ": " so only the first separator counts
func Parse(wire string) (Signal, bool) {
	wire = strings.TrimSpace(wire)
	if wire == "" {
		return Signal{}, false
	}
	name, extra, found := strings.Cut(wire, ":")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return Signal{}, false
	}
	s := Signal{Name: Name(name)}
	if found {
		s.Extra = strings.TrimSpace(extra)
	}
	return s, true
}

// Has reports whether any wire string in xs carries the given name
func Has(xs []string, n Name) bool {
	_, ok := Find(xs, n)
	return ok
}

// Find returns the first wire entry for n, parsed
func Find(xs []string, n Name) (Signal, bool) {
	for _, w := range xs {
		if s, ok := Parse(w); ok && s.Name == n {
			return s, true
		}
	}
	return Signal{}, false
}
