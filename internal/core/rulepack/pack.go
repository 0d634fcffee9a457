// Package rulepack loads and compiles the signal rules from the embedded YAML fragments.
// core.yaml holds the vocabulary, languages, lexicons and suppressions; every
// language has its own fragment named after its lowercased tag
package rulepack

import (
	"embed"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"signalkit/internal/core/evidence"
	"signalkit/internal/core/script"
	"signalkit/internal/core/signal"
	"signalkit/internal/core/snippet"
	perr "signalkit/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

//go:embed rules/*.yaml
var embedded embed.FS

// CoreFile is the name of the fragment that declares everything but rules
const CoreFile = "core.yaml"

// Pack is the compiled, immutable rule table shared by every detector
type Pack struct {
	Version      int
	Signals      []SignalInfo
	Languages    []Language
	Rules        []Rule // signals in core order, then languages in core order, then file order
	Lexicons     []Lexicon
	Suppressions []Suppression

	lexIdx map[string]int
}

// SignalInfo describes one vocabulary entry
type SignalInfo struct {
	Name        signal.Name
	Description string
}

// Language is a rule language tag and the scripts its text needs
type Language struct {
	Tag     string
	Scripts script.Set
}

// Rule recognizes one phrasing family for one signal in one language
type Rule struct {
	ID            string
	Signal        signal.Name
	Lang          string
	Pattern       string
	Excerpt       snippet.Strategy
	Sources       []evidence.Field // empty means every field
	NotPrecededBy []string
	NotFollowedBy []string

	Scripts script.Set
	Re      *regexp.Regexp
}

// AppliesTo reports whether the rule scans field f
func (r Rule) AppliesTo(f evidence.Field) bool {
	if len(r.Sources) == 0 {
		return true
	}
	for _, s := range r.Sources {
		if s == f {
			return true
		}
	}
	return false
}

// Lexicon is a named vocabulary class compiled to one alternation
type Lexicon struct {
	Name     string
	Patterns []string
	Re       *regexp.Regexp
}

// Suppression drops the listed signals from a field whose text hits the When lexicon
type Suppression struct {
	When     string
	Suppress []signal.Name
}

// Lexicon returns the named lexicon
func (p *Pack) Lexicon(name string) (Lexicon, bool) {
	i, ok := p.lexIdx[name]
	if !ok {
		return Lexicon{}, false
	}
	return p.Lexicons[i], true
}

// RuleCounts returns the number of rules per signal and language
func (p *Pack) RuleCounts() map[signal.Name]map[string]int {
	out := make(map[signal.Name]map[string]int, len(p.Signals))
	for _, s := range p.Signals {
		out[s.Name] = make(map[string]int, len(p.Languages))
	}
	for _, r := range p.Rules {
		out[r.Signal][r.Lang]++
	}
	return out
}

// Load returns the compiled pack from the embedded fragments
func Load() (*Pack, error) {
	sub, err := fs.Sub(embedded, "rules")
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "rulepack: open embedded rules")
	}
	return LoadFS(sub)
}

// MustLoad is Load for start-up paths; it panics on a broken pack
func MustLoad() *Pack {
	p, err := Load()
	if err != nil {
		panic(err)
	}
	return p
}

// LoadFS compiles a pack from core.yaml and one <tag>.yaml per declared language in fsys
func LoadFS(fsys fs.FS) (*Pack, error) {
	var core rawCore
	if err := decode(fsys, CoreFile, &core); err != nil {
		return nil, err
	}
	if err := validate(CoreFile, core); err != nil {
		return nil, err
	}

	p := &Pack{Version: core.Version, lexIdx: make(map[string]int, len(core.Lexicons))}

	declared := make(map[signal.Name]int, len(core.Signals))
	for i, s := range core.Signals {
		n := signal.Name(s.Name)
		if !signal.IsKnown(n) {
			return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "rulepack: %s: unknown signal %q", CoreFile, s.Name)
		}
		declared[n] = i
		p.Signals = append(p.Signals, SignalInfo{Name: n, Description: strings.TrimSpace(s.Description)})
	}

	for _, l := range core.Languages {
		var set script.Set
		for _, name := range l.Scripts {
			s, ok := script.Parse(name)
			if !ok {
				return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "rulepack: %s: language %s: unknown script %q", CoreFile, l.Tag, name)
			}
			set |= s
		}
		p.Languages = append(p.Languages, Language{Tag: l.Tag, Scripts: set})
	}

	for _, lx := range core.Lexicons {
		re, err := compileAlternation(lx.Patterns)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "rulepack: %s: lexicon %s", CoreFile, lx.Name)
		}
		p.lexIdx[lx.Name] = len(p.Lexicons)
		p.Lexicons = append(p.Lexicons, Lexicon{Name: lx.Name, Patterns: lx.Patterns, Re: re})
	}

	for _, s := range core.Suppressions {
		if _, ok := p.lexIdx[s.When]; !ok {
			return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "rulepack: %s: suppression names unknown lexicon %q", CoreFile, s.When)
		}
		sup := Suppression{When: s.When}
		for _, name := range s.Suppress {
			n := signal.Name(name)
			if _, ok := declared[n]; !ok {
				return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "rulepack: %s: suppression names undeclared signal %q", CoreFile, name)
			}
			sup.Suppress = append(sup.Suppress, n)
		}
		p.Suppressions = append(p.Suppressions, sup)
	}

	// per signal, per language buckets keep the final table order stable
	buckets := make([][][]Rule, len(p.Signals))
	for i := range buckets {
		buckets[i] = make([][]Rule, len(p.Languages))
	}
	seen := make(map[string]string, 64)

	for li, lang := range p.Languages {
		file := FileFor(lang.Tag)
		var frag rawFragment
		if err := decode(fsys, file, &frag); err != nil {
			return nil, err
		}
		if err := validate(file, frag); err != nil {
			return nil, err
		}
		if frag.Language != lang.Tag {
			return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "rulepack: %s: language %q does not match %q", file, frag.Language, lang.Tag)
		}
		for _, rr := range frag.Rules {
			if prev, dup := seen[rr.ID]; dup {
				return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "rulepack: %s: rule %s already defined in %s", file, rr.ID, prev)
			}
			seen[rr.ID] = file

			r, err := compileRule(rr, lang)
			if err != nil {
				return nil, perr.WithField(perr.Wrapf(err, perr.CodeOf(err), "rulepack: %s: rule %s", file, rr.ID), rr.ID)
			}
			si, ok := declared[r.Signal]
			if !ok {
				return nil, perr.WithField(perr.Newf(perr.ErrorCodeInvalidArgument, "rulepack: %s: rule %s: undeclared signal %q", file, rr.ID, rr.Signal), rr.ID)
			}
			buckets[si][li] = append(buckets[si][li], r)
		}
	}

	for si := range buckets {
		for li := range buckets[si] {
			p.Rules = append(p.Rules, buckets[si][li]...)
		}
	}
	return p, nil
}

// FileFor returns the fragment file name of a language tag
func FileFor(tag string) string {
	return strings.ToLower(tag) + ".yaml"
}

func compileRule(rr rawRule, lang Language) (Rule, error) {
	r := Rule{
		ID:            rr.ID,
		Signal:        signal.Name(rr.Signal),
		Lang:          lang.Tag,
		Pattern:       rr.Pattern,
		Excerpt:       snippet.Strategy(rr.Excerpt),
		NotPrecededBy: lowerAll(rr.NotPrecededBy),
		NotFollowedBy: lowerAll(rr.NotFollowedBy),
		Scripts:       lang.Scripts,
	}
	if r.Excerpt == "" {
		r.Excerpt = snippet.From
	}
	for _, s := range rr.Sources {
		f, ok := evidence.ParseField(s)
		if !ok {
			return Rule{}, perr.Newf(perr.ErrorCodeInvalidArgument, "unknown source %q", s)
		}
		r.Sources = append(r.Sources, f)
	}
	re, err := regexp.Compile(rr.Pattern)
	if err != nil {
		return Rule{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "compile %q", rr.Pattern)
	}
	r.Re = re
	return r, nil
}

// compileAlternation joins patterns into one non-capturing alternation
func compileAlternation(patterns []string) (*regexp.Regexp, error) {
	parts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return nil, err
		}
		parts = append(parts, "(?:"+p+")")
	}
	return regexp.Compile(strings.Join(parts, "|"))
}

func decode(fsys fs.FS, file string, dst any) error {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeNotFound, "rulepack: read %s", path.Clean(file))
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "rulepack: parse %s", file)
	}
	return nil
}

// lowerAll folds veto strings the way the view folds text
func lowerAll(xs []string) []string {
	if len(xs) == 0 {
		return nil
	}
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		out = append(out, strings.ToLower(x))
	}
	return out
}
