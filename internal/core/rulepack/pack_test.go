package rulepack

import (
	"strings"
	"testing"
	"testing/fstest"

	"signalkit/internal/core/evidence"
	"signalkit/internal/core/script"
	"signalkit/internal/core/signal"
	"signalkit/internal/core/snippet"
	perr "signalkit/internal/platform/errors"
	kit "signalkit/internal/platform/testkit"
)

func TestLoadEmbedded(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if p.Version == 0 {
		t.Fatalf("expected non-zero version")
	}
	if len(p.Signals) != len(signal.Known) {
		t.Fatalf("pack declares %d signals, build knows %d", len(p.Signals), len(signal.Known))
	}
	for i, s := range p.Signals {
		if s.Name != signal.Known[i] {
			t.Fatalf("signal %d = %s, want %s", i, s.Name, signal.Known[i])
		}
		if s.Description == "" {
			t.Fatalf("signal %s has no description", s.Name)
		}
	}
	for _, r := range p.Rules {
		if r.Re == nil {
			t.Fatalf("rule %s not compiled", r.ID)
		}
		if !r.Excerpt.Valid() {
			t.Fatalf("rule %s has excerpt %q", r.ID, r.Excerpt)
		}
	}
	if _, ok := p.Lexicon("error"); !ok {
		t.Fatalf("error lexicon missing")
	}
}

func TestLoadEmbedded_CoversEveryLanguage(t *testing.T) {
	p := MustLoad()
	counts := p.RuleCounts()
	for _, n := range []signal.Name{signal.FeatureRequest, signal.ImprovementSuggestion} {
		for _, tag := range []string{"en", "zh-Hans", "zh-Hant", "ja"} {
			if counts[n][tag] == 0 {
				t.Fatalf("%s has no %s rules", n, tag)
			}
		}
	}
}

func TestLoadEmbedded_TableOrder(t *testing.T) {
	p := MustLoad()
	sigPos := map[signal.Name]int{}
	for i, s := range p.Signals {
		sigPos[s.Name] = i
	}
	langPos := map[string]int{}
	for i, l := range p.Languages {
		langPos[l.Tag] = i
	}
	for i := 1; i < len(p.Rules); i++ {
		a, b := p.Rules[i-1], p.Rules[i]
		if sigPos[a.Signal] > sigPos[b.Signal] {
			t.Fatalf("rule %s (%s) before %s (%s)", a.ID, a.Signal, b.ID, b.Signal)
		}
		if a.Signal == b.Signal && langPos[a.Lang] > langPos[b.Lang] {
			t.Fatalf("rule %s (%s) before %s (%s)", a.ID, a.Lang, b.ID, b.Lang)
		}
	}
}

func TestLoadEmbedded_UserSignalsScoped(t *testing.T) {
	p := MustLoad()
	for _, r := range p.Rules {
		if r.Signal != signal.FeatureRequest && r.Signal != signal.ImprovementSuggestion {
			continue
		}
		if r.AppliesTo(evidence.TodayLog) || r.AppliesTo(evidence.RecentEvents) || r.AppliesTo(evidence.MemorySnippet) {
			t.Fatalf("rule %s scans non-user fields", r.ID)
		}
		if !r.AppliesTo(evidence.UserSnippet) {
			t.Fatalf("rule %s skips userSnippet", r.ID)
		}
	}
}

func TestRule_AppliesTo(t *testing.T) {
	r := Rule{}
	for _, f := range evidence.ScanOrder {
		if !r.AppliesTo(f) {
			t.Fatalf("rule without sources should scan %s", f)
		}
	}
	r.Sources = []evidence.Field{evidence.TodayLog}
	if r.AppliesTo(evidence.UserSnippet) || !r.AppliesTo(evidence.TodayLog) {
		t.Fatalf("sources not honoured")
	}
}

const okCore = `version: 1
signals:
  - name: user_feature_request
    description: asks
  - name: user_improvement_suggestion
    description: suggests
languages:
  - tag: en
    scripts: [latin]
  - tag: ja
    scripts: [han, hiragana, katakana]
lexicons:
  - name: error
    patterns: ['\berror\b', 'エラー']
suppressions:
  - when: error
    suppress: [user_improvement_suggestion]
`

const okEN = `language: en
rules:
  - id: en.improve
    signal: user_improvement_suggestion
    pattern: 'could be better'
    excerpt: sentence
  - id: en.feature
    signal: user_feature_request
    pattern: 'please add'
    sources: [userSnippet, recent_session_transcript]
    not_preceded_by: ['Never']
`

const okJA = `language: ja
rules:
  - id: ja.feature
    signal: user_feature_request
    pattern: '追加して'
    excerpt: sentence
`

func mapFS(core, en, ja string) fstest.MapFS {
	fsys := fstest.MapFS{}
	if core != "" {
		fsys["core.yaml"] = &fstest.MapFile{Data: []byte(core)}
	}
	if en != "" {
		fsys["en.yaml"] = &fstest.MapFile{Data: []byte(en)}
	}
	if ja != "" {
		fsys["ja.yaml"] = &fstest.MapFile{Data: []byte(ja)}
	}
	return fsys
}

func TestLoadFS_Valid(t *testing.T) {
	p, err := LoadFS(mapFS(okCore, okEN, okJA))
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	var ids []string
	for _, r := range p.Rules {
		ids = append(ids, r.ID)
	}
	// feature rules (en then ja) precede improvement rules, whatever the file order
	if got := strings.Join(ids, ","); got != "en.feature,ja.feature,en.improve" {
		t.Fatalf("rule order = %s", got)
	}

	feat := p.Rules[0]
	if feat.Excerpt != snippet.From {
		t.Fatalf("default excerpt = %q, want from", feat.Excerpt)
	}
	if len(feat.Sources) != 2 || feat.Sources[1] != evidence.RecentSessionTranscript {
		t.Fatalf("sources = %v", feat.Sources)
	}
	if feat.NotPrecededBy[0] != "never" {
		t.Fatalf("veto strings should be lower cased, got %q", feat.NotPrecededBy[0])
	}
	if p.Rules[1].Scripts != script.Han|script.Hiragana|script.Katakana {
		t.Fatalf("ja scripts = %s", p.Rules[1].Scripts)
	}
	lx, _ := p.Lexicon("error")
	if !lx.Re.MatchString("an error here") || !lx.Re.MatchString("エラーです") || lx.Re.MatchString("terrors") {
		t.Fatalf("lexicon alternation misbehaves: %s", lx.Re)
	}
	if p.RuleCounts()[signal.FeatureRequest]["ja"] != 1 {
		t.Fatalf("RuleCounts = %v", p.RuleCounts())
	}
}

func TestLoadFS_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "missing core",
			fsys: mapFS("", okEN, okJA),
			want: "core.yaml",
		},
		{
			name: "missing fragment",
			fsys: mapFS(okCore, okEN, ""),
			want: "ja.yaml",
		},
		{
			name: "bad yaml",
			fsys: mapFS("version: [", okEN, okJA),
			want: "parse core.yaml",
		},
		{
			name: "no version",
			fsys: mapFS(strings.Replace(okCore, "version: 1", "version: 0", 1), okEN, okJA),
			want: "version",
		},
		{
			name: "unknown signal in vocabulary",
			fsys: mapFS(strings.Replace(okCore, "name: user_improvement_suggestion", "name: made_up", 1), okEN, okJA),
			want: "unknown signal",
		},
		{
			name: "unknown script",
			fsys: mapFS(strings.Replace(okCore, "[latin]", "[klingon]", 1), okEN, okJA),
			want: "unknown script",
		},
		{
			name: "suppression of unknown lexicon",
			fsys: mapFS(strings.Replace(okCore, "when: error", "when: nope", 1), okEN, okJA),
			want: "unknown lexicon",
		},
		{
			name: "undeclared rule signal",
			fsys: mapFS(okCore, okEN, strings.Replace(okJA, "signal: user_feature_request", "signal: log_error", 1)),
			want: "undeclared signal",
		},
		{
			name: "bad excerpt",
			fsys: mapFS(okCore, strings.Replace(okEN, "excerpt: sentence", "excerpt: middle", 1), okJA),
			want: "excerpt",
		},
		{
			name: "bad regex",
			fsys: mapFS(okCore, strings.Replace(okEN, "'please add'", "'please (add'", 1), okJA),
			want: "en.feature",
		},
		{
			name: "bad source",
			fsys: mapFS(okCore, strings.Replace(okEN, "userSnippet,", "inbox,", 1), okJA),
			want: "unknown source",
		},
		{
			name: "duplicate id in file",
			fsys: mapFS(okCore, strings.Replace(okEN, "id: en.feature", "id: en.improve", 1), okJA),
			want: "unique",
		},
		{
			name: "duplicate id across files",
			fsys: mapFS(okCore, okEN, strings.Replace(okJA, "id: ja.feature", "id: en.feature", 1)),
			want: "already defined",
		},
		{
			name: "language mismatch",
			fsys: mapFS(okCore, okEN, strings.Replace(okJA, "language: ja", "language: en", 1)),
			want: "does not match",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFS(tc.fsys)
			if err == nil {
				t.Fatalf("expected error")
			}
			kit.MustContain(t, err.Error(), tc.want)
			if _, ok := perr.As(err); !ok {
				t.Fatalf("expected a structured error, got %T", err)
			}
		})
	}
}

func TestLoadFS_RuleErrorCarriesID(t *testing.T) {
	_, err := LoadFS(mapFS(okCore, strings.Replace(okEN, "'please add'", "'please (add'", 1), okJA))
	e, ok := perr.As(err)
	if !ok || e.Field() != "en.feature" {
		t.Fatalf("field = %v, want en.feature", err)
	}
}

func TestFileFor(t *testing.T) {
	if FileFor("zh-Hans") != "zh-hans.yaml" {
		t.Fatalf("FileFor = %s", FileFor("zh-Hans"))
	}
}
