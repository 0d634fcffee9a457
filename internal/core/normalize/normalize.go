// Package normalize prepares field text for matching.
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Drop control and format characters (keeps \t \n \r)
// 3 Unicode NFC composition
// The result is the Source: what excerpts quote from.
// The matching View is then built rune by rune over the Source
// 4 Width fold (fullwidth ASCII to narrow, halfwidth kana to wide)
// 5 Lower case
// 6 Collapse whitespace runs to one space, dropped between two CJK runes, trimmed
// Every View byte maps back to a Source byte offset
package normalize

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.Remove(runes.Predicate(unwanted)),
			norm.NFC,
		)
	},
}

// unwanted reports C0/C1 controls other than tab/newline/CR, DEL and format chars (ZWSP, ZWJ, BOM...)
func unwanted(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
}

// Sanitize runs steps 1-3 and returns the Source form of s
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// View is the folded matching projection of a Source string
type View struct {
	text   string
	source string
	offs   []int // offs[i] is the Source offset of View byte i; offs[len(text)] is the end
}

// NewView sanitizes s and builds its View
func NewView(s string) View {
	src := Sanitize(s)
	if src == "" {
		return View{offs: []int{0}}
	}

	var b strings.Builder
	b.Grow(len(src))
	offs := make([]int, 0, len(src)+1)

	var (
		prev      rune
		pendingWS bool
		wsAt      int
		lastEnd   int
	)
	emit := func(r rune, at int) {
		n := b.Len()
		b.WriteRune(r)
		for i := n; i < b.Len(); i++ {
			offs = append(offs, at)
		}
	}

	for i, r := range src {
		if unicode.IsSpace(r) {
			if !pendingWS {
				pendingWS = true
				wsAt = i
			}
			continue
		}
		size := utf8.RuneLen(r)
		r = fold(r)
		if pendingWS && b.Len() > 0 && !(isCJK(prev) && isCJK(r)) {
			emit(' ', wsAt)
		}
		pendingWS = false
		emit(r, i)
		prev = r
		lastEnd = i + size
	}
	offs = append(offs, lastEnd)

	return View{text: b.String(), source: src, offs: offs}
}

// fold applies width folding then lower casing to a single rune
func fold(r rune) rune {
	if f := width.LookupRune(r).Folded(); f != 0 {
		r = f
	}
	return unicode.ToLower(r)
}

// isCJK reports runes of scripts written without spaces between words
func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) || r == 'ー'
}

// Text returns the folded matching text
func (v View) Text() string { return v.text }

// Source returns the sanitized text that excerpts quote from
func (v View) Source() string { return v.source }

// Orig maps a View byte offset to a Source byte offset. Out of range offsets clamp
func (v View) Orig(i int) int {
	if len(v.offs) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(v.offs) {
		i = len(v.offs) - 1
	}
	return v.offs[i]
}

// HasContent reports whether the View holds at least one letter or number.
// Empty, whitespace only and punctuation only texts have no content
func (v View) HasContent() bool { return HasContent(v.text) }

// HasContent reports whether s holds at least one letter or number rune
func HasContent(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// CollapseSpaces converts every whitespace run (spaces, tabs, newlines) to one
// ASCII space and trims both ends
func CollapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
