// Package snippet turns a trigger span into a short single-line excerpt
package snippet

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"signalkit/internal/core/normalize"
)

// MaxLen is the hard upper bound on excerpt length, in code points
const MaxLen = 200

// Strategy picks where an excerpt starts
type Strategy string

const (
	// From starts at the trigger
	From Strategy = "from"
	// After starts right after the trigger
	After Strategy = "after"
	// Sentence starts at the beginning of the sentence holding the trigger
	Sentence Strategy = "sentence"
	// Field quotes the whole field
	Field Strategy = "field"
)

// Strategies lists every valid strategy
var Strategies = []Strategy{From, After, Sentence, Field}

// Valid reports whether s is a known strategy
func (s Strategy) Valid() bool {
	for _, x := range Strategies {
		if x == s {
			return true
		}
	}
	return false
}

// Extract returns the excerpt for the trigger [start,end) in text (byte offsets).
// The text runs forward from the strategy's start to the end of text, is collapsed
// to one line and truncated to limit code points. An excerpt without any letter or
// number comes back as ""
func Extract(text string, start, end int, strategy Strategy, limit int) string {
	start = clamp(start, 0, len(text))
	end = clamp(end, start, len(text))

	var from int
	switch strategy {
	case After:
		from = end
	case Sentence:
		from = sentenceStart(text, start)
	case Field:
		from = 0
	default:
		from = start
	}

	out := text[from:]
	if strategy == After {
		out = strings.TrimLeftFunc(out, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		})
	}
	out = Truncate(out, limit)
	if !normalize.HasContent(out) {
		return ""
	}
	return out
}

// Truncate collapses whitespace, trims, and keeps at most limit code points.
// limit <= 0 or > MaxLen means MaxLen. Truncate(Truncate(x)) == Truncate(x)
func Truncate(s string, limit int) string {
	if limit <= 0 || limit > MaxLen {
		limit = MaxLen
	}
	s = normalize.CollapseSpaces(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			s = s[:i]
			break
		}
		n++
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// sentenceStart walks back from pos to just after the previous sentence break
func sentenceStart(text string, pos int) int {
	i := pos
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if isBreak(r) {
			break
		}
		i -= size
	}
	return i
}

func isBreak(r rune) bool {
	switch r {
	case '\n', '\r', '。', '．', '！', '？', '；', '.', '!', '?', ';':
		return true
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
