// Package script provides a coarse census of the writing systems present in a text.
// The detector uses it to skip rules whose language cannot occur in a field
package script

import (
	"strings"
	"unicode"
)

// Set is a bitset of scripts
type Set uint8

const (
	// Latin covers ASCII and extended Latin letters
	Latin Set = 1 << iota
	// Han covers CJK ideographs (shared by Chinese and Japanese)
	Han
	// Hiragana is Japanese syllabary
	Hiragana
	// Katakana is Japanese syllabary (including the prolonged sound mark)
	Katakana
	// Hangul is Korean
	Hangul
	// Other is any other letter-bearing script
	Other
)

// Any matches every text that has at least one letter
const Any = Latin | Han | Hiragana | Katakana | Hangul | Other

var names = []struct {
	name string
	set  Set
}{
	{"latin", Latin},
	{"han", Han},
	{"hiragana", Hiragana},
	{"katakana", Katakana},
	{"hangul", Hangul},
	{"other", Other},
	{"any", Any},
}

// Of returns the set of scripts whose letters occur in s
func Of(s string) Set {
	var out Set
	for _, r := range s {
		if r == 'ー' {
			out |= Katakana
			continue
		}
		if !unicode.IsLetter(r) {
			continue
		}
		switch {
		case unicode.In(r, unicode.Hangul):
			out |= Hangul
		case unicode.In(r, unicode.Hiragana):
			out |= Hiragana
		case unicode.In(r, unicode.Katakana):
			out |= Katakana
		case unicode.In(r, unicode.Han):
			out |= Han
		case unicode.In(r, unicode.Latin):
			out |= Latin
		default:
			out |= Other
		}
		if out == Any {
			break
		}
	}
	return out
}

// Has reports whether s shares at least one script with want.
// An empty want matches everything
func (s Set) Has(want Set) bool {
	return want == 0 || s&want != 0
}

// Parse maps a script name ("latin", "han", "hiragana", "katakana", "hangul", "other", "any")
func Parse(name string) (Set, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, e := range names {
		if e.name == n {
			return e.set, true
		}
	}
	return 0, false
}

// String lists the member scripts joined by "|"
func (s Set) String() string {
	if s == 0 {
		return "none"
	}
	if s == Any {
		return "any"
	}
	var parts []string
	for _, e := range names {
		if e.set != Any && s&e.set != 0 {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "|")
}

// Lang guesses a BCP-47 tag from the census. Kana is decisive for Japanese;
// Han alone is ambiguous between Chinese variants and Japanese, so it maps to "zh"
func (s Set) Lang() string {
	switch {
	case s&(Hiragana|Katakana) != 0:
		return "ja"
	case s&Hangul != 0:
		return "ko"
	case s&Han != 0:
		return "zh"
	case s&Latin != 0:
		return "en"
	}
	return ""
}
