package sigma

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match is one occurrence of a trigger phrase in lowercased text.
type Match struct {
	Code  string
	Start int // byte offset into strings.ToLower(text)
	End   int
}

// Locate returns every occurrence of every phrase of family f, ordered by
// start offset. It sees exactly what Detect sees; Detect is the set of codes
// appearing here.
func (d *Detector) Locate(f Family, text string) []Match {
	lower := strings.ToLower(text)
	var matches []Match
	for _, e := range d.lex.Table(f) {
		for _, p := range e.Phrases {
			p = strings.ToLower(p)
			if p == "" {
				continue
			}
			for off := 0; off <= len(lower)-len(p); {
				i := strings.Index(lower[off:], p)
				if i < 0 {
					break
				}
				start := off + i
				matches = append(matches, Match{Code: e.Code, Start: start, End: start + len(p)})
				off = start + 1
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

// compoundLead resolves several detected codes that all occur inside a
// single compound of adjacent words, such as "language specification". The
// leading word qualifies the kind of artifact, so its code wins. It reports
// false when the matches are spread over separate phrases.
func compoundLead(lower string, matches []Match) (string, bool) {
	if len(matches) == 0 {
		return "", false
	}

	type span struct{ start, end int }
	var words []span
	for _, m := range matches {
		s, e := wordBounds(lower, m.Start, m.End)
		words = append(words, span{s, e})
	}
	sort.Slice(words, func(i, j int) bool { return words[i].start < words[j].start })

	for i := 1; i < len(words); i++ {
		prev, cur := words[i-1], words[i]
		if cur.start < prev.end {
			continue
		}
		if strings.TrimSpace(lower[prev.end:cur.start]) != "" {
			return "", false
		}
	}
	return matches[0].Code, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\''
}

// wordBounds widens [start,end) to the enclosing word.
func wordBounds(s string, start, end int) (int, int) {
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return start, end
}
