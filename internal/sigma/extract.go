package sigma

import (
	"strings"
	"unicode"
)

const (
	// MaxPayloadTerms caps how many payload terms survive extraction.
	MaxPayloadTerms = 8
	// minTermLength is the shortest token kept; shorter tokens are noise.
	minTermLength = 3
)

// Extractor pulls payload terms and modifiers out of raw text.
type Extractor struct {
	stop  map[string]struct{}
	rules []ModifierRule
}

// NewExtractor returns an Extractor using the stop-words and modifier rules
// of lex.
func NewExtractor(lex Lexicon) *Extractor {
	stop := make(map[string]struct{}, len(lex.StopWords))
	for _, w := range lex.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Extractor{stop: stop, rules: lex.Modifiers}
}

// Payload lowercases text, replaces every rune that is not a letter, digit,
// whitespace or hyphen with a space, and keeps the first MaxPayloadTerms
// distinct tokens that are at least three runes long and not stop-words.
// The cap applies in first-occurrence order; the Normalizer sorts later.
func (e *Extractor) Payload(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	seen := make(map[string]struct{})
	var terms []string
	for _, tok := range strings.Fields(cleaned) {
		if len([]rune(tok)) < minTermLength {
			continue
		}
		if _, ok := e.stop[tok]; ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
		if len(terms) == MaxPayloadTerms {
			break
		}
	}
	return terms
}

// Modifiers applies each rule once: a rule whose trigger occurs anywhere in
// text (case-insensitive substring) appends its keyword to its category.
// Namespaces are never derived from free text by the default rules.
func (e *Extractor) Modifiers(text string) Modifiers {
	lower := strings.ToLower(text)
	var m Modifiers
	for _, rule := range e.rules {
		for _, trig := range rule.Triggers {
			if trig != "" && strings.Contains(lower, strings.ToLower(trig)) {
				m.add(rule.Kind, rule.Keyword)
				break
			}
		}
	}
	return m
}
