package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sigmair/internal/sigma"
)

// ErrInvalidLexicon is returned when a lexicon file names codes outside
// their family or carries empty rules.
var ErrInvalidLexicon = errors.New("invalid lexicon")

// LexiconMode controls how a lexicon file combines with the built-in tables.
type LexiconMode string

const (
	// LexiconReplace swaps each section present in the file for the
	// built-in one. Sections the file omits keep their defaults.
	LexiconReplace LexiconMode = "replace"
	// LexiconExtend appends phrases, stop-words and modifier rules to the
	// built-in tables.
	LexiconExtend LexiconMode = "extend"
)

// LoadLexicon reads a YAML lexicon from path and combines it with
// sigma.DefaultLexicon according to mode. An empty path yields the
// defaults.
func LoadLexicon(path string, mode LexiconMode) (sigma.Lexicon, error) {
	base := sigma.DefaultLexicon()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sigma.Lexicon{}, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return ParseLexicon(data, mode)
}

// ParseLexicon decodes a lexicon document and combines it with the
// defaults.
func ParseLexicon(data []byte, mode LexiconMode) (sigma.Lexicon, error) {
	var file sigma.Lexicon
	if err := yaml.Unmarshal(data, &file); err != nil {
		return sigma.Lexicon{}, fmt.Errorf("%w: %v", ErrInvalidLexicon, err)
	}
	if err := validateLexicon(file); err != nil {
		return sigma.Lexicon{}, err
	}

	base := sigma.DefaultLexicon()
	switch mode {
	case LexiconReplace:
		return replaceLexicon(base, file), nil
	case LexiconExtend, "":
		return extendLexicon(base, file), nil
	default:
		return sigma.Lexicon{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidLexicon, mode)
	}
}

func validateLexicon(l sigma.Lexicon) error {
	for _, f := range sigma.DetectableFamilies {
		for _, e := range l.Table(f) {
			if !sigma.ValidCode(f, e.Code) {
				return fmt.Errorf("%w: code %q is not a %s code", ErrInvalidLexicon, e.Code, f)
			}
			if len(e.Phrases) == 0 {
				return fmt.Errorf("%w: code %s has no phrases", ErrInvalidLexicon, e.Code)
			}
			for _, p := range e.Phrases {
				if strings.TrimSpace(p) == "" {
					return fmt.Errorf("%w: code %s has a blank phrase", ErrInvalidLexicon, e.Code)
				}
			}
		}
	}
	for i, r := range l.Modifiers {
		if r.Kind.Symbol() == "" {
			return fmt.Errorf("%w: modifier %d has unknown kind %q", ErrInvalidLexicon, i, r.Kind)
		}
		if strings.TrimSpace(r.Keyword) == "" || len(r.Triggers) == 0 {
			return fmt.Errorf("%w: modifier %d needs a keyword and triggers", ErrInvalidLexicon, i)
		}
	}
	return nil
}

func replaceLexicon(base, file sigma.Lexicon) sigma.Lexicon {
	if len(file.Intent) > 0 {
		base.Intent = file.Intent
	}
	if len(file.Control) > 0 {
		base.Control = file.Control
	}
	if len(file.State) > 0 {
		base.State = file.State
	}
	if len(file.Output) > 0 {
		base.Output = file.Output
	}
	if len(file.StopWords) > 0 {
		base.StopWords = file.StopWords
	}
	if len(file.Modifiers) > 0 {
		base.Modifiers = file.Modifiers
	}
	return base
}

func extendLexicon(base, file sigma.Lexicon) sigma.Lexicon {
	base.Intent = extendTable(base.Intent, file.Intent)
	base.Control = extendTable(base.Control, file.Control)
	base.State = extendTable(base.State, file.State)
	base.Output = extendTable(base.Output, file.Output)
	base.StopWords = appendMissing(base.StopWords, file.StopWords)
	base.Modifiers = append(base.Modifiers, file.Modifiers...)
	return base
}

// extendTable merges phrases into existing entries and appends entries for
// codes the table lacks, keeping table order.
func extendTable(table, extra sigma.Table) sigma.Table {
	for _, e := range extra {
		found := false
		for i := range table {
			if table[i].Code != e.Code {
				continue
			}
			table[i].Phrases = appendMissing(table[i].Phrases, e.Phrases)
			if e.Description != "" {
				table[i].Description = e.Description
			}
			found = true
			break
		}
		if !found {
			table = append(table, e)
		}
	}
	return table
}

func appendMissing(list, extra []string) []string {
	seen := make(map[string]bool, len(list))
	for _, s := range list {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range extra {
		if !seen[strings.ToLower(s)] {
			seen[strings.ToLower(s)] = true
			list = append(list, s)
		}
	}
	return list
}
