package sigma

import (
	"fmt"
	"strings"
)

// GrammarMarkdown renders a reference card for lex: primitive families with
// their descriptions, modifier symbols, the error taxonomy and canonical
// forms.
func GrammarMarkdown(lex Lexicon) string {
	var sb strings.Builder
	sb.WriteString("# Σ-IR Grammar Reference\n\n")

	sections := []struct {
		title  string
		family Family
	}{
		{"Intent (I*)", FamilyIntent},
		{"Control (C*)", FamilyControl},
		{"State (S*)", FamilyState},
		{"Output (O*)", FamilyOutput},
	}
	for _, s := range sections {
		fmt.Fprintf(&sb, "## %s\n\n", s.title)
		for _, e := range lex.Table(s.family) {
			fmt.Fprintf(&sb, "- `%s` — %s", e.Code, e.Description)
			if len(e.Phrases) > 0 {
				fmt.Fprintf(&sb, " (%s)", strings.Join(e.Phrases, ", "))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Error (E*)\n\n")
	for _, code := range Codes(FamilyError) {
		fmt.Fprintf(&sb, "- `%s` — %s\n", code, errorDescriptions[ErrorCode(code)])
	}

	sb.WriteString("\n## Meta\n\n")
	fmt.Fprintf(&sb, "- `%s` — state checkpoint (%s)\n", MetaCheckpoint,
		strings.Join([]string{CheckpointAssumed, CheckpointDecided, CheckpointDeferred, CheckpointLocked}, ", "))
	fmt.Fprintf(&sb, "- `%s` — reasoning mode (%s)\n", MetaReasoning,
		strings.Join([]string{ReasoningExpansion, ReasoningMemory, ReasoningMode, ReasoningResolution, ReasoningScope}, ", "))

	sb.WriteString("\n## Modifiers\n\n")
	names := map[ModifierKind]string{
		ModHard:      "hard constraint",
		ModEmphasis:  "emphasis",
		ModSoft:      "soft constraint",
		ModNamespace: "namespace",
	}
	for _, k := range modifierPrecedence {
		fmt.Fprintf(&sb, "- `%s` — %s\n", k.Symbol(), names[k])
	}

	sb.WriteString("\n## Canonical Form\n\n")
	sb.WriteString("```\n[[HEADER|PAYLOAD|MODIFIERS]]\n")
	fmt.Fprintf(&sb, "[[Ecode|%s|!error]]\n", strings.Join(keySketch(), ","))
	fmt.Fprintf(&sb, "%s\n[[...]]\n%s\n```\n", FrameOpen, FrameClose)
	return sb.String()
}

func keySketch() []string {
	keys := ErrorFieldKeys()
	for i, k := range keys {
		keys[i] = k + ":..."
	}
	return keys
}
