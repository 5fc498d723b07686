package sigma

import (
	"strconv"
	"strings"
)

// Intent is an I* primitive.
type Intent string

// Control is a C* primitive.
type Control string

// State is an S* primitive.
type State string

// Output is an O* primitive.
type Output string

// ErrorCode is an E* primitive.
type ErrorCode string

// Meta is one of the two reserved meta primitives.
type Meta string

const (
	I0 Intent = "I0" // inform / explain
	I1 Intent = "I1" // execute / do
	I2 Intent = "I2" // design / synthesize
	I3 Intent = "I3" // analyze
	I4 Intent = "I4" // compress
	I5 Intent = "I5" // expand
)

const (
	C0 Control = "C0" // closed answer
	C1 Control = "C1" // exploratory
	C2 Control = "C2" // no questions
	C3 Control = "C3" // ask only if impossible
	C4 Control = "C4" // no repetition
	C5 Control = "C5" // artifact-only
)

const (
	S0 State = "S0" // reset assumptions
	S1 State = "S1" // preserve state
	S2 State = "S2" // override defaults
)

const (
	O0 Output = "O0" // prose
	O1 Output = "O1" // code
	O2 Output = "O2" // spec
	O3 Output = "O3" // config
	O4 Output = "O4" // language
)

const (
	E0 ErrorCode = "E0" // ambiguity
	E1 ErrorCode = "E1" // missing input
	E2 ErrorCode = "E2" // contradiction (reserved)
	E3 ErrorCode = "E3" // invalid state
	E4 ErrorCode = "E4" // unsupported (reserved)
)

const (
	// MetaCheckpoint records cross-session decisions.
	MetaCheckpoint Meta = "SΣ"
	// MetaReasoning configures the reasoning mode.
	MetaReasoning Meta = "IΣ"
)

// Family identifies which closed set a primitive code belongs to.
type Family string

const (
	FamilyIntent  Family = "intent"
	FamilyControl Family = "control"
	FamilyState   Family = "state"
	FamilyOutput  Family = "output"
	FamilyError   Family = "error"
	FamilyMeta    Family = "meta"
)

// DetectableFamilies are the families the Detector scans text for, in the
// order the Translator consults them.
var DetectableFamilies = []Family{FamilyIntent, FamilyControl, FamilyState, FamilyOutput}

var familyCodes = map[Family][]string{
	FamilyIntent:  {"I0", "I1", "I2", "I3", "I4", "I5"},
	FamilyControl: {"C0", "C1", "C2", "C3", "C4", "C5"},
	FamilyState:   {"S0", "S1", "S2"},
	FamilyOutput:  {"O0", "O1", "O2", "O3", "O4"},
	FamilyError:   {"E0", "E1", "E2", "E3", "E4"},
	FamilyMeta:    {string(MetaCheckpoint), string(MetaReasoning)},
}

// Codes returns the codes of a family in ascending order.
func Codes(f Family) []string {
	return append([]string(nil), familyCodes[f]...)
}

// FamilyOf reports which family code belongs to. Membership is a table
// lookup only; unknown codes report false.
func FamilyOf(code string) (Family, bool) {
	for f, codes := range familyCodes {
		for _, c := range codes {
			if c == code {
				return f, true
			}
		}
	}
	return "", false
}

// ValidCode reports whether code is a member of family f.
func ValidCode(f Family, code string) bool {
	got, ok := FamilyOf(code)
	return ok && got == f
}

// codeIndex is the numeric suffix of a code ("C2" → 2). Codes without a
// numeric suffix sort last.
func codeIndex(code string) int {
	if len(code) < 2 {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(code[1:])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// Entry maps one primitive code to its trigger phrases.
type Entry struct {
	Code        string   `yaml:"code"`
	Description string   `yaml:"description,omitempty"`
	Phrases     []string `yaml:"phrases"`
}

// Table is an ordered list of entries for one family.
type Table []Entry

// ModifierRule appends Keyword to the Kind list when any trigger occurs in
// the input.
type ModifierRule struct {
	Kind     ModifierKind `yaml:"kind"`
	Keyword  string       `yaml:"keyword"`
	Triggers []string     `yaml:"triggers"`
}

// Lexicon is the immutable configuration the pipeline reads: primitive
// tables, stop-words and modifier rules.
type Lexicon struct {
	Intent    Table          `yaml:"intent"`
	Control   Table          `yaml:"control"`
	State     Table          `yaml:"state"`
	Output    Table          `yaml:"output"`
	StopWords []string       `yaml:"stop_words"`
	Modifiers []ModifierRule `yaml:"modifiers"`
}

// Table returns the table for a detectable family.
func (l Lexicon) Table(f Family) Table {
	switch f {
	case FamilyIntent:
		return l.Intent
	case FamilyControl:
		return l.Control
	case FamilyState:
		return l.State
	case FamilyOutput:
		return l.Output
	}
	return nil
}

// Describe returns the description recorded for code, if any.
func (l Lexicon) Describe(code string) string {
	for _, f := range DetectableFamilies {
		for _, e := range l.Table(f) {
			if e.Code == code {
				return e.Description
			}
		}
	}
	return errorDescriptions[ErrorCode(code)]
}

var errorDescriptions = map[ErrorCode]string{
	E0: "ambiguity",
	E1: "missing-input",
	E2: "contradiction",
	E3: "invalid-state",
	E4: "unsupported",
}

// DefaultLexicon returns the built-in English tables. Each call returns a
// fresh copy so callers may extend it without affecting others.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Intent: Table{
			{Code: "I0", Description: "inform/explain", Phrases: []string{"inform", "explain", "describe", "tell", "show"}},
			{Code: "I1", Description: "execute/do", Phrases: []string{"execute", "do", "run", "perform", "make", "create", "build"}},
			{Code: "I2", Description: "design/synthesize", Phrases: []string{"design", "synthesize", "compose", "architect", "structure"}},
			{Code: "I3", Description: "analyze", Phrases: []string{"analyze", "examine", "inspect", "review", "evaluate", "assess"}},
			{Code: "I4", Description: "compress", Phrases: []string{"compress", "minimize", "reduce", "condense", "shrink"}},
			{Code: "I5", Description: "expand", Phrases: []string{"expand", "elaborate", "extend", "detail", "unpack"}},
		},
		Control: Table{
			{Code: "C0", Description: "closed answer", Phrases: []string{"closed", "definitive", "final", "complete"}},
			{Code: "C1", Description: "exploratory", Phrases: []string{"exploratory", "open", "investigate", "brainstorm"}},
			{Code: "C2", Description: "no questions", Phrases: []string{"no questions", "dont ask", "no queries"}},
			{Code: "C3", Description: "ask only if impossible", Phrases: []string{"ask only if impossible", "clarify if needed", "ask if stuck"}},
			{Code: "C4", Description: "no repetition", Phrases: []string{"no repetition", "dont repeat", "no duplicate"}},
			{Code: "C5", Description: "artifact-only", Phrases: []string{"artifact-only", "output only", "no explanation"}},
		},
		State: Table{
			{Code: "S0", Description: "reset assumptions", Phrases: []string{"reset", "start fresh", "clear assumptions"}},
			{Code: "S1", Description: "preserve state", Phrases: []string{"preserve", "keep state", "maintain context"}},
			{Code: "S2", Description: "override defaults", Phrases: []string{"override", "force", "ignore defaults"}},
		},
		Output: Table{
			{Code: "O0", Description: "prose", Phrases: []string{"prose", "text", "paragraph", "essay", "writing"}},
			{Code: "O1", Description: "code", Phrases: []string{"code", "program", "script", "implementation"}},
			{Code: "O2", Description: "spec", Phrases: []string{"spec", "specification", "requirements", "definition"}},
			{Code: "O3", Description: "config", Phrases: []string{"config", "configuration", "settings", "parameters"}},
			{Code: "O4", Description: "language", Phrases: []string{"language", "grammar", "syntax", "format"}},
		},
		StopWords: []string{
			"the", "and", "for", "with", "this", "that", "from", "into",
			"about", "create", "make", "build", "design", "analyze", "explain",
			"code", "prose", "spec", "config", "language", "output", "format",
		},
		Modifiers: []ModifierRule{
			{Kind: ModEmphasis, Keyword: "optimal", Triggers: []string{"optimal", "best"}},
			{Kind: ModEmphasis, Keyword: "critical", Triggers: []string{"important", "critical", "must"}},
			{Kind: ModHard, Keyword: "deterministic", Triggers: []string{"deterministic", "consistent"}},
			{Kind: ModHard, Keyword: "stable", Triggers: []string{"stable", "fixed"}},
			{Kind: ModSoft, Keyword: "preferred", Triggers: []string{"prefer", "ideally"}},
		},
	}
}

// Detector scans text for primitive trigger phrases.
type Detector struct {
	lex Lexicon
}

// NewDetector returns a Detector over lex.
func NewDetector(lex Lexicon) *Detector {
	return &Detector{lex: lex}
}

// Detect returns every code of family f with at least one phrase occurring
// as a case-insensitive substring of text, in table order. Matching is plain
// containment with no word-boundary check.
func (d *Detector) Detect(f Family, text string) []string {
	lower := strings.ToLower(text)
	var matches []string
	for _, e := range d.lex.Table(f) {
		for _, p := range e.Phrases {
			if p == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(p)) {
				matches = append(matches, e.Code)
				break
			}
		}
	}
	return matches
}

// Intents returns the intent codes found in text.
func (d *Detector) Intents(text string) []Intent {
	return convert[Intent](d.Detect(FamilyIntent, text))
}

// Controls returns the control codes found in text.
func (d *Detector) Controls(text string) []Control {
	return convert[Control](d.Detect(FamilyControl, text))
}

// States returns the state codes found in text.
func (d *Detector) States(text string) []State {
	return convert[State](d.Detect(FamilyState, text))
}

// Outputs returns the output codes found in text.
func (d *Detector) Outputs(text string) []Output {
	return convert[Output](d.Detect(FamilyOutput, text))
}

func convert[T ~string](codes []string) []T {
	if len(codes) == 0 {
		return nil
	}
	out := make([]T, len(codes))
	for i, c := range codes {
		out[i] = T(c)
	}
	return out
}
