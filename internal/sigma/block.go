package sigma

// Header is the closed set of block header shapes: NormalHeader, ErrorHeader
// and MetaHeader. The unexported method keeps the set closed, so a header can
// never carry both an error code and intent/output fields.
type Header interface {
	isHeader()
}

// NormalHeader classifies a translated request. A header produced by a
// successful translation always has Intent and Output set.
type NormalHeader struct {
	Intent  Intent    `json:"intent,omitempty"`
	Control []Control `json:"control,omitempty"`
	State   []State   `json:"state,omitempty"`
	Output  Output    `json:"output,omitempty"`
}

// ErrorHeader carries a single E* code.
type ErrorHeader struct {
	Code ErrorCode `json:"error"`
}

// MetaHeader carries a single meta code (SΣ or IΣ).
type MetaHeader struct {
	Code Meta `json:"meta"`
}

func (NormalHeader) isHeader() {}
func (ErrorHeader) isHeader()  {}
func (MetaHeader) isHeader()   {}

// ModifierKind names one of the four modifier categories.
type ModifierKind string

const (
	ModHard      ModifierKind = "hard"
	ModEmphasis  ModifierKind = "emphasis"
	ModSoft      ModifierKind = "soft"
	ModNamespace ModifierKind = "namespace"
)

// Symbol returns the serialization prefix of k.
func (k ModifierKind) Symbol() string {
	switch k {
	case ModHard:
		return "!"
	case ModEmphasis:
		return "@"
	case ModSoft:
		return "?"
	case ModNamespace:
		return "#"
	}
	return ""
}

// modifierPrecedence is the serialization order of modifier categories.
var modifierPrecedence = []ModifierKind{ModHard, ModEmphasis, ModSoft, ModNamespace}

// Modifiers holds bare keywords per category, before prefixing.
type Modifiers struct {
	Emphasis        []string `json:"emphasis,omitempty"`
	HardConstraints []string `json:"hard_constraints,omitempty"`
	SoftConstraints []string `json:"soft_constraints,omitempty"`
	Namespaces      []string `json:"namespaces,omitempty"`
}

// Of returns the keyword list for kind k.
func (m Modifiers) Of(k ModifierKind) []string {
	switch k {
	case ModHard:
		return m.HardConstraints
	case ModEmphasis:
		return m.Emphasis
	case ModSoft:
		return m.SoftConstraints
	case ModNamespace:
		return m.Namespaces
	}
	return nil
}

func (m *Modifiers) add(k ModifierKind, keyword string) {
	switch k {
	case ModHard:
		m.HardConstraints = append(m.HardConstraints, keyword)
	case ModEmphasis:
		m.Emphasis = append(m.Emphasis, keyword)
	case ModSoft:
		m.SoftConstraints = append(m.SoftConstraints, keyword)
	case ModNamespace:
		m.Namespaces = append(m.Namespaces, keyword)
	}
}

// Block is one classified unit: header, payload terms and modifiers. Blocks
// are assembled once and not mutated afterwards.
type Block struct {
	Header    Header    `json:"header"`
	Payload   []string  `json:"payload"`
	Modifiers Modifiers `json:"modifiers"`
}

// ErrorBlock describes why a translation failed. Each field is a list of
// short dash-joined tokens.
type ErrorBlock struct {
	Code      ErrorCode `json:"code"`
	Reason    []string  `json:"reason"`
	Context   []string  `json:"context,omitempty"`
	Requires  []string  `json:"requires,omitempty"`
	Conflicts []string  `json:"conflicts,omitempty"`
	BlockedBy []string  `json:"blocked_by,omitempty"`
}

// Result is the outcome of one translation. Output is always a well-formed
// canonical string: the block on success, the Error block otherwise.
type Result struct {
	Success bool        `json:"success"`
	Output  string      `json:"output"`
	Block   *Block      `json:"block,omitempty"`
	Error   *ErrorBlock `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}
