package sigma

import (
	"strings"
	"unicode"
)

// Validation messages.
const (
	MsgMissingIntent   = "Block must have at least one Intent primitive (I*)"
	MsgMissingOutput   = "Block must have at least one Output primitive (O*)"
	MsgEmptyPayload    = "Payload cannot be empty (use _ for empty sentinel)"
	MsgInvalidPayload  = "Payload terms cannot contain whitespace or be empty"
	MsgMissingErrorMod = "Error blocks must include !error modifier"
	MsgUnknownHeader   = "Block header must be normal, error, or meta"
)

// ValidationResult reports whether a block is well formed.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks the structural rules that the header types cannot encode.
// Meta headers are always valid. Error headers require the hard-constraint
// keyword "error". Normal headers require an intent, an output and a
// non-empty payload of whitespace-free terms; every rule is checked so all
// violations are reported together.
func Validate(b Block) ValidationResult {
	var errs []string

	switch h := b.Header.(type) {
	case MetaHeader:
	case ErrorHeader:
		if !contains(b.Modifiers.HardConstraints, "error") {
			errs = append(errs, MsgMissingErrorMod)
		}
	case NormalHeader:
		errs = validateNormal(h, b.Payload)
	case nil:
		errs = validateNormal(NormalHeader{}, b.Payload)
	default:
		errs = append(errs, MsgUnknownHeader)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validateNormal(h NormalHeader, payload []string) []string {
	var errs []string
	if h.Intent == "" {
		errs = append(errs, MsgMissingIntent)
	}
	if h.Output == "" {
		errs = append(errs, MsgMissingOutput)
	}
	if len(payload) == 0 {
		errs = append(errs, MsgEmptyPayload)
	}
	for _, term := range payload {
		t := strings.TrimSpace(term)
		if t == "" || strings.IndexFunc(t, unicode.IsSpace) >= 0 {
			errs = append(errs, MsgInvalidPayload)
			break
		}
	}
	return errs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
