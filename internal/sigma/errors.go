package sigma

import (
	"strings"
	"unicode"
)

// Error reasons emitted by the Translator.
const (
	ReasonEmptyInput       = "empty-input"
	ReasonAmbiguousIntent  = "ambiguous-intent"
	ReasonMultipleIntents  = "multiple-intents"
	ReasonMissingOutput    = "missing-output"
	ReasonMultipleOutputs  = "multiple-outputs"
	ReasonMissingPayload   = "missing-payload"
	ReasonValidationFailed = "validation-failed"
)

// classification is one row of the error taxonomy: which code and which
// explanatory fields a failed precondition produces.
type classification struct {
	code     ErrorCode
	reason   string
	context  []string
	requires []string
}

var (
	errEmptyInput      = classification{E1, ReasonEmptyInput, nil, []string{"text-input"}}
	errAmbiguousIntent = classification{E0, ReasonAmbiguousIntent, []string{"no-clear-action"}, []string{"intent-specification"}}
	errMultipleIntents = classification{E0, ReasonMultipleIntents, []string{"ambiguous-goal"}, []string{"single-intent"}}
	errMissingOutput   = classification{E1, ReasonMissingOutput, []string{"no-output-type-specified"}, []string{"output-format"}}
	errMultipleOutputs = classification{E0, ReasonMultipleOutputs, []string{"ambiguous-format"}, []string{"single-output-type"}}
	errMissingPayload  = classification{E1, ReasonMissingPayload, []string{"no-semantic-content"}, []string{"domain-terms"}}
)

func (c classification) block() ErrorBlock {
	return ErrorBlock{
		Code:     c.code,
		Reason:   []string{c.reason},
		Context:  c.context,
		Requires: c.requires,
	}
}

// Failure builds the Result for an Error block. Errors carries the block's
// context values, matching what callers display as the explanation.
func Failure(e ErrorBlock) Result {
	return Result{
		Success: false,
		Output:  NormalizeError(e),
		Error:   &e,
		Errors:  e.Context,
	}
}

// Slug lowercases s and collapses every run of characters that are not
// letters or digits into a single hyphen, producing a token safe for Error
// block and meta payloads.
func Slug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
