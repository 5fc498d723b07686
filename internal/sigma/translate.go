package sigma

import "strings"

// Translator turns English text into a canonical Σ-IR block.
type Translator struct {
	detector  *Detector
	extractor *Extractor
}

// NewTranslator returns a Translator driven by lex.
func NewTranslator(lex Lexicon) *Translator {
	return &Translator{
		detector:  NewDetector(lex),
		extractor: NewExtractor(lex),
	}
}

var defaultTranslator = NewTranslator(DefaultLexicon())

// Translate runs text through the default Translator.
func Translate(text string) Result {
	return defaultTranslator.Translate(text)
}

// Translate classifies text. Preconditions are checked in a fixed order and
// the first failure becomes an Error block:
//
//	blank input             E1 empty-input
//	no intent               E0 ambiguous-intent
//	several intents         E0 multiple-intents
//	no output               E1 missing-output
//	several outputs         E0 multiple-outputs
//	                        (unless one compound such as "language
//	                        specification" names them all; its leading
//	                        word decides)
//	no payload terms        E1 missing-payload
//	validator rejects block E3 validation-failed
//
// Every input, including "", yields a well-formed canonical string.
func (t *Translator) Translate(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Failure(errEmptyInput.block())
	}

	intents := t.detector.Intents(text)
	controls := t.detector.Controls(text)
	states := t.detector.States(text)
	outputs := t.detector.Outputs(text)

	switch {
	case len(intents) == 0:
		return Failure(errAmbiguousIntent.block())
	case len(intents) > 1:
		return Failure(errMultipleIntents.block())
	case len(outputs) == 0:
		return Failure(errMissingOutput.block())
	case len(outputs) > 1:
		lead, ok := compoundLead(strings.ToLower(text), t.detector.Locate(FamilyOutput, text))
		if !ok {
			return Failure(errMultipleOutputs.block())
		}
		outputs = []Output{Output(lead)}
	}

	payload := t.extractor.Payload(text)
	if len(payload) == 0 {
		return Failure(errMissingPayload.block())
	}

	block := Block{
		Header: NormalHeader{
			Intent:  intents[0],
			Control: dedupeCodes(controls),
			State:   dedupeCodes(states),
			Output:  outputs[0],
		},
		Payload:   payload,
		Modifiers: t.extractor.Modifiers(text),
	}

	if v := Validate(block); !v.Valid {
		context := make([]string, len(v.Errors))
		for i, msg := range v.Errors {
			context[i] = Slug(msg)
		}
		res := Failure(ErrorBlock{
			Code:     E3,
			Reason:   []string{ReasonValidationFailed},
			Context:  context,
			Requires: []string{"valid-structure"},
		})
		res.Errors = v.Errors
		return res
	}

	return Result{
		Success: true,
		Output:  NormalizeBlock(block),
		Block:   &block,
	}
}

func dedupeCodes[T ~string](codes []T) []T {
	seen := make(map[T]struct{}, len(codes))
	var out []T
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
