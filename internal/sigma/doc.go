// Package sigma translates free-form English into Σ-IR blocks and composes
// blocks into Σ-FRAMEs.
//
// The pipeline is Detector → extraction → Validator → Normalizer, orchestrated
// by Translator. Every stage is a pure function over its arguments and an
// immutable Lexicon, so a single Translator may be shared by any number of
// goroutines. Failures never surface as Go errors: they are converted into
// Error blocks and serialized exactly like successful blocks.
//
// Canonical block form (Σ-NF):
//
//	[[HEADER|PAYLOAD|MODIFIERS]]
//
// Frames wrap sorted, deduplicated block strings between the literal lines
// "=== Σ-FRAME ===" and "=== /Σ-FRAME ===".
package sigma
