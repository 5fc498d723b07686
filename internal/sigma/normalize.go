package sigma

import (
	"sort"
	"strings"
)

// EmptySentinel stands in for an empty payload or modifier field.
const EmptySentinel = "_"

// errorModifiers is the fixed modifier field of every Error block.
const errorModifiers = "!error"

// NormalizeBlock serializes b into Σ-NF. The result depends only on b:
// normalizing the same block twice yields the same string.
func NormalizeBlock(b Block) string {
	return "[[" + NormalizeHeader(b.Header) + "|" + NormalizePayload(b.Payload) + "|" + NormalizeModifiers(b.Modifiers) + "]]"
}

// NormalizeHeader emits a meta or error code alone; a normal header emits
// intent, controls and states in ascending numeric order, then output,
// space-joined with exact duplicates collapsed.
func NormalizeHeader(h Header) string {
	switch h := h.(type) {
	case MetaHeader:
		return string(h.Code)
	case ErrorHeader:
		return string(h.Code)
	case NormalHeader:
		var parts []string
		if h.Intent != "" {
			parts = append(parts, string(h.Intent))
		}
		parts = append(parts, sortByIndex(convertStrings(h.Control))...)
		parts = append(parts, sortByIndex(convertStrings(h.State))...)
		if h.Output != "" {
			parts = append(parts, string(h.Output))
		}
		return strings.Join(dedupe(parts), " ")
	}
	return ""
}

// NormalizePayload trims terms, drops empties, removes duplicates and sorts
// by byte order before comma-joining. An empty result is "_".
func NormalizePayload(terms []string) string {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	cleaned = dedupe(cleaned)
	if len(cleaned) == 0 {
		return EmptySentinel
	}
	sort.Strings(cleaned)
	return strings.Join(cleaned, ",")
}

// NormalizeModifiers prefixes keywords with their category symbol, sorts
// within each category, and concatenates categories in ! @ ? # order.
// Duplicates are removed across the whole result; empty is "_".
func NormalizeModifiers(m Modifiers) string {
	var all []string
	for _, kind := range modifierPrecedence {
		keywords := m.Of(kind)
		prefixed := make([]string, len(keywords))
		for i, k := range keywords {
			prefixed[i] = kind.Symbol() + k
		}
		sort.Strings(prefixed)
		all = append(all, prefixed...)
	}
	all = dedupe(all)
	if len(all) == 0 {
		return EmptySentinel
	}
	return strings.Join(all, " ")
}

// errorField is one named section of an Error block payload.
type errorField struct {
	key    string
	values func(ErrorBlock) []string
}

// errorFields lists Error block payload keys in their fixed emission order.
var errorFields = []errorField{
	{"blocked-by", func(e ErrorBlock) []string { return e.BlockedBy }},
	{"conflicts", func(e ErrorBlock) []string { return e.Conflicts }},
	{"context", func(e ErrorBlock) []string { return e.Context }},
	{"reason", func(e ErrorBlock) []string { return e.Reason }},
	{"requires", func(e ErrorBlock) []string { return e.Requires }},
}

// ErrorFieldKeys returns the Error block payload keys in emission order.
func ErrorFieldKeys() []string {
	keys := make([]string, len(errorFields))
	for i, f := range errorFields {
		keys[i] = f.key
	}
	return keys
}

// NormalizeError serializes e as [[Ecode|key:v,...|!error]]. Sections appear
// in the order blocked-by, conflicts, context, reason, requires regardless
// of how e was built; each section's values are sorted and deduplicated.
func NormalizeError(e ErrorBlock) string {
	var sections []string
	for _, f := range errorFields {
		values := f.values(e)
		if len(values) == 0 {
			continue
		}
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		sections = append(sections, f.key+":"+strings.Join(dedupe(sorted), ","))
	}
	payload := EmptySentinel
	if len(sections) > 0 {
		payload = strings.Join(sections, ",")
	}
	return "[[" + string(e.Code) + "|" + payload + "|" + errorModifiers + "]]"
}

// dedupe removes repeated strings, keeping the first occurrence.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func sortByIndex(codes []string) []string {
	sort.SliceStable(codes, func(i, j int) bool {
		return codeIndex(codes[i]) < codeIndex(codes[j])
	})
	return codes
}

func convertStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
