package scan

import (
	"echo-scanner/internal/catalog"
)

// valueMatch records a definition that matched the value text, with the
// normalized value, the variant text that produced it, and the variant's
// interpretations (needed by the ambiguity tie-break).
type valueMatch struct {
	def   *catalog.Definition
	value int
	text  string
	meta  ValueCandidates
}

// resolveDefinition maps a raw label to a single validated definition and
// normalized value.
//
// Label resolution may surface several candidate definitions (ambiguous
// panel labels). Value matching then runs against each independently; a
// lone survivor wins, several survivors go through the preference ordering.
// Returns ok=false with def=nil when the label resolves to nothing or no
// candidate definition matched the value.
func (w *Workflow) resolveDefinition(rawLabel string, variants []valueVariant) (def *catalog.Definition, value int, valueOK bool, matchedText string) {
	options := w.catalog.Lookup(rawLabel)
	if len(options) == 0 {
		return nil, 0, false, ""
	}

	if len(options) == 1 {
		only := options[0]
		if m, ok := w.matchValue(only, variants); ok {
			return only, m.value, true, m.text
		}
		// Label resolved but the value did not: keep the definition so the
		// slot can report a recognized-but-invalid stat.
		return only, 0, false, ""
	}

	var matches []valueMatch
	for _, option := range options {
		if m, ok := w.matchValue(option, variants); ok {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil, 0, false, ""
	}
	best := w.selectPreferred(matches)
	return best.def, best.value, true, best.text
}

// matchValue reconciles the candidate variants against one definition's
// allowed-value set. Variants are scanned in priority order, the percent
// interpretation before the flat one; an exact member is accepted
// immediately. A near miss within the approximate tolerance is remembered
// as a fallback, keeping the closest one seen.
func (w *Workflow) matchValue(def *catalog.Definition, variants []valueVariant) (valueMatch, bool) {
	var fallback *valueMatch
	fallbackDiff := 0

	for _, variant := range variants {
		var interpretations []int
		if variant.cand.Percent != nil {
			interpretations = append(interpretations, *variant.cand.Percent)
		}
		if variant.cand.Flat != nil {
			interpretations = append(interpretations, *variant.cand.Flat)
		}

		for _, candidate := range interpretations {
			if def.Allows(candidate) {
				return valueMatch{def: def, value: candidate, text: variant.text, meta: variant.cand}, true
			}
			nearest, diff := def.Nearest(candidate)
			if diff <= w.opts.ApproxTolerance {
				if fallback == nil || diff < fallbackDiff {
					fallback = &valueMatch{def: def, value: nearest, text: variant.text, meta: variant.cand}
					fallbackDiff = diff
				}
			}
		}
	}

	if fallback != nil {
		return *fallback, true
	}
	return valueMatch{}, false
}

// selectPreferred ranks matches from ambiguous labels. Default ordering:
// exact percent match on a percent-type definition, then exact flat match
// on a flat-type definition, then the same ordering over approximate
// matches. The panel omits the percent suffix on ambiguous labels, so only
// the value's scale separates the two stats; PreferPercent=false swaps the
// first two ranks for catalogues where flat stats dominate.
func (w *Workflow) selectPreferred(matches []valueMatch) valueMatch {
	rank := func(m valueMatch) (int, int) {
		flat := 0
		if m.def.IsFlat() {
			flat = 1
		}
		switch {
		case m.meta.Percent != nil && m.value == *m.meta.Percent:
			return w.percentRank(0), flat
		case m.meta.Flat != nil && m.value == *m.meta.Flat:
			return w.percentRank(1), 1 - flat
		default:
			return 2, flat
		}
	}

	best := matches[0]
	bestPrimary, bestSecondary := rank(best)
	for _, m := range matches[1:] {
		primary, secondary := rank(m)
		if primary < bestPrimary || (primary == bestPrimary && secondary < bestSecondary) {
			best = m
			bestPrimary, bestSecondary = primary, secondary
		}
	}
	return best
}

func (w *Workflow) percentRank(exactRank int) int {
	if w.opts.PreferPercent {
		return exactRank
	}
	return 1 - exactRank
}
