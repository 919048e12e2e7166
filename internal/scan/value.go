// Package scan turns normalized OCR detections into typed, validated buff
// slots: value parsing, label/value resolution, and the per-slot state
// machine.
package scan

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ValueCandidates holds the numeric interpretations of one value token.
// Either or both of Flat/Percent may be set; neither set means the token was
// unparseable. Percent values are in 0.1% units (12.5% -> 125).
type ValueCandidates struct {
	Flat            *int
	Percent         *int
	ExplicitPercent bool
}

// valueVariant pairs a cleaned candidate string with its interpretations.
type valueVariant struct {
	text string
	cand ValueCandidates
}

// numericPattern accepts a signed decimal: "30", "12.5", ".5", "8.".
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// cleanupValueToken scrubs recognition noise from a value token: full-width
// percent/comma/period/plus to ASCII, the O/o confusable to 0, whitespace
// and thousands separators removed.
func cleanupValueToken(text string) string {
	cleaned := norm.NFKC.String(text)
	cleaned = strings.ReplaceAll(cleaned, "％", "%")
	cleaned = strings.ReplaceAll(cleaned, "O", "0")
	cleaned = strings.ReplaceAll(cleaned, "o", "0")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "　", "")
	cleaned = strings.ReplaceAll(cleaned, "\n", "")
	cleaned = strings.ReplaceAll(cleaned, "\r", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "，", "")
	cleaned = strings.ReplaceAll(cleaned, "．", ".")
	cleaned = strings.ReplaceAll(cleaned, "。", ".")
	cleaned = strings.ReplaceAll(cleaned, "＋", "+")
	return strings.TrimSpace(cleaned)
}

// ParseValueToken parses one cleaned value token into its interpretations.
// An integral numeric portion yields a flat candidate. A percent candidate
// (decimal scaled by 10, rounded half away from zero) is produced when the
// token carries an explicit percent marker, contains a decimal point, or no
// flat candidate could be derived.
func ParseValueToken(text string) ValueCandidates {
	cleaned := cleanupValueToken(text)
	explicit := strings.Contains(cleaned, "%")
	numeric := strings.ReplaceAll(cleaned, "%", "")

	out := ValueCandidates{ExplicitPercent: explicit}
	if numeric == "" || !numericPattern.MatchString(numeric) {
		return out
	}

	sign := 1
	digits := numeric
	switch digits[0] {
	case '+':
		digits = digits[1:]
	case '-':
		sign = -1
		digits = digits[1:]
	}

	intPart, fracPart, hasDot := strings.Cut(digits, ".")

	if strings.TrimRight(fracPart, "0") == "" {
		if n, err := strconv.Atoi(zeroIfEmpty(intPart)); err == nil {
			flat := sign * n
			out.Flat = &flat
		}
	}

	if explicit || hasDot || out.Flat == nil {
		if scaled, ok := scaleTenths(intPart, fracPart); ok {
			percent := sign * scaled
			out.Percent = &percent
		}
	}
	return out
}

// scaleTenths multiplies a non-negative decimal by 10 and rounds half away
// from zero, working on the digit strings to avoid float rounding.
func scaleTenths(intPart, fracPart string) (int, bool) {
	n, err := strconv.Atoi(zeroIfEmpty(intPart))
	if err != nil {
		return 0, false
	}
	scaled := n * 10
	if len(fracPart) > 0 {
		scaled += int(fracPart[0] - '0')
	}
	if len(fracPart) > 1 && fracPart[1] >= '5' {
		scaled++
	}
	return scaled, true
}

func zeroIfEmpty(digits string) string {
	if digits == "" {
		return "0"
	}
	return digits
}

// valueCandidateList generates the candidate variants for a value text that
// may span several line- or whitespace-broken fragments. Variant priority:
// all fragments concatenated, each fragment alone, each adjacent pair —
// deduplicated, order preserved. Unparseable variants are dropped.
func valueCandidateList(text string) []valueVariant {
	normalized := strings.ReplaceAll(norm.NFKC.String(text), "\r", "\n")

	var parts []string
	for _, line := range strings.Split(normalized, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		parts = append(parts, strings.Fields(stripped)...)
	}

	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if c := cleanupValueToken(part); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		if fallback := cleanupValueToken(strings.ReplaceAll(normalized, "\n", "")); fallback != "" {
			cleaned = []string{fallback}
		}
	}

	var ordered []string
	seen := make(map[string]bool)
	push := func(variant string) {
		if variant != "" && !seen[variant] {
			seen[variant] = true
			ordered = append(ordered, variant)
		}
	}
	if len(cleaned) > 0 {
		push(strings.Join(cleaned, ""))
		for _, part := range cleaned {
			push(part)
		}
		for i := 0; i+1 < len(cleaned); i++ {
			push(cleaned[i] + cleaned[i+1])
		}
	}

	var variants []valueVariant
	for _, text := range ordered {
		cand := ParseValueToken(text)
		if cand.Flat == nil && cand.Percent == nil {
			continue
		}
		variants = append(variants, valueVariant{text: text, cand: cand})
	}
	return variants
}
