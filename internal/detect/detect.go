// Package detect normalizes raw OCR engine output into a canonical detection
// list and groups detections into presentation rows.
package detect

import (
	"echo-scanner/pkg/geometry"
)

// Detection is one recognized text fragment, reduced to its center point.
// Detections are ephemeral: produced fresh per capture, no identity beyond
// list position.
type Detection struct {
	Text       string
	Confidence float64
	Center     geometry.Point2D
}

// rawShape identifies one of the known raw result layouts an external OCR
// engine may hand us. Shape is sniffed structurally; engines do not declare
// a schema.
type rawShape int

const (
	shapeUnknown rawShape = iota
	shapeNested           // [entries] singleton wrapper around an entry list
	shapeEntries          // [[box, text, score?], ...]
	shapeDicts            // [{"box"/"bbox"/"points", "text"/"label"/"value", "score"/"confidence"}, ...]
	shapePair             // [boxes, texts]
	shapeTriple           // [boxes, texts, scores]
)

// Normalize reduces an arbitrary raw OCR result to a flat detection list.
// The raw value is typically the product of json.Unmarshal into any.
// Malformed individual entries are skipped; a completely unrecognized shape
// yields an empty list. Normalize never fails.
func Normalize(raw any) []Detection {
	entries := iterEntries(raw)
	detections := make([]Detection, 0, len(entries))
	for _, e := range entries {
		quad, ok := normalizeQuad(e.box)
		if !ok || e.text == "" {
			continue
		}
		detections = append(detections, Detection{
			Text:       e.text,
			Confidence: e.score,
			Center:     quad.Center(),
		})
	}
	return detections
}

// rawEntry is a decoded (box, text, score) triple before box reduction.
type rawEntry struct {
	box   any
	text  string
	score float64
}

func iterEntries(raw any) []rawEntry {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil
	}

	switch classify(list) {
	case shapeNested:
		inner, _ := list[0].([]any)
		return entryList(inner)
	case shapeEntries:
		return entryList(list)
	case shapeDicts:
		return dictList(list)
	case shapePair:
		return parallelLists(list[0], list[1], nil)
	case shapeTriple:
		return parallelLists(list[0], list[1], list[2])
	}
	return nil
}

// classify sniffs the raw layout. Entry-list layouts are checked before the
// parallel-array pair/triple layouts: a boxes array passes the box test for
// its own elements, but its sibling texts array never looks like an entry,
// so the checks cannot shadow each other.
func classify(list []any) rawShape {
	if len(list) == 1 {
		if inner, ok := list[0].([]any); ok && looksLikeEntryList(inner) {
			return shapeNested
		}
	}
	if looksLikeEntryList(list) {
		return shapeEntries
	}
	if looksLikeDictList(list) {
		return shapeDicts
	}
	if len(list) == 2 && looksLikeBoxList(list[0]) && isList(list[1]) {
		return shapePair
	}
	if len(list) == 3 && looksLikeBoxList(list[0]) && isList(list[1]) && isList(list[2]) {
		return shapeTriple
	}
	return shapeUnknown
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func looksLikeEntry(v any) bool {
	entry, ok := v.([]any)
	if !ok || len(entry) < 2 {
		return false
	}
	_, ok = normalizeQuad(entry[0])
	return ok
}

func looksLikeEntryList(list []any) bool {
	if len(list) == 0 {
		return false
	}
	for _, item := range list {
		if item == nil {
			continue
		}
		if !looksLikeEntry(item) {
			return false
		}
	}
	return true
}

func looksLikeDictList(list []any) bool {
	for _, item := range list {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return len(list) > 0
}

func looksLikeBoxList(v any) bool {
	boxes, ok := v.([]any)
	if !ok || len(boxes) == 0 {
		return false
	}
	for _, b := range boxes {
		if _, ok := normalizeQuad(b); !ok {
			return false
		}
	}
	return true
}

func entryList(list []any) []rawEntry {
	var entries []rawEntry
	for _, item := range list {
		entry, ok := item.([]any)
		if !ok || len(entry) < 1 {
			continue
		}
		var textValue any
		if len(entry) > 1 {
			textValue = entry[1]
		}
		text, score := splitTextScore(textValue)
		if len(entry) > 2 {
			if s, ok := toFloat(entry[2]); ok {
				score = s
			}
		}
		entries = append(entries, rawEntry{box: entry[0], text: text, score: score})
	}
	return entries
}

func dictList(list []any) []rawEntry {
	var entries []rawEntry
	for _, item := range list {
		dict, ok := item.(map[string]any)
		if !ok {
			continue
		}
		box := firstPresent(dict, "box", "bbox", "points")
		textValue := firstPresent(dict, "text", "label", "value")
		if box == nil || textValue == nil {
			continue
		}
		text, score := splitTextScore(textValue)
		if sv := firstPresent(dict, "score", "confidence"); sv != nil {
			if s, ok := toFloat(sv); ok {
				score = s
			}
		}
		entries = append(entries, rawEntry{box: box, text: text, score: score})
	}
	return entries
}

// parallelLists zips a (boxes, texts[, scores]) layout into entries.
// Texts shorter than boxes pad with empty strings, which Normalize drops.
func parallelLists(boxesRaw, textsRaw, scoresRaw any) []rawEntry {
	boxes, _ := boxesRaw.([]any)
	texts, _ := textsRaw.([]any)
	scores, _ := scoresRaw.([]any)

	entries := make([]rawEntry, 0, len(boxes))
	for i, box := range boxes {
		var textValue any
		if i < len(texts) {
			textValue = texts[i]
		}
		text, score := splitTextScore(textValue)
		if i < len(scores) {
			if s, ok := toFloat(scores[i]); ok {
				score = s
			}
		}
		entries = append(entries, rawEntry{box: box, text: text, score: score})
	}
	return entries
}

func firstPresent(dict map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := dict[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// splitTextScore splits a text-or-(text, score) value. A bare string or a
// missing or null score defaults to 1.0.
func splitTextScore(value any) (string, float64) {
	switch v := value.(type) {
	case nil:
		return "", 1.0
	case string:
		return v, 1.0
	case []any:
		if len(v) == 0 {
			return "", 0.0
		}
		text, _ := v[0].(string)
		if len(v) < 2 || v[1] == nil {
			return text, 1.0
		}
		score, ok := toFloat(v[1])
		if !ok {
			return text, 0.0
		}
		return text, score
	}
	return "", 1.0
}

// normalizeQuad reduces a box representation to the canonical quadrilateral:
// either four numbers (x1, y1, x2, y2) or four-plus corner points, emitted
// in top-left, top-right, bottom-right, bottom-left order.
func normalizeQuad(v any) (geometry.Quad, bool) {
	points, ok := v.([]any)
	if !ok || len(points) < 4 {
		return geometry.Quad{}, false
	}

	if nums, ok := allFloats(points); ok && len(points) == 4 {
		return geometry.QuadFromRect(nums[0], nums[1], nums[2], nums[3]), true
	}

	var quad geometry.Quad
	for i := 0; i < 4; i++ {
		pair, ok := points[i].([]any)
		if !ok || len(pair) < 2 {
			return geometry.Quad{}, false
		}
		x, okX := toFloat(pair[0])
		y, okY := toFloat(pair[1])
		if !okX || !okY {
			return geometry.Quad{}, false
		}
		quad[i] = geometry.Point2D{X: x, Y: y}
	}
	return quad, true
}

func allFloats(list []any) ([]float64, bool) {
	nums := make([]float64, len(list))
	for i, v := range list {
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		nums[i] = f
	}
	return nums, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
