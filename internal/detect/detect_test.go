package detect

import (
	"encoding/json"
	"testing"
)

// decode mimics how raw OCR results actually arrive: parsed JSON in any.
func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return v
}

func TestNormalizeShapes(t *testing.T) {
	// The same two fragments in every layout an engine might emit.
	cases := []struct {
		name string
		raw  string
	}{
		{
			"entries",
			`[[[10, 20, 50, 40], ["暴击", 0.9]], [[100, 22, 140, 42], ["6.3%", 0.8]]]`,
		},
		{
			"nested",
			`[[[[10, 20, 50, 40], ["暴击", 0.9]], [[100, 22, 140, 42], ["6.3%", 0.8]]]]`,
		},
		{
			"dicts",
			`[{"box": [10, 20, 50, 40], "text": "暴击", "score": 0.9},
			  {"bbox": [100, 22, 140, 42], "label": "6.3%", "confidence": 0.8}]`,
		},
		{
			"pair_with_scored_texts",
			`[[[10, 20, 50, 40], [100, 22, 140, 42]], [["暴击", 0.9], ["6.3%", 0.8]]]`,
		},
		{
			"triple",
			`[[[10, 20, 50, 40], [100, 22, 140, 42]], ["暴击", "6.3%"], [0.9, 0.8]]`,
		},
		{
			"corner_points",
			`[[[[10, 20], [50, 20], [50, 40], [10, 40]], ["暴击", 0.9]],
			  [[[100, 22], [140, 22], [140, 42], [100, 42]], ["6.3%", 0.8]]]`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(decode(t, tc.raw))
			if len(got) != 2 {
				t.Fatalf("got %d detections, want 2", len(got))
			}
			if got[0].Text != "暴击" || got[1].Text != "6.3%" {
				t.Fatalf("texts = %q, %q", got[0].Text, got[1].Text)
			}
			if got[0].Confidence != 0.9 || got[1].Confidence != 0.8 {
				t.Fatalf("scores = %v, %v", got[0].Confidence, got[1].Confidence)
			}
			if got[0].Center.X != 30 || got[0].Center.Y != 30 {
				t.Fatalf("center = %v, want (30, 30)", got[0].Center)
			}
			if got[1].Center.X != 120 || got[1].Center.Y != 32 {
				t.Fatalf("center = %v, want (120, 32)", got[1].Center)
			}
		})
	}
}

func TestNormalizeBareStringsScoreOne(t *testing.T) {
	got := Normalize(decode(t, `[[[0, 0, 10, 10], "生命"]]`))
	if len(got) != 1 || got[0].Confidence != 1.0 {
		t.Fatalf("got %v, want one detection with score 1.0", got)
	}
}

func TestNormalizeNullScoreDefaultsToOne(t *testing.T) {
	got := Normalize(decode(t, `[[[0, 0, 10, 10], ["生命", null]]]`))
	if len(got) != 1 {
		t.Fatalf("got %d detections, want 1", len(got))
	}
	if got[0].Confidence != 1.0 {
		t.Fatalf("confidence = %v, want 1.0 for a null score", got[0].Confidence)
	}
}

func TestNormalizeSkipsMalformedEntries(t *testing.T) {
	raw := `[
		[[10, 20, 50, 40], ["好", 0.9]],
		[[10, 20, 50], ["坏", 0.9]],
		[[10, 20, 50, 40], ["", 0.9]]
	]`
	// The malformed middle entry keeps this from classifying as an entry
	// list at all; a fully unrecognizable shape yields nothing.
	if got := Normalize(decode(t, raw)); len(got) != 0 {
		t.Fatalf("got %d detections, want 0 for unclassifiable shape", len(got))
	}

	// Within a recognized dict list, bad entries are dropped individually.
	raw = `[
		{"box": [10, 20, 50, 40], "text": "好"},
		{"text": "无框"},
		{"box": [10, 20, 50, 40], "text": ""}
	]`
	got := Normalize(decode(t, raw))
	if len(got) != 1 || got[0].Text != "好" {
		t.Fatalf("got %v, want only the well-formed detection", got)
	}
}

func TestNormalizeUnknownShape(t *testing.T) {
	for _, raw := range []string{`[]`, `["just", "strings"]`, `[42]`, `null`} {
		if got := Normalize(decode(t, raw)); len(got) != 0 {
			t.Errorf("Normalize(%s) = %v, want empty", raw, got)
		}
	}
	if got := Normalize("not a list"); len(got) != 0 {
		t.Errorf("Normalize(string) = %v, want empty", got)
	}
}

func TestRowTolerance(t *testing.T) {
	if got := RowTolerance(100, DefaultRowToleranceRatio); got != MinRowTolerance {
		t.Errorf("RowTolerance(100) = %v, want floor %v", got, MinRowTolerance)
	}
	if got := RowTolerance(1000, DefaultRowToleranceRatio); got != 35 {
		t.Errorf("RowTolerance(1000) = %v, want 35", got)
	}
}

func det(text string, x, y float64) Detection {
	d := Detection{Text: text, Confidence: 1}
	d.Center.X = x
	d.Center.Y = y
	return d
}

func TestGroupRows(t *testing.T) {
	detections := []Detection{
		det("value1", 300, 12),
		det("label2", 10, 50),
		det("label1", 10, 10),
		det("value2", 300, 52),
	}

	rows := GroupRows(detections, 12)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0].Text != "label1" || rows[0][1].Text != "value1" {
		t.Errorf("row 0 = %v, want label1 then value1", texts(rows[0]))
	}
	if rows[1][0].Text != "label2" || rows[1][1].Text != "value2" {
		t.Errorf("row 1 = %v, want label2 then value2", texts(rows[1]))
	}
}

func TestGroupRowsToleranceSplits(t *testing.T) {
	detections := []Detection{
		det("a", 0, 10),
		det("b", 0, 19),
		det("c", 0, 60),
	}
	rows := GroupRows(detections, 10)
	if len(rows) != 2 || len(rows[0]) != 2 || len(rows[1]) != 1 {
		t.Fatalf("rows = %v, want [[a b] [c]]", allTexts(rows))
	}

	rows = GroupRows(detections, 5)
	if len(rows) != 3 {
		t.Fatalf("rows = %v, want three singleton rows", allTexts(rows))
	}
}

func TestGroupRowsOrderIndependent(t *testing.T) {
	detections := []Detection{
		det("a", 10, 10), det("b", 200, 12),
		det("c", 10, 90), det("d", 200, 91),
		det("e", 10, 170),
	}
	want := allTexts(GroupRows(detections, 12))

	permutations := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	for _, perm := range permutations {
		shuffled := make([]Detection, len(detections))
		for i, j := range perm {
			shuffled[i] = detections[j]
		}
		got := allTexts(GroupRows(shuffled, 12))
		if len(got) != len(want) {
			t.Fatalf("permutation %v: %v, want %v", perm, got, want)
		}
		for i := range want {
			if len(got[i]) != len(want[i]) {
				t.Fatalf("permutation %v: %v, want %v", perm, got, want)
			}
			for j := range want[i] {
				if got[i][j] != want[i][j] {
					t.Fatalf("permutation %v: %v, want %v", perm, got, want)
				}
			}
		}
	}
}

func TestGroupRowsEmpty(t *testing.T) {
	if rows := GroupRows(nil, 12); len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
}

func texts(row []Detection) []string {
	out := make([]string, len(row))
	for i, d := range row {
		out[i] = d.Text
	}
	return out
}

func allTexts(rows [][]Detection) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = texts(row)
	}
	return out
}
