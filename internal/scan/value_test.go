package scan

import "testing"

func TestParseValueToken(t *testing.T) {
	cases := []struct {
		in       string
		flat     *int
		percent  *int
		explicit bool
	}{
		{"30", iptr(30), nil, false},
		{"+40", iptr(40), nil, false},
		{"-5", iptr(-5), nil, false},
		{"12.5%", nil, iptr(125), true},
		{"8.4", nil, iptr(84), false},
		{"8.0", iptr(8), iptr(80), false},
		{"50%", iptr(50), iptr(500), true},
		{".5", nil, iptr(5), false},
		{"8.45", nil, iptr(85), false}, // second decimal rounds half away from zero
		{"8.44", nil, iptr(84), false},
		{"１２.５％", nil, iptr(125), true}, // full-width digits and percent
		{"3O", iptr(30), nil, false},      // OCR letter-O confusable
		{"4,300", iptr(4300), nil, false},
		{"8。6", nil, iptr(86), false}, // ideographic full stop
		{"", nil, nil, false},
		{"abc", nil, nil, false},
		{"1.2.3", nil, nil, false},
	}

	for _, tc := range cases {
		got := ParseValueToken(tc.in)
		if !eqIntPtr(got.Flat, tc.flat) {
			t.Errorf("ParseValueToken(%q).Flat = %v, want %v", tc.in, fmtPtr(got.Flat), fmtPtr(tc.flat))
		}
		if !eqIntPtr(got.Percent, tc.percent) {
			t.Errorf("ParseValueToken(%q).Percent = %v, want %v", tc.in, fmtPtr(got.Percent), fmtPtr(tc.percent))
		}
		if got.ExplicitPercent != tc.explicit {
			t.Errorf("ParseValueToken(%q).ExplicitPercent = %v, want %v", tc.in, got.ExplicitPercent, tc.explicit)
		}
	}
}

func TestValueCandidateListJoinsFragments(t *testing.T) {
	// OCR split "12.5%" across a line break; the joined variant comes first.
	variants := valueCandidateList("12.\n5%")
	if len(variants) == 0 {
		t.Fatal("no variants")
	}
	if variants[0].text != "12.5%" {
		t.Fatalf("first variant = %q, want joined 12.5%%", variants[0].text)
	}
	if variants[0].cand.Percent == nil || *variants[0].cand.Percent != 125 {
		t.Fatalf("joined variant percent = %v, want 125", fmtPtr(variants[0].cand.Percent))
	}
}

func TestValueCandidateListDedupes(t *testing.T) {
	// One fragment: the join and the single-fragment variant are identical.
	variants := valueCandidateList("  30 ")
	if len(variants) != 1 {
		t.Fatalf("got %d variants, want 1", len(variants))
	}
	if variants[0].text != "30" || variants[0].cand.Flat == nil || *variants[0].cand.Flat != 30 {
		t.Fatalf("variant = %+v, want flat 30", variants[0])
	}
}

func TestValueCandidateListAdjacentPairs(t *testing.T) {
	variants := valueCandidateList("7 . 9 %")
	// Joined "7.9%" must appear and parse to 79.
	found := false
	for _, v := range variants {
		if v.text == "7.9%" && v.cand.Percent != nil && *v.cand.Percent == 79 {
			found = true
		}
	}
	if !found {
		t.Fatalf("joined variant 7.9%% missing from %v", variantTexts(variants))
	}
}

func TestValueCandidateListDropsGarbage(t *testing.T) {
	if variants := valueCandidateList("损坏"); len(variants) != 0 {
		t.Fatalf("got %v, want none", variantTexts(variants))
	}
	if variants := valueCandidateList(""); len(variants) != 0 {
		t.Fatalf("got %v, want none", variantTexts(variants))
	}
}

func iptr(v int) *int { return &v }

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func variantTexts(variants []valueVariant) []string {
	out := make([]string, len(variants))
	for i, v := range variants {
		out[i] = v.text
	}
	return out
}
