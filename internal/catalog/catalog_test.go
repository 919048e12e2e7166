package catalog

import (
	"math"
	"testing"
)

func TestNewRejectsEmptyCounts(t *testing.T) {
	_, err := New([]Definition{{TypeName: "Broken", Counts: map[int]int{}}}, nil)
	if err == nil {
		t.Fatal("expected construction error for empty allowed-value set")
	}
}

func TestNewRejectsDuplicateType(t *testing.T) {
	defs := []Definition{
		{TypeName: "Crit", Counts: map[int]int{63: 1}},
		{TypeName: "Crit", Counts: map[int]int{69: 1}},
	}
	_, err := New(defs, nil)
	if err == nil {
		t.Fatal("expected construction error for duplicate type name")
	}
}

func TestNewRejectsUnknownOverrideType(t *testing.T) {
	defs := []Definition{{TypeName: "Crit", Counts: map[int]int{63: 1}}}
	overrides := []AliasOverride{{Alias: "暴击", Types: []string{"NoSuchType"}}}
	_, err := New(defs, overrides)
	if err == nil {
		t.Fatal("expected construction error for override referencing unknown type")
	}
}

func TestLookupExact(t *testing.T) {
	c := Default()

	defs := c.Lookup("暴击")
	if len(defs) != 1 || defs[0].TypeName != "Crit" {
		t.Fatalf("Lookup(暴击) = %v, want [Crit]", typeNames(defs))
	}

	defs = c.Lookup("暴击伤害")
	if len(defs) != 1 || defs[0].TypeName != "Crit_Damage" {
		t.Fatalf("Lookup(暴击伤害) = %v, want [Crit_Damage]", typeNames(defs))
	}
}

func TestLookupAmbiguousLabel(t *testing.T) {
	c := Default()

	defs := c.Lookup("攻击")
	if len(defs) != 2 {
		t.Fatalf("Lookup(攻击) = %v, want both attack variants", typeNames(defs))
	}
	got := map[string]bool{}
	for _, def := range defs {
		got[def.TypeName] = true
	}
	if !got["Attack"] || !got["Attack_Flat"] {
		t.Fatalf("Lookup(攻击) = %v, want Attack and Attack_Flat", typeNames(defs))
	}
}

func TestLookupIgnoresSeparatorNoise(t *testing.T) {
	c := Default()
	defs := c.Lookup("暴 击·伤害")
	if len(defs) != 1 || defs[0].TypeName != "Crit_Damage" {
		t.Fatalf("Lookup with separator noise = %v, want [Crit_Damage]", typeNames(defs))
	}
}

func TestLookupSubstringFallback(t *testing.T) {
	c := Default()
	// OCR garbling appends a stray character; no exact alias key matches.
	defs := c.Lookup("暴击率")
	if len(defs) != 1 || defs[0].TypeName != "Crit" {
		t.Fatalf("Lookup(暴击率) = %v, want [Crit]", typeNames(defs))
	}
}

func TestLookupUnknown(t *testing.T) {
	c := Default()
	if defs := c.Lookup("会心"); len(defs) != 0 {
		t.Fatalf("Lookup(会心) = %v, want none", typeNames(defs))
	}
	if defs := c.Lookup(""); len(defs) != 0 {
		t.Fatalf("Lookup(\"\") = %v, want none", typeNames(defs))
	}
}

func TestNearestTieResolvesToSmaller(t *testing.T) {
	def := Default().Definition("Crit")
	// 66 sits exactly between 63 and 69.
	nearest, diff := def.Nearest(66)
	if nearest != 63 || diff != 3 {
		t.Fatalf("Nearest(66) = (%d, %d), want (63, 3)", nearest, diff)
	}
}

func TestAllowsAndValues(t *testing.T) {
	def := Default().Definition("Attack_Flat")
	if !def.Allows(40) || def.Allows(45) {
		t.Fatal("Attack_Flat membership wrong")
	}
	values := def.Values()
	want := []int{30, 40, 50, 60}
	if len(values) != len(want) {
		t.Fatalf("Values() = %v, want %v", values, want)
	}
	for i, v := range want {
		if values[i] != v {
			t.Fatalf("Values() = %v, want %v", values, want)
		}
	}
}

func TestIsFlat(t *testing.T) {
	c := Default()
	if c.Definition("HP").IsFlat() {
		t.Error("HP should not be flat")
	}
	if !c.Definition("HP_Flat").IsFlat() {
		t.Error("HP_Flat should be flat")
	}
}

func TestMeanRoll(t *testing.T) {
	c, err := New([]Definition{
		{TypeName: "T", Counts: map[int]int{10: 1, 20: 3}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	mean := c.Definition("T").MeanRoll()
	if math.Abs(mean-17.5) > 1e-9 {
		t.Fatalf("MeanRoll() = %f, want 17.5", mean)
	}
}

func TestNormalizeLabelKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"生命百分比", "生命百分比"},
		{"生 命-百分比", "生命百分比"},
		{"暴击·伤害", "暴击伤害"},
		{"共鸣:效率", "共鸣效率"},
		{"　攻击　", "攻击"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeLabelKey(tc.in); got != tc.want {
			t.Errorf("NormalizeLabelKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func typeNames(defs []*Definition) []string {
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.TypeName
	}
	return names
}
