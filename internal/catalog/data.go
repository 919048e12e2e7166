package catalog

// Default catalogue for the five-slot echo upgrade panel. Value histograms
// are community roll statistics; percentage stats are stored in 0.1% units
// (6.3% -> 63), flat stats store raw values.

// DefaultDefinitions returns the built-in buff catalogue.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			TypeName: "Crit",
			Label:    "暴击",
			Counts: map[int]int{
				63: 1036, 69: 964, 75: 1053, 81: 362,
				87: 322, 93: 328, 99: 131, 105: 112,
			},
		},
		{
			TypeName: "Crit_Damage",
			Label:    "暴击伤害",
			Counts: map[int]int{
				126: 995, 138: 1005, 150: 1090, 162: 335,
				174: 362, 186: 387, 198: 129, 210: 119,
			},
		},
		{
			TypeName: "Attack",
			Label:    "攻击百分比",
			Counts: map[int]int{
				64: 316, 71: 373, 79: 921, 86: 1125,
				94: 781, 101: 707, 109: 254, 116: 139,
			},
		},
		{
			TypeName: "Defence",
			Label:    "防御百分比",
			Counts: map[int]int{
				81: 318, 90: 413, 100: 995, 109: 1277,
				118: 872, 128: 718, 138: 295, 147: 152,
			},
		},
		{
			TypeName: "HP",
			Label:    "生命百分比",
			Counts: map[int]int{
				64: 321, 71: 386, 79: 1005, 86: 1213,
				94: 800, 101: 669, 109: 275, 116: 137,
			},
		},
		{
			TypeName: "Attack_Flat",
			Label:    "攻击",
			Counts:   map[int]int{30: 326, 40: 2496, 50: 1838, 60: 120},
		},
		{
			TypeName: "Defence_Flat",
			Label:    "防御",
			Counts:   map[int]int{40: 700, 50: 2128, 60: 1846, 70: 141},
		},
		{
			TypeName: "HP_Flat",
			Label:    "生命",
			Counts: map[int]int{
				320: 298, 360: 419, 390: 971, 430: 1205,
				470: 864, 510: 680, 540: 258, 580: 168,
			},
		},
		{
			TypeName: "Energy_Regen",
			Label:    "共鸣效率",
			Counts: map[int]int{
				68: 302, 76: 375, 84: 975, 92: 1199,
				100: 871, 108: 643, 116: 274, 124: 126,
			},
		},
		{
			TypeName: "Basic_Attack",
			Label:    "普攻伤害加成",
			Counts: map[int]int{
				64: 316, 71: 360, 79: 959, 86: 1199,
				94: 859, 101: 723, 109: 263, 116: 160,
			},
		},
		{
			TypeName: "Heavy_Attack",
			Label:    "重击伤害加成",
			Counts: map[int]int{
				64: 319, 71: 369, 79: 968, 86: 1187,
				94: 809, 101: 697, 109: 283, 116: 150,
			},
		},
		{
			TypeName: "Skill_Damage",
			Label:    "共鸣技能伤害加成",
			Counts: map[int]int{
				64: 328, 71: 357, 79: 978, 86: 1173,
				94: 847, 101: 731, 109: 283, 116: 149,
			},
		},
		{
			TypeName: "Liberation_Damage",
			Label:    "共鸣解放伤害加成",
			Counts: map[int]int{
				64: 292, 71: 358, 79: 973, 86: 1162,
				94: 823, 101: 694, 109: 280, 116: 144,
			},
		},
	}
}

// DefaultOverrides returns the hand-authored aliases for panel labels that
// omit the 百分比 suffix and are therefore ambiguous between the percent and
// flat variant of a stat. Only the numeric value's scale disambiguates them.
func DefaultOverrides() []AliasOverride {
	return []AliasOverride{
		{Alias: "攻击", Types: []string{"Attack", "Attack_Flat"}},
		{Alias: "防御", Types: []string{"Defence", "Defence_Flat"}},
		{Alias: "生命", Types: []string{"HP", "HP_Flat"}},
	}
}

// Default builds the built-in catalogue. The embedded data is known good, so
// a construction failure here is a programming error.
func Default() *Catalog {
	c, err := New(DefaultDefinitions(), DefaultOverrides())
	if err != nil {
		panic("catalog: invalid built-in data: " + err.Error())
	}
	return c
}
