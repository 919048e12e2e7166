// Package catalog holds the closed catalogue of buff definitions and the
// label alias table used to resolve OCR'd slot labels.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/stat"
)

// FlatSuffix marks buff types whose values are plain integers rather than
// one-decimal percentages stored in 0.1% units.
const FlatSuffix = "_Flat"

// labelKeyStrip removes separators and punctuation that OCR tends to insert
// into slot labels.
var labelKeyStrip = regexp.MustCompile(`[\s·•:_：／/|\\\-]+`)

// Definition is one catalogue entry: a buff type with its closed set of
// legal values and the observed frequency of each value.
// Definitions are immutable after catalogue construction.
type Definition struct {
	TypeName string      // Unique identifier, e.g. "HP" or "HP_Flat"
	Label    string      // Display label as shown in the upgrade panel
	Counts   map[int]int // Allowed value -> observed roll count

	values []int // Allowed values, ascending
}

// IsFlat reports whether this definition carries flat values rather than
// percentages.
func (d *Definition) IsFlat() bool {
	return strings.HasSuffix(d.TypeName, FlatSuffix)
}

// Allows reports whether v is a member of the closed allowed-value set.
func (d *Definition) Allows(v int) bool {
	_, ok := d.Counts[v]
	return ok
}

// Values returns the allowed values in ascending order.
func (d *Definition) Values() []int {
	out := make([]int, len(d.values))
	copy(out, d.values)
	return out
}

// Nearest returns the allowed value closest to v and the absolute
// difference. Ties resolve to the smaller value.
func (d *Definition) Nearest(v int) (nearest, diff int) {
	nearest = d.values[0]
	diff = absInt(nearest - v)
	for _, allowed := range d.values[1:] {
		if delta := absInt(allowed - v); delta < diff {
			nearest = allowed
			diff = delta
		}
	}
	return nearest, diff
}

// MeanRoll returns the frequency-weighted mean of the allowed values.
// Percent definitions report it in 0.1% units, same as the raw values.
func (d *Definition) MeanRoll() float64 {
	xs := make([]float64, len(d.values))
	ws := make([]float64, len(d.values))
	for i, v := range d.values {
		xs[i] = float64(v)
		ws[i] = float64(d.Counts[v])
	}
	return stat.Mean(xs, ws)
}

// AliasOverride declares an extra label alias for one or more buff types.
// Overrides are applied after automatic alias generation, so hand-authored
// entries merge with (never replace) the generated ones.
type AliasOverride struct {
	Alias string   `json:"alias"`
	Types []string `json:"types"`
}

// Catalog is the immutable buff catalogue plus its label alias table.
// Built once at startup; safe for concurrent use.
type Catalog struct {
	defsByType map[string]*Definition
	defOrder   []string

	aliases    map[string][]*Definition
	aliasOrder []string
}

// New builds a catalogue from definitions and alias overrides.
// Every definition must carry at least one allowed value; a violation is a
// construction error, not something resolvable per capture.
func New(defs []Definition, overrides []AliasOverride) (*Catalog, error) {
	c := &Catalog{
		defsByType: make(map[string]*Definition, len(defs)),
		aliases:    make(map[string][]*Definition),
	}

	for i := range defs {
		def := defs[i]
		if def.TypeName == "" {
			return nil, fmt.Errorf("definition %d has no type name", i)
		}
		if len(def.Counts) == 0 {
			return nil, fmt.Errorf("definition %q has an empty allowed-value set", def.TypeName)
		}
		if _, dup := c.defsByType[def.TypeName]; dup {
			return nil, fmt.Errorf("duplicate definition %q", def.TypeName)
		}
		if def.Label == "" {
			def.Label = def.TypeName
		}
		def.values = make([]int, 0, len(def.Counts))
		for v := range def.Counts {
			def.values = append(def.values, v)
		}
		sort.Ints(def.values)

		c.defsByType[def.TypeName] = &def
		c.defOrder = append(c.defOrder, def.TypeName)
	}

	// Automatic aliases from the display labels.
	for _, name := range c.defOrder {
		def := c.defsByType[name]
		c.registerAlias(def.Label, []string{name})
		c.registerAlias(CleanupLabel(def.Label), []string{name})
	}

	// Hand-authored entries for genuinely ambiguous UI labels.
	for _, ov := range overrides {
		for _, t := range ov.Types {
			if _, ok := c.defsByType[t]; !ok {
				return nil, fmt.Errorf("alias override %q references unknown type %q", ov.Alias, t)
			}
		}
		c.registerAlias(ov.Alias, ov.Types)
	}

	return c, nil
}

// registerAlias maps a normalized label key to definitions, merging with any
// existing entry and deduplicating by type name.
func (c *Catalog) registerAlias(alias string, typeNames []string) {
	key := NormalizeLabelKey(alias)
	if key == "" {
		return
	}

	existing, known := c.aliases[key]
	seen := make(map[string]bool, len(existing)+len(typeNames))
	for _, def := range existing {
		seen[def.TypeName] = true
	}
	for _, name := range typeNames {
		def, ok := c.defsByType[name]
		if !ok || seen[name] {
			continue
		}
		existing = append(existing, def)
		seen[name] = true
	}
	if len(existing) == 0 {
		return
	}
	if !known {
		c.aliasOrder = append(c.aliasOrder, key)
	}
	c.aliases[key] = existing
}

// Definition returns the definition for a type name, or nil.
func (c *Catalog) Definition(typeName string) *Definition {
	return c.defsByType[typeName]
}

// Definitions returns all definitions in catalogue order.
func (c *Catalog) Definitions() []*Definition {
	out := make([]*Definition, len(c.defOrder))
	for i, name := range c.defOrder {
		out[i] = c.defsByType[name]
	}
	return out
}

// Lookup resolves a raw label to candidate definitions.
// Tries the exact normalized key first, then falls back to a substring scan:
// any alias key contained in the normalized label contributes its
// definitions. The substring pass handles OCR truncation and garbling of the
// label. Returns nil when nothing matches.
func (c *Catalog) Lookup(label string) []*Definition {
	key := NormalizeLabelKey(label)
	if key == "" {
		return nil
	}
	if defs, ok := c.aliases[key]; ok {
		out := make([]*Definition, len(defs))
		copy(out, defs)
		return out
	}

	var out []*Definition
	seen := make(map[string]bool)
	for _, aliasKey := range c.aliasOrder {
		if !strings.Contains(key, aliasKey) {
			continue
		}
		for _, def := range c.aliases[aliasKey] {
			if !seen[def.TypeName] {
				out = append(out, def)
				seen[def.TypeName] = true
			}
		}
	}
	return out
}

// CleanupLabel normalizes OCR'd label text: Unicode compatibility
// normalization, ideographic space to ASCII space, trimmed.
func CleanupLabel(text string) string {
	cleaned := norm.NFKC.String(text)
	cleaned = strings.ReplaceAll(cleaned, "　", " ")
	return strings.TrimSpace(cleaned)
}

// NormalizeLabelKey reduces a label to its alias-map key by stripping
// separators, punctuation and whitespace.
func NormalizeLabelKey(text string) string {
	return labelKeyStrip.ReplaceAllString(CleanupLabel(text), "")
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
