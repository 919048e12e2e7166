package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// fileDefinition mirrors Definition in the on-disk catalogue format.
// Histogram keys are strings because JSON object keys always are.
type fileDefinition struct {
	Type   string         `json:"type"`
	Label  string         `json:"label"`
	Counts map[string]int `json:"counts"`
}

type fileCatalog struct {
	Definitions []fileDefinition `json:"definitions"`
	Aliases     []AliasOverride  `json:"aliases,omitempty"`
}

// LoadFile reads a catalogue override file. Malformed data is a fatal
// startup error; there is no per-request recovery from a bad catalogue.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalogue: %w", err)
	}

	var fc fileCatalog
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("cannot parse catalogue: %w", err)
	}
	if len(fc.Definitions) == 0 {
		return nil, fmt.Errorf("catalogue %s contains no definitions", path)
	}

	defs := make([]Definition, 0, len(fc.Definitions))
	for _, fd := range fc.Definitions {
		counts := make(map[int]int, len(fd.Counts))
		for key, freq := range fd.Counts {
			value, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("definition %q has non-integer value %q", fd.Type, key)
			}
			counts[value] = freq
		}
		defs = append(defs, Definition{
			TypeName: fd.Type,
			Label:    fd.Label,
			Counts:   counts,
		})
	}

	return New(defs, fc.Aliases)
}
