package scan

import (
	"regexp"
	"strconv"
	"strings"

	"echo-scanner/internal/catalog"
	"echo-scanner/internal/detect"
)

// Status classifies one upgrade slot.
type Status string

const (
	StatusBuff    Status = "buff"    // Label and value both validated
	StatusPending Status = "pending" // Slot awaiting synchronization
	StatusLocked  Status = "locked"  // Slot locked behind an upgrade level
	StatusUnknown Status = "unknown" // Label or value present but unvalidated
	StatusEmpty   Status = "empty"   // Row had no label text
	StatusMissing Status = "missing" // No row detected for this slot
)

// Slot status marker patterns, matched against the cleaned label with
// spaces removed. Traditional-form variants cover font fallbacks.
var (
	pendingPattern = regexp.MustCompile(`待[调調][谐諧]`)
	lockPattern    = regexp.MustCompile(`强化至\+?(\d+)\s*可[调調][谐諧]`)
)

// SlotResult is the interpretation of one upgrade slot. Constructed fresh
// per capture and never mutated afterwards.
type SlotResult struct {
	Index             int    `json:"index"`
	Status            Status `json:"status"`
	BuffType          string `json:"buff_type,omitempty"`
	BuffLabel         string `json:"buff_label,omitempty"`
	NormalizedValue   *int   `json:"normalized_value,omitempty"`
	RawTypeText       string `json:"raw_type_text,omitempty"`
	RawValueText      string `json:"raw_value_text,omitempty"`
	CleanedValueText  string `json:"cleaned_value_text,omitempty"`
	TypeValid         bool   `json:"type_valid"`
	ValueValid        bool   `json:"value_valid"`
	UnlockRequirement int    `json:"unlock_requirement,omitempty"`
}

// Result is the interpretation of one captured panel: exactly SlotCount
// slots plus the two parallel projections consumed by downstream policy
// code. All three sequences share the same length and ordering.
type Result struct {
	Slots      []SlotResult `json:"slots"`
	BuffTypes  []*string    `json:"buff_names"`
	BuffValues []*int       `json:"buff_values"`
}

// Options tune the workflow. Zero values fall back to defaults via New.
type Options struct {
	MaxSlots          int     // Slot count in the panel layout
	RowToleranceRatio float64 // Row tolerance as a fraction of frame height
	ApproxTolerance   int     // Max |diff| for approximate value matching
	PreferPercent     bool    // Ambiguous-label tie-break policy
}

// DefaultOptions returns the standard five-slot panel configuration.
func DefaultOptions() Options {
	return Options{
		MaxSlots:          5,
		RowToleranceRatio: detect.DefaultRowToleranceRatio,
		ApproxTolerance:   2,
		PreferPercent:     true,
	}
}

// Workflow interprets raw OCR output for the upgrade panel. It is immutable
// after construction — the catalogue and options are never touched again —
// so one instance is safe for concurrent use. Each invocation is
// independent and idempotent; the workflow performs no I/O.
type Workflow struct {
	catalog *catalog.Catalog
	opts    Options
}

// New creates a workflow over an immutable catalogue.
func New(cat *catalog.Catalog, opts Options) *Workflow {
	if opts.MaxSlots < 1 {
		opts.MaxSlots = 1
	}
	if opts.RowToleranceRatio < 0 {
		opts.RowToleranceRatio = 0
	}
	if opts.ApproxTolerance < 0 {
		opts.ApproxTolerance = 0
	}
	return &Workflow{catalog: cat, opts: opts}
}

// Interpret normalizes an arbitrary-shaped raw OCR result and interprets it.
// Frame dimensions come from the captured panel image; only the height
// feeds the row tolerance. Never fails: unrecognized raw shapes produce a
// result of all-missing slots.
func (w *Workflow) Interpret(raw any, frameWidth, frameHeight int) *Result {
	_ = frameWidth
	return w.InterpretDetections(detect.Normalize(raw), frameHeight)
}

// InterpretDetections groups detections into rows and classifies each row
// into a slot, padding the result to the configured slot count.
func (w *Workflow) InterpretDetections(detections []detect.Detection, frameHeight int) *Result {
	tolerance := detect.RowTolerance(frameHeight, w.opts.RowToleranceRatio)
	rows := detect.GroupRows(detections, tolerance)

	result := &Result{
		Slots:      make([]SlotResult, 0, w.opts.MaxSlots),
		BuffTypes:  make([]*string, 0, w.opts.MaxSlots),
		BuffValues: make([]*int, 0, w.opts.MaxSlots),
	}

	for index, row := range rows {
		if index >= w.opts.MaxSlots {
			break
		}
		slot, halt := w.classifyRow(index, row)
		result.append(slot)
		if halt {
			// The panel never shows resolvable slots below a pending or
			// locked one; the rest of the rows are noise.
			break
		}
	}

	for index := len(result.Slots); index < w.opts.MaxSlots; index++ {
		result.append(SlotResult{Index: index, Status: StatusMissing})
	}
	return result
}

// classifyRow runs the slot state machine over one row. The first detection
// is the label fragment; the remainder concatenate into the value text.
// halt is true for the pending and locked states.
func (w *Workflow) classifyRow(index int, row []detect.Detection) (SlotResult, bool) {
	rawLabel := catalog.CleanupLabel(row[0].Text)
	statusKey := strings.ReplaceAll(rawLabel, " ", "")

	if rawLabel == "" {
		return SlotResult{Index: index, Status: StatusEmpty}, false
	}

	if pendingPattern.MatchString(statusKey) {
		return SlotResult{Index: index, Status: StatusPending, RawTypeText: rawLabel}, true
	}

	if m := lockPattern.FindStringSubmatch(statusKey); m != nil {
		requirement, err := strconv.Atoi(m[1])
		if err != nil {
			// Digit run too long for an upgrade level: OCR noise. Report
			// the lock without a requirement.
			requirement = 0
		}
		return SlotResult{
			Index:             index,
			Status:            StatusLocked,
			RawTypeText:       rawLabel,
			UnlockRequirement: requirement,
		}, true
	}

	var valueText strings.Builder
	for _, det := range row[1:] {
		valueText.WriteString(det.Text)
	}
	variants := valueCandidateList(valueText.String())

	cleanedValue := ""
	if len(variants) > 0 {
		cleanedValue = variants[0].text
	} else {
		cleanedValue = cleanupValueToken(valueText.String())
	}

	def, value, valueOK, matchedText := w.resolveDefinition(rawLabel, variants)
	typeValid := def != nil
	valueValid := valueOK && typeValid

	slot := SlotResult{
		Index:        index,
		Status:       StatusUnknown,
		RawTypeText:  rawLabel,
		RawValueText: valueText.String(),
		TypeValid:    typeValid,
		ValueValid:   valueValid,
	}
	if matchedText != "" {
		slot.CleanedValueText = matchedText
	} else {
		slot.CleanedValueText = cleanedValue
	}
	if def != nil {
		slot.BuffLabel = def.Label
	}
	if typeValid && valueValid {
		slot.Status = StatusBuff
		slot.BuffType = def.TypeName
		slot.NormalizedValue = &value
	}
	return slot, false
}

// append adds a slot and its projections, keeping the three sequences
// parallel.
func (r *Result) append(slot SlotResult) {
	r.Slots = append(r.Slots, slot)
	if slot.Status == StatusBuff {
		name := slot.BuffType
		value := *slot.NormalizedValue
		r.BuffTypes = append(r.BuffTypes, &name)
		r.BuffValues = append(r.BuffValues, &value)
	} else {
		r.BuffTypes = append(r.BuffTypes, nil)
		r.BuffValues = append(r.BuffValues, nil)
	}
}

// ResolvedCount returns how many slots carry a validated buff.
func (r *Result) ResolvedCount() int {
	count := 0
	for _, t := range r.BuffTypes {
		if t != nil {
			count++
		}
	}
	return count
}
