// Package logo provides page-identity matching: deciding whether a captured
// frame is showing the echo upgrade page by comparing a reference logo
// template against the frame's logo corner.
package logo

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"

	"echo-scanner/pkg/geometry"
)

// Template is a reference logo stored as a quantized black/white bitmap.
// Quantization makes matching cheap and tolerant of resolution changes.
type Template struct {
	Name          string `json:"name"`
	Width         int    `json:"width"`          // Quantized bitmap width
	Height        int    `json:"height"`         // Quantized bitmap height
	QuantizedSize int    `json:"quantized_size"` // Target max dimension
	Bits          []byte `json:"bits"`           // 1 bit per pixel, row-major
}

// NewTemplate quantizes an image region into a logo template.
func NewTemplate(name string, img image.Image, bounds geometry.RectInt, quantizedSize int) *Template {
	if quantizedSize < 8 {
		quantizedSize = 32
	}
	bits, w, h := quantizeRegion(img, bounds, quantizedSize)
	return &Template{
		Name:          name,
		Width:         w,
		Height:        h,
		QuantizedSize: quantizedSize,
		Bits:          bits,
	}
}

// getBit returns the bit at (x, y).
func (t *Template) getBit(x, y int) bool {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return false
	}
	idx := y*t.Width + x
	return (t.Bits[idx/8] & (1 << (7 - idx%8))) != 0
}

// Match compares two equally-sized templates and returns a similarity score
// in 0-1. Pixel agreement is blended with edge-transition agreement; edges
// are more robust to threshold drift between captures.
func (t *Template) Match(other *Template) float64 {
	if t.Width != other.Width || t.Height != other.Height {
		return 0
	}
	return 0.6*t.pixelAgreement(other) + 0.4*t.edgeAgreement(other)
}

// pixelAgreement is the fraction of positions where the bitmaps agree.
func (t *Template) pixelAgreement(other *Template) float64 {
	matching := 0
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			if t.getBit(x, y) == other.getBit(x, y) {
				matching++
			}
		}
	}
	return float64(matching) / float64(t.Width*t.Height)
}

// edgeAgreement compares horizontal and vertical bit transitions between
// the bitmaps. Positions where neither has a transition carry no signal and
// are skipped; two edge-free templates agree trivially.
func (t *Template) edgeAgreement(other *Template) float64 {
	matching, total := 0, 0
	tally := func(a, b bool) {
		if a || b {
			total++
			if a == b {
				matching++
			}
		}
	}

	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			if x+1 < t.Width {
				tally(t.getBit(x, y) != t.getBit(x+1, y),
					other.getBit(x, y) != other.getBit(x+1, y))
			}
			if y+1 < t.Height {
				tally(t.getBit(x, y) != t.getBit(x, y+1),
					other.getBit(x, y) != other.getBit(x, y+1))
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(matching) / float64(total)
}

// MatchRegion quantizes a frame region and scores it against the template.
func (t *Template) MatchRegion(frame image.Image, bounds geometry.RectInt) float64 {
	bits, w, h := quantizeRegionSized(frame, bounds, t.Width, t.Height)
	candidate := &Template{Width: w, Height: h, Bits: bits}
	return t.Match(candidate)
}

// MatchesPage reports whether the frame region shows this logo, given a
// minimum similarity score.
func (t *Template) MatchesPage(frame image.Image, bounds geometry.RectInt, minScore float64) bool {
	return t.MatchRegion(frame, bounds) >= minScore
}

// String returns a debug representation.
func (t *Template) String() string {
	return fmt.Sprintf("Template<%s %dx%d>", t.Name, t.Width, t.Height)
}

// quantizeRegion reduces a region to a black/white bitmap whose max
// dimension is targetSize, preserving aspect ratio.
func quantizeRegion(img image.Image, bounds geometry.RectInt, targetSize int) ([]byte, int, int) {
	aspect := float64(bounds.Width) / float64(bounds.Height)
	var w, h int
	if aspect >= 1.0 {
		w = targetSize
		h = max(1, int(float64(targetSize)/aspect))
	} else {
		h = targetSize
		w = max(1, int(float64(targetSize)*aspect))
	}
	return quantizeRegionSized(img, bounds, w, h)
}

// quantizeRegionSized samples the region to exactly w x h, thresholds it
// with Otsu, and packs the result.
func quantizeRegionSized(img image.Image, bounds geometry.RectInt, w, h int) ([]byte, int, int) {
	gray := make([]uint8, w*h)
	scaleX := float64(bounds.Width) / float64(w)
	scaleY := float64(bounds.Height) / float64(h)

	// Center-of-region sampling keeps logo edges sharp when downsampling.
	for y := 0; y < h; y++ {
		srcY := int((float64(y) + 0.5) * scaleY)
		if srcY >= bounds.Height {
			srcY = bounds.Height - 1
		}
		for x := 0; x < w; x++ {
			srcX := int((float64(x) + 0.5) * scaleX)
			if srcX >= bounds.Width {
				srcX = bounds.Width - 1
			}
			gray[y*w+x] = colorToGray(img.At(bounds.X+srcX, bounds.Y+srcY))
		}
	}

	threshold := otsuThreshold(gray)

	bits := make([]byte, (w*h+7)/8)
	for i := 0; i < w*h; i++ {
		if gray[i] > threshold {
			bits[i/8] |= 1 << (7 - i%8)
		}
	}
	return bits, w, h
}

// otsuThreshold computes the between-class variance maximizing threshold.
func otsuThreshold(gray []uint8) uint8 {
	var hist [256]int
	total := len(gray)
	for _, v := range gray {
		hist[v]++
	}
	if total == 0 {
		return 128
	}

	var sum float64
	for i := 0; i < 256; i++ {
		sum += float64(i) * float64(hist[i])
	}

	var sumB float64
	var wB int
	var maxVar float64
	threshold := uint8(128)

	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if variance > maxVar {
			maxVar = variance
			threshold = uint8(t)
		}
	}
	return threshold
}

// colorToGray converts a color to its luminance.
func colorToGray(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	gray := (299*r + 587*g + 114*b) / 1000
	return uint8(gray >> 8)
}

// SaveFile writes the template as JSON.
func (t *Template) SaveFile(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize logo template: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write logo template: %w", err)
	}
	return nil
}

// LoadFile reads a template saved by SaveFile.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read logo template: %w", err)
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("cannot parse logo template: %w", err)
	}
	if t.Width <= 0 || t.Height <= 0 || len(t.Bits) < (t.Width*t.Height+7)/8 {
		return nil, fmt.Errorf("logo template %s has inconsistent dimensions", path)
	}
	return &t, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
