// Package capture provides frame acquisition for the upgrade panel scanner.
// The screen/window grab itself is platform territory; this package defines
// the provider contract plus file-backed providers and the fractional crop
// regions shared by every provider.
package capture

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"golang.org/x/image/draw"
)

// Provider returns an RGB frame of the target UI. Synchronous and fallible:
// capture fails when the target is absent.
type Provider interface {
	Capture() (image.Image, error)
}

// CropRegion is a fractional sub-rectangle of a frame: left, top, right,
// bottom in 0-1 of frame size.
type CropRegion struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Default crop regions for the upgrade page at 16:9. The logo corner is
// used for page identity, the panel region for slot OCR.
var (
	DefaultLogoCrop  = CropRegion{Left: 0.00, Top: 0.00, Right: 0.15, Bottom: 0.10}
	DefaultPanelCrop = CropRegion{Left: 0.110, Top: 0.29, Right: 0.37, Bottom: 0.50}
)

// Bounds resolves the crop to pixel bounds for a frame size, flooring the
// origin and ceiling the far edge so the region never loses a partial
// pixel row, then clamping to the frame.
func (c CropRegion) Bounds(width, height int) image.Rectangle {
	x0 := int(math.Floor(float64(width) * c.Left))
	y0 := int(math.Floor(float64(height) * c.Top))
	x1 := int(math.Ceil(float64(width) * c.Right))
	y1 := int(math.Ceil(float64(height) * c.Bottom))

	r := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, width, height))
	return r
}

// Apply extracts the crop region from a frame.
func (c CropRegion) Apply(frame image.Image) image.Image {
	fb := frame.Bounds()
	r := c.Bounds(fb.Dx(), fb.Dy()).Add(fb.Min)
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(out, image.Point{}, frame, r, draw.Src, nil)
	return out
}

// Scale resizes a frame to the given size with bilinear filtering.
func Scale(frame image.Image, width, height int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(out, out.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return out
}

// LoadImage decodes a frame from disk (PNG, JPEG or TIFF).
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode frame %s: %w", path, err)
	}
	return img, nil
}

// FileProvider serves a single image file, useful for one-shot runs and
// tests.
type FileProvider struct {
	Path string
}

// Capture decodes the file.
func (p *FileProvider) Capture() (image.Image, error) {
	return LoadImage(p.Path)
}

// DirProvider serves the newest image file from a watch directory, so an
// external screenshot tool can feed the scanner without a live window hook.
type DirProvider struct {
	Dir string
}

// Capture decodes the most recently modified image in the directory.
func (p *DirProvider) Capture() (image.Image, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read capture directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime int64
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		default:
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(p.Dir, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no frames in %s", p.Dir)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})
	return LoadImage(candidates[0].path)
}
