// Package ocr provides the Tesseract engine handle used to read the echo
// upgrade panel.
package ocr

import (
	"fmt"
	"image"
	"strings"

	"echo-scanner/internal/detect"
	"echo-scanner/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// ValueChars is the glyph whitelist for value-column recognition: slot
// values are digits with an optional sign, decimal point and percent mark.
const ValueChars = "0123456789.%+"

// Mode selects the glyph domain for a recognition pass.
type Mode int

const (
	// ModePanel reads the full panel: labels and values.
	ModePanel Mode = iota
	// ModeValues reads a value-column crop with the digit whitelist,
	// keeping Tesseract from mistaking digits for hanzi strokes.
	ModeValues
)

// whitelist returns the SetWhitelist argument for the mode; empty clears.
func (m Mode) whitelist() string {
	if m == ModeValues {
		return ValueChars
	}
	return ""
}

// Engine wraps a gosseract client configured for game UI text. The engine
// is constructed explicitly and passed to whoever needs it; there is no
// process-wide shared instance. One Engine is not safe for concurrent
// calls — the underlying client holds per-call state.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates an engine for simplified-Chinese panel text with Latin
// digits and percent signs mixed in.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("chi_sim", "eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Panel labels aren't dictionary words; keep Tesseract from
	// "correcting" stat names and values.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// DetectText runs word-level OCR over a panel frame and returns canonical
// detections with quad centers. Confidence is normalized to 0-1.
func (e *Engine) DetectText(img gocv.Mat) ([]detect.Detection, error) {
	return e.DetectTextMode(img, ModePanel)
}

// DetectTextMode is DetectText with an explicit recognition mode.
func (e *Engine) DetectTextMode(img gocv.Mat, mode Mode) ([]detect.Detection, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	processed := preprocessPanel(img)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// Sparse text: slot labels and values are scattered short fragments,
	// not a uniform block.
	if err := e.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}

	if mode == ModeValues {
		if err := e.client.SetWhitelist(mode.whitelist()); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	} else {
		// Clear any whitelist left by an earlier value pass; some
		// Tesseract versions reject the empty string, which is fine.
		_ = e.client.SetWhitelist("")
	}

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get boxes: %w", err)
	}

	var detections []detect.Detection
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}

		quad := geometry.QuadFromRect(
			float64(box.Box.Min.X), float64(box.Box.Min.Y),
			float64(box.Box.Max.X), float64(box.Box.Max.Y),
		)
		detections = append(detections, detect.Detection{
			Text:       text,
			Confidence: box.Confidence / 100.0,
			Center:     quad.Center(),
		})
	}

	return detections, nil
}

// DetectTextImage is DetectText for a decoded image.Image frame.
func (e *Engine) DetectTextImage(img image.Image) ([]detect.Detection, error) {
	return e.DetectTextImageMode(img, ModePanel)
}

// DetectTextImageMode is DetectTextMode for a decoded image.Image frame.
func (e *Engine) DetectTextImageMode(img image.Image, mode Mode) ([]detect.Detection, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()
	return e.DetectTextMode(mat, mode)
}

// preprocessPanel prepares a panel frame for OCR. The upgrade panel renders
// light text on a dark backdrop; Tesseract wants the opposite polarity.
func preprocessPanel(img gocv.Mat) gocv.Mat {
	h, w := img.Rows(), img.Cols()

	// Upscale small captures; panel text at 720p is near the legibility
	// floor for chi_sim.
	var scaled gocv.Mat
	minDim := min(h, w)
	if minDim < 400 {
		scale := 400.0 / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(img, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = img.Clone()
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	// Contrast normalization helps with the panel's gradient backdrop.
	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	defer clahe.Close()

	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	enhanced.Close()

	// Invert when the frame is mostly dark (light-on-dark game text).
	whiteCount := gocv.CountNonZero(binary)
	totalPixels := binary.Rows() * binary.Cols()
	if float64(whiteCount)/float64(totalPixels) < 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()

	return result
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
