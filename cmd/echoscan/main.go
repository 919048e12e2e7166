// Command echoscan interprets an echo upgrade panel screenshot and prints
// the slot readout as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"echo-scanner/internal/capture"
	"echo-scanner/internal/catalog"
	"echo-scanner/internal/logo"
	"echo-scanner/internal/ocr"
	"echo-scanner/internal/scan"
	"echo-scanner/internal/version"
	"echo-scanner/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to screenshot (PNG, JPEG, or TIFF)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	panelOnly := flag.Bool("panel", false, "Treat the image as the already-cropped slot panel")
	numeric := flag.Bool("numeric", false, "Treat the image as a value-column crop and print raw digit detections")
	catalogPath := flag.String("catalog", "", "Path to buff catalog JSON (default: built-in)")
	logoPath := flag.String("logo", "", "Path to page logo template; when set, frames without the logo are rejected")
	logoScore := flag.Float64("logo-score", 0.82, "Minimum logo match score")
	slots := flag.Int("slots", 5, "Number of slots on the panel")
	approx := flag.Int("approx", 2, "Maximum distance for approximate value matches")
	preferFlat := flag.Bool("prefer-flat", false, "Prefer flat over percent when a value fits both")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: echoscan -image <path> [-panel] [-catalog file] [-logo file]")
		os.Exit(1)
	}

	frame, err := capture.LoadImage(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	bounds := frame.Bounds()
	fmt.Fprintf(os.Stderr, "Loaded image: %dx%d pixels\n", bounds.Dx(), bounds.Dy())

	cat := catalog.Default()
	if *catalogPath != "" {
		cat, err = catalog.LoadFile(*catalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
			os.Exit(1)
		}
	}

	if *logoPath != "" && !*panelOnly {
		template, err := logo.LoadFile(*logoPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load logo template: %v\n", err)
			os.Exit(1)
		}
		corner := capture.DefaultLogoCrop.Apply(frame)
		cb := geometry.RectInt{Width: corner.Bounds().Dx(), Height: corner.Bounds().Dy()}
		if !template.MatchesPage(corner, cb, *logoScore) {
			fmt.Fprintf(os.Stderr, "Frame does not show the upgrade page (logo score below %.2f)\n", *logoScore)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Upgrade page confirmed\n")
	}

	panel := frame
	if !*panelOnly {
		panel = capture.DefaultPanelCrop.Apply(frame)
		pb := panel.Bounds()
		fmt.Fprintf(os.Stderr, "Panel crop: %dx%d pixels\n", pb.Dx(), pb.Dy())
	}

	engine, err := ocr.NewEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start OCR engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if *numeric {
		// Tuning aid: value-column pass with the digit whitelist, raw
		// detections only.
		detections, err := engine.DetectTextImageMode(panel, ocr.ModeValues)
		if err != nil {
			fmt.Fprintf(os.Stderr, "OCR failed: %v\n", err)
			os.Exit(1)
		}
		out, err := json.MarshalIndent(detections, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode detections: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	detections, err := engine.DetectTextImage(panel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OCR failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "OCR detections: %d\n", len(detections))

	opts := scan.DefaultOptions()
	opts.MaxSlots = *slots
	opts.ApproxTolerance = *approx
	opts.PreferPercent = !*preferFlat
	workflow := scan.New(cat, opts)

	result := workflow.InterpretDetections(detections, panel.Bounds().Dy())
	fmt.Fprintf(os.Stderr, "Resolved %d of %d slots\n", result.ResolvedCount(), len(result.Slots))
	for _, slot := range result.Slots {
		if slot.Status != scan.StatusBuff {
			continue
		}
		def := cat.Definition(slot.BuffType)
		fmt.Fprintf(os.Stderr, "  slot %d: %s %d (catalog mean %.1f)\n",
			slot.Index, slot.BuffType, *slot.NormalizedValue, def.MeanRoll())
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
