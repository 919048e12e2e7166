// Command scanwatch polls a directory of screenshots and prints the latest
// slot readout whenever it changes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"echo-scanner/internal/capture"
	"echo-scanner/internal/catalog"
	"echo-scanner/internal/logo"
	"echo-scanner/internal/ocr"
	"echo-scanner/internal/scan"
	"echo-scanner/internal/service"
	"echo-scanner/internal/version"
)

func main() {
	watchDir := flag.String("dir", "", "Directory to watch for new screenshots")
	showVersion := flag.Bool("version", false, "Print version and exit")
	interval := flag.Duration("interval", 15*time.Second, "Scan interval (minimum 500ms)")
	catalogPath := flag.String("catalog", "", "Path to buff catalog JSON (default: built-in)")
	logoPath := flag.String("logo", "", "Path to page logo template; when set, frames without the logo are skipped")
	logoScore := flag.Float64("logo-score", 0.82, "Minimum logo match score")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *watchDir == "" {
		fmt.Println("Usage: scanwatch -dir <path> [-interval 15s] [-catalog file] [-logo file]")
		os.Exit(1)
	}
	if info, err := os.Stat(*watchDir); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Not a directory: %s\n", *watchDir)
		os.Exit(1)
	}

	cat := catalog.Default()
	var err error
	if *catalogPath != "" {
		cat, err = catalog.LoadFile(*catalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
			os.Exit(1)
		}
	}

	var template *logo.Template
	if *logoPath != "" {
		template, err = logo.LoadFile(*logoPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load logo template: %v\n", err)
			os.Exit(1)
		}
	}

	engine, err := ocr.NewEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start OCR engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	cfg := service.DefaultConfig()
	cfg.Interval = *interval
	cfg.LogoMinScore = *logoScore

	workflow := scan.New(cat, scan.DefaultOptions())
	svc := service.New(&capture.DirProvider{Dir: *watchDir}, engine, workflow, template, cfg)
	svc.Start()
	defer svc.Stop()

	fmt.Fprintf(os.Stderr, "Watching %s every %s\n", *watchDir, cfg.Interval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastPrinted time.Time
	for {
		select {
		case <-sig:
			fmt.Fprintln(os.Stderr, "Stopping")
			return
		case <-ticker.C:
			status := svc.Status()
			if status.Debug.LastError != "" {
				fmt.Fprintf(os.Stderr, "Scan error: %s\n", status.Debug.LastError)
			}
			if status.Result != nil && status.ResultTime.After(lastPrinted) {
				lastPrinted = status.ResultTime
				out, err := json.Marshal(status.Result)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
					continue
				}
				fmt.Println(string(out))
			}
		}
	}
}
