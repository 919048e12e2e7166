// Package service runs the background scan loop: capture the game frame,
// confirm the upgrade page is showing, crop the slot panel, and interpret
// it. The interpretation engine itself stays purely functional; timeouts,
// pacing and lifecycle live here.
package service

import (
	"fmt"
	"image"
	"sync"
	"time"

	"echo-scanner/internal/capture"
	"echo-scanner/internal/detect"
	"echo-scanner/internal/logo"
	"echo-scanner/internal/scan"
	"echo-scanner/pkg/geometry"
)

// MinInterval is the floor for the scan period; polling faster than this
// just burns OCR time on identical frames.
const MinInterval = 500 * time.Millisecond

// Recognizer is the OCR collaborator. The call is synchronous and may be
// slow; the service owns pacing around it.
type Recognizer interface {
	DetectTextImage(img image.Image) ([]detect.Detection, error)
}

// Config tunes the scan loop.
type Config struct {
	Interval     time.Duration
	LogoCrop     capture.CropRegion
	PanelCrop    capture.CropRegion
	LogoMinScore float64
}

// DefaultConfig returns the standard loop configuration.
func DefaultConfig() Config {
	return Config{
		Interval:     15 * time.Second,
		LogoCrop:     capture.DefaultLogoCrop,
		PanelCrop:    capture.DefaultPanelCrop,
		LogoMinScore: 0.82,
	}
}

// DebugInfo reports what the last scan attempt saw.
type DebugInfo struct {
	FrameCaptured bool
	OnUpgradePage bool
	LastError     string
	LastScan      time.Time
	LastDuration  time.Duration
}

// Status is a point-in-time snapshot of the service.
type Status struct {
	Active     bool
	Debug      DebugInfo
	Result     *scan.Result
	ResultTime time.Time
}

// Service drives periodic captures through the workflow.
type Service struct {
	provider capture.Provider
	engine   Recognizer
	workflow *scan.Workflow
	template *logo.Template // nil skips the page-identity check
	cfg      Config

	mu         sync.Mutex
	running    bool
	stop       chan struct{}
	done       chan struct{}
	latest     *scan.Result
	latestTime time.Time
	debug      DebugInfo
}

// New assembles a service. template may be nil when the caller knows every
// frame shows the upgrade page (e.g. pre-cropped screenshots).
func New(provider capture.Provider, engine Recognizer, workflow *scan.Workflow, template *logo.Template, cfg Config) *Service {
	if cfg.Interval < MinInterval {
		cfg.Interval = MinInterval
	}
	return &Service{
		provider: provider,
		engine:   engine,
		workflow: workflow,
		template: template,
		cfg:      cfg,
	}
}

// Start launches the scan loop. Safe to call when already running.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

// Stop halts the loop and waits for the in-flight scan to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// Status returns a snapshot of the latest result and debug state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Active:     s.running,
		Debug:      s.debug,
		Result:     s.latest,
		ResultTime: s.latestTime,
	}
}

func (s *Service) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.scanOnce()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.scanOnce()
		}
	}
}

// scanOnce performs one capture/interpret cycle and records the outcome.
func (s *Service) scanOnce() {
	started := time.Now()
	result, debug, err := s.ScanFrame()
	debug.LastScan = started
	debug.LastDuration = time.Since(started)
	if err != nil {
		debug.LastError = err.Error()
	}

	s.mu.Lock()
	s.debug = debug
	if result != nil {
		s.latest = result
		s.latestTime = started
	}
	s.mu.Unlock()
}

// ScanFrame captures and interprets a single frame. A frame that is not on
// the upgrade page returns a nil result and no error.
func (s *Service) ScanFrame() (*scan.Result, DebugInfo, error) {
	var debug DebugInfo

	frame, err := s.provider.Capture()
	if err != nil {
		return nil, debug, fmt.Errorf("capture failed: %w", err)
	}
	debug.FrameCaptured = true

	if s.template != nil {
		corner := s.cfg.LogoCrop.Apply(frame)
		bounds := geometry.RectInt{
			Width:  corner.Bounds().Dx(),
			Height: corner.Bounds().Dy(),
		}
		if !s.template.MatchesPage(corner, bounds, s.cfg.LogoMinScore) {
			return nil, debug, nil
		}
	}
	debug.OnUpgradePage = true

	panel := s.cfg.PanelCrop.Apply(frame)
	detections, err := s.engine.DetectTextImage(panel)
	if err != nil {
		return nil, debug, fmt.Errorf("OCR failed: %w", err)
	}

	result := s.workflow.InterpretDetections(detections, panel.Bounds().Dy())
	return result, debug, nil
}
