// Package app runs the mudra host pipeline: a tracking loop turning camera
// frames into hand metrics and a render loop driving the particle field.
package app

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/field"
	"github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/shape"
)

// Subscriber buffer sizes. Both feeds carry snapshots, so a slow consumer
// only needs the latest one or two.
const (
	MetricsBuffer = 4
	FieldBuffer   = 2
)

// Config holds configuration options for the application.
type Config struct {
	Camera   capture.Config
	Tracking detector.Config
	Metrics  metrics.Config
	Field    field.Config

	RenderFPS int
	StreamFPS int

	Shape shape.Kind
	Color field.Color
}

// Snapshot is one published metrics value with its session and time.
type Snapshot struct {
	Session   string          `json:"session"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	Metrics   metrics.Metrics `json:"metrics"`
}

// Selection is the user's choice of shape and base color.
type Selection struct {
	Shape shape.Kind  `json:"shape"`
	Color field.Color `json:"color"`
}

// App orchestrates capture, tracking, metric extraction and simulation.
type App struct {
	config    Config
	camera    capture.Camera
	detector  detector.Detector
	extractor *metrics.Extractor
	sim       *field.Simulator

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Tracking loop state
	session string
	present bool
	last    time.Time

	latest    atomic.Pointer[Snapshot]
	selection atomic.Pointer[Selection]

	metricsFeed *Feed[Snapshot]
	fieldFeed   *Feed[[]byte]
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.RenderFPS <= 0 {
		config.RenderFPS = 60
	}
	if config.StreamFPS <= 0 || config.StreamFPS > config.RenderFPS {
		config.StreamFPS = config.RenderFPS
	}
	if !config.Shape.Valid() {
		config.Shape = shape.Sphere
	}

	a := &App{
		config:      config,
		camera:      capture.NewCamera(config.Camera),
		extractor:   metrics.NewExtractor(config.Metrics),
		sim:         field.New(config.Field, config.Shape),
		metricsFeed: NewFeed[Snapshot](),
		fieldFeed:   NewFeed[[]byte](),
	}

	a.selection.Store(&Selection{Shape: config.Shape, Color: config.Color.Clamp()})
	empty := Snapshot{Timestamp: time.Now().UnixMilli(), Metrics: metrics.Empty(0)}
	a.latest.Store(&empty)

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Tracking); err == nil {
		a.detector = mp
		log.Info("using MediaPipe hand detection")
	} else {
		log.Warn("MediaPipe not available, using mock detector", "error", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables hand tracking. The render loop keeps
// running either way; without tracking the field idles.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether hand tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Latest returns the most recently published metrics snapshot.
func (a *App) Latest() Snapshot {
	return *a.latest.Load()
}

// Metrics returns the metrics feed.
func (a *App) Metrics() *Feed[Snapshot] {
	return a.metricsFeed
}

// Field returns the feed of encoded field frames.
func (a *App) Field() *Feed[[]byte] {
	return a.fieldFeed
}

// Selection returns the current shape and color.
func (a *App) Selection() Selection {
	return *a.selection.Load()
}

// SetSelection changes the shape and color. It takes effect on the next
// rendered frame.
func (a *App) SetSelection(sel Selection) error {
	if !sel.Shape.Valid() {
		return fmt.Errorf("select %q: %w", sel.Shape, shape.ErrUnknownKind)
	}
	sel.Color = sel.Color.Clamp()
	a.selection.Store(&sel)
	return nil
}

// SetShape changes only the shape.
func (a *App) SetShape(k shape.Kind) error {
	sel := a.Selection()
	sel.Shape = k
	return a.SetSelection(sel)
}

// Start opens the camera and begins the tracking and render loops.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	a.camera.SetFPS(a.config.Camera.FPS)

	a.stopCh = make(chan struct{})
	a.wg.Add(2)
	go a.runTracking(a.stopCh)
	go a.runRender(a.stopCh)

	log.Info("pipeline started", "camera_fps", a.camera.FPS(), "render_fps", a.config.RenderFPS)
	return nil
}

// Stop halts both loops and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	a.mu.Unlock()

	a.wg.Wait()

	if err := a.Camera().Close(); err != nil {
		log.Warn("error closing camera", "error", err)
	}
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Warn("error closing detector", "error", err)
		}
	}

	log.Info("pipeline stopped")
}
