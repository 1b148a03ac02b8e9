// Package tray provides the system tray menu for a mudra host.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/shape"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onShape  func(k shape.Kind)
	onOpen   func()
	onQuit   func()
	enabled  bool
	shape    shape.Kind
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuShapes map[shape.Kind]*systray.MenuItem
}

// New creates a Tray reflecting the given initial state.
func New(enabled bool, current shape.Kind) *Tray {
	return &Tray{
		enabled: enabled,
		shape:   current,
	}
}

// OnToggle sets the callback invoked when tracking is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnShape sets the callback invoked when a shape is picked.
func (t *Tray) OnShape(fn func(k shape.Kind)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onShape = fn
}

// OnOpen sets the callback invoked by the "Open Renderer" item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu, e.g. on a signal.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand-driven particle field")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()

	menuShape := systray.AddMenuItem("Shape", "Particle field shape")
	t.menuShapes = make(map[shape.Kind]*systray.MenuItem, len(shape.Kinds()))
	for _, k := range shape.Kinds() {
		item := menuShape.AddSubMenuItem(k.String(), "Morph to "+k.String())
		if k == t.shape {
			item.Check()
		}
		t.menuShapes[k] = item

		go func(k shape.Kind, item *systray.MenuItem) {
			for range item.ClickedCh {
				t.handleShape(k)
			}
		}(k, item)
	}
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Renderer...", "Open the renderer in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleShape checks the picked shape and reports it.
func (t *Tray) handleShape(k shape.Kind) {
	t.mu.Lock()
	t.shape = k
	for kind, item := range t.menuShapes {
		if kind == k {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	callback := t.onShape
	t.mu.Unlock()

	if callback != nil {
		callback(k)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Shape returns the shape last picked from the menu.
func (t *Tray) Shape() shape.Kind {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shape
}
