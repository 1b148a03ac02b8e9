// Package testdata embeds recorded landmark sequences for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

//go:embed landmarks/*.json
var landmarksFS embed.FS

// Frame is one tracking tick: every hand the tracker reported.
type Frame struct {
	Hands []detector.HandLandmarks `json:"hands"`
}

// Sequence is a recorded run of tracking ticks at a fixed rate.
type Sequence struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	FPS         int     `json:"fps"`
	Frames      []Frame `json:"frames"`
}

// Tick returns the time between frames.
func (s *Sequence) Tick() time.Duration {
	if s.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(s.FPS)
}

// Names lists the embedded sequences.
func Names() []string {
	entries, err := landmarksFS.ReadDir("landmarks")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names
}

// LoadSequence loads a recorded sequence by name.
func LoadSequence(name string) (*Sequence, error) {
	data, err := landmarksFS.ReadFile(path.Join("landmarks", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var seq Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}
	return &seq, nil
}
