package testdata

import (
	"testing"
	"time"
)

func TestNames(t *testing.T) {
	names := Names()
	want := []string{"dropout", "pinch_close", "wave"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLoadSequence(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			seq, err := LoadSequence(name)
			if err != nil {
				t.Fatalf("LoadSequence() error = %v", err)
			}
			if seq.Name != name {
				t.Errorf("Name = %q, want %q", seq.Name, name)
			}
			if seq.Tick() != time.Second/30 {
				t.Errorf("Tick() = %v", seq.Tick())
			}
			if len(seq.Frames) == 0 {
				t.Fatal("expected frames")
			}
			for i, f := range seq.Frames {
				for _, h := range f.Hands {
					if !h.Valid() {
						t.Fatalf("frame %d: invalid hand with %d points", i, len(h.Points))
					}
				}
			}
		})
	}
}

func TestLoadSequence_Missing(t *testing.T) {
	if _, err := LoadSequence("moonwalk"); err == nil {
		t.Error("expected an error for an unknown sequence")
	}
}
