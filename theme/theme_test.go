package theme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duo.gpl")
	data := "GIMP Palette\nName: Duo\nColumns: 2\n# comment\n  0   0   0\tblack\n255 255 300 over\nnot a color\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadGPL(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Duo" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if p.Colors[1] != (RGB{255, 255, 255}) {
		t.Errorf("clamped color = %v", p.Colors[1])
	}
	if got := p.Lookup(0.5); got[0] < 90 || got[0] > 140 || absDiff(got[0], got[2]) > 2 {
		t.Errorf("Lookup(0.5) = %v, want a mid grey", got)
	}

	empty := filepath.Join(t.TempDir(), "empty.gpl")
	os.WriteFile(empty, []byte("GIMP Palette\n"), 0644)
	if _, err := LoadGPL(empty); !errors.Is(err, ErrEmptyPalette) {
		t.Errorf("empty palette err = %v", err)
	}
}

func TestDefaultPaletteEnds(t *testing.T) {
	p := Default()
	if p.Lookup(-1).Hex() != "#0d0887" || p.Lookup(2).Hex() != "#f0f921" {
		t.Fatalf("ends = %s %s", p.Lookup(-1).Hex(), p.Lookup(2).Hex())
	}
	if p.Index(99) != p.Colors[len(p.Colors)-1] || p.Index(-3) != p.Colors[0] {
		t.Fatal("Index does not clamp")
	}
	th := New(nil)
	if string(th.BG()) != "#0d0887" || string(th.Success()) != "#f0f921" {
		t.Fatalf("roles = %s %s", th.BG(), th.Success())
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
