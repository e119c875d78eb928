package imaging

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"
)

// createGridImage draws a white sheet with one vertical and one horizontal
// 2px ruled line at coordinate 60 and a small ink blob away from both.
func createGridImage() *image.RGBA {
	img := createInMemoryImage(300, 300, color.White)
	black := color.RGBA{0, 0, 0, 255}
	for i := 0; i < 300; i++ {
		for _, off := range []int{60, 61} {
			img.Set(off, i, black)
			img.Set(i, off, black)
		}
	}
	for y := 200; y < 208; y++ {
		for x := 200; x < 206; x++ {
			img.Set(x, y, black)
		}
	}
	return img
}

func TestGoCleaner_RemovesGridlines(t *testing.T) {
	c := NewGoCleaner(DefaultCleanOptions())

	out, err := c.Clean(createGridImage())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if out.Rect.Dx() != 600 || out.Rect.Dy() != 600 {
		t.Fatalf("output size: got %v, want 600x600", out.Rect)
	}

	for _, p := range []image.Point{{121, 300}, {122, 300}, {300, 121}, {300, 122}} {
		if v := out.GrayAt(p.X, p.Y).Y; v != 255 {
			t.Errorf("gridline pixel %v: got %d, want white", p, v)
		}
	}

	if v := out.GrayAt(406, 408).Y; v != 0 {
		t.Errorf("ink blob centre: got %d, want black", v)
	}
}

func TestGoCleaner_BlankStaysBlank(t *testing.T) {
	c := NewGoCleaner(DefaultCleanOptions())

	out, err := c.Clean(createInMemoryImage(120, 80, color.White))
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	for i, v := range out.Pix {
		if v != 255 {
			t.Fatalf("pixel %d: got %d, want 255", i, v)
		}
	}
}

func TestGoCleaner_TransparentFlattensToWhite(t *testing.T) {
	c := NewGoCleaner(DefaultCleanOptions())

	out, err := c.Clean(image.NewNRGBA(image.Rect(0, 0, 50, 50)))
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if v := out.GrayAt(25, 25).Y; v != 255 {
		t.Errorf("transparent input: got %d, want white", v)
	}
}

func TestGoCleaner_EmptyImage(t *testing.T) {
	c := NewGoCleaner(DefaultCleanOptions())
	if _, err := c.Clean(image.NewGray(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Clean error = %v, want ErrEmptyImage", err)
	}
}

func TestCleanOptions_LineKernels(t *testing.T) {
	o := DefaultCleanOptions()

	tests := []struct {
		w, h       int
		vert, horz int
	}{
		{600, 600, 24, 20},
		{3000, 1000, 40, 85},
		{100, 100, 20, 20},
	}

	for _, tt := range tests {
		v, h := o.LineKernels(tt.w, tt.h)
		if v != tt.vert || h != tt.horz {
			t.Errorf("LineKernels(%d,%d) = (%d,%d), want (%d,%d)", tt.w, tt.h, v, h, tt.vert, tt.horz)
		}
	}
}

func TestNewCleaner(t *testing.T) {
	c, err := NewCleaner(BackendGo, DefaultCleanOptions())
	if err != nil {
		t.Fatalf("NewCleaner(go) failed: %v", err)
	}
	if _, ok := c.(*GoCleaner); !ok {
		t.Errorf("NewCleaner(go) returned %T", c)
	}

	if _, err := NewCleaner("imagemagick", DefaultCleanOptions()); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown backend error = %v, want ErrUnknownBackend", err)
	}

	if !slices.Contains(Backends(), BackendGo) {
		t.Errorf("Backends() = %v, missing %q", Backends(), BackendGo)
	}
}
