package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
)

// CleanOptions controls the cleaning pipeline. DefaultCleanOptions returns
// values tuned for phone photos of printed attendance tables.
type CleanOptions struct {
	// Scale is the upscale factor applied before anything else. Thin digit
	// strokes survive thresholding better at 2x.
	Scale float64 `json:"scale"`

	// BlockSize is the neighbourhood diameter of the adaptive threshold.
	// It is deliberately large so the threshold behaves like a global one
	// within a locality, tolerant of shadows but not of cell contents.
	BlockSize int `json:"block_size"`

	// Offset is subtracted from the local mean; higher values push more of
	// a tinted background to white.
	Offset int `json:"offset"`

	// VerticalDivisor and HorizontalDivisor size the line-detecting
	// structuring elements as height/VerticalDivisor and
	// width/HorizontalDivisor of the upscaled image.
	VerticalDivisor   int `json:"vertical_divisor"`
	HorizontalDivisor int `json:"horizontal_divisor"`

	// MinLineLength is the lower bound for both line element lengths.
	MinLineLength int `json:"min_line_length"`

	// MaskDilate grows the detected gridline mask to cover anti-aliased
	// line edges.
	MaskDilate int `json:"mask_dilate"`

	// Thicken is the erosion element size applied to the black-on-white
	// result so strokes do not fragment.
	Thicken int `json:"thicken"`

	// SmoothSigma and Rethreshold control the final despeckle pass.
	SmoothSigma float64 `json:"smooth_sigma"`
	Rethreshold uint8   `json:"rethreshold"`
}

// DefaultCleanOptions returns the standard cleaning parameters.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		Scale:             2,
		BlockSize:         99,
		Offset:            25,
		VerticalDivisor:   25,
		HorizontalDivisor: 35,
		MinLineLength:     20,
		MaskDilate:        2,
		Thicken:           2,
		SmoothSigma:       0.8,
		Rethreshold:       128,
	}
}

// LineKernels returns the lengths of the vertical and horizontal
// structuring elements for an upscaled image of the given size.
//
// A vertical element must be longer than the tallest digit (a "1" must not
// read as a ruled line) yet a stroke crossing a line must not match it.
func (o CleanOptions) LineKernels(width, height int) (vertical, horizontal int) {
	vertical = max(height/max(o.VerticalDivisor, 1), o.MinLineLength)
	horizontal = max(width/max(o.HorizontalDivisor, 1), o.MinLineLength)
	return vertical, horizontal
}

// Cleaner turns a raw table photo into a binary image suited to text
// recognition: black text on white, table gridlines removed.
type Cleaner interface {
	Clean(img image.Image) (*image.Gray, error)
}

// ErrUnknownBackend is returned by NewCleaner for unregistered backends.
var ErrUnknownBackend = errors.New("unknown cleaner backend")

// BackendGo is the name of the pure-Go cleaner, always available.
const BackendGo = "go"

var (
	backendsMu sync.RWMutex
	backends   = map[string]func(CleanOptions) Cleaner{
		BackendGo: func(o CleanOptions) Cleaner { return NewGoCleaner(o) },
	}
)

// registerBackend makes an alternative cleaner available by name. Backends
// compiled behind build tags register themselves from init.
func registerBackend(name string, factory func(CleanOptions) Cleaner) {
	backendsMu.Lock()
	backends[name] = factory
	backendsMu.Unlock()
}

// Backends lists the registered cleaner backend names, sorted.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCleaner returns the named backend configured with opts.
func NewCleaner(backend string, opts CleanOptions) (Cleaner, error) {
	backendsMu.RLock()
	factory, ok := backends[backend]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return factory(opts), nil
}

// GoCleaner is the pure-Go Cleaner built on disintegration/imaging and bild.
// It is stateless and safe for concurrent use.
type GoCleaner struct {
	opts CleanOptions
}

// NewGoCleaner returns a GoCleaner using opts.
func NewGoCleaner(opts CleanOptions) *GoCleaner {
	return &GoCleaner{opts: opts}
}

// Clean runs the full cleaning pipeline on img.
//
// # Algorithm
//
//  1. Flatten transparency onto white and upscale by Scale (Catmull-Rom,
//     a cubic filter).
//  2. Convert to grayscale (ITU-R BT.601 luma).
//  3. Adaptive Gaussian threshold with BlockSize and Offset.
//  4. Gridline removal: invert to text-on-black, open with a 1×V vertical
//     bar and an H×1 horizontal bar, union the two line masks, dilate the
//     union by MaskDilate, subtract it and invert back.
//  5. Erode by Thicken×Thicken, which thickens the black strokes.
//  6. Gaussian smoothing (SmoothSigma) and a hard re-threshold.
//
// The result has its origin at (0,0) and is Scale times the input size.
func (c *GoCleaner) Clean(img image.Image) (*image.Gray, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	o := c.opts

	w := int(math.Round(float64(b.Dx()) * o.Scale))
	h := int(math.Round(float64(b.Dy()) * o.Scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("scale %.2f leaves no pixels", o.Scale)
	}

	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)
	scaled := imaging.Resize(flat, w, h, imaging.CatmullRom)
	gray := toGray(imaging.Grayscale(scaled))

	bin := adaptiveThreshold(gray, o.BlockSize, o.Offset)
	noGrid := c.removeGridlines(bin)
	thick := erodeRect(noGrid, o.Thicken, o.Thicken)
	return smoothBinarize(thick, o.SmoothSigma, o.Rethreshold), nil
}

// removeGridlines erases long horizontal and vertical structures from a
// black-on-white binary image.
func (c *GoCleaner) removeGridlines(bin *image.Gray) *image.Gray {
	inv := invert(bin)
	vLen, hLen := c.opts.LineKernels(inv.Rect.Dx(), inv.Rect.Dy())

	vertical := openRect(inv, 1, vLen)
	horizontal := openRect(inv, hLen, 1)
	mask := dilateRect(addSat(vertical, horizontal), c.opts.MaskDilate, c.opts.MaskDilate)

	return invert(subSat(inv, mask))
}
