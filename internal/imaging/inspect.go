package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// maxInspectSamples bounds the number of pixels sampled by Inspect.
const maxInspectSamples = 250_000

// Inspection summarizes properties of a table photo that predict how well
// it will clean and recognize.
type Inspection struct {
	// Width and Height are the source dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// PaperColor is the average color of the brighter half of the image,
	// as "#RRGGBB". For a printed sheet this approximates the paper tint.
	PaperColor string `json:"paper_color"`

	// PaperLightness is the CIE L* lightness of PaperColor (0-100).
	PaperLightness float64 `json:"paper_lightness"`

	// MeanLuminance is the average luma of the image (0-1).
	MeanLuminance float64 `json:"mean_luminance"`

	// Contrast is the standard deviation of luma (0-0.5).
	Contrast float64 `json:"contrast"`

	// Warnings lists conditions likely to hurt extraction.
	Warnings []string `json:"warnings"`
}

// Inspect samples img on a regular grid and reports paper color, lightness
// and contrast.
//
// # Warnings
//
//   - "low resolution": the shorter side is under 400 pixels
//   - "low contrast": luma standard deviation below 0.08
//   - "dark background": paper lightness below 60
func Inspect(img image.Image) *Inspection {
	b := img.Bounds()
	res := &Inspection{Width: b.Dx(), Height: b.Dy(), Warnings: []string{}}
	if b.Empty() {
		res.Warnings = append(res.Warnings, "empty image")
		return res
	}

	step := 1
	if n := b.Dx() * b.Dy(); n > maxInspectSamples {
		step = int(math.Ceil(math.Sqrt(float64(n) / maxInspectSamples)))
	}

	var (
		lumas  []float64
		colors []colorful.Color
	)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			colors = append(colors, c)
			lumas = append(lumas, 0.299*c.R+0.587*c.G+0.114*c.B)
		}
	}
	if len(lumas) == 0 {
		res.Warnings = append(res.Warnings, "fully transparent image")
		return res
	}

	mean, std := stat.MeanStdDev(lumas, nil)
	if math.IsNaN(std) {
		std = 0
	}
	res.MeanLuminance = round3(mean)
	res.Contrast = round3(std)

	var r, g, bl float64
	var n int
	for i, c := range colors {
		if lumas[i] >= mean {
			r += c.R
			g += c.G
			bl += c.B
			n++
		}
	}
	if n == 0 {
		// uniform image: the float mean can land just above every sample
		r, g, bl = 0, 0, 0
		for _, c := range colors {
			r += c.R
			g += c.G
			bl += c.B
		}
		n = len(colors)
	}
	paper := colorful.Color{R: r / float64(n), G: g / float64(n), B: bl / float64(n)}.Clamped()
	l, _, _ := paper.Lab()
	res.PaperColor = paper.Hex()
	res.PaperLightness = math.Round(l*1000) / 10

	if min(b.Dx(), b.Dy()) < 400 {
		res.Warnings = append(res.Warnings, "low resolution")
	}
	if res.Contrast < 0.08 {
		res.Warnings = append(res.Warnings, "low contrast")
	}
	if res.PaperLightness < 60 {
		res.Warnings = append(res.Warnings, "dark background")
	}
	return res
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
