package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// gaussianRadius converts an adaptive-threshold block size to the radius
// bild's Gaussian expects.
//
// The sigma follows the block-size rule OpenCV applies for its Gaussian
// adaptive threshold, 0.3*((block-1)/2-1)+0.8. bild's kernel has
// sigma = sqrt(2*radius), so radius = sigma^2/2, rounded to a whole number
// because a fractional radius gives bild an off-centre kernel.
func gaussianRadius(block int) float64 {
	sigma := 0.3*(float64(block-1)/2-1) + 0.8
	return math.Max(1, math.Round(sigma*sigma/2))
}

// adaptiveThreshold binarizes src against a Gaussian-weighted local mean.
//
// A pixel becomes white (255) when it is brighter than its neighbourhood
// mean minus offset, black (0) otherwise. With a large block the local mean
// follows slow lighting gradients and shadows across the sheet, while the
// offset keeps light tinted backgrounds from turning into noise.
//
// block is the neighbourhood diameter in pixels and should be odd.
func adaptiveThreshold(src *image.Gray, block int, offset int) *image.Gray {
	mean := blur.Gaussian(src, gaussianRadius(block))

	dst := image.NewGray(src.Rect)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := int(src.Pix[y*src.Stride+x])
			m := int(mean.Pix[y*mean.Stride+x*4])
			if v > m-offset {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// smoothBinarize blurs src with a small Gaussian and re-thresholds it,
// removing isolated speckles while keeping stroke edges hard. A blurred
// pixel is white only when strictly above level.
func smoothBinarize(src *image.Gray, sigma float64, level uint8) *image.Gray {
	blurred := imaging.Blur(src, sigma)

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if blurred.Pix[y*blurred.Stride+x*4] > level {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}
