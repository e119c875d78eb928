package imaging

import (
	"image"
	"image/draw"
)

// This file holds the single-channel primitives used by the cleaner. They
// operate on *image.Gray with origin (0,0) and follow OpenCV conventions:
// rectangular structuring elements anchored at (w/2, h/2), out-of-image
// neighbours ignored, and saturating arithmetic.

// toGray copies img into a new *image.Gray with origin (0,0).
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

func cloneGray(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// invert returns 255 - src for every pixel.
func invert(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Rect)
	for i, v := range src.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst
}

// addSat returns min(a+b, 255) pixel-wise. a and b must have equal size.
func addSat(a, b *image.Gray) *image.Gray {
	dst := image.NewGray(a.Rect)
	for i := range a.Pix {
		s := int(a.Pix[i]) + int(b.Pix[i])
		if s > 255 {
			s = 255
		}
		dst.Pix[i] = uint8(s)
	}
	return dst
}

// subSat returns max(a-b, 0) pixel-wise. a and b must have equal size.
func subSat(a, b *image.Gray) *image.Gray {
	dst := image.NewGray(a.Rect)
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = 0
		}
		dst.Pix[i] = uint8(d)
	}
	return dst
}

type morphOp int

const (
	opErode morphOp = iota // local minimum
	opDilate               // local maximum
)

// erodeRect applies a kw×kh minimum filter.
func erodeRect(src *image.Gray, kw, kh int) *image.Gray {
	return morphRect(src, kw, kh, opErode)
}

// dilateRect applies a kw×kh maximum filter.
func dilateRect(src *image.Gray, kw, kh int) *image.Gray {
	return morphRect(src, kw, kh, opDilate)
}

// openRect is erosion followed by dilation with the same kw×kh element. On
// a text-on-black image it keeps only structures at least kw wide and kh
// tall, which isolates ruled lines when the element is a long thin bar.
func openRect(src *image.Gray, kw, kh int) *image.Gray {
	return dilateRect(erodeRect(src, kw, kh), kw, kh)
}

// morphRect filters rows then columns; a rectangular min/max is separable.
func morphRect(src *image.Gray, kw, kh int, op morphOp) *image.Gray {
	dst := cloneGray(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return dst
	}

	if kw > 1 {
		out := make([]uint8, w)
		for y := 0; y < h; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
			slide(row, out, kw, kw/2, op)
			copy(row, out)
		}
	}

	if kh > 1 {
		col := make([]uint8, h)
		out := make([]uint8, h)
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = dst.Pix[y*dst.Stride+x]
			}
			slide(col, out, kh, kh/2, op)
			for y := 0; y < h; y++ {
				dst.Pix[y*dst.Stride+x] = out[y]
			}
		}
	}

	return dst
}

// slide writes into out the min or max of in over the window
// [i-anchor, i+k-1-anchor] clipped to the slice, for every i. A monotonic
// deque of indices keeps the cost linear in len(in) regardless of k.
func slide(in, out []uint8, k, anchor int, op morphOp) {
	n := len(in)
	dq := make([]int, 0, k)
	next := 0

	// keep reports whether a queued value still dominates v.
	keep := func(queued, v uint8) bool {
		if op == opErode {
			return queued < v
		}
		return queued > v
	}

	for i := 0; i < n; i++ {
		hi := i + k - 1 - anchor
		if hi > n-1 {
			hi = n - 1
		}
		for ; next <= hi; next++ {
			for len(dq) > 0 && !keep(in[dq[len(dq)-1]], in[next]) {
				dq = dq[:len(dq)-1]
			}
			dq = append(dq, next)
		}
		for dq[0] < i-anchor {
			dq = dq[1:]
		}
		out[i] = in[dq[0]]
	}
}
