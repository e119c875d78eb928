//go:build opencv

package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// BackendOpenCV names the OpenCV cleaner, compiled in with -tags opencv.
const BackendOpenCV = "opencv"

func init() {
	registerBackend(BackendOpenCV, func(o CleanOptions) Cleaner { return NewOpenCVCleaner(o) })
}

// OpenCVCleaner runs the same pipeline as GoCleaner through OpenCV. It is
// faster on large photos but needs the OpenCV shared libraries at runtime.
type OpenCVCleaner struct {
	opts CleanOptions
}

// NewOpenCVCleaner returns an OpenCVCleaner using opts.
func NewOpenCVCleaner(opts CleanOptions) *OpenCVCleaner {
	return &OpenCVCleaner{opts: opts}
}

// Clean implements Cleaner.
func (c *OpenCVCleaner) Clean(img image.Image) (*image.Gray, error) {
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	o := c.opts

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer src.Close()

	mat := gocv.NewMat()
	defer mat.Close()
	gocv.Resize(src, &mat, image.Point{}, o.Scale, o.Scale, gocv.InterpolationCubic)
	gocv.CvtColor(mat, &mat, gocv.ColorBGRToGray)
	gocv.AdaptiveThreshold(mat, &mat, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, o.BlockSize, float32(o.Offset))

	inv := gocv.NewMat()
	defer inv.Close()
	gocv.BitwiseNot(mat, &inv)

	vLen, hLen := o.LineKernels(inv.Cols(), inv.Rows())
	vertical := openMat(inv, image.Pt(1, vLen))
	defer vertical.Close()
	horizontal := openMat(inv, image.Pt(hLen, 1))
	defer horizontal.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Add(vertical, horizontal, &mask)
	withKernel(image.Pt(o.MaskDilate, o.MaskDilate), func(k gocv.Mat) { gocv.Dilate(mask, &mask, k) })

	gocv.Subtract(inv, mask, &mat)
	gocv.BitwiseNot(mat, &mat)
	withKernel(image.Pt(o.Thicken, o.Thicken), func(k gocv.Mat) { gocv.Erode(mat, &mat, k) })

	gocv.GaussianBlur(mat, &mat, image.Pt(3, 3), o.SmoothSigma, o.SmoothSigma, gocv.BorderDefault)
	gocv.Threshold(mat, &mat, float32(o.Rethreshold), 255, gocv.ThresholdBinary)

	out, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert cleaned image: %w", err)
	}
	if g, ok := out.(*image.Gray); ok {
		return g, nil
	}
	return toGray(out), nil
}

// openMat returns src opened with a rectangular element of size k.
func openMat(src gocv.Mat, k image.Point) gocv.Mat {
	dst := gocv.NewMat()
	withKernel(k, func(kernel gocv.Mat) {
		gocv.Erode(src, &dst, kernel)
		gocv.Dilate(dst, &dst, kernel)
	})
	return dst
}

func withKernel(size image.Point, fn func(gocv.Mat)) {
	k := gocv.GetStructuringElement(gocv.MorphRect, size)
	defer k.Close()
	fn(k)
}
