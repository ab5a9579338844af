//go:build gocv
// +build gocv

package face

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Battery builds the anti-spoofing checks in their fixed execution order.
// The sharpness check reads the face crop; the rest read the full frame,
// where bezels and display artifacts live.
func Battery(cfg Config) []SpoofCheck {
	return []SpoofCheck{
		{Technique: TechniqueSharpness, Run: sharpnessCheck(cfg)},
		{Technique: TechniqueMoire, Run: moireCheck(cfg)},
		{Technique: TechniqueColorGamut, Run: colorGamutCheck(cfg)},
		{Technique: TechniqueScreenBorder, Run: screenBorderCheck(cfg)},
		{Technique: TechniqueLighting, Run: lightingCheck(cfg)},
		{Technique: TechniqueBlockPattern, Run: blockPatternCheck(cfg)},
	}
}

// sharpnessCheck rejects out-of-focus face crops. Photos of photos lose
// detail to double capture.
func sharpnessCheck(cfg Config) func(Frame, FaceRegion) (SpoofSignal, error) {
	return func(f Frame, face FaceRegion) (SpoofSignal, error) {
		mat, err := frameMat(f)
		if err != nil {
			return SpoofSignal{}, err
		}

		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

		target := gray
		clamped := face.Intersect(image.Rect(0, 0, mat.Cols(), mat.Rows()))
		if !clamped.Empty() {
			roi := gray.Region(clamped)
			defer roi.Close()
			target = roi
		}

		lap := gocv.NewMat()
		defer lap.Close()
		gocv.Laplacian(target, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

		variance := matVariance(lap)

		sig := SpoofSignal{
			Technique: TechniqueSharpness,
			Metric:    variance,
			Passed:    variance >= cfg.SharpnessMinVariance,
		}
		if !sig.Passed {
			sig.Reason = "Image too blurry"
		}

		return sig, nil
	}
}

// moireCheck runs a high-pass filter over the frame. Screen pixel grids
// leave high-frequency energy a live scene never has. The response stays
// 8-bit so saturation matches the threshold's calibration.
func moireCheck(cfg Config) func(Frame, FaceRegion) (SpoofSignal, error) {
	return func(f Frame, _ FaceRegion) (SpoofSignal, error) {
		mat, err := frameMat(f)
		if err != nil {
			return SpoofSignal{}, err
		}

		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

		kernel := highPassKernel()
		defer kernel.Close()

		filtered := gocv.NewMat()
		defer filtered.Close()
		gocv.Filter2D(gray, &filtered, gocv.MatTypeCV8U, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)

		variance := matVariance(filtered)

		sig := SpoofSignal{
			Technique: TechniqueMoire,
			Metric:    variance,
			Passed:    variance <= cfg.MoireMaxVariance,
		}
		if !sig.Passed {
			sig.Reason = "Screen display detected"
		}

		return sig, nil
	}
}

func highPassKernel() gocv.Mat {
	k := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			k.SetFloatAt(r, c, -1)
		}
	}
	k.SetFloatAt(1, 1, 8)

	return k
}

// colorGamutCheck counts dominant hue bins. A live scene spreads hue energy;
// an over-quantized reproduction concentrates it into a few spikes.
func colorGamutCheck(cfg Config) func(Frame, FaceRegion) (SpoofSignal, error) {
	return func(f Frame, _ FaceRegion) (SpoofSignal, error) {
		mat, err := frameMat(f)
		if err != nil {
			return SpoofSignal{}, err
		}

		hsv := gocv.NewMat()
		defer hsv.Close()
		gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)

		hist := gocv.NewMat()
		defer hist.Close()
		mask := gocv.NewMat()
		defer mask.Close()
		gocv.CalcHist([]gocv.Mat{hsv}, []int{0}, mask, &hist, []int{cfg.HueBins}, []float64{0, 180}, false)

		meanCount := hist.Sum().Val1 / float64(cfg.HueBins)
		peaks := 0
		for i := 0; i < cfg.HueBins; i++ {
			if float64(hist.GetFloatAt(i, 0)) > meanCount*cfg.HuePeakRatio {
				peaks++
			}
		}

		sig := SpoofSignal{
			Technique: TechniqueColorGamut,
			Metric:    float64(peaks),
			Passed:    peaks <= cfg.HuePeakMaxCount,
		}
		if !sig.Passed {
			sig.Reason = "Unnatural color distribution detected"
		}

		return sig, nil
	}
}

// screenBorderCheck looks for a four-cornered contour covering a large share
// of the frame, the outline of a bezel or photo edge.
func screenBorderCheck(cfg Config) func(Frame, FaceRegion) (SpoofSignal, error) {
	return func(f Frame, _ FaceRegion) (SpoofSignal, error) {
		mat, err := frameMat(f)
		if err != nil {
			return SpoofSignal{}, err
		}

		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

		edges := gocv.NewMat()
		defer edges.Close()
		gocv.Canny(gray, &edges, cfg.CannyLowThreshold, cfg.CannyHighThreshold)

		contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
		defer contours.Close()

		frameArea := float64(mat.Cols() * mat.Rows())
		largestRatio := 0.0
		rectangular := false
		for i := 0; i < contours.Size(); i++ {
			contour := contours.At(i)
			ratio := gocv.ContourArea(contour) / frameArea
			if ratio <= cfg.BorderAreaRatio {
				continue
			}
			if ratio > largestRatio {
				largestRatio = ratio
			}

			approx := gocv.ApproxPolyDP(contour, cfg.BorderApproxEpsilon*gocv.ArcLength(contour, true), true)
			vertices := approx.Size()
			approx.Close()
			if vertices == 4 {
				rectangular = true
			}
		}

		sig := SpoofSignal{
			Technique: TechniqueScreenBorder,
			Metric:    largestRatio,
			Passed:    !rectangular,
		}
		if !sig.Passed {
			sig.Reason = "Screen border detected"
		}

		return sig, nil
	}
}

// lightingCheck measures grayscale spread. Near-uniform brightness points at
// a backlit panel rather than ambient light.
func lightingCheck(cfg Config) func(Frame, FaceRegion) (SpoofSignal, error) {
	return func(f Frame, _ FaceRegion) (SpoofSignal, error) {
		mat, err := frameMat(f)
		if err != nil {
			return SpoofSignal{}, err
		}

		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

		stdDev := math.Sqrt(math.Max(matVariance(gray), 0))

		sig := SpoofSignal{
			Technique: TechniqueLighting,
			Metric:    stdDev,
			Passed:    stdDev >= cfg.LightingMinStdDev,
		}
		if !sig.Passed {
			sig.Reason = "Artificial lighting detected"
		}

		return sig, nil
	}
}

// blockPatternCheck measures how much spectral energy sits on the compression
// block grid. Recompressed digital photos concentrate energy there.
func blockPatternCheck(cfg Config) func(Frame, FaceRegion) (SpoofSignal, error) {
	return func(f Frame, _ FaceRegion) (SpoofSignal, error) {
		mat, err := frameMat(f)
		if err != nil {
			return SpoofSignal{}, err
		}

		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

		grayFloat := gocv.NewMat()
		defer grayFloat.Close()
		gray.ConvertTo(&grayFloat, gocv.MatTypeCV64F)

		freq := gocv.NewMat()
		defer freq.Close()
		gocv.DFT(grayFloat, &freq, gocv.DftComplexOutput)

		planes := gocv.Split(freq)
		for i := range planes {
			defer planes[i].Close()
		}
		if len(planes) != 2 {
			return SpoofSignal{}, fmt.Errorf("dft produced %d planes", len(planes))
		}

		mag := gocv.NewMat()
		defer mag.Close()
		gocv.Magnitude(planes[0], planes[1], &mag)

		total := mag.Sum().Val1

		// The zero-frequency bin sits at the corner; offsetting the grid by
		// half the size walks the centered spectrum.
		rows, cols := mag.Rows(), mag.Cols()
		step := cfg.FFTGridStep
		grid := 0.0
		for i := 0; i < (rows+step-1)/step; i++ {
			r := (rows/2 + i*step) % rows
			for j := 0; j < (cols+step-1)/step; j++ {
				c := (cols/2 + j*step) % cols
				grid += mag.GetDoubleAt(r, c)
			}
		}

		ratio := 0.0
		if total > 0 {
			ratio = grid / total
		}

		sig := SpoofSignal{
			Technique: TechniqueBlockPattern,
			Metric:    ratio,
			Passed:    ratio <= cfg.FFTGridMaxRatio,
		}
		if !sig.Passed {
			sig.Reason = "Digital photo detected"
		}

		return sig, nil
	}
}
