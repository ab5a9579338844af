//go:build gocv
// +build gocv

package face

import (
	"image"
	"image/color"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func solidFrame(t *testing.T, w, h int, c color.RGBA) *matFrame {
	t.Helper()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&mat, image.Rect(0, 0, w, h), c, -1)

	return &matFrame{mat: mat}
}

// checkerFrame paints the block grid a screen capture leaves behind.
func checkerFrame(t *testing.T, size, block int) *matFrame {
	t.Helper()

	mat := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&mat, image.Rect(0, 0, size, size), color.RGBA{0, 0, 0, 0}, -1)

	white := color.RGBA{255, 255, 255, 0}
	for y := 0; y < size; y += block {
		for x := 0; x < size; x += block {
			if ((x/block)+(y/block))%2 == 0 {
				gocv.Rectangle(&mat, image.Rect(x, y, x+block, y+block), white, -1)
			}
		}
	}

	return &matFrame{mat: mat}
}

// stripeFrame paints vertical bands of widely spaced saturated hues, the
// over-quantized palette a reproduction concentrates its color energy into.
func stripeFrame(t *testing.T, size int) *matFrame {
	t.Helper()

	bands := []color.RGBA{
		{255, 0, 0, 0},
		{255, 128, 0, 0},
		{255, 255, 0, 0},
		{0, 255, 0, 0},
		{0, 255, 255, 0},
		{0, 0, 255, 0},
		{128, 0, 255, 0},
		{255, 0, 255, 0},
	}

	mat := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC3)
	width := size / len(bands)
	for i, band := range bands {
		x := i * width
		gocv.Rectangle(&mat, image.Rect(x, 0, x+width, size), band, -1)
	}

	return &matFrame{mat: mat}
}

func signalFor(t *testing.T, cfg Config, technique string, f Frame) SpoofSignal {
	t.Helper()

	for _, check := range Battery(cfg) {
		if check.Technique == technique {
			sig, err := check.Run(f, FaceRegion{})
			require.NoError(t, err)
			return sig
		}
	}

	t.Fatalf("technique %s not in battery", technique)
	return SpoofSignal{}
}

func TestBatteryFixedOrder(t *testing.T) {
	var got []string
	for _, check := range Battery(DefaultConfig()) {
		got = append(got, check.Technique)
	}

	require.Equal(t, []string{
		TechniqueSharpness,
		TechniqueMoire,
		TechniqueColorGamut,
		TechniqueScreenBorder,
		TechniqueLighting,
		TechniqueBlockPattern,
	}, got)
}

func TestBatteryUniformFrame(t *testing.T) {
	cfg := DefaultConfig()
	f := solidFrame(t, 200, 200, color.RGBA{128, 128, 128, 0})
	defer f.Close()

	// A featureless surface has no focus detail and no lighting spread.
	sharp := signalFor(t, cfg, TechniqueSharpness, f)
	require.False(t, sharp.Passed)
	require.Equal(t, "Image too blurry", sharp.Reason)

	lighting := signalFor(t, cfg, TechniqueLighting, f)
	require.False(t, lighting.Passed)
	require.Equal(t, "Artificial lighting detected", lighting.Reason)

	// All spectral energy collapses onto the zero-frequency bin.
	block := signalFor(t, cfg, TechniqueBlockPattern, f)
	require.False(t, block.Passed)
	require.Equal(t, "Digital photo detected", block.Reason)

	require.True(t, signalFor(t, cfg, TechniqueMoire, f).Passed)
	require.True(t, signalFor(t, cfg, TechniqueColorGamut, f).Passed)
	require.True(t, signalFor(t, cfg, TechniqueScreenBorder, f).Passed)
}

func TestBatteryCheckerboardTripsMoire(t *testing.T) {
	cfg := DefaultConfig()
	f := checkerFrame(t, 200, 8)
	defer f.Close()

	moire := signalFor(t, cfg, TechniqueMoire, f)
	require.False(t, moire.Passed)
	require.Equal(t, "Screen display detected", moire.Reason)
	require.Greater(t, moire.Metric, cfg.MoireMaxVariance)

	// Hard block edges carry plenty of focus detail and contrast.
	require.True(t, signalFor(t, cfg, TechniqueSharpness, f).Passed)
	require.True(t, signalFor(t, cfg, TechniqueLighting, f).Passed)
}

func TestBatteryHueSpikesTripColorGamut(t *testing.T) {
	cfg := DefaultConfig()
	f := stripeFrame(t, 200)
	defer f.Close()

	// Eight equal bands put eight hue bins far above the bin mean, past
	// the five-peak allowance.
	gamut := signalFor(t, cfg, TechniqueColorGamut, f)
	require.False(t, gamut.Passed)
	require.Equal(t, "Unnatural color distribution detected", gamut.Reason)
	require.Greater(t, gamut.Metric, float64(cfg.HuePeakMaxCount))
}

func TestBatteryBrightRectangleTripsBorder(t *testing.T) {
	cfg := DefaultConfig()

	f := solidFrame(t, 200, 200, color.RGBA{0, 0, 0, 0})
	defer f.Close()
	gocv.Rectangle(&f.mat, image.Rect(30, 30, 170, 170), color.RGBA{255, 255, 255, 0}, -1)

	border := signalFor(t, cfg, TechniqueScreenBorder, f)
	require.False(t, border.Passed)
	require.Equal(t, "Screen border detected", border.Reason)
	require.Greater(t, border.Metric, cfg.BorderAreaRatio)
}

func TestDecoderBounds(t *testing.T) {
	cfg := DefaultConfig()
	decoder := NewDecoder(cfg)

	t.Run("accepts frames inside the bounds", func(t *testing.T) {
		f := solidFrame(t, 64, 64, color.RGBA{90, 90, 90, 0})
		defer f.Close()

		frame, err := decoder.Decode(encodeFrame(t, f.mat))
		require.NoError(t, err)
		defer frame.Close()
		require.Equal(t, 64, frame.Width())
		require.Equal(t, 64, frame.Height())
	})

	t.Run("rejects undersized frames", func(t *testing.T) {
		f := solidFrame(t, 20, 20, color.RGBA{90, 90, 90, 0})
		defer f.Close()

		_, err := decoder.Decode(encodeFrame(t, f.mat))
		require.ErrorIs(t, err, ErrImageTooSmall)
	})

	t.Run("rejects garbage bytes", func(t *testing.T) {
		_, err := decoder.Decode([]byte("definitely not an image"))
		require.ErrorIs(t, err, ErrMalformedImage)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := decoder.Decode(nil)
		require.ErrorIs(t, err, ErrMalformedImage)
	})
}

func TestMatcherHistogramFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.onnx")

	log := logrus.New()
	log.SetOutput(io.Discard)

	m := NewMatcher(cfg, nil, log)
	defer m.Close()
	require.Equal(t, StrategyHistogram, m.Strategy())

	t.Run("identical frames correlate fully", func(t *testing.T) {
		a := solidFrame(t, 200, 200, color.RGBA{90, 90, 90, 0})
		defer a.Close()
		b := solidFrame(t, 200, 200, color.RGBA{90, 90, 90, 0})
		defer b.Close()

		outcome, err := m.Match(a, b, FaceRegion{}, FaceRegion{}, MatchParams{Tolerance: 0.4})
		require.NoError(t, err)
		require.Equal(t, StrategyHistogram, outcome.Strategy)
		require.True(t, outcome.Accepted)
		require.InDelta(t, 1.0, outcome.Correlation, 1e-6)
		require.InDelta(t, 100.0, outcome.Confidence, 1e-4)
	})

	t.Run("disjoint intensities do not correlate", func(t *testing.T) {
		a := solidFrame(t, 200, 200, color.RGBA{0, 0, 0, 0})
		defer a.Close()
		b := solidFrame(t, 200, 200, color.RGBA{255, 255, 255, 0})
		defer b.Close()

		outcome, err := m.Match(a, b, FaceRegion{}, FaceRegion{}, MatchParams{Tolerance: 0.4})
		require.NoError(t, err)
		require.False(t, outcome.Accepted)
		require.Zero(t, outcome.Confidence)
	})
}

func TestNewEngineFailsWithoutCascades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CascadePath = filepath.Join(t.TempDir(), "missing.xml")

	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := NewEngine(cfg, nil, log)
	require.Error(t, err)
}

func encodeFrame(t *testing.T, mat gocv.Mat) []byte {
	t.Helper()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	require.NoError(t, err)
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())

	return out
}
