package face

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigThresholds(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 48, cfg.MinImageWidth)
	require.Equal(t, 48, cfg.MinImageHeight)
	require.Equal(t, 4096, cfg.MaxImageWidth)
	require.Equal(t, 4096, cfg.MaxImageHeight)
	require.Equal(t, 100.0, cfg.SharpnessMinVariance)

	require.Equal(t, 1.1, cfg.CascadeScaleFactor)
	require.Equal(t, 5, cfg.CascadeMinNeighbors)
	require.Equal(t, 30, cfg.FaceMinSize)
	require.Equal(t, 2, cfg.EyesMinCount)

	require.Equal(t, 2000.0, cfg.MoireMaxVariance)
	require.Equal(t, 180, cfg.HueBins)
	require.Equal(t, 3.0, cfg.HuePeakRatio)
	require.Equal(t, 5, cfg.HuePeakMaxCount)
	require.Equal(t, float32(50), cfg.CannyLowThreshold)
	require.Equal(t, float32(150), cfg.CannyHighThreshold)
	require.Equal(t, 0.30, cfg.BorderAreaRatio)
	require.Equal(t, 0.02, cfg.BorderApproxEpsilon)
	require.Equal(t, 20.0, cfg.LightingMinStdDev)
	require.Equal(t, 8, cfg.FFTGridStep)
	require.Equal(t, 0.10, cfg.FFTGridMaxRatio)

	require.Equal(t, 112, cfg.EmbedInputSize)
	require.Equal(t, 0.3, cfg.ToleranceStrict)
	require.Equal(t, 0.4, cfg.ToleranceDefault)
	require.Equal(t, 0.5, cfg.ToleranceRelaxed)
	require.Equal(t, 100, cfg.HistCompareSize)
	require.Equal(t, 0.70, cfg.HistMinCorrelation)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("FACE_SHARPNESS_MIN", "250.5")
	t.Setenv("FACE_HUE_PEAK_MAX", "9")
	t.Setenv("FACE_TOLERANCE_DEFAULT", "0.35")
	t.Setenv("FACE_MODELS_DIR", "/opt/face-models")

	cfg := ConfigFromEnv()
	require.Equal(t, 250.5, cfg.SharpnessMinVariance)
	require.Equal(t, 9, cfg.HuePeakMaxCount)
	require.Equal(t, 0.35, cfg.ToleranceDefault)
	require.Equal(t, "/opt/face-models/haarcascade_frontalface_default.xml", cfg.CascadePath)
	require.Equal(t, "/opt/face-models/haarcascade_eye.xml", cfg.EyeCascadePath)
	require.Equal(t, "/opt/face-models/face_recognition_sface_2021dec.onnx", cfg.ModelPath)
}

func TestConfigFromEnvIgnoresUnparsable(t *testing.T) {
	t.Setenv("FACE_MOIRE_MAX", "not-a-number")
	t.Setenv("FACE_EYES_MIN", "two")

	cfg := ConfigFromEnv()
	require.Equal(t, 2000.0, cfg.MoireMaxVariance)
	require.Equal(t, 2, cfg.EyesMinCount)
}

func TestToleranceProfileMapping(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, cfg.ToleranceStrict, cfg.Tolerance(ProfileStrict))
	require.Equal(t, cfg.ToleranceDefault, cfg.Tolerance(ProfileDefault))
	require.Equal(t, cfg.ToleranceRelaxed, cfg.Tolerance(ProfileRelaxed))
	require.Equal(t, cfg.ToleranceDefault, cfg.Tolerance("unheard-of"))
}
