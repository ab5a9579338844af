package face

import (
	"os"
	"strconv"
)

// Config carries every pipeline threshold. Values mirror the tuning the
// attendance system ships with; override per deployment through FACE_* env
// vars via ConfigFromEnv.
type Config struct {
	// Decoder bounds.
	MinImageWidth  int
	MinImageHeight int
	MaxImageWidth  int
	MaxImageHeight int
	// Focus floor, variance of the Laplacian.
	SharpnessMinVariance float64

	// Cascade detection.
	CascadePath         string
	EyeCascadePath      string
	CascadeScaleFactor  float64
	CascadeMinNeighbors int
	FaceMinSize         int
	EyesMinCount        int

	// Anti-spoofing battery.
	MoireMaxVariance    float64
	HueBins             int
	HuePeakRatio        float64
	HuePeakMaxCount     int
	CannyLowThreshold   float32
	CannyHighThreshold  float32
	BorderAreaRatio     float64
	BorderApproxEpsilon float64
	LightingMinStdDev   float64
	FFTGridStep         int
	FFTGridMaxRatio     float64

	// Matching.
	ModelPath          string
	EmbedInputSize     int
	ToleranceStrict    float64
	ToleranceDefault   float64
	ToleranceRelaxed   float64
	HistCompareSize    int
	HistMinCorrelation float64
}

func DefaultConfig() Config {
	return Config{
		MinImageWidth:  48,
		MinImageHeight: 48,
		MaxImageWidth:  4096,
		MaxImageHeight: 4096,

		SharpnessMinVariance: 100.0,

		CascadePath:         "./models/haarcascade_frontalface_default.xml",
		EyeCascadePath:      "./models/haarcascade_eye.xml",
		CascadeScaleFactor:  1.1,
		CascadeMinNeighbors: 5,
		FaceMinSize:         30,
		EyesMinCount:        2,

		MoireMaxVariance:    2000.0,
		HueBins:             180,
		HuePeakRatio:        3.0,
		HuePeakMaxCount:     5,
		CannyLowThreshold:   50,
		CannyHighThreshold:  150,
		BorderAreaRatio:     0.30,
		BorderApproxEpsilon: 0.02,
		LightingMinStdDev:   20.0,
		FFTGridStep:         8,
		FFTGridMaxRatio:     0.10,

		ModelPath:          "./models/face_recognition_sface_2021dec.onnx",
		EmbedInputSize:     112,
		ToleranceStrict:    0.3,
		ToleranceDefault:   0.4,
		ToleranceRelaxed:   0.5,
		HistCompareSize:    100,
		HistMinCorrelation: 0.70,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies FACE_* overrides.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("FACE_CASCADE_PATH"); v != "" {
		cfg.CascadePath = v
	}
	if v := os.Getenv("FACE_EYE_CASCADE_PATH"); v != "" {
		cfg.EyeCascadePath = v
	}
	if v := os.Getenv("FACE_MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if dir := os.Getenv("FACE_MODELS_DIR"); dir != "" {
		cfg.CascadePath = dir + "/haarcascade_frontalface_default.xml"
		cfg.EyeCascadePath = dir + "/haarcascade_eye.xml"
		cfg.ModelPath = dir + "/face_recognition_sface_2021dec.onnx"
	}

	cfg.SharpnessMinVariance = envFloat("FACE_SHARPNESS_MIN", cfg.SharpnessMinVariance)
	cfg.MoireMaxVariance = envFloat("FACE_MOIRE_MAX", cfg.MoireMaxVariance)
	cfg.LightingMinStdDev = envFloat("FACE_LIGHTING_MIN_STDDEV", cfg.LightingMinStdDev)
	cfg.BorderAreaRatio = envFloat("FACE_BORDER_AREA_RATIO", cfg.BorderAreaRatio)
	cfg.FFTGridMaxRatio = envFloat("FACE_FFT_GRID_MAX_RATIO", cfg.FFTGridMaxRatio)
	cfg.ToleranceStrict = envFloat("FACE_TOLERANCE_STRICT", cfg.ToleranceStrict)
	cfg.ToleranceDefault = envFloat("FACE_TOLERANCE_DEFAULT", cfg.ToleranceDefault)
	cfg.ToleranceRelaxed = envFloat("FACE_TOLERANCE_RELAXED", cfg.ToleranceRelaxed)
	cfg.HistMinCorrelation = envFloat("FACE_HIST_MIN_CORRELATION", cfg.HistMinCorrelation)
	cfg.HuePeakMaxCount = envInt("FACE_HUE_PEAK_MAX", cfg.HuePeakMaxCount)
	cfg.FaceMinSize = envInt("FACE_MIN_SIZE", cfg.FaceMinSize)
	cfg.EyesMinCount = envInt("FACE_EYES_MIN", cfg.EyesMinCount)

	return cfg
}

// Tolerance maps a profile to its embedding distance ceiling. Unknown
// profiles get the default.
func (c Config) Tolerance(p ToleranceProfile) float64 {
	switch p {
	case ProfileStrict:
		return c.ToleranceStrict
	case ProfileRelaxed:
		return c.ToleranceRelaxed
	default:
		return c.ToleranceDefault
	}
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}

	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}
