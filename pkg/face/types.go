package face

import "image"

// Frame is a decoded image owned by the engine that produced it. Callers
// must Close it when done; the zero-cost accessors stay valid until then.
type Frame interface {
	Width() int
	Height() int
	Close()
}

// FaceRegion is the bounding box of a located face in frame coordinates.
type FaceRegion = image.Rectangle

type MatchStrategy string

const (
	StrategyEmbedding MatchStrategy = "embedding"
	StrategyHistogram MatchStrategy = "histogram-fallback"
)

type ToleranceProfile string

const (
	ProfileStrict  ToleranceProfile = "strict"
	ProfileDefault ToleranceProfile = "default"
	ProfileRelaxed ToleranceProfile = "relaxed"
)

// Options tune a single Verify call. Profile selects the embedding distance
// tolerance; ForceHistogram overrides the capability check and runs the
// histogram comparison even when an embedding model is loaded.
type Options struct {
	Profile        ToleranceProfile
	ForceHistogram bool
}

// SpoofSignal is the outcome of one anti-spoofing technique. Every Verify
// call that reaches the battery carries all signals, pass or fail.
type SpoofSignal struct {
	Technique string  `json:"technique"`
	Metric    float64 `json:"metric"`
	Passed    bool    `json:"passed"`
	Reason    string  `json:"reason,omitempty"`
}

// Result is the decision for one candidate image against one reference.
// FailureReason is empty exactly when Accepted is true.
type Result struct {
	Accepted          bool          `json:"accepted"`
	Confidence        float64       `json:"confidence_score"`
	FailureReason     string        `json:"failure_reason,omitempty"`
	MatchStrategyUsed MatchStrategy `json:"match_strategy_used,omitempty"`
	SpoofSignals      []SpoofSignal `json:"spoof_signals,omitempty"`
}

type Embedding []float32

// MatchOutcome is the raw comparison between two located faces. Distance is
// set on the embedding path, Correlation on the histogram path.
type MatchOutcome struct {
	Strategy    MatchStrategy
	Distance    float64
	Correlation float64
	Confidence  float64
	Accepted    bool
}

type MatchParams struct {
	Tolerance      float64
	ForceHistogram bool
}

// Decoder parses raw bytes into a Frame and measures focus.
type Decoder interface {
	// Decode rejects undecodable bytes and frames outside the configured
	// dimension bounds.
	Decode(data []byte) (Frame, error)
	// Sharpness is the variance of the Laplacian over the grayscale region.
	// A zero region means the whole frame.
	Sharpness(f Frame, region FaceRegion) (float64, error)
}

// Locator finds faces and eyes with the configured cascade classifiers.
type Locator interface {
	DetectFaces(f Frame) ([]FaceRegion, error)
	// DetectEyes counts eye detections inside the face region.
	DetectEyes(f Frame, face FaceRegion) (int, error)
	Close()
}

// SpoofCheck is one presentation-attack technique. Run is pure: it reads the
// frame and region and keeps no state between calls.
type SpoofCheck struct {
	Technique string
	Run       func(f Frame, face FaceRegion) (SpoofSignal, error)
}

// Matcher compares two located faces. The strategy is fixed when the matcher
// is built and never changes for the life of the process.
type Matcher interface {
	Strategy() MatchStrategy
	Match(ref, cand Frame, refFace, candFace FaceRegion, params MatchParams) (MatchOutcome, error)
	Close()
}

// EmbedBridge is a remote embedding provider. A connected bridge counts as
// embedding capability when no local model is loaded.
type EmbedBridge interface {
	EmbedFace(encoded []byte) ([]float32, error)
	IsConnected() bool
}

// Battery technique names, in execution order.
const (
	TechniqueSharpness    = "sharpness"
	TechniqueMoire        = "moire"
	TechniqueColorGamut   = "color-gamut"
	TechniqueScreenBorder = "screen-border"
	TechniqueLighting     = "lighting"
	TechniqueBlockPattern = "block-pattern"
)
