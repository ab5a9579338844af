//go:build gocv
// +build gocv

package face

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// CVMatcher compares two located faces. Capability is probed once at
// construction: a loadable local model wins, then a connected remote bridge,
// otherwise the grayscale histogram fallback.
type CVMatcher struct {
	cfg      Config
	strategy MatchStrategy
	net      gocv.Net
	hasNet   bool
	bridge   EmbedBridge
	log      *logrus.Logger

	// Guards the net; cv::dnn forward passes are not reentrant.
	mu sync.Mutex
}

func NewMatcher(cfg Config, bridge EmbedBridge, log *logrus.Logger) *CVMatcher {
	m := &CVMatcher{
		cfg:      cfg,
		strategy: StrategyHistogram,
		bridge:   bridge,
		log:      log,
	}

	if _, err := os.Stat(cfg.ModelPath); err == nil {
		net := gocv.ReadNet(cfg.ModelPath, "")
		if !net.Empty() {
			m.net = net
			m.hasNet = true
			m.strategy = StrategyEmbedding

			m.log.WithFields(logrus.Fields{
				"model_path": cfg.ModelPath,
			}).Info("[NewMatcher] local embedding model loaded")

			return m
		}

		m.log.WithFields(logrus.Fields{
			"model_path": cfg.ModelPath,
		}).Warn("[NewMatcher] model file present but not loadable")
	}

	if bridge != nil && bridge.IsConnected() {
		m.strategy = StrategyEmbedding
		m.log.Info("[NewMatcher] remote embedding bridge connected")

		return m
	}

	m.log.Warn("[NewMatcher] no embedding capability, histogram fallback active")

	return m
}

func (m *CVMatcher) Strategy() MatchStrategy {
	return m.strategy
}

func (m *CVMatcher) Match(ref, cand Frame, refFace, candFace FaceRegion, params MatchParams) (MatchOutcome, error) {
	if m.strategy == StrategyEmbedding && !params.ForceHistogram {
		outcome, err := m.matchEmbedding(ref, cand, refFace, candFace, params.Tolerance)
		if err == nil {
			return outcome, nil
		}
		if !errors.Is(err, ErrBridgeOffline) {
			return MatchOutcome{}, err
		}

		// A dropped bridge degrades the single call, not the process.
		m.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("[CVMatcher.Match] embedding bridge unavailable, using histogram for this call")
	}

	return m.matchHistogram(ref, cand, refFace, candFace)
}

func (m *CVMatcher) matchEmbedding(ref, cand Frame, refFace, candFace FaceRegion, tolerance float64) (MatchOutcome, error) {
	refEmb, err := m.embed(ref, refFace)
	if err != nil {
		return MatchOutcome{}, err
	}

	candEmb, err := m.embed(cand, candFace)
	if err != nil {
		return MatchOutcome{}, err
	}

	distance := euclideanDistance(refEmb, candEmb)

	return MatchOutcome{
		Strategy:   StrategyEmbedding,
		Distance:   distance,
		Confidence: clampConfidence((1 - distance) * 100),
		Accepted:   distance <= tolerance,
	}, nil
}

func (m *CVMatcher) embed(f Frame, face FaceRegion) (Embedding, error) {
	mat, err := frameMat(f)
	if err != nil {
		return nil, err
	}

	clamped := face.Intersect(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	if clamped.Empty() {
		clamped = image.Rect(0, 0, mat.Cols(), mat.Rows())
	}

	crop := mat.Region(clamped)
	defer crop.Close()

	if m.hasNet {
		return m.embedLocal(crop)
	}

	return m.embedRemote(crop)
}

func (m *CVMatcher) embedLocal(face gocv.Mat) (Embedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := image.Pt(m.cfg.EmbedInputSize, m.cfg.EmbedInputSize)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(face, &resized, size, 0, 0, gocv.InterpolationLinear)

	blob := gocv.BlobFromImage(resized, 1.0/127.5, size, gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	defer output.Close()

	emb := make(Embedding, output.Cols())
	for i := 0; i < output.Cols(); i++ {
		emb[i] = output.GetFloatAt(0, i)
	}

	return l2Normalize(emb), nil
}

func (m *CVMatcher) embedRemote(face gocv.Mat) (Embedding, error) {
	if m.bridge == nil || !m.bridge.IsConnected() {
		return nil, ErrBridgeOffline
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, face)
	if err != nil {
		return nil, fmt.Errorf("encoding face crop: %w", err)
	}
	defer buf.Close()

	vec, err := m.bridge.EmbedFace(buf.GetBytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBridgeOffline, err)
	}

	return l2Normalize(Embedding(vec)), nil
}

func (m *CVMatcher) matchHistogram(ref, cand Frame, refFace, candFace FaceRegion) (MatchOutcome, error) {
	refHist, err := m.faceHist(ref, refFace)
	if err != nil {
		return MatchOutcome{}, err
	}
	defer refHist.Close()

	candHist, err := m.faceHist(cand, candFace)
	if err != nil {
		return MatchOutcome{}, err
	}
	defer candHist.Close()

	correlation := float64(gocv.CompareHist(refHist, candHist, gocv.HistCmpCorrel))

	return MatchOutcome{
		Strategy:    StrategyHistogram,
		Correlation: correlation,
		Confidence:  clampConfidence(correlation * 100),
		Accepted:    correlation >= m.cfg.HistMinCorrelation,
	}, nil
}

func (m *CVMatcher) faceHist(f Frame, face FaceRegion) (gocv.Mat, error) {
	mat, err := frameMat(f)
	if err != nil {
		return gocv.Mat{}, err
	}

	target := mat
	clamped := face.Intersect(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	if !clamped.Empty() {
		roi := mat.Region(clamped)
		defer roi.Close()
		target = roi
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(target, &gray, gocv.ColorBGRToGray)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Pt(m.cfg.HistCompareSize, m.cfg.HistCompareSize), 0, 0, gocv.InterpolationLinear)

	hist := gocv.NewMat()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.CalcHist([]gocv.Mat{resized}, []int{0}, mask, &hist, []int{256}, []float64{0, 256}, false)

	return hist, nil
}

func (m *CVMatcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasNet {
		m.net.Close()
		m.hasNet = false
	}
}

func euclideanDistance(a, b Embedding) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum)
}

func l2Normalize(e Embedding) Embedding {
	var norm float64
	for _, v := range e {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return e
	}

	out := make(Embedding, len(e))
	for i, v := range e {
		out[i] = float32(float64(v) / norm)
	}

	return out
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}

	return c
}
