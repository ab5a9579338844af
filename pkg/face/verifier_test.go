package face

import (
	"image"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeFrame struct {
	name   string
	w, h   int
	closed bool
}

func (f *fakeFrame) Width() int  { return f.w }
func (f *fakeFrame) Height() int { return f.h }
func (f *fakeFrame) Close()      { f.closed = true }

type fakeDecoder struct {
	decodeCalls    int
	sharpnessCalls int
	sharpness      map[string]float64
	rejects        map[string]error
}

func (d *fakeDecoder) Decode(data []byte) (Frame, error) {
	d.decodeCalls++
	if err, ok := d.rejects[string(data)]; ok {
		return nil, err
	}

	return &fakeFrame{name: string(data), w: 640, h: 480}, nil
}

func (d *fakeDecoder) Sharpness(f Frame, _ FaceRegion) (float64, error) {
	d.sharpnessCalls++
	if v, ok := d.sharpness[f.(*fakeFrame).name]; ok {
		return v, nil
	}

	return 500, nil
}

type fakeLocator struct {
	detectCalls int
	eyeCalls    int
	faces       map[string][]FaceRegion
	eyes        map[string]int
	closed      bool
}

func (l *fakeLocator) DetectFaces(f Frame) ([]FaceRegion, error) {
	l.detectCalls++
	if regions, ok := l.faces[f.(*fakeFrame).name]; ok {
		return regions, nil
	}

	return []FaceRegion{image.Rect(100, 100, 300, 300)}, nil
}

func (l *fakeLocator) DetectEyes(f Frame, _ FaceRegion) (int, error) {
	l.eyeCalls++
	if n, ok := l.eyes[f.(*fakeFrame).name]; ok {
		return n, nil
	}

	return 2, nil
}

func (l *fakeLocator) Close() { l.closed = true }

type fakeMatcher struct {
	strategy   MatchStrategy
	outcome    MatchOutcome
	matchCalls int
	lastParams MatchParams
	closed     bool
}

func (m *fakeMatcher) Strategy() MatchStrategy { return m.strategy }

func (m *fakeMatcher) Match(_, _ Frame, _, _ FaceRegion, params MatchParams) (MatchOutcome, error) {
	m.matchCalls++
	m.lastParams = params

	return m.outcome, nil
}

func (m *fakeMatcher) Close() { m.closed = true }

// recordedBattery builds all six techniques in order, appending each run to
// order and failing only failTechnique (none when empty).
func recordedBattery(order *[]string, failTechnique string) []SpoofCheck {
	techniques := []string{
		TechniqueSharpness,
		TechniqueMoire,
		TechniqueColorGamut,
		TechniqueScreenBorder,
		TechniqueLighting,
		TechniqueBlockPattern,
	}

	checks := make([]SpoofCheck, 0, len(techniques))
	for _, tech := range techniques {
		tech := tech
		checks = append(checks, SpoofCheck{
			Technique: tech,
			Run: func(Frame, FaceRegion) (SpoofSignal, error) {
				*order = append(*order, tech)
				sig := SpoofSignal{Technique: tech, Metric: 1, Passed: tech != failTechnique}
				if !sig.Passed {
					sig.Reason = "synthetic failure"
				}
				return sig, nil
			},
		})
	}

	return checks
}

func newTestVerifier(t *testing.T, decoder *fakeDecoder, locator *fakeLocator, battery []SpoofCheck, matcher *fakeMatcher) *Verifier {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	v, err := New(DefaultConfig(), decoder, locator, battery, matcher, log)
	require.NoError(t, err)

	return v
}

func TestNewRequiresComponents(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := New(DefaultConfig(), nil, nil, nil, nil, log)
	require.Error(t, err)
}

func TestVerifyMissingReferenceDoesNoWork(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	res, err := v.Verify([]byte("candidate"), nil, Options{})
	require.NoError(t, err)
	require.False(t, res.Accepted)
	require.Equal(t, ReasonNoReferenceImage, res.FailureReason)

	require.Zero(t, decoder.decodeCalls)
	require.Zero(t, locator.detectCalls)
	require.Zero(t, matcher.matchCalls)
	require.Empty(t, order)
}

func TestVerifyMalformedCandidate(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"undecodable", ErrMalformedImage},
		{"too small", ErrImageTooSmall},
		{"too large", ErrImageTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoder := &fakeDecoder{rejects: map[string]error{"candidate": tc.err}}
			locator := &fakeLocator{}
			matcher := &fakeMatcher{}
			var order []string
			v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

			res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
			require.NoError(t, err)
			require.Equal(t, ReasonMalformedImage, res.FailureReason)
			require.Zero(t, locator.detectCalls)
		})
	}
}

func TestVerifyBlurryCandidateStopsEarly(t *testing.T) {
	decoder := &fakeDecoder{sharpness: map[string]float64{"candidate": 40}}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
	require.NoError(t, err)
	require.Equal(t, ReasonImageTooBlurry, res.FailureReason)

	require.Zero(t, locator.detectCalls)
	require.Zero(t, matcher.matchCalls)
	require.Empty(t, order)
	require.Empty(t, res.SpoofSignals)
}

func TestVerifyFaceCountPolicy(t *testing.T) {
	cases := []struct {
		name   string
		faces  []FaceRegion
		reason string
	}{
		{"no face", nil, ReasonNoFaceDetected},
		{"two faces", []FaceRegion{image.Rect(0, 0, 100, 100), image.Rect(200, 0, 300, 100)}, ReasonMultipleFaces},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoder := &fakeDecoder{}
			locator := &fakeLocator{faces: map[string][]FaceRegion{"candidate": tc.faces}}
			matcher := &fakeMatcher{}
			var order []string
			v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

			res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
			require.NoError(t, err)
			require.Equal(t, tc.reason, res.FailureReason)
			require.Zero(t, locator.eyeCalls)
			require.Zero(t, matcher.matchCalls)
		})
	}
}

func TestVerifyMinimumFaceSizeBoundary(t *testing.T) {
	// The cascade surfaces nothing below FaceMinSize, so a 30x30 region is
	// the smallest that can reach the rest of the pipeline.
	decoder := &fakeDecoder{}
	locator := &fakeLocator{faces: map[string][]FaceRegion{
		"exactly-min": {image.Rect(0, 0, 30, 30)},
		"below-min":   {},
	}}
	matcher := &fakeMatcher{strategy: StrategyEmbedding, outcome: MatchOutcome{Strategy: StrategyEmbedding, Confidence: 80, Accepted: true}}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	res, err := v.Verify([]byte("exactly-min"), []byte("reference"), Options{})
	require.NoError(t, err)
	require.True(t, res.Accepted)

	res, err = v.Verify([]byte("below-min"), []byte("reference"), Options{})
	require.NoError(t, err)
	require.Equal(t, ReasonNoFaceDetected, res.FailureReason)
}

func TestVerifyHiddenEyes(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{eyes: map[string]int{"candidate": 1}}
	matcher := &fakeMatcher{}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
	require.NoError(t, err)
	require.Equal(t, ReasonEyesNotVisible, res.FailureReason)
	require.Empty(t, order)
	require.Zero(t, matcher.matchCalls)
}

func TestVerifyBatteryOrderAndFirstFailure(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, TechniqueColorGamut), matcher)

	res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
	require.NoError(t, err)
	require.Equal(t, SpoofReason(TechniqueColorGamut), res.FailureReason)

	// Every technique still ran, in order, and every signal is attached.
	require.Equal(t, []string{
		TechniqueSharpness,
		TechniqueMoire,
		TechniqueColorGamut,
		TechniqueScreenBorder,
		TechniqueLighting,
		TechniqueBlockPattern,
	}, order)
	require.Len(t, res.SpoofSignals, 6)
	require.True(t, res.SpoofSignals[0].Passed)
	require.True(t, res.SpoofSignals[1].Passed)
	require.False(t, res.SpoofSignals[2].Passed)
	require.Zero(t, matcher.matchCalls)
}

func TestVerifyUnusableReference(t *testing.T) {
	t.Run("undecodable reference", func(t *testing.T) {
		decoder := &fakeDecoder{rejects: map[string]error{"reference": ErrMalformedImage}}
		locator := &fakeLocator{}
		matcher := &fakeMatcher{}
		var order []string
		v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

		res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
		require.NoError(t, err)
		require.Equal(t, ReasonNoReferenceImage, res.FailureReason)
		require.Zero(t, matcher.matchCalls)
	})

	t.Run("reference without single face", func(t *testing.T) {
		decoder := &fakeDecoder{}
		locator := &fakeLocator{faces: map[string][]FaceRegion{"reference": {}}}
		matcher := &fakeMatcher{}
		var order []string
		v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

		res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
		require.NoError(t, err)
		require.Equal(t, ReasonNoReferenceImage, res.FailureReason)
		require.Zero(t, matcher.matchCalls)
	})
}

func TestVerifyMatchBelowThreshold(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{
		strategy: StrategyEmbedding,
		outcome:  MatchOutcome{Strategy: StrategyEmbedding, Distance: 0.58, Confidence: 42, Accepted: false},
	}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
	require.NoError(t, err)
	require.False(t, res.Accepted)
	require.Equal(t, ReasonMatchBelowThreshold, res.FailureReason)
	require.Equal(t, 42.0, res.Confidence)
	require.Equal(t, StrategyEmbedding, res.MatchStrategyUsed)
}

func TestVerifyAcceptCarriesOutcome(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{
		strategy: StrategyHistogram,
		outcome:  MatchOutcome{Strategy: StrategyHistogram, Correlation: 0.875, Confidence: 87.5, Accepted: true},
	}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	res, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Empty(t, res.FailureReason)
	require.Equal(t, 87.5, res.Confidence)
	require.Equal(t, StrategyHistogram, res.MatchStrategyUsed)
	require.Len(t, res.SpoofSignals, 6)
	for _, sig := range res.SpoofSignals {
		require.True(t, sig.Passed)
	}
}

func TestVerifyToleranceProfiles(t *testing.T) {
	cases := []struct {
		profile   ToleranceProfile
		tolerance float64
	}{
		{ProfileStrict, 0.3},
		{ProfileDefault, 0.4},
		{ProfileRelaxed, 0.5},
		{"", 0.4},
	}

	for _, tc := range cases {
		t.Run(string(tc.profile), func(t *testing.T) {
			decoder := &fakeDecoder{}
			locator := &fakeLocator{}
			matcher := &fakeMatcher{outcome: MatchOutcome{Accepted: true}}
			var order []string
			v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

			_, err := v.Verify([]byte("candidate"), []byte("reference"), Options{Profile: tc.profile})
			require.NoError(t, err)
			require.Equal(t, tc.tolerance, matcher.lastParams.Tolerance)
		})
	}
}

func TestVerifyForceHistogramReachesMatcher(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{outcome: MatchOutcome{Strategy: StrategyHistogram, Accepted: true}}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	_, err := v.Verify([]byte("candidate"), []byte("reference"), Options{ForceHistogram: true})
	require.NoError(t, err)
	require.True(t, matcher.lastParams.ForceHistogram)
}

func TestVerifyDeterministic(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{
		strategy: StrategyEmbedding,
		outcome:  MatchOutcome{Strategy: StrategyEmbedding, Distance: 0.21, Confidence: 79, Accepted: true},
	}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	first, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
	require.NoError(t, err)
	second, err := v.Verify([]byte("candidate"), []byte("reference"), Options{})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestScreenGateStopsBeforeMatch(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	res, err := v.Screen([]byte("candidate"))
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.Len(t, res.SpoofSignals, 6)
	require.Zero(t, matcher.matchCalls)
}

func TestScreenRejectsSpoof(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, TechniqueMoire), matcher)

	res, err := v.Screen([]byte("candidate"))
	require.NoError(t, err)
	require.False(t, res.Accepted)
	require.Equal(t, SpoofReason(TechniqueMoire), res.FailureReason)
}

func TestCloseReleasesComponents(t *testing.T) {
	decoder := &fakeDecoder{}
	locator := &fakeLocator{}
	matcher := &fakeMatcher{}
	var order []string
	v := newTestVerifier(t, decoder, locator, recordedBattery(&order, ""), matcher)

	v.Close()
	require.True(t, locator.closed)
	require.True(t, matcher.closed)
}

func TestSpoofReasonRoundTrip(t *testing.T) {
	reason := SpoofReason(TechniqueBlockPattern)
	require.Equal(t, "spoofing-detected:block-pattern", reason)
	require.True(t, IsSpoofReason(reason))
	require.False(t, IsSpoofReason(ReasonMatchBelowThreshold))
	require.False(t, IsSpoofReason(""))
}
