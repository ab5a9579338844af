package face

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Verifier runs the verification pipeline: decode and focus gate, face and
// eye location, the anti-spoofing battery, then the reference match. Stages
// run in that order and the first rejection ends the call.
type Verifier struct {
	cfg     Config
	decoder Decoder
	locator Locator
	battery []SpoofCheck
	matcher Matcher
	log     *logrus.Logger
}

func New(cfg Config, decoder Decoder, locator Locator, battery []SpoofCheck, matcher Matcher, log *logrus.Logger) (*Verifier, error) {
	if decoder == nil || locator == nil || matcher == nil {
		return nil, errors.New("verifier needs a decoder, a locator and a matcher")
	}

	return &Verifier{
		cfg:     cfg,
		decoder: decoder,
		locator: locator,
		battery: battery,
		matcher: matcher,
		log:     log,
	}, nil
}

// Strategy reports the comparison strategy the matcher settled on at startup.
func (v *Verifier) Strategy() MatchStrategy {
	return v.matcher.Strategy()
}

// Verify decides whether candidate shows the same live person as reference.
// Pipeline rejections come back inside the Result with a stable
// FailureReason; the error return is reserved for engine faults.
func (v *Verifier) Verify(candidate, reference []byte, opts Options) (Result, error) {
	if opts.Profile == "" {
		opts.Profile = ProfileDefault
	}

	if len(reference) == 0 {
		return Result{FailureReason: ReasonNoReferenceImage}, nil
	}

	cand, face, res, err := v.admit(candidate)
	if err != nil || res.FailureReason != "" {
		return res, err
	}
	defer cand.Close()

	ref, err := v.decoder.Decode(reference)
	if err != nil {
		if isDecodeReject(err) {
			v.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("[Verifier.Verify] stored reference image is unusable")
			res.FailureReason = ReasonNoReferenceImage
			return res, nil
		}
		return res, fmt.Errorf("decoding reference: %w", err)
	}
	defer ref.Close()

	refFaces, err := v.locator.DetectFaces(ref)
	if err != nil {
		return res, fmt.Errorf("locating reference face: %w", err)
	}
	if len(refFaces) != 1 {
		v.log.WithFields(logrus.Fields{
			"faces": len(refFaces),
		}).Warn("[Verifier.Verify] stored reference image has no single face")
		res.FailureReason = ReasonNoReferenceImage
		return res, nil
	}

	outcome, err := v.matcher.Match(ref, cand, refFaces[0], face, MatchParams{
		Tolerance:      v.cfg.Tolerance(opts.Profile),
		ForceHistogram: opts.ForceHistogram,
	})
	if err != nil {
		return res, fmt.Errorf("matching faces: %w", err)
	}

	res.MatchStrategyUsed = outcome.Strategy
	res.Confidence = outcome.Confidence
	if !outcome.Accepted {
		res.FailureReason = ReasonMatchBelowThreshold
		return res, nil
	}

	res.Accepted = true
	return res, nil
}

// Screen runs only the candidate-side stages: decode, focus gate, single
// face, visible eyes, battery. Enrollment photos pass through this gate
// before they may become references.
func (v *Verifier) Screen(candidate []byte) (Result, error) {
	cand, _, res, err := v.admit(candidate)
	if err != nil || res.FailureReason != "" {
		return res, err
	}
	cand.Close()

	res.Accepted = true
	return res, nil
}

// admit runs the candidate-side stages shared by Verify and Screen. On
// rejection the frame is closed and res carries the reason; on admission the
// caller owns the returned frame.
func (v *Verifier) admit(candidate []byte) (Frame, FaceRegion, Result, error) {
	res := Result{}

	cand, err := v.decoder.Decode(candidate)
	if err != nil {
		if isDecodeReject(err) {
			res.FailureReason = ReasonMalformedImage
			return nil, FaceRegion{}, res, nil
		}
		return nil, FaceRegion{}, res, fmt.Errorf("decoding candidate: %w", err)
	}

	sharpness, err := v.decoder.Sharpness(cand, FaceRegion{})
	if err != nil {
		cand.Close()
		return nil, FaceRegion{}, res, fmt.Errorf("measuring sharpness: %w", err)
	}
	if sharpness < v.cfg.SharpnessMinVariance {
		cand.Close()
		res.FailureReason = ReasonImageTooBlurry
		return nil, FaceRegion{}, res, nil
	}

	faces, err := v.locator.DetectFaces(cand)
	if err != nil {
		cand.Close()
		return nil, FaceRegion{}, res, fmt.Errorf("locating faces: %w", err)
	}
	if len(faces) == 0 {
		cand.Close()
		res.FailureReason = ReasonNoFaceDetected
		return nil, FaceRegion{}, res, nil
	}
	if len(faces) > 1 {
		cand.Close()
		res.FailureReason = ReasonMultipleFaces
		return nil, FaceRegion{}, res, nil
	}
	face := faces[0]

	eyes, err := v.locator.DetectEyes(cand, face)
	if err != nil {
		cand.Close()
		return nil, FaceRegion{}, res, fmt.Errorf("locating eyes: %w", err)
	}
	if eyes < v.cfg.EyesMinCount {
		cand.Close()
		res.FailureReason = ReasonEyesNotVisible
		return nil, FaceRegion{}, res, nil
	}

	res.SpoofSignals, err = v.runBattery(cand, face)
	if err != nil {
		cand.Close()
		return nil, FaceRegion{}, res, err
	}
	for _, sig := range res.SpoofSignals {
		if !sig.Passed {
			cand.Close()
			res.FailureReason = SpoofReason(sig.Technique)
			return nil, FaceRegion{}, res, nil
		}
	}

	return cand, face, res, nil
}

// runBattery executes every technique in order. All signals are collected
// even when an early one fails so callers can persist the full picture.
func (v *Verifier) runBattery(f Frame, face FaceRegion) ([]SpoofSignal, error) {
	signals := make([]SpoofSignal, 0, len(v.battery))
	for _, check := range v.battery {
		sig, err := check.Run(f, face)
		if err != nil {
			return nil, fmt.Errorf("running %s check: %w", check.Technique, err)
		}
		signals = append(signals, sig)
	}

	return signals, nil
}

func (v *Verifier) Close() {
	v.locator.Close()
	v.matcher.Close()
}

func isDecodeReject(err error) bool {
	return errors.Is(err, ErrMalformedImage) ||
		errors.Is(err, ErrImageTooSmall) ||
		errors.Is(err, ErrImageTooLarge)
}
