package face

import "errors"

var (
	ErrEngineDisabled   = errors.New("face engine built without gocv support")
	ErrMalformedImage   = errors.New("image could not be decoded")
	ErrImageTooSmall    = errors.New("image below minimum dimensions")
	ErrImageTooLarge    = errors.New("image above maximum dimensions")
	ErrUnsupportedFrame = errors.New("frame was not produced by this engine")
	ErrBridgeOffline    = errors.New("embedding bridge is not connected")
)

// Failure reasons carried on Result and persisted by callers. These are wire
// values, keep them stable.
const (
	ReasonMalformedImage      = "malformed-image"
	ReasonImageTooBlurry      = "image-too-blurry"
	ReasonNoFaceDetected      = "no-face-detected"
	ReasonMultipleFaces       = "multiple-faces-detected"
	ReasonEyesNotVisible      = "eyes-not-visible"
	ReasonNoReferenceImage    = "no-reference-image"
	ReasonMatchBelowThreshold = "match-below-threshold"

	spoofReasonPrefix = "spoofing-detected:"
)

// SpoofReason builds the failure reason for a failed battery technique,
// e.g. "spoofing-detected:moire".
func SpoofReason(technique string) string {
	return spoofReasonPrefix + technique
}

// IsSpoofReason reports whether a failure reason came from the battery.
func IsSpoofReason(reason string) bool {
	return len(reason) > len(spoofReasonPrefix) && reason[:len(spoofReasonPrefix)] == spoofReasonPrefix
}
