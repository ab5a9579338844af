package verification

import (
	"Attendify/internal/entity"
	"Attendify/pkg/face"
)

type VerifyFaceRequest struct {
	Profile        string `json:"profile" validate:"omitempty,oneof=strict default relaxed"`
	ForceHistogram bool   `json:"force_histogram"`
}

// VerifyOptions is what the service layer takes; attendance submissions set
// SectionID so the audit row points at the class section.
type VerifyOptions struct {
	Profile        string
	ForceHistogram bool
	SectionID      string
}

type VerifyFaceResponse struct {
	Accepted          bool               `json:"accepted"`
	ConfidenceScore   float64            `json:"confidence_score"`
	FailureReason     string             `json:"failure_reason,omitempty"`
	MatchStrategyUsed string             `json:"match_strategy_used,omitempty"`
	SpoofSignals      []face.SpoofSignal `json:"spoof_signals"`
	DurationMs        int64              `json:"duration_ms"`
}

type EnrollCheckResponse struct {
	Eligible      bool               `json:"eligible"`
	FailureReason string             `json:"failure_reason,omitempty"`
	SpoofSignals  []face.SpoofSignal `json:"spoof_signals"`
}

type StudentCardRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

type StudentCardResponse struct {
	Data entity.StudentCard `json:"data"`
}

type EngineStatusResponse struct {
	Enabled         bool   `json:"enabled"`
	Strategy        string `json:"strategy,omitempty"`
	ModelPath       string `json:"model_path"`
	ModelPresent    bool   `json:"model_present"`
	BridgeConnected bool   `json:"bridge_connected"`
	MaxConcurrency  int64  `json:"max_concurrency"`
}
