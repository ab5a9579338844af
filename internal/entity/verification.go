package entity

import "time"

// VerificationAudit records one pipeline run. SectionID is empty for
// dry-runs and enrollment checks that happen outside an attendance
// submission.
type VerificationAudit struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	SectionID     string    `db:"section_id"`
	Accepted      bool      `db:"accepted"`
	Confidence    float64   `db:"confidence"`
	FailureReason string    `db:"failure_reason"`
	MatchStrategy string    `db:"match_strategy"`
	SpoofSignals  string    `db:"spoof_signals"`
	DurationMs    int64     `db:"duration_ms"`
	CreatedAt     time.Time `db:"created_at"`
}

type StudentCard struct {
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	Faculty       string `json:"faculty"`
	StudyProgram  string `json:"study_program"`
}
