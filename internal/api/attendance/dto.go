package attendance

import "time"

const (
	ReasonNotEnrolled      = "not-enrolled"
	ReasonNoScheduleToday  = "no-schedule-today"
	ReasonNotStarted       = "not-started"
	ReasonWindowClosed     = "window-closed"
	ReasonAlreadySubmitted = "already-submitted"
)

type SubmitAttendanceRequest struct {
	SectionID string  `json:"section_id" form:"section_id" validate:"required"`
	Latitude  float64 `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude float64 `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
}

type SubmitAttendanceResponse struct {
	ID          string  `json:"id"`
	SectionID   string  `json:"section_id"`
	Status      string  `json:"status"`
	Confidence  float64 `json:"confidence"`
	DistanceM   float64 `json:"distance_m"`
	SnapshotURL string  `json:"snapshot_url"`
	SubmittedAt string  `json:"submitted_at"`
}

// EligibilityResponse reports whether the student can submit attendance for
// the section right now. Reason is one of not-enrolled, no-schedule-today,
// not-started, window-closed, already-submitted; empty when eligible.
type EligibilityResponse struct {
	Eligible    bool   `json:"eligible"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status,omitempty"`
	ScheduleID  string `json:"schedule_id,omitempty"`
	WindowStart string `json:"window_start,omitempty"`
	WindowEnd   string `json:"window_end,omitempty"`
}

type TodayEntry struct {
	SectionID   string `json:"section_id"`
	CourseCode  string `json:"course_code"`
	CourseName  string `json:"course_name"`
	ScheduleID  string `json:"schedule_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

type HistoryEntry struct {
	ID          string    `json:"id" db:"id"`
	SectionID   string    `json:"section_id" db:"section_id"`
	CourseCode  string    `json:"course_code" db:"course_code"`
	CourseName  string    `json:"course_name" db:"course_name"`
	Status      string    `json:"status" db:"status"`
	Confidence  float64   `json:"confidence" db:"confidence"`
	DistanceM   float64   `json:"distance_m" db:"distance_m"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

type RecapEntry struct {
	StudentID     string `json:"student_id" db:"student_id"`
	StudentName   string `json:"student_name" db:"student_name"`
	StudentNumber string `json:"student_number" db:"student_number"`
	PresentCount  int    `json:"present_count" db:"present_count"`
	LateCount     int    `json:"late_count" db:"late_count"`
	ExcusedCount  int    `json:"excused_count" db:"excused_count"`
	AbsentCount   int    `json:"absent_count" db:"absent_count"`
}

type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=present late absent excused"`
	Note   string `json:"note" validate:"max=255"`
}
