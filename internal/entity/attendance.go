package entity

import "time"

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

func IsValidAttendanceStatus(status string) bool {
	switch AttendanceStatus(status) {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

type AttendanceRecord struct {
	ID           string    `db:"id"`
	SectionID    string    `db:"section_id"`
	StudentID    string    `db:"student_id"`
	ScheduleID   string    `db:"schedule_id"`
	Status       string    `db:"status"`
	SnapshotURL  string    `db:"snapshot_url"`
	Latitude     float64   `db:"latitude"`
	Longitude    float64   `db:"longitude"`
	DistanceM    float64   `db:"distance_m"`
	Confidence   float64   `db:"confidence"`
	OverriddenBy string    `db:"overridden_by"`
	OverrideNote string    `db:"override_note"`
	SubmittedAt  time.Time `db:"submitted_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// AttendanceEvent is what the live section feed pushes to faculty monitors.
type AttendanceEvent struct {
	SectionID   string    `json:"section_id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Status      string    `json:"status"`
	Confidence  float64   `json:"confidence"`
	SubmittedAt time.Time `json:"submitted_at"`
}
