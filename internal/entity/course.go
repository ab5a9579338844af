package entity

import "time"

type Course struct {
	ID        string    `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type CourseSection struct {
	ID           string    `db:"id"`
	CourseID     string    `db:"course_id"`
	FacultyID    string    `db:"faculty_id"`
	AcademicYear string    `db:"academic_year"`
	Semester     string    `db:"semester"`
	Room         string    `db:"room"`
	Latitude     float64   `db:"latitude"`
	Longitude    float64   `db:"longitude"`
	RadiusM      float64   `db:"radius_m"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// GeofenceEnabled reports whether submissions must carry an in-range location.
// A zero radius leaves the section open to submissions from anywhere.
func (s CourseSection) GeofenceEnabled() bool {
	return s.RadiusM > 0
}

type SectionSchedule struct {
	ID        string    `db:"id"`
	SectionID string    `db:"section_id"`
	DayOfWeek int       `db:"day_of_week"`
	StartTime string    `db:"start_time"`
	EndTime   string    `db:"end_time"`
	CreatedAt time.Time `db:"created_at"`
}

type SectionEnrollment struct {
	ID        string    `db:"id"`
	SectionID string    `db:"section_id"`
	StudentID string    `db:"student_id"`
	Status    string    `db:"status"`
	DecidedBy string    `db:"decided_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "pending"
	EnrollmentStatusEnrolled EnrollmentStatus = "enrolled"
	EnrollmentStatusRejected EnrollmentStatus = "rejected"
)

func IsValidEnrollmentDecision(status string) bool {
	switch EnrollmentStatus(status) {
	case EnrollmentStatusEnrolled, EnrollmentStatusRejected:
		return true
	default:
		return false
	}
}
