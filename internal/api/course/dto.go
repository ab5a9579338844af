package course

import "time"

type CreateCourseRequest struct {
	Code string `json:"code" validate:"required,min=2,max=20"`
	Name string `json:"name" validate:"required,min=3,max=150"`
}

type UpdateCourseRequest struct {
	Code string `json:"code" validate:"required,min=2,max=20"`
	Name string `json:"name" validate:"required,min=3,max=150"`
}

type CourseResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CreateSectionRequest struct {
	CourseID     string  `json:"course_id" validate:"required"`
	AcademicYear string  `json:"academic_year" validate:"required,max=20"`
	Semester     string  `json:"semester" validate:"required,oneof=odd even"`
	Room         string  `json:"room" validate:"max=50"`
	Latitude     float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    float64 `json:"longitude" validate:"omitempty,longitude"`
	RadiusM      float64 `json:"radius_m" validate:"gte=0,lte=10000"`
}

type UpdateSectionRequest struct {
	AcademicYear string  `json:"academic_year" validate:"required,max=20"`
	Semester     string  `json:"semester" validate:"required,oneof=odd even"`
	Room         string  `json:"room" validate:"max=50"`
	Latitude     float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    float64 `json:"longitude" validate:"omitempty,longitude"`
	RadiusM      float64 `json:"radius_m" validate:"gte=0,lte=10000"`
}

type SectionResponse struct {
	ID           string             `json:"id"`
	CourseID     string             `json:"course_id"`
	CourseCode   string             `json:"course_code,omitempty"`
	CourseName   string             `json:"course_name,omitempty"`
	FacultyID    string             `json:"faculty_id"`
	AcademicYear string             `json:"academic_year"`
	Semester     string             `json:"semester"`
	Room         string             `json:"room"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	RadiusM      float64            `json:"radius_m"`
	Schedules    []ScheduleResponse `json:"schedules,omitempty"`
}

type CreateScheduleRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type ScheduleResponse struct {
	ID        string `json:"id"`
	SectionID string `json:"section_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type DecideEnrollmentRequest struct {
	Status string `json:"status" validate:"required,oneof=enrolled rejected"`
}

type EnrollmentResponse struct {
	ID        string `json:"id"`
	SectionID string `json:"section_id"`
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
}

type StudentEnrollment struct {
	ID           string    `json:"id" db:"id"`
	SectionID    string    `json:"section_id" db:"section_id"`
	Status       string    `json:"status" db:"status"`
	CourseCode   string    `json:"course_code" db:"course_code"`
	CourseName   string    `json:"course_name" db:"course_name"`
	AcademicYear string    `json:"academic_year" db:"academic_year"`
	Semester     string    `json:"semester" db:"semester"`
	RequestedAt  time.Time `json:"requested_at" db:"requested_at"`
}

type RosterEntry struct {
	EnrollmentID  string    `json:"enrollment_id" db:"enrollment_id"`
	StudentID     string    `json:"student_id" db:"student_id"`
	StudentName   string    `json:"student_name" db:"student_name"`
	StudentNumber string    `json:"student_number" db:"student_number"`
	Status        string    `json:"status" db:"status"`
	RequestedAt   time.Time `json:"requested_at" db:"requested_at"`
}
