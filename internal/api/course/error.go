package course

import "Attendify/pkg/response"

var (
	ErrCourseNotFound      = response.NewError(404, "course not found")
	ErrCourseCodeExists    = response.NewError(409, "course code already registered")
	ErrSectionNotFound     = response.NewError(404, "course section not found")
	ErrScheduleNotFound    = response.NewError(404, "section schedule not found")
	ErrNotSectionOwner     = response.NewError(403, "section belongs to another faculty member")
	ErrAlreadyEnrolled     = response.NewError(409, "enrollment request already exists for this section")
	ErrEnrollmentNotFound  = response.NewError(404, "enrollment not found")
	ErrEnrollmentDecided   = response.NewError(409, "enrollment has already been decided")
	ErrInvalidDecision     = response.NewError(400, "enrollment decision must be enrolled or rejected")
	ErrInvalidScheduleTime = response.NewError(400, "schedule times must be in HH:MM format")
	ErrInternalServerError = response.NewError(500, "internal server error")
)
