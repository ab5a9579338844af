package attendance

import "Attendify/pkg/response"

var (
	ErrNotEnrolled         = response.NewError(403, "student is not enrolled in this section")
	ErrNoScheduleToday     = response.NewError(404, "no class schedule for this section today")
	ErrWindowNotOpen       = response.NewError(422, "attendance window has not opened yet")
	ErrWindowClosed        = response.NewError(422, "attendance window has closed")
	ErrAlreadySubmitted    = response.NewError(409, "attendance already submitted for this class today")
	ErrOutsideGeofence     = response.NewError(422, "submitted location is outside the class geofence")
	ErrFaceRejected        = response.NewError(422, "face verification failed")
	ErrImageRequired       = response.NewError(400, "attendance image is required")
	ErrRecordNotFound      = response.NewError(404, "attendance record not found")
	ErrNotSectionOwner     = response.NewError(403, "section belongs to another faculty member")
	ErrInvalidStatus       = response.NewError(400, "invalid attendance status")
	ErrInvalidDateRange    = response.NewError(400, "dates must be in YYYY-MM-DD format")
	ErrInternalServerError = response.NewError(500, "internal server error")
)
