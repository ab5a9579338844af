package attendanceService

import (
	"Attendify/internal/api/attendance"
	"Attendify/internal/api/course"
	"Attendify/internal/api/verification"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *attendanceService) CheckEligibility(ctx context.Context, studentID string, sectionID string) (*attendance.EligibilityResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	courseClient, err := s.courseRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create course client")
		return nil, err
	}

	if _, err := courseClient.Sections.GetSectionByID(ctx, sectionID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Warn("Failed to get section for eligibility check")
		return nil, err
	}

	enrollment, err := courseClient.Enrollments.GetEnrollmentBySectionAndStudent(ctx, sectionID, studentID)
	if err != nil {
		if errors.Is(err, course.ErrEnrollmentNotFound) {
			return &attendance.EligibilityResponse{Eligible: false, Reason: attendance.ReasonNotEnrolled}, nil
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
			"student_id": studentID,
		}).Error("Failed to get enrollment for eligibility check")
		return nil, err
	}
	if enrollment.Status != string(entity.EnrollmentStatusEnrolled) {
		return &attendance.EligibilityResponse{Eligible: false, Reason: attendance.ReasonNotEnrolled}, nil
	}

	schedules, err := courseClient.Sections.GetSchedulesBySectionID(ctx, sectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Error("Failed to get schedules for eligibility check")
		return nil, err
	}

	now := s.now()
	window, reason := s.resolveWindow(schedules, now)
	if window == nil {
		return &attendance.EligibilityResponse{Eligible: false, Reason: reason}, nil
	}

	attendanceClient, err := s.attendanceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create attendance client")
		return nil, err
	}

	existing, err := attendanceClient.Records.GetRecordInWindow(ctx, sectionID, studentID, window.anchor, window.anchor.Add(24*time.Hour))
	if err == nil {
		return &attendance.EligibilityResponse{
			Eligible: false,
			Reason:   attendance.ReasonAlreadySubmitted,
			Status:   existing.Status,
		}, nil
	}
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
			"student_id": studentID,
		}).Error("Failed to check existing attendance record")
		return nil, err
	}

	return &attendance.EligibilityResponse{
		Eligible:    true,
		ScheduleID:  window.schedule.ID,
		WindowStart: window.start.Format(time.RFC3339),
		WindowEnd:   window.closesAt().Format(time.RFC3339),
	}, nil
}

func (s *attendanceService) Submit(ctx context.Context, studentID string, req attendance.SubmitAttendanceRequest, image []byte) (*attendance.SubmitAttendanceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if len(image) == 0 {
		return nil, attendance.ErrImageRequired
	}

	courseClient, err := s.courseRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create course client")
		return nil, err
	}

	section, err := courseClient.Sections.GetSectionByID(ctx, req.SectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": req.SectionID,
		}).Warn("Failed to get section for submission")
		return nil, err
	}

	enrollment, err := courseClient.Enrollments.GetEnrollmentBySectionAndStudent(ctx, req.SectionID, studentID)
	if err != nil {
		if errors.Is(err, course.ErrEnrollmentNotFound) {
			return nil, attendance.ErrNotEnrolled
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": req.SectionID,
			"student_id": studentID,
		}).Error("Failed to get enrollment for submission")
		return nil, err
	}
	if enrollment.Status != string(entity.EnrollmentStatusEnrolled) {
		return nil, attendance.ErrNotEnrolled
	}

	schedules, err := courseClient.Sections.GetSchedulesBySectionID(ctx, req.SectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": req.SectionID,
		}).Error("Failed to get schedules for submission")
		return nil, err
	}

	now := s.now()
	window, reason := s.resolveWindow(schedules, now)
	if window == nil {
		switch reason {
		case attendance.ReasonNotStarted:
			return nil, attendance.ErrWindowNotOpen
		case attendance.ReasonWindowClosed:
			return nil, attendance.ErrWindowClosed
		default:
			return nil, attendance.ErrNoScheduleToday
		}
	}

	attendanceClient, err := s.attendanceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create attendance client")
		return nil, err
	}

	_, err = attendanceClient.Records.GetRecordInWindow(ctx, req.SectionID, studentID, window.anchor, window.anchor.Add(24*time.Hour))
	if err == nil {
		return nil, attendance.ErrAlreadySubmitted
	}
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": req.SectionID,
			"student_id": studentID,
		}).Error("Failed to check existing attendance record")
		return nil, err
	}

	var distance float64
	if section.GeofenceEnabled() {
		distance = s.utils.HaversineDistance(req.Latitude, req.Longitude, section.Latitude, section.Longitude)
		if distance > section.RadiusM {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"section_id": req.SectionID,
				"student_id": studentID,
				"distance_m": distance,
				"radius_m":   section.RadiusM,
			}).Warn("Submission outside geofence")
			return nil, attendance.ErrOutsideGeofence
		}
	}

	verdict, err := s.verificationService.VerifyFace(ctx, studentID, image, verification.VerifyOptions{SectionID: req.SectionID})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"student_id": studentID,
		}).Error("Face verification errored during submission")
		return nil, err
	}
	if !verdict.Accepted {
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"section_id":     req.SectionID,
			"student_id":     studentID,
			"failure_reason": verdict.FailureReason,
		}).Warn("Face verification rejected the submission")
		return nil, fmt.Errorf("%w: %s", attendance.ErrFaceRejected, verdict.FailureReason)
	}

	status := string(entity.AttendanceStatusPresent)
	if now.After(window.start.Add(lateThreshold)) {
		status = string(entity.AttendanceStatusLate)
	}

	ULID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return nil, err
	}

	snapshotURL, err := s.s3Client.UploadBytes(image, fmt.Sprintf("attendance_%s.jpg", ULID))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to upload attendance snapshot")
		return nil, attendance.ErrInternalServerError
	}

	record := entity.AttendanceRecord{
		ID:          ULID,
		SectionID:   req.SectionID,
		StudentID:   studentID,
		ScheduleID:  window.schedule.ID,
		Status:      status,
		SnapshotURL: snapshotURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		DistanceM:   distance,
		Confidence:  verdict.ConfidenceScore,
		SubmittedAt: now,
	}

	if err := attendanceClient.Records.CreateRecord(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": req.SectionID,
			"student_id": studentID,
		}).Error("Failed to store attendance record")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"record_id":  ULID,
		"section_id": req.SectionID,
		"student_id": studentID,
		"status":     status,
		"confidence": verdict.ConfidenceScore,
		"distance_m": distance,
	}).Info("Attendance recorded")

	s.publishSubmission(ctx, record)

	return &attendance.SubmitAttendanceResponse{
		ID:          ULID,
		SectionID:   req.SectionID,
		Status:      status,
		Confidence:  verdict.ConfidenceScore,
		DistanceM:   distance,
		SnapshotURL: snapshotURL,
		SubmittedAt: now.Format(time.RFC3339),
	}, nil
}

// publishSubmission pushes the accepted record to the section's live feed.
// The student name is best-effort; the feed event still goes out without it.
func (s *attendanceService) publishSubmission(ctx context.Context, record entity.AttendanceRecord) {
	studentName := ""

	authClient, err := s.authRepo.NewClient(false)
	if err == nil {
		if user, err := authClient.Users.GetByID(ctx, record.StudentID); err == nil {
			studentName = user.Name
		}
	}

	s.feed.Publish(entity.AttendanceEvent{
		SectionID:   record.SectionID,
		StudentID:   record.StudentID,
		StudentName: studentName,
		Status:      record.Status,
		Confidence:  record.Confidence,
		SubmittedAt: record.SubmittedAt,
	})
}
