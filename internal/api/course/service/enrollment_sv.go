package courseService

import (
	"Attendify/internal/api/course"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *enrollmentDomainImpl) RequestEnrollment(ctx context.Context, studentID string, sectionID string) (*course.EnrollmentResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	if _, err := repo.Sections.GetSectionByID(ctx, sectionID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Warn("Failed to get section for enrollment")
		return nil, err
	}

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return nil, err
	}

	enrollment := entity.SectionEnrollment{
		ID:        ULID,
		SectionID: sectionID,
		StudentID: studentID,
		Status:    string(entity.EnrollmentStatusPending),
	}

	if err := repo.Enrollments.CreateEnrollment(ctx, enrollment); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
			"student_id": studentID,
		}).Warn("Failed to create enrollment")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"enrollment_id": ULID,
		"section_id":    sectionID,
		"student_id":    studentID,
	}).Info("Enrollment requested")

	return &course.EnrollmentResponse{
		ID:        ULID,
		SectionID: sectionID,
		StudentID: studentID,
		Status:    string(entity.EnrollmentStatusPending),
	}, nil
}

func (s *enrollmentDomainImpl) GetMyEnrollments(ctx context.Context, studentID string) ([]course.StudentEnrollment, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	enrollments, err := repo.Enrollments.GetEnrollmentsByStudentID(ctx, studentID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"student_id": studentID,
		}).Error("Failed to get enrollments")
		return nil, err
	}

	return enrollments, nil
}

func (s *enrollmentDomainImpl) GetRoster(ctx context.Context, facultyID string, sectionID string) ([]course.RosterEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	section, err := repo.Sections.GetSectionByID(ctx, sectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Warn("Failed to get section")
		return nil, err
	}

	if section.FacultyID != facultyID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"section_id": sectionID,
			"faculty_id": facultyID,
		}).Warn("Faculty does not own section")
		return nil, course.ErrNotSectionOwner
	}

	roster, err := repo.Enrollments.GetRosterBySectionID(ctx, sectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Error("Failed to get roster")
		return nil, err
	}

	return roster, nil
}

func (s *enrollmentDomainImpl) DecideEnrollment(ctx context.Context, facultyID string, enrollmentID string, req course.DecideEnrollmentRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	if !entity.IsValidEnrollmentDecision(req.Status) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     req.Status,
		}).Warn("Invalid enrollment decision")
		return course.ErrInvalidDecision
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	enrollment, err := repo.Enrollments.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"error":         err.Error(),
			"enrollment_id": enrollmentID,
		}).Warn("Failed to get enrollment")
		return err
	}

	section, err := repo.Sections.GetSectionByID(ctx, enrollment.SectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": enrollment.SectionID,
		}).Error("Failed to get section for enrollment decision")
		return err
	}

	if section.FacultyID != facultyID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"section_id": enrollment.SectionID,
			"faculty_id": facultyID,
		}).Warn("Faculty does not own section")
		return course.ErrNotSectionOwner
	}

	if enrollment.Status != string(entity.EnrollmentStatusPending) {
		s.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"enrollment_id": enrollmentID,
			"status":        enrollment.Status,
		}).Warn("Enrollment already decided")
		return course.ErrEnrollmentDecided
	}

	enrollment.Status = req.Status
	enrollment.DecidedBy = facultyID

	if err := repo.Enrollments.UpdateEnrollmentStatus(ctx, enrollment); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"error":         err.Error(),
			"enrollment_id": enrollmentID,
		}).Error("Failed to update enrollment status")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"enrollment_id": enrollmentID,
		"status":        req.Status,
		"decided_by":    facultyID,
	}).Info("Enrollment decided")

	return nil
}
