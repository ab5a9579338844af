package attendanceService

import (
	"Attendify/internal/api/attendance"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *attendanceService) GetToday(ctx context.Context, studentID string) ([]attendance.TodayEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.attendanceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create attendance client")
		return nil, err
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	rows, err := repo.Records.GetTodayForStudent(ctx, studentID, int(now.Weekday()), dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"student_id": studentID,
		}).Error("Failed to get today's classes")
		return nil, err
	}

	entries := make([]attendance.TodayEntry, 0, len(rows))
	for _, row := range rows {
		entry := attendance.TodayEntry{
			SectionID:  row.SectionID,
			CourseCode: row.CourseCode,
			CourseName: row.CourseName,
			ScheduleID: row.ScheduleID,
			StartTime:  row.StartTime,
			EndTime:    row.EndTime,
		}

		if row.RecordID != "" {
			entry.Status = row.Status
			entry.SubmittedAt = row.SubmittedAt.Format(time.RFC3339)
			entries = append(entries, entry)
			continue
		}

		schedule := entity.SectionSchedule{StartTime: row.StartTime, EndTime: row.EndTime}
		window, err := s.windowFor(schedule, now)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id":  requestID,
				"error":       err.Error(),
				"schedule_id": row.ScheduleID,
			}).Warn("Skipping schedule with malformed times")
			continue
		}

		switch {
		case now.Before(window.start):
			entry.Status = "upcoming"
		case now.Before(window.closesAt()):
			entry.Status = "open"
		default:
			entry.Status = "missed"
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *attendanceService) GetHistory(ctx context.Context, studentID string, from string, to string) ([]attendance.HistoryEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.attendanceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create attendance client")
		return nil, err
	}

	if from == "" && to == "" {
		history, err := repo.Records.GetHistoryByStudentID(ctx, studentID)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
				"student_id": studentID,
			}).Error("Failed to get attendance history")
			return nil, err
		}
		return history, nil
	}

	var fromTime, toTime time.Time
	if from != "" {
		fromTime, err = time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return nil, attendance.ErrInvalidDateRange
		}
	}
	if to != "" {
		parsed, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return nil, attendance.ErrInvalidDateRange
		}
		toTime = parsed.AddDate(0, 0, 1)
	} else {
		toTime = s.now().Add(24 * time.Hour)
	}

	history, err := repo.Records.GetHistoryByStudentIDInRange(ctx, studentID, fromTime, toTime)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"student_id": studentID,
		}).Error("Failed to get attendance history in range")
		return nil, err
	}

	return history, nil
}

func (s *attendanceService) GetRecap(ctx context.Context, facultyID string, sectionID string) ([]attendance.RecapEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.VerifySectionOwnership(ctx, facultyID, sectionID); err != nil {
		return nil, err
	}

	repo, err := s.attendanceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create attendance client")
		return nil, err
	}

	recap, err := repo.Records.GetRecapBySectionID(ctx, sectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Error("Failed to get section recap")
		return nil, err
	}

	return recap, nil
}

func (s *attendanceService) OverrideStatus(ctx context.Context, facultyID string, recordID string, req attendance.OverrideStatusRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	if !entity.IsValidAttendanceStatus(req.Status) {
		return attendance.ErrInvalidStatus
	}

	repo, err := s.attendanceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create attendance client")
		return err
	}

	record, err := repo.Records.GetRecordByID(ctx, recordID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"record_id":  recordID,
		}).Warn("Failed to get attendance record for override")
		return err
	}

	if err := s.VerifySectionOwnership(ctx, facultyID, record.SectionID); err != nil {
		return err
	}

	record.Status = req.Status
	record.OverriddenBy = facultyID
	record.OverrideNote = req.Note

	if err := repo.Records.UpdateRecordStatus(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"record_id":  recordID,
		}).Error("Failed to update attendance record status")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"record_id":  recordID,
		"status":     req.Status,
		"faculty_id": facultyID,
	}).Info("Attendance status overridden")

	return nil
}

func (s *attendanceService) VerifySectionOwnership(ctx context.Context, facultyID string, sectionID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	courseClient, err := s.courseRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create course client")
		return err
	}

	section, err := courseClient.Sections.GetSectionByID(ctx, sectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Warn("Failed to get section for ownership check")
		return err
	}

	if section.FacultyID != facultyID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"section_id": sectionID,
			"faculty_id": facultyID,
		}).Warn("Faculty does not own section")
		return attendance.ErrNotSectionOwner
	}

	return nil
}
