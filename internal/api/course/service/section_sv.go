package courseService

import (
	"Attendify/internal/api/course"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *sectionDomainImpl) CreateSection(ctx context.Context, facultyID string, req course.CreateSectionRequest) (*course.SectionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	parent, err := repo.Courses.GetCourseByID(ctx, req.CourseID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"course_id":  req.CourseID,
		}).Warn("Parent course lookup failed")
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

	section := entity.CourseSection{
		ID:           ULID,
		CourseID:     parent.ID,
		FacultyID:    facultyID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Room:         req.Room,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusM:      req.RadiusM,
	}

	if err := repo.Sections.CreateSection(ctx, section); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"course_id":  req.CourseID,
		}).Error("Failed to create section")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"section_id": ULID,
		"course_id":  parent.ID,
		"faculty_id": facultyID,
	}).Info("Course section created")

	return &course.SectionResponse{
		ID:           ULID,
		CourseID:     parent.ID,
		CourseCode:   parent.Code,
		CourseName:   parent.Name,
		FacultyID:    facultyID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Room:         req.Room,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusM:      req.RadiusM,
	}, nil
}

func (s *sectionDomainImpl) GetSectionByID(ctx context.Context, id string) (*course.SectionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	section, err := repo.Sections.GetSectionByID(ctx, id)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": id,
		}).Warn("Failed to get section")
		return nil, err
	}

	schedules, err := repo.Sections.GetSchedulesBySectionID(ctx, id)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": id,
		}).Error("Failed to get section schedules")
		return nil, err
	}

	resp := makeSectionResponse(section)
	resp.Schedules = makeScheduleResponses(schedules)

	return &resp, nil
}

func (s *sectionDomainImpl) GetSectionsByCourseID(ctx context.Context, courseID string) ([]course.SectionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	sections, err := repo.Sections.GetSectionsByCourseID(ctx, courseID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"course_id":  courseID,
		}).Error("Failed to get sections by course")
		return nil, err
	}

	result := make([]course.SectionResponse, 0, len(sections))
	for _, section := range sections {
		result = append(result, makeSectionResponse(section))
	}

	return result, nil
}

func (s *sectionDomainImpl) GetMySections(ctx context.Context, facultyID string) ([]course.SectionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	sections, err := repo.Sections.GetSectionsByFacultyID(ctx, facultyID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"faculty_id": facultyID,
		}).Error("Failed to get sections by faculty")
		return nil, err
	}

	result := make([]course.SectionResponse, 0, len(sections))
	for _, section := range sections {
		result = append(result, makeSectionResponse(section))
	}

	return result, nil
}

func (s *sectionDomainImpl) UpdateSection(ctx context.Context, facultyID string, id string, req course.UpdateSectionRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	section, err := repo.Sections.GetSectionByID(ctx, id)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": id,
		}).Warn("Failed to get section")
		return err
	}

	if section.FacultyID != facultyID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"section_id": id,
			"faculty_id": facultyID,
		}).Warn("Faculty does not own section")
		return course.ErrNotSectionOwner
	}

	section.AcademicYear = req.AcademicYear
	section.Semester = req.Semester
	section.Room = req.Room
	section.Latitude = req.Latitude
	section.Longitude = req.Longitude
	section.RadiusM = req.RadiusM

	if err := repo.Sections.UpdateSection(ctx, section); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": id,
		}).Error("Failed to update section")
		return err
	}

	return nil
}

func (s *sectionDomainImpl) DeleteSection(ctx context.Context, facultyID string, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	section, err := repo.Sections.GetSectionByID(ctx, id)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": id,
		}).Warn("Failed to get section")
		return err
	}

	if section.FacultyID != facultyID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"section_id": id,
			"faculty_id": facultyID,
		}).Warn("Faculty does not own section")
		return course.ErrNotSectionOwner
	}

	if err := repo.Sections.DeleteSection(ctx, id); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": id,
		}).Error("Failed to delete section")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"section_id": id,
	}).Info("Course section deleted")

	return nil
}

func (s *sectionDomainImpl) AddSchedule(ctx context.Context, facultyID string, sectionID string, req course.CreateScheduleRequest) (*course.ScheduleResponse, error) {
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

	if _, err := s.utils.ParseClockTime(req.StartTime); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"start_time": req.StartTime,
		}).Warn("Invalid schedule start time")
		return nil, course.ErrInvalidScheduleTime
	}
	if _, err := s.utils.ParseClockTime(req.EndTime); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"end_time":   req.EndTime,
		}).Warn("Invalid schedule end time")
		return nil, course.ErrInvalidScheduleTime
	}

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return nil, err
	}

	schedule := entity.SectionSchedule{
		ID:        ULID,
		SectionID: sectionID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	if err := repo.Sections.CreateSchedule(ctx, schedule); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Error("Failed to create schedule")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"schedule_id": ULID,
		"section_id":  sectionID,
		"day_of_week": req.DayOfWeek,
	}).Info("Section schedule created")

	return &course.ScheduleResponse{
		ID:        ULID,
		SectionID: sectionID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}, nil
}

func (s *sectionDomainImpl) RemoveSchedule(ctx context.Context, facultyID string, sectionID string, scheduleID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	section, err := repo.Sections.GetSectionByID(ctx, sectionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"section_id": sectionID,
		}).Warn("Failed to get section")
		return err
	}

	if section.FacultyID != facultyID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"section_id": sectionID,
			"faculty_id": facultyID,
		}).Warn("Faculty does not own section")
		return course.ErrNotSectionOwner
	}

	schedule, err := repo.Sections.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"error":       err.Error(),
			"schedule_id": scheduleID,
		}).Warn("Failed to get schedule")
		return err
	}

	if schedule.SectionID != sectionID {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"schedule_id": scheduleID,
			"section_id":  sectionID,
		}).Warn("Schedule does not belong to section")
		return course.ErrScheduleNotFound
	}

	if err := repo.Sections.DeleteSchedule(ctx, scheduleID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"error":       err.Error(),
			"schedule_id": scheduleID,
		}).Error("Failed to delete schedule")
		return err
	}

	return nil
}

func makeSectionResponse(section entity.CourseSection) course.SectionResponse {
	return course.SectionResponse{
		ID:           section.ID,
		CourseID:     section.CourseID,
		FacultyID:    section.FacultyID,
		AcademicYear: section.AcademicYear,
		Semester:     section.Semester,
		Room:         section.Room,
		Latitude:     section.Latitude,
		Longitude:    section.Longitude,
		RadiusM:      section.RadiusM,
	}
}

func makeScheduleResponses(schedules []entity.SectionSchedule) []course.ScheduleResponse {
	result := make([]course.ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		result = append(result, course.ScheduleResponse{
			ID:        schedule.ID,
			SectionID: schedule.SectionID,
			DayOfWeek: schedule.DayOfWeek,
			StartTime: schedule.StartTime,
			EndTime:   schedule.EndTime,
		})
	}
	return result
}
