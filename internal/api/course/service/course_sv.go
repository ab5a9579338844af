package courseService

import (
	"Attendify/internal/api/course"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *courseDomainImpl) CreateCourse(ctx context.Context, facultyID string, req course.CreateCourseRequest) (*course.CourseResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
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

	newCourse := entity.Course{
		ID:        ULID,
		Code:      req.Code,
		Name:      req.Name,
		CreatedBy: facultyID,
	}

	if err := repo.Courses.CreateCourse(ctx, newCourse); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       req.Code,
		}).Error("Failed to create course")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"course_id":  ULID,
		"code":       req.Code,
	}).Info("Course created")

	now := time.Now().Format(time.RFC3339)

	return &course.CourseResponse{
		ID:        ULID,
		Code:      req.Code,
		Name:      req.Name,
		CreatedBy: facultyID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *courseDomainImpl) GetCourses(ctx context.Context, limit int, offset int) ([]course.CourseResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	courses, err := repo.Courses.GetCourses(ctx, limit, offset)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get courses")
		return nil, err
	}

	result := make([]course.CourseResponse, 0, len(courses))
	for _, item := range courses {
		result = append(result, makeCourseResponse(item))
	}

	return result, nil
}

func (s *courseDomainImpl) GetCourseByID(ctx context.Context, id string) (*course.CourseResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	item, err := repo.Courses.GetCourseByID(ctx, id)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"course_id":  id,
		}).Warn("Failed to get course")
		return nil, err
	}

	resp := makeCourseResponse(item)

	return &resp, nil
}

func (s *courseDomainImpl) UpdateCourse(ctx context.Context, id string, req course.UpdateCourseRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	updated := entity.Course{
		ID:   id,
		Code: req.Code,
		Name: req.Name,
	}

	if err := repo.Courses.UpdateCourse(ctx, updated); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"course_id":  id,
		}).Error("Failed to update course")
		return err
	}

	return nil
}

func (s *courseDomainImpl) DeleteCourse(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	if err := repo.Courses.DeleteCourse(ctx, id); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"course_id":  id,
		}).Error("Failed to delete course")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"course_id":  id,
	}).Info("Course deleted")

	return nil
}

func makeCourseResponse(item entity.Course) course.CourseResponse {
	return course.CourseResponse{
		ID:        item.ID,
		Code:      item.Code,
		Name:      item.Name,
		CreatedBy: item.CreatedBy,
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
	}
}
