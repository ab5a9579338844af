package courseService

import (
	"Attendify/internal/api/course"
	courseRepository "Attendify/internal/api/course/repository"
	"Attendify/pkg/utils"
	"context"

	"github.com/sirupsen/logrus"
)

type CourseService interface {
	Course() CourseDomain
	Section() SectionDomain
	Enrollment() EnrollmentDomain
	GetRepository() courseRepository.Repository
}

type CourseDomain interface {
	CreateCourse(c context.Context, facultyID string, req course.CreateCourseRequest) (*course.CourseResponse, error)
	GetCourses(c context.Context, limit int, offset int) ([]course.CourseResponse, error)
	GetCourseByID(c context.Context, id string) (*course.CourseResponse, error)
	UpdateCourse(c context.Context, id string, req course.UpdateCourseRequest) error
	DeleteCourse(c context.Context, id string) error
}

type SectionDomain interface {
	CreateSection(c context.Context, facultyID string, req course.CreateSectionRequest) (*course.SectionResponse, error)
	GetSectionByID(c context.Context, id string) (*course.SectionResponse, error)
	GetSectionsByCourseID(c context.Context, courseID string) ([]course.SectionResponse, error)
	GetMySections(c context.Context, facultyID string) ([]course.SectionResponse, error)
	UpdateSection(c context.Context, facultyID string, id string, req course.UpdateSectionRequest) error
	DeleteSection(c context.Context, facultyID string, id string) error
	AddSchedule(c context.Context, facultyID string, sectionID string, req course.CreateScheduleRequest) (*course.ScheduleResponse, error)
	RemoveSchedule(c context.Context, facultyID string, sectionID string, scheduleID string) error
}

type EnrollmentDomain interface {
	RequestEnrollment(c context.Context, studentID string, sectionID string) (*course.EnrollmentResponse, error)
	GetMyEnrollments(c context.Context, studentID string) ([]course.StudentEnrollment, error)
	GetRoster(c context.Context, facultyID string, sectionID string) ([]course.RosterEntry, error)
	DecideEnrollment(c context.Context, facultyID string, enrollmentID string, req course.DecideEnrollmentRequest) error
}

type courseService struct {
	log              *logrus.Logger
	courseRepository courseRepository.Repository
	utils            utils.IUtils

	courseDomain     CourseDomain
	sectionDomain    SectionDomain
	enrollmentDomain EnrollmentDomain
}

func (s *courseService) Course() CourseDomain {
	return s.courseDomain
}

func (s *courseService) Section() SectionDomain {
	return s.sectionDomain
}

func (s *courseService) Enrollment() EnrollmentDomain {
	return s.enrollmentDomain
}

func (s *courseService) GetRepository() courseRepository.Repository {
	return s.courseRepository
}

type courseDomainImpl struct {
	log   *logrus.Logger
	repo  courseRepository.Repository
	utils utils.IUtils
}

type sectionDomainImpl struct {
	log   *logrus.Logger
	repo  courseRepository.Repository
	utils utils.IUtils
}

type enrollmentDomainImpl struct {
	log   *logrus.Logger
	repo  courseRepository.Repository
	utils utils.IUtils
}

func New(log *logrus.Logger,
	courseRepo courseRepository.Repository,
	utils utils.IUtils,
) CourseService {
	return &courseService{
		log:              log,
		courseRepository: courseRepo,
		utils:            utils,

		courseDomain:     &courseDomainImpl{log: log, repo: courseRepo, utils: utils},
		sectionDomain:    &sectionDomainImpl{log: log, repo: courseRepo, utils: utils},
		enrollmentDomain: &enrollmentDomainImpl{log: log, repo: courseRepo, utils: utils},
	}
}
