package courseRepository

import (
	"Attendify/internal/api/course"
	"Attendify/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Courses:     &courseRepository{q: sqlExecutor, log: r.log},
		Sections:    &sectionRepository{q: sqlExecutor, log: r.log},
		Enrollments: &enrollmentRepository{q: sqlExecutor, log: r.log},
		Commit:      commitFunc,
		Rollback:    rollbackFunc,
	}, nil
}

type Client struct {
	Courses interface {
		CreateCourse(c context.Context, course entity.Course) error
		GetCourseByID(c context.Context, id string) (entity.Course, error)
		GetCourses(c context.Context, limit int, offset int) ([]entity.Course, error)
		UpdateCourse(c context.Context, course entity.Course) error
		DeleteCourse(c context.Context, id string) error
	}

	Sections interface {
		CreateSection(c context.Context, section entity.CourseSection) error
		GetSectionByID(c context.Context, id string) (entity.CourseSection, error)
		GetSectionsByCourseID(c context.Context, courseID string) ([]entity.CourseSection, error)
		GetSectionsByFacultyID(c context.Context, facultyID string) ([]entity.CourseSection, error)
		UpdateSection(c context.Context, section entity.CourseSection) error
		DeleteSection(c context.Context, id string) error
		CreateSchedule(c context.Context, schedule entity.SectionSchedule) error
		GetScheduleByID(c context.Context, id string) (entity.SectionSchedule, error)
		GetSchedulesBySectionID(c context.Context, sectionID string) ([]entity.SectionSchedule, error)
		DeleteSchedule(c context.Context, id string) error
	}

	Enrollments interface {
		CreateEnrollment(c context.Context, enrollment entity.SectionEnrollment) error
		GetEnrollmentByID(c context.Context, id string) (entity.SectionEnrollment, error)
		GetEnrollmentBySectionAndStudent(c context.Context, sectionID string, studentID string) (entity.SectionEnrollment, error)
		GetEnrollmentsByStudentID(c context.Context, studentID string) ([]course.StudentEnrollment, error)
		GetRosterBySectionID(c context.Context, sectionID string) ([]course.RosterEntry, error)
		UpdateEnrollmentStatus(c context.Context, enrollment entity.SectionEnrollment) error
	}

	Commit   func() error
	Rollback func() error
}

type courseRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type sectionRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type enrollmentRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
