package attendanceRepository

import (
	"Attendify/internal/api/attendance"
	"Attendify/internal/entity"
	"time"

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
		Records:  &recordRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Records interface {
		CreateRecord(c context.Context, record entity.AttendanceRecord) error
		GetRecordByID(c context.Context, id string) (entity.AttendanceRecord, error)
		GetRecordInWindow(c context.Context, sectionID string, studentID string, from time.Time, to time.Time) (entity.AttendanceRecord, error)
		GetHistoryByStudentID(c context.Context, studentID string) ([]attendance.HistoryEntry, error)
		GetHistoryByStudentIDInRange(c context.Context, studentID string, from time.Time, to time.Time) ([]attendance.HistoryEntry, error)
		GetRecapBySectionID(c context.Context, sectionID string) ([]attendance.RecapEntry, error)
		GetTodayForStudent(c context.Context, studentID string, dayOfWeek int, dayStart time.Time, dayEnd time.Time) ([]TodayRow, error)
		UpdateRecordStatus(c context.Context, record entity.AttendanceRecord) error
	}

	Commit   func() error
	Rollback func() error
}

type recordRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

// TodayRow is one enrolled section with a schedule on the requested weekday,
// joined with the day's attendance record when one exists.
type TodayRow struct {
	SectionID   string
	CourseCode  string
	CourseName  string
	ScheduleID  string
	StartTime   string
	EndTime     string
	RecordID    string
	Status      string
	SubmittedAt time.Time
}
