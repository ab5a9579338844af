package attendanceRepository

import (
	"Attendify/internal/api/attendance"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type RecordDB struct {
	ID           sql.NullString `db:"id"`
	SectionID    sql.NullString `db:"section_id"`
	StudentID    sql.NullString `db:"student_id"`
	ScheduleID   sql.NullString `db:"schedule_id"`
	Status       sql.NullString `db:"status"`
	SnapshotURL  sql.NullString `db:"snapshot_url"`
	Latitude     float64        `db:"latitude"`
	Longitude    float64        `db:"longitude"`
	DistanceM    float64        `db:"distance_m"`
	Confidence   float64        `db:"confidence"`
	OverriddenBy sql.NullString `db:"overridden_by"`
	OverrideNote sql.NullString `db:"override_note"`
	SubmittedAt  time.Time      `db:"submitted_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type TodayDB struct {
	SectionID   sql.NullString `db:"section_id"`
	CourseCode  sql.NullString `db:"course_code"`
	CourseName  sql.NullString `db:"course_name"`
	ScheduleID  sql.NullString `db:"schedule_id"`
	StartTime   sql.NullString `db:"start_time"`
	EndTime     sql.NullString `db:"end_time"`
	RecordID    sql.NullString `db:"record_id"`
	Status      sql.NullString `db:"status"`
	SubmittedAt sql.NullTime   `db:"submitted_at"`
}

func (r *recordRepository) CreateRecord(c context.Context, record entity.AttendanceRecord) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":           record.ID,
		"section_id":   record.SectionID,
		"student_id":   record.StudentID,
		"schedule_id":  record.ScheduleID,
		"status":       record.Status,
		"snapshot_url": record.SnapshotURL,
		"latitude":     record.Latitude,
		"longitude":    record.Longitude,
		"distance_m":   record.DistanceM,
		"confidence":   record.Confidence,
		"submitted_at": record.SubmittedAt,
		"created_at":   time.Now(),
		"updated_at":   time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateRecord")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating attendance record")

		return err
	}

	return nil
}

func (r *recordRepository) GetRecordByID(c context.Context, id string) (entity.AttendanceRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var row RecordDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetRecordByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordByID named query preparation err")

		return entity.AttendanceRecord{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetRecordByID no rows found")
			return entity.AttendanceRecord{}, attendance.ErrRecordNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordByID execution err")
		return entity.AttendanceRecord{}, err
	}

	return r.makeRecord(row), nil
}

func (r *recordRepository) GetRecordInWindow(c context.Context, sectionID string, studentID string, from time.Time, to time.Time) (entity.AttendanceRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var row RecordDB

	argsKV := map[string]interface{}{
		"section_id": sectionID,
		"student_id": studentID,
		"from":       from,
		"to":         to,
	}

	query, args, err := sqlx.Named(queryGetRecordInWindow, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordInWindow named query preparation err")

		return entity.AttendanceRecord{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.AttendanceRecord{}, attendance.ErrRecordNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordInWindow execution err")
		return entity.AttendanceRecord{}, err
	}

	return r.makeRecord(row), nil
}

func (r *recordRepository) GetHistoryByStudentID(c context.Context, studentID string) ([]attendance.HistoryEntry, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []attendance.HistoryEntry

	argsKV := map[string]interface{}{
		"student_id": studentID,
	}

	query, args, err := sqlx.Named(queryGetHistoryByStudentID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetHistoryByStudentID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetHistoryByStudentID execution err")
		return nil, err
	}

	return rows, nil
}

func (r *recordRepository) GetHistoryByStudentIDInRange(c context.Context, studentID string, from time.Time, to time.Time) ([]attendance.HistoryEntry, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []attendance.HistoryEntry

	argsKV := map[string]interface{}{
		"student_id": studentID,
		"from":       from,
		"to":         to,
	}

	query, args, err := sqlx.Named(queryGetHistoryByStudentIDInRange, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetHistoryByStudentIDInRange named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetHistoryByStudentIDInRange execution err")
		return nil, err
	}

	return rows, nil
}

func (r *recordRepository) GetRecapBySectionID(c context.Context, sectionID string) ([]attendance.RecapEntry, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []attendance.RecapEntry

	argsKV := map[string]interface{}{
		"section_id": sectionID,
	}

	query, args, err := sqlx.Named(queryGetRecapBySectionID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecapBySectionID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecapBySectionID execution err")
		return nil, err
	}

	return rows, nil
}

func (r *recordRepository) GetTodayForStudent(c context.Context, studentID string, dayOfWeek int, dayStart time.Time, dayEnd time.Time) ([]TodayRow, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []TodayDB

	argsKV := map[string]interface{}{
		"student_id":  studentID,
		"day_of_week": dayOfWeek,
		"day_start":   dayStart,
		"day_end":     dayEnd,
	}

	query, args, err := sqlx.Named(queryGetTodayForStudent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTodayForStudent named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTodayForStudent execution err")
		return nil, err
	}

	result := make([]TodayRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, TodayRow{
			SectionID:   row.SectionID.String,
			CourseCode:  row.CourseCode.String,
			CourseName:  row.CourseName.String,
			ScheduleID:  row.ScheduleID.String,
			StartTime:   row.StartTime.String,
			EndTime:     row.EndTime.String,
			RecordID:    row.RecordID.String,
			Status:      row.Status.String,
			SubmittedAt: row.SubmittedAt.Time,
		})
	}

	return result, nil
}

func (r *recordRepository) UpdateRecordStatus(c context.Context, record entity.AttendanceRecord) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":            record.ID,
		"status":        record.Status,
		"overridden_by": record.OverriddenBy,
		"override_note": record.OverrideNote,
		"updated_at":    time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateRecordStatus, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateRecordStatus named query preparation err")

		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateRecordStatus execution err")

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateRecordStatus rows affected err")

		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("UpdateRecordStatus no rows affected")

		return attendance.ErrRecordNotFound
	}

	return nil
}

func (r *recordRepository) makeRecord(row RecordDB) entity.AttendanceRecord {
	return entity.AttendanceRecord{
		ID:           row.ID.String,
		SectionID:    row.SectionID.String,
		StudentID:    row.StudentID.String,
		ScheduleID:   row.ScheduleID.String,
		Status:       row.Status.String,
		SnapshotURL:  row.SnapshotURL.String,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		DistanceM:    row.DistanceM,
		Confidence:   row.Confidence,
		OverriddenBy: row.OverriddenBy.String,
		OverrideNote: row.OverrideNote.String,
		SubmittedAt:  row.SubmittedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
