package courseRepository

import (
	"Attendify/internal/api/course"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SectionDB struct {
	ID           sql.NullString `db:"id"`
	CourseID     sql.NullString `db:"course_id"`
	FacultyID    sql.NullString `db:"faculty_id"`
	AcademicYear sql.NullString `db:"academic_year"`
	Semester     sql.NullString `db:"semester"`
	Room         sql.NullString `db:"room"`
	Latitude     float64        `db:"latitude"`
	Longitude    float64        `db:"longitude"`
	RadiusM      float64        `db:"radius_m"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type ScheduleDB struct {
	ID        sql.NullString `db:"id"`
	SectionID sql.NullString `db:"section_id"`
	DayOfWeek int            `db:"day_of_week"`
	StartTime sql.NullString `db:"start_time"`
	EndTime   sql.NullString `db:"end_time"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r *sectionRepository) CreateSection(c context.Context, section entity.CourseSection) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":            section.ID,
		"course_id":     section.CourseID,
		"faculty_id":    section.FacultyID,
		"academic_year": section.AcademicYear,
		"semester":      section.Semester,
		"room":          section.Room,
		"latitude":      section.Latitude,
		"longitude":     section.Longitude,
		"radius_m":      section.RadiusM,
		"created_at":    time.Now(),
		"updated_at":    time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateSection, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateSection")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating course section")

		return err
	}

	return nil
}

func (r *sectionRepository) GetSectionByID(c context.Context, id string) (entity.CourseSection, error) {
	requestID := contextPkg.GetRequestID(c)
	var row SectionDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetSectionByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSectionByID named query preparation err")

		return entity.CourseSection{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetSectionByID no rows found")
			return entity.CourseSection{}, course.ErrSectionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSectionByID execution err")
		return entity.CourseSection{}, err
	}

	return r.makeSection(row), nil
}

func (r *sectionRepository) GetSectionsByCourseID(c context.Context, courseID string) ([]entity.CourseSection, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []SectionDB

	argsKV := map[string]interface{}{
		"course_id": courseID,
	}

	query, args, err := sqlx.Named(queryGetSectionsByCourseID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSectionsByCourseID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSectionsByCourseID execution err")
		return nil, err
	}

	result := make([]entity.CourseSection, 0, len(rows))
	for _, row := range rows {
		result = append(result, r.makeSection(row))
	}

	return result, nil
}

func (r *sectionRepository) GetSectionsByFacultyID(c context.Context, facultyID string) ([]entity.CourseSection, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []SectionDB

	argsKV := map[string]interface{}{
		"faculty_id": facultyID,
	}

	query, args, err := sqlx.Named(queryGetSectionsByFacultyID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSectionsByFacultyID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSectionsByFacultyID execution err")
		return nil, err
	}

	result := make([]entity.CourseSection, 0, len(rows))
	for _, row := range rows {
		result = append(result, r.makeSection(row))
	}

	return result, nil
}

func (r *sectionRepository) UpdateSection(c context.Context, section entity.CourseSection) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":            section.ID,
		"academic_year": section.AcademicYear,
		"semester":      section.Semester,
		"room":          section.Room,
		"latitude":      section.Latitude,
		"longitude":     section.Longitude,
		"radius_m":      section.RadiusM,
		"updated_at":    time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateSection, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSection named query preparation err")

		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSection execution err")

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSection rows affected err")

		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("UpdateSection no rows affected")

		return course.ErrSectionNotFound
	}

	return nil
}

func (r *sectionRepository) DeleteSection(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteSection, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteSection named query preparation err")

		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteSection execution err")

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteSection rows affected err")

		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("DeleteSection no rows affected")

		return course.ErrSectionNotFound
	}

	return nil
}

func (r *sectionRepository) CreateSchedule(c context.Context, schedule entity.SectionSchedule) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":          schedule.ID,
		"section_id":  schedule.SectionID,
		"day_of_week": schedule.DayOfWeek,
		"start_time":  schedule.StartTime,
		"end_time":    schedule.EndTime,
		"created_at":  time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateSchedule, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateSchedule")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating section schedule")

		return err
	}

	return nil
}

func (r *sectionRepository) GetScheduleByID(c context.Context, id string) (entity.SectionSchedule, error) {
	requestID := contextPkg.GetRequestID(c)
	var row ScheduleDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetScheduleByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScheduleByID named query preparation err")

		return entity.SectionSchedule{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetScheduleByID no rows found")
			return entity.SectionSchedule{}, course.ErrScheduleNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScheduleByID execution err")
		return entity.SectionSchedule{}, err
	}

	return r.makeSchedule(row), nil
}

func (r *sectionRepository) GetSchedulesBySectionID(c context.Context, sectionID string) ([]entity.SectionSchedule, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []ScheduleDB

	argsKV := map[string]interface{}{
		"section_id": sectionID,
	}

	query, args, err := sqlx.Named(queryGetSchedulesBySectionID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSchedulesBySectionID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSchedulesBySectionID execution err")
		return nil, err
	}

	result := make([]entity.SectionSchedule, 0, len(rows))
	for _, row := range rows {
		result = append(result, r.makeSchedule(row))
	}

	return result, nil
}

func (r *sectionRepository) DeleteSchedule(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteSchedule, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteSchedule named query preparation err")

		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteSchedule execution err")

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteSchedule rows affected err")

		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("DeleteSchedule no rows affected")

		return course.ErrScheduleNotFound
	}

	return nil
}

func (r *sectionRepository) makeSection(row SectionDB) entity.CourseSection {
	return entity.CourseSection{
		ID:           row.ID.String,
		CourseID:     row.CourseID.String,
		FacultyID:    row.FacultyID.String,
		AcademicYear: row.AcademicYear.String,
		Semester:     row.Semester.String,
		Room:         row.Room.String,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		RadiusM:      row.RadiusM,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (r *sectionRepository) makeSchedule(row ScheduleDB) entity.SectionSchedule {
	return entity.SectionSchedule{
		ID:        row.ID.String,
		SectionID: row.SectionID.String,
		DayOfWeek: row.DayOfWeek,
		StartTime: row.StartTime.String,
		EndTime:   row.EndTime.String,
		CreatedAt: row.CreatedAt,
	}
}
