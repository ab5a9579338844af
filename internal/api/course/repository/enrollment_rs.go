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
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type EnrollmentDB struct {
	ID        sql.NullString `db:"id"`
	SectionID sql.NullString `db:"section_id"`
	StudentID sql.NullString `db:"student_id"`
	Status    sql.NullString `db:"status"`
	DecidedBy sql.NullString `db:"decided_by"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *enrollmentRepository) CreateEnrollment(c context.Context, enrollment entity.SectionEnrollment) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         enrollment.ID,
		"section_id": enrollment.SectionID,
		"student_id": enrollment.StudentID,
		"status":     enrollment.Status,
		"created_at": time.Now(),
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateEnrollment, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateEnrollment")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "section_enrollments_section_id_student_id_key" {
					r.log.WithFields(logrus.Fields{
						"request_id": requestID,
						"error":      err.Error(),
					}).Warn("Enrollment already exists for section and student")
					return course.ErrAlreadyEnrolled
				}
			}
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating enrollment")

		return err
	}

	return nil
}

func (r *enrollmentRepository) GetEnrollmentByID(c context.Context, id string) (entity.SectionEnrollment, error) {
	requestID := contextPkg.GetRequestID(c)
	var row EnrollmentDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetEnrollmentByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEnrollmentByID named query preparation err")

		return entity.SectionEnrollment{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetEnrollmentByID no rows found")
			return entity.SectionEnrollment{}, course.ErrEnrollmentNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEnrollmentByID execution err")
		return entity.SectionEnrollment{}, err
	}

	return r.makeEnrollment(row), nil
}

func (r *enrollmentRepository) GetEnrollmentBySectionAndStudent(c context.Context, sectionID string, studentID string) (entity.SectionEnrollment, error) {
	requestID := contextPkg.GetRequestID(c)
	var row EnrollmentDB

	argsKV := map[string]interface{}{
		"section_id": sectionID,
		"student_id": studentID,
	}

	query, args, err := sqlx.Named(queryGetEnrollmentBySectionAndStudent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEnrollmentBySectionAndStudent named query preparation err")

		return entity.SectionEnrollment{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetEnrollmentBySectionAndStudent no rows found")
			return entity.SectionEnrollment{}, course.ErrEnrollmentNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEnrollmentBySectionAndStudent execution err")
		return entity.SectionEnrollment{}, err
	}

	return r.makeEnrollment(row), nil
}

func (r *enrollmentRepository) GetEnrollmentsByStudentID(c context.Context, studentID string) ([]course.StudentEnrollment, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []course.StudentEnrollment

	argsKV := map[string]interface{}{
		"student_id": studentID,
	}

	query, args, err := sqlx.Named(queryGetEnrollmentsByStudentID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEnrollmentsByStudentID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEnrollmentsByStudentID execution err")
		return nil, err
	}

	return rows, nil
}

func (r *enrollmentRepository) GetRosterBySectionID(c context.Context, sectionID string) ([]course.RosterEntry, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []course.RosterEntry

	argsKV := map[string]interface{}{
		"section_id": sectionID,
	}

	query, args, err := sqlx.Named(queryGetRosterBySectionID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRosterBySectionID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRosterBySectionID execution err")
		return nil, err
	}

	return rows, nil
}

func (r *enrollmentRepository) UpdateEnrollmentStatus(c context.Context, enrollment entity.SectionEnrollment) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         enrollment.ID,
		"status":     enrollment.Status,
		"decided_by": enrollment.DecidedBy,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateEnrollmentStatus, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateEnrollmentStatus named query preparation err")

		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateEnrollmentStatus execution err")

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateEnrollmentStatus rows affected err")

		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("UpdateEnrollmentStatus no rows affected")

		return course.ErrEnrollmentNotFound
	}

	return nil
}

func (r *enrollmentRepository) makeEnrollment(row EnrollmentDB) entity.SectionEnrollment {
	return entity.SectionEnrollment{
		ID:        row.ID.String,
		SectionID: row.SectionID.String,
		StudentID: row.StudentID.String,
		Status:    row.Status.String,
		DecidedBy: row.DecidedBy.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
