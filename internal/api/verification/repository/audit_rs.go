package verificationRepository

import (
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type AuditDB struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	SectionID     sql.NullString `db:"section_id"`
	Accepted      bool           `db:"accepted"`
	Confidence    float64        `db:"confidence"`
	FailureReason sql.NullString `db:"failure_reason"`
	MatchStrategy sql.NullString `db:"match_strategy"`
	SpoofSignals  sql.NullString `db:"spoof_signals"`
	DurationMs    int64          `db:"duration_ms"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r *auditRepository) InsertAudit(c context.Context, audit entity.VerificationAudit) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":             audit.ID,
		"user_id":        audit.UserID,
		"section_id":     sql.NullString{String: audit.SectionID, Valid: audit.SectionID != ""},
		"accepted":       audit.Accepted,
		"confidence":     audit.Confidence,
		"failure_reason": sql.NullString{String: audit.FailureReason, Valid: audit.FailureReason != ""},
		"match_strategy": sql.NullString{String: audit.MatchStrategy, Valid: audit.MatchStrategy != ""},
		"spoof_signals":  sql.NullString{String: audit.SpoofSignals, Valid: audit.SpoofSignals != ""},
		"duration_ms":    audit.DurationMs,
		"created_at":     time.Now(),
	}

	query, args, err := sqlx.Named(queryInsertAudit, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("InsertAudit named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when inserting verification audit")

		return err
	}

	return nil
}

func (r *auditRepository) GetAuditsByUserID(c context.Context, userID string, limit int) ([]entity.VerificationAudit, error) {
	requestID := contextPkg.GetRequestID(c)
	var audits []AuditDB

	argsKV := map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	}

	query, args, err := sqlx.Named(queryGetAuditsByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAuditsByUserID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &audits, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAuditsByUserID execution err")
		return nil, err
	}

	result := make([]entity.VerificationAudit, 0, len(audits))
	for _, audit := range audits {
		result = append(result, r.makeAudit(audit))
	}

	return result, nil
}

func (r *auditRepository) makeAudit(db AuditDB) entity.VerificationAudit {
	return entity.VerificationAudit{
		ID:            db.ID,
		UserID:        db.UserID,
		SectionID:     db.SectionID.String,
		Accepted:      db.Accepted,
		Confidence:    db.Confidence,
		FailureReason: db.FailureReason.String,
		MatchStrategy: db.MatchStrategy.String,
		SpoofSignals:  db.SpoofSignals.String,
		DurationMs:    db.DurationMs,
		CreatedAt:     db.CreatedAt,
	}
}
