package verificationRepository

const (
	queryInsertAudit = `
		INSERT INTO verification_audits (
			id,
			user_id,
			section_id,
			accepted,
			confidence,
			failure_reason,
			match_strategy,
			spoof_signals,
			duration_ms,
			created_at
		) VALUES (
			:id,
			:user_id,
			:section_id,
			:accepted,
			:confidence,
			:failure_reason,
			:match_strategy,
			:spoof_signals,
			:duration_ms,
			:created_at
		)
	`

	queryGetAuditsByUserID = `
		SELECT
			id,
			user_id,
			section_id,
			accepted,
			confidence,
			failure_reason,
			match_strategy,
			spoof_signals,
			duration_ms,
			created_at
		FROM verification_audits
		WHERE user_id = :user_id
		ORDER BY created_at DESC
		LIMIT :limit
	`
)
