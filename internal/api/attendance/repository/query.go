package attendanceRepository

const (
	queryCreateRecord = `
		INSERT INTO attendance_records (
			id,
			section_id,
			student_id,
			schedule_id,
			status,
			snapshot_url,
			latitude,
			longitude,
			distance_m,
			confidence,
			submitted_at,
			created_at,
			updated_at
		) VALUES (
			:id,
			:section_id,
			:student_id,
			:schedule_id,
			:status,
			:snapshot_url,
			:latitude,
			:longitude,
			:distance_m,
			:confidence,
			:submitted_at,
			:created_at,
			:updated_at
		)
	`

	queryGetRecordByID = `
		SELECT
			id,
			section_id,
			student_id,
			schedule_id,
			status,
			snapshot_url,
			latitude,
			longitude,
			distance_m,
			confidence,
			overridden_by,
			override_note,
			submitted_at,
			created_at,
			updated_at
		FROM attendance_records
		WHERE id = :id
	`

	queryGetRecordInWindow = `
		SELECT
			id,
			section_id,
			student_id,
			schedule_id,
			status,
			snapshot_url,
			latitude,
			longitude,
			distance_m,
			confidence,
			overridden_by,
			override_note,
			submitted_at,
			created_at,
			updated_at
		FROM attendance_records
		WHERE
			section_id = :section_id
			AND student_id = :student_id
			AND submitted_at >= :from
			AND submitted_at < :to
		ORDER BY submitted_at DESC
		LIMIT 1
	`

	queryGetHistoryByStudentID = `
		SELECT
			ar.id,
			ar.section_id,
			c.code AS course_code,
			c.name AS course_name,
			ar.status,
			ar.confidence,
			ar.distance_m,
			ar.submitted_at
		FROM attendance_records ar
		JOIN course_sections cs ON cs.id = ar.section_id
		JOIN courses c ON c.id = cs.course_id
		WHERE ar.student_id = :student_id
		ORDER BY ar.submitted_at DESC
	`

	queryGetHistoryByStudentIDInRange = `
		SELECT
			ar.id,
			ar.section_id,
			c.code AS course_code,
			c.name AS course_name,
			ar.status,
			ar.confidence,
			ar.distance_m,
			ar.submitted_at
		FROM attendance_records ar
		JOIN course_sections cs ON cs.id = ar.section_id
		JOIN courses c ON c.id = cs.course_id
		WHERE
			ar.student_id = :student_id
			AND ar.submitted_at >= :from
			AND ar.submitted_at < :to
		ORDER BY ar.submitted_at DESC
	`

	queryGetRecapBySectionID = `
		SELECT
			u.id AS student_id,
			u.name AS student_name,
			u.student_number,
			COUNT(ar.id) FILTER (WHERE ar.status = 'present') AS present_count,
			COUNT(ar.id) FILTER (WHERE ar.status = 'late') AS late_count,
			COUNT(ar.id) FILTER (WHERE ar.status = 'excused') AS excused_count,
			COUNT(ar.id) FILTER (WHERE ar.status = 'absent') AS absent_count
		FROM section_enrollments se
		JOIN users u ON u.id = se.student_id
		LEFT JOIN attendance_records ar
			ON ar.section_id = se.section_id
			AND ar.student_id = se.student_id
		WHERE
			se.section_id = :section_id
			AND se.status = 'enrolled'
		GROUP BY u.id, u.name, u.student_number
		ORDER BY u.name ASC
	`

	queryGetTodayForStudent = `
		SELECT
			cs.id AS section_id,
			c.code AS course_code,
			c.name AS course_name,
			ss.id AS schedule_id,
			ss.start_time,
			ss.end_time,
			ar.id AS record_id,
			ar.status,
			ar.submitted_at
		FROM section_enrollments se
		JOIN course_sections cs ON cs.id = se.section_id
		JOIN courses c ON c.id = cs.course_id
		JOIN section_schedules ss
			ON ss.section_id = cs.id
			AND ss.day_of_week = :day_of_week
		LEFT JOIN attendance_records ar
			ON ar.section_id = cs.id
			AND ar.student_id = se.student_id
			AND ar.submitted_at >= :day_start
			AND ar.submitted_at < :day_end
		WHERE
			se.student_id = :student_id
			AND se.status = 'enrolled'
		ORDER BY ss.start_time ASC
	`

	queryUpdateRecordStatus = `
		UPDATE attendance_records
		SET
			status = :status,
			overridden_by = :overridden_by,
			override_note = :override_note,
			updated_at = :updated_at
		WHERE id = :id
	`
)
