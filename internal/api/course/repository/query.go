package courseRepository

const (
	queryCreateCourse = `
		INSERT INTO courses (
			id,
			code,
			name,
			created_by,
			created_at,
			updated_at
		) VALUES (
			:id,
			:code,
			:name,
			:created_by,
			:created_at,
			:updated_at
		)
	`

	queryGetCourseByID = `
		SELECT
			id,
			code,
			name,
			created_by,
			created_at,
			updated_at
		FROM courses
		WHERE id = :id
	`

	queryGetCourses = `
		SELECT
			id,
			code,
			name,
			created_by,
			created_at,
			updated_at
		FROM courses
		ORDER BY code ASC
		LIMIT :limit OFFSET :offset
	`

	queryUpdateCourse = `
		UPDATE courses
		SET
			code = :code,
			name = :name,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryDeleteCourse = `
		DELETE FROM courses
		WHERE id = :id
	`

	queryCreateSection = `
		INSERT INTO course_sections (
			id,
			course_id,
			faculty_id,
			academic_year,
			semester,
			room,
			latitude,
			longitude,
			radius_m,
			created_at,
			updated_at
		) VALUES (
			:id,
			:course_id,
			:faculty_id,
			:academic_year,
			:semester,
			:room,
			:latitude,
			:longitude,
			:radius_m,
			:created_at,
			:updated_at
		)
	`

	queryGetSectionByID = `
		SELECT
			id,
			course_id,
			faculty_id,
			academic_year,
			semester,
			room,
			latitude,
			longitude,
			radius_m,
			created_at,
			updated_at
		FROM course_sections
		WHERE id = :id
	`

	queryGetSectionsByCourseID = `
		SELECT
			id,
			course_id,
			faculty_id,
			academic_year,
			semester,
			room,
			latitude,
			longitude,
			radius_m,
			created_at,
			updated_at
		FROM course_sections
		WHERE course_id = :course_id
		ORDER BY academic_year DESC, semester ASC
	`

	queryGetSectionsByFacultyID = `
		SELECT
			id,
			course_id,
			faculty_id,
			academic_year,
			semester,
			room,
			latitude,
			longitude,
			radius_m,
			created_at,
			updated_at
		FROM course_sections
		WHERE faculty_id = :faculty_id
		ORDER BY academic_year DESC, semester ASC
	`

	queryUpdateSection = `
		UPDATE course_sections
		SET
			academic_year = :academic_year,
			semester = :semester,
			room = :room,
			latitude = :latitude,
			longitude = :longitude,
			radius_m = :radius_m,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryDeleteSection = `
		DELETE FROM course_sections
		WHERE id = :id
	`

	queryCreateSchedule = `
		INSERT INTO section_schedules (
			id,
			section_id,
			day_of_week,
			start_time,
			end_time,
			created_at
		) VALUES (
			:id,
			:section_id,
			:day_of_week,
			:start_time,
			:end_time,
			:created_at
		)
	`

	queryGetScheduleByID = `
		SELECT
			id,
			section_id,
			day_of_week,
			start_time,
			end_time,
			created_at
		FROM section_schedules
		WHERE id = :id
	`

	queryGetSchedulesBySectionID = `
		SELECT
			id,
			section_id,
			day_of_week,
			start_time,
			end_time,
			created_at
		FROM section_schedules
		WHERE section_id = :section_id
		ORDER BY day_of_week ASC, start_time ASC
	`

	queryDeleteSchedule = `
		DELETE FROM section_schedules
		WHERE id = :id
	`

	queryCreateEnrollment = `
		INSERT INTO section_enrollments (
			id,
			section_id,
			student_id,
			status,
			created_at,
			updated_at
		) VALUES (
			:id,
			:section_id,
			:student_id,
			:status,
			:created_at,
			:updated_at
		)
	`

	queryGetEnrollmentByID = `
		SELECT
			id,
			section_id,
			student_id,
			status,
			decided_by,
			created_at,
			updated_at
		FROM section_enrollments
		WHERE id = :id
	`

	queryGetEnrollmentBySectionAndStudent = `
		SELECT
			id,
			section_id,
			student_id,
			status,
			decided_by,
			created_at,
			updated_at
		FROM section_enrollments
		WHERE
			section_id = :section_id
			AND student_id = :student_id
	`

	queryGetEnrollmentsByStudentID = `
		SELECT
			se.id,
			se.section_id,
			se.status,
			c.code AS course_code,
			c.name AS course_name,
			cs.academic_year,
			cs.semester,
			se.created_at AS requested_at
		FROM section_enrollments se
		JOIN course_sections cs ON cs.id = se.section_id
		JOIN courses c ON c.id = cs.course_id
		WHERE se.student_id = :student_id
		ORDER BY se.created_at DESC
	`

	queryGetRosterBySectionID = `
		SELECT
			se.id AS enrollment_id,
			se.student_id,
			u.name AS student_name,
			u.student_number,
			se.status,
			se.created_at AS requested_at
		FROM section_enrollments se
		JOIN users u ON u.id = se.student_id
		WHERE se.section_id = :section_id
		ORDER BY u.name ASC
	`

	queryUpdateEnrollmentStatus = `
		UPDATE section_enrollments
		SET
			status = :status,
			decided_by = :decided_by,
			updated_at = :updated_at
		WHERE id = :id
	`
)
