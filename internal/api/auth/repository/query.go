package authRepository

const (
	queryCreateUser = `
INSERT INTO Users (id, email, name, student_number, birth_date, password, phone_number, role, created_at)
VALUES (:id, :email, :name, :student_number, :birth_date, :password, :phone_number, :role, :created_at)`

	queryGetById = `
SELECT id, email, name, student_number, birth_date, password, phone_number, role,
       enable_touch_id, hash_touch_id, profile_photo_url, face_photo_url,
       is_verified, created_at, updated_at
FROM Users
    WHERE id = :id`

	queryGetByEmail = `
SELECT id, email, name, student_number, birth_date, password, phone_number, role,
       enable_touch_id, hash_touch_id, profile_photo_url, face_photo_url,
       is_verified, created_at, updated_at
FROM Users
    WHERE email = :email`

	queryGetByPhoneNumber = `
SELECT id, email, name, student_number, birth_date, password, phone_number, role,
       enable_touch_id, hash_touch_id, profile_photo_url, face_photo_url,
       is_verified, created_at, updated_at
FROM Users
    WHERE phone_number = :phone_number`

	queryUpdateUser = `
UPDATE Users
SET name = :name,
    birth_date = :birth_date,
    phone_number = :phone_number,
    email = :email,
    is_verified = :is_verified,
    updated_at = :updated_at
WHERE id = :id`

	queryDeleteUser = `
DELETE FROM Users
WHERE id = :id`

	queryUpdateUserPassword = `
		UPDATE Users
SET password = :password
WHERE id = :id`

	queryUpdateEnableTouchID = `
		UPDATE Users
SET enable_touch_id = :enable_touch_id, hash_touch_id = :hash_touch_id
	WHERE id = :id`

	queryUpdateUserVerification = `
		UPDATE Users
SET is_verified = :is_verified, updated_at = :updated_at
WHERE email = :email`

	queryUpdateProfilePhoto = `
		UPDATE Users
		SET profile_photo_url = :profile_photo_url,
			updated_at = :updated_at
		WHERE id = :id`

	queryUpdateFacePhoto = `
		UPDATE Users
		SET face_photo_url = :face_photo_url,
			updated_at = :updated_at
		WHERE id = :id`
)
