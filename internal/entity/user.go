package entity

import "time"

type User struct {
	ID              string    `db:"id"`
	Email           string    `db:"email"`
	Name            string    `db:"name"`
	StudentNumber   string    `db:"student_number"`
	BirthDate       time.Time `db:"birth_date"`
	Password        string    `db:"password"`
	PhoneNumber     string    `db:"phone_number"`
	Role            string    `db:"role"`
	EnableTouchID   bool      `db:"enable_touch_id"`
	HashTouchID     string    `db:"hash_touch_id"`
	ProfilePhotoURL string    `db:"profile_photo_url"`
	FacePhotoURL    string    `db:"face_photo_url"`
	IsVerified      bool      `db:"is_verified"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type UserLoginData struct {
	ID       string
	Username string
	Email    string
	Role     string
}

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
)

func IsValidUserRole(role string) bool {
	switch UserRole(role) {
	case RoleStudent, RoleFaculty:
		return true
	default:
		return false
	}
}
