package auth

import "time"

type CreateUserRequest struct {
	Name          string `json:"name" validate:"required,min=3,max=255"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=32"`
	StudentNumber string `json:"student_number" validate:"required,min=5,max=20"`
	BirthDate     string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	PhoneNumber   string `json:"phone_number" validate:"required,min=10,max=13"`
}

type VerifyUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=5,max=5"`
}

type VerifyPhoneNumberRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=13"`
}

type UpdateProfilePhotoRequest struct {
	ID string `json:"id"`
}

type ProfilePhotoResponse struct {
	ID              string `json:"id"`
	ProfilePhotoURL string `json:"profile_photo_url"`
}

type UserResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email,omitempty"`
	Name            string    `json:"name"`
	StudentNumber   string    `json:"student_number,omitempty"`
	BirthDate       time.Time `json:"birth_date,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	Role            string    `json:"role"`
	ProfilePhotoURL string    `json:"profile_photo_url,omitempty"`
	FaceEnrolled    bool      `json:"face_enrolled"`
	IsVerified      bool      `json:"is_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type LoginUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TouchIDLoginRequest struct {
	ID        string `json:"id"`
	PlainText string `json:"plain_text"`
}

type ResetPassword struct {
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=13"`
	Code        string `json:"code" validate:"required,min=5,max=5"`
	Password    string `json:"password" validate:"required,min=8,max=32"`
}

type LoginUserGoogle struct {
	Email string `json:"email"`
}

type UserGoogle struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Picture       string `json:"picture"`
}

type LoginUserResponse struct {
	AccessToken      string  `json:"accessToken"`
	ExpiresInMinutes float64 `json:"expiresInHour"`
}

type UpdateUserRequest struct {
	Name        string `json:"name"`
	BirthDate   string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=13"`
}

type SendEmailOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyEmailOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=5,max=5"`
}

type VerifyPhoneOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=13"`
	Code        string `json:"code" validate:"required,min=5,max=5"`
}
