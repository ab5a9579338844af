package auth

import (
	"Attendify/pkg/response"
	"net/http"
)

var (
	ErrPhoneNumberAlreadyExists   = response.NewError(http.StatusConflict, "phone number already exists")
	ErrEmailAlreadyExists         = response.NewError(http.StatusConflict, "email already exists")
	ErrStudentNumberAlreadyExists = response.NewError(http.StatusConflict, "student number already exists")
	ErrInvalidEmailOrPassword     = response.NewError(http.StatusBadRequest, "email or password is wrong")
	ErrAccountNotVerified         = response.NewError(http.StatusForbidden, "account is not verified yet")
	ErrUserNotFound               = response.NewError(http.StatusNotFound, "user not found")
	ErrorInvalidToken             = response.NewError(http.StatusUnauthorized, "invalid token")
	ErrUserWithEmailNotFound      = response.NewError(http.StatusNotFound, "user with email not found")
	ErrPasswordSame               = response.NewError(http.StatusBadRequest, "password same as before")
	ErrorTokenExpired             = response.NewError(http.StatusBadRequest, "token expired or not found")
	ErrInvalidPhoneNumber         = response.NewError(http.StatusBadRequest, "invalid phone number")
	ErrInvalidOTP                 = response.NewError(http.StatusBadRequest, "invalid otp")
	ErrInvalidFileType            = response.NewError(http.StatusBadRequest, "invalid file type")
	ErrFileTooLarge               = response.NewError(http.StatusBadRequest, "file too large")
	ErrFailedToUploadFile         = response.NewError(http.StatusInternalServerError, "failed to upload file")
	ErrEmailAlreadyInUse          = response.NewError(http.StatusConflict, "email already in use by another user")
	ErrNotAccountOwner            = response.NewError(http.StatusForbidden, "only the account owner or faculty may do this")
	ErrFacePhotoRejected          = response.NewError(http.StatusUnprocessableEntity, "face photo rejected")
)
