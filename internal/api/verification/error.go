package verification

import (
	"Attendify/pkg/response"
	"net/http"
)

var (
	ErrEngineDisabled      = response.NewError(http.StatusServiceUnavailable, "face verification engine is not available on this deployment")
	ErrImageRequired       = response.NewError(http.StatusBadRequest, "image file is required")
	ErrUserNotFound        = response.NewError(http.StatusNotFound, "user not found")
	ErrVerifierBusy        = response.NewError(http.StatusTooManyRequests, "verification capacity exhausted, try again shortly")
	ErrCardUnreadable      = response.NewError(http.StatusUnprocessableEntity, "could not read the student card")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
