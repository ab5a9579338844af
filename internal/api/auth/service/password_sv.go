package authService

import (
	"Attendify/internal/api/auth"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *passwordDomainImpl) UpdatePassword(c context.Context, req auth.ResetPassword) error {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	// The OTP was stored under whichever channel requested it.
	otpKey := req.Email
	if otpKey == "" {
		otpKey = req.PhoneNumber
	}
	if otpKey == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      "Email or PhoneNumber is required",
		}).Warn("Invalid password reset request")
		return auth.ErrInvalidOTP
	}

	storedOTP, err := s.redisServer.GetOTP(c, otpKey)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get OTP from Redis")
		return err
	}

	if storedOTP != req.Code {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      "Invalid OTP",
		}).Error("Invalid OTP provided")
		return auth.ErrInvalidOTP
	}

	var user entity.User
	if req.Email != "" {
		user, err = repo.Users.GetByEmail(c, req.Email)
		if err != nil {
			if errors.Is(err, auth.ErrUserWithEmailNotFound) {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      "User not found",
				}).Warn("User not found")
				return auth.ErrUserNotFound
			}

			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to get user by email")

			return err
		}
	} else {
		user, err = repo.Users.GetByPhoneNumber(c, req.PhoneNumber)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      "User not found",
				}).Warn("User not found")
				return auth.ErrUserNotFound
			}

			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to get user by phone number")

			return err
		}
	}

	if err := s.bcryptUtils.ComparePassword(user.Password, req.Password); err == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      "New password cannot be the same as the old password",
		}).Error("New password is the same as the old password")
		return auth.ErrPasswordSame
	}

	hashedPass, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return err
	}

	if err := repo.Users.UpdateUserPassword(c, user.ID, hashedPass); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to update user password")
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.ErrUserNotFound
		}
		return err
	}

	// The code is single use; a failed delete only means it lives out its TTL.
	if err := s.redisServer.DeleteOTP(c, otpKey); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to delete consumed OTP")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    user.ID,
	}).Info("Password updated successfully")

	return nil
}
