package authService

import (
	"Attendify/internal/api/auth"
	contextPkg "Attendify/pkg/context"
	jwtPkg "Attendify/pkg/jwt"
	"context"
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"math/rand"
	"net/url"
	"os"
	"strings"
	"time"
)

func (s *authDomainImpl) Login(c context.Context, req auth.LoginUserRequest) (auth.LoginUserResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.LoginUserResponse{}, err
	}

	user, err := repo.Users.GetByEmail(c, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserWithEmailNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to get user by email")

			return auth.LoginUserResponse{}, auth.ErrInvalidEmailOrPassword
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get user by email")

		return auth.LoginUserResponse{}, err
	}

	if err := s.bcryptUtils.ComparePassword(user.Password, req.Password); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Password comparison failed")
		return auth.LoginUserResponse{}, auth.ErrInvalidEmailOrPassword
	}

	// Checked after the password so the response does not reveal whether
	// the credentials were right for a pending account.
	if !user.IsVerified {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
		}).Warn("Login attempt on unverified account")
		return auth.LoginUserResponse{}, auth.ErrAccountNotVerified
	}

	userData := MakeUserData(user)

	token, expired, err := jwtPkg.Sign(userData, time.Hour*1)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign token")
		return auth.LoginUserResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
	}).Info("Token created")

	res := auth.LoginUserResponse{
		AccessToken:      token,
		ExpiresInMinutes: time.Until(time.Unix(expired, 0)).Minutes(),
	}

	return res, nil
}

func (s *authDomainImpl) LoginGoogle() (*url.URL, error) {
	gConfig := s.googleProvider.GetConfig()
	URL, err := url.Parse(gConfig.Endpoint.AuthURL)
	if err != nil {
		fmt.Printf("Error parsing URL: %v", err)
		return nil, err
	}

	parameters := url.Values{}
	parameters.Add("client_id", os.Getenv("GOOGLE_CLIENT_ID"))
	parameters.Add("scope", strings.Join(gConfig.Scopes, " "))
	parameters.Add("redirect_uri", gConfig.RedirectURL)
	parameters.Add("response_type", "code")
	parameters.Add("state", os.Getenv("GOOGLE_STATE"))
	URL.RawQuery = parameters.Encode()

	return URL, nil
}

func (s *authDomainImpl) UserLoginGoogle(c context.Context, req auth.LoginUserGoogle) (auth.LoginUserResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")

		return auth.LoginUserResponse{}, err
	}

	// Google sign-in only works for accounts that already registered.
	user, err := repo.Users.GetByEmail(c, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserWithEmailNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to get user by email")

			return auth.LoginUserResponse{}, auth.ErrUserWithEmailNotFound
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get user by email")

		return auth.LoginUserResponse{}, err
	}

	if !user.IsVerified {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
		}).Warn("Google login attempt on unverified account")
		return auth.LoginUserResponse{}, auth.ErrAccountNotVerified
	}

	userData := MakeUserData(user)

	token, expired, err := jwtPkg.Sign(userData, time.Hour*1)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign token")
		return auth.LoginUserResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
	}).Info("Token created")

	res := auth.LoginUserResponse{
		AccessToken:      token,
		ExpiresInMinutes: time.Until(time.Unix(expired, 0)).Minutes(),
	}

	return res, nil
}

func (s *authDomainImpl) PhoneNumberVerification(c context.Context, phoneNumber string) error {
	requestID := contextPkg.GetRequestID(c)

	verificationCode := fmt.Sprintf("%05d", 10000+rand.Intn(90000))
	if err := s.redisServer.SetOTP(c, phoneNumber, verificationCode, otpTTL()); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to set OTP in Redis")
		return err
	}

	if err := s.whatsappSender.SendMessage(c, phoneNumber, verificationCode); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to send WhatsApp message")
		return err
	}

	return nil
}

func (s *authDomainImpl) SendEmailOTP(c context.Context, email string) error {
	requestID := contextPkg.GetRequestID(c)

	// Generate a 5-digit OTP code
	verificationCode := fmt.Sprintf("%05d", 10000+rand.Intn(90000))

	// Store the OTP in Redis until it expires
	if err := s.redisServer.SetOTP(c, email, verificationCode, otpTTL()); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to set email OTP in Redis")
		return err
	}

	// Send the OTP via email
	if err := s.smtpMailer.CreateSmtp(email, verificationCode); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to send email OTP")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"email":      email,
	}).Info("Email OTP sent successfully")

	return nil
}

func (s *authDomainImpl) VerifyEmailOTP(c context.Context, userID string, email string, code string) error {
	requestID := contextPkg.GetRequestID(c)

	// Retrieve the stored OTP from Redis
	storedOTP, err := s.redisServer.GetOTP(c, email)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get OTP from Redis")
		return auth.ErrorTokenExpired
	}

	// Verify the OTP
	if storedOTP != code {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      "Invalid OTP",
		}).Warn("Invalid email OTP")
		return auth.ErrorInvalidToken
	}

	// Get a database client
	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}
	defer repo.Rollback()

	// Check if email is already in use by another user
	existingUser, err := repo.Users.GetByEmail(c, email)
	if err == nil && existingUser.ID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"email":      email,
		}).Warn("Email already in use by another user")
		return auth.ErrEmailAlreadyInUse
	}

	// Get current user
	user, err := repo.Users.GetByID(c, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get user by ID")
		return err
	}

	// Update user email
	user.Email = email
	user.UpdatedAt = time.Now()

	// Save user with updated email
	if err := repo.Users.UpdateUser(c, user); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to update user email")
		return err
	}

	// Commit the transaction
	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return err
	}

	// The code is single use; a failed delete only means it lives out its TTL.
	if err := s.redisServer.DeleteOTP(c, email); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to delete consumed OTP")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
		"email":      email,
	}).Info("User email updated successfully")

	return nil
}

func (s *authDomainImpl) VerifyPhoneOTP(c context.Context, userID string, phoneNumber string, code string) error {
	requestID := contextPkg.GetRequestID(c)

	storedOTP, err := s.redisServer.GetOTP(c, phoneNumber)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get OTP from Redis")
		return auth.ErrorTokenExpired
	}

	if storedOTP != code {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      "Invalid OTP",
		}).Warn("Invalid phone OTP")
		return auth.ErrorInvalidToken
	}

	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}
	defer repo.Rollback()

	existingUser, err := repo.Users.GetByPhoneNumber(c, phoneNumber)
	if err == nil && existingUser.ID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"phoneNumber": phoneNumber,
		}).Warn("Phone number already in use by another user")
		return auth.ErrPhoneNumberAlreadyExists
	} else if !errors.Is(err, auth.ErrUserNotFound) && err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to check phone number usage")
		return err
	}

	user, err := repo.Users.GetByID(c, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get user by ID")
		return err
	}

	user.PhoneNumber = phoneNumber
	user.UpdatedAt = time.Now()

	if err := repo.Users.UpdateUser(c, user); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to update user phone number")
		return err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return err
	}

	// The code is single use; a failed delete only means it lives out its TTL.
	if err := s.redisServer.DeleteOTP(c, phoneNumber); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to delete consumed OTP")
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"user_id":     userID,
		"phoneNumber": phoneNumber,
	}).Info("User phone number updated successfully")

	return nil
}
