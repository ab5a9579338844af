package authService

import (
	"Attendify/internal/api/auth"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"errors"
	"fmt"
	"math/rand"
	"mime/multipart"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *userDomainImpl) RegisterUser(ctx context.Context, req auth.CreateUserRequest) error {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	hashedPassword, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return err
	}

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return err
	}

	var birthDate time.Time
	if req.BirthDate != "" {
		birthDate, err = time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to parse birth date")
			return err
		}
	}

	user := entity.User{
		ID:            ULID,
		Name:          req.Name,
		Email:         req.Email,
		StudentNumber: req.StudentNumber,
		BirthDate:     birthDate,
		PhoneNumber:   req.PhoneNumber,
		Password:      hashedPassword,
		Role:          string(entity.RoleStudent),
	}

	if err := repo.Users.CreateUser(ctx, user); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create user")
		return err
	}

	// Activation OTP. The account exists either way; a failed mail can be
	// retried through the send-otp endpoint.
	verificationCode := fmt.Sprintf("%05d", 10000+rand.Intn(90000))
	if err := s.redisServer.SetOTP(ctx, req.Email, verificationCode, otpTTL()); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to store activation OTP")
		return nil
	}
	if err := s.smtpCLient.CreateSmtp(req.Email, verificationCode); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to send activation OTP email")
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    ULID,
	}).Info("User registered, activation OTP sent")

	return nil
}

func (s *userDomainImpl) VerifyUser(ctx context.Context, req auth.VerifyUserRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	storedOTP, err := s.redisServer.GetOTP(ctx, req.Email)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get OTP from Redis")
		return auth.ErrorTokenExpired
	}

	if storedOTP != req.Code {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      "Invalid OTP",
		}).Warn("Invalid activation OTP")
		return auth.ErrInvalidOTP
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	if err := repo.Users.UpdateUserVerification(ctx, req.Email); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to mark user verified")
		return err
	}

	// The code is single use; a failed delete only means it lives out its TTL.
	if err := s.redisServer.DeleteOTP(ctx, req.Email); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to delete consumed OTP")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"email":      req.Email,
	}).Info("User account activated")

	return nil
}

func (s *userDomainImpl) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.User{}, err
	}

	user, err := repo.Users.GetByEmail(ctx, email)
	if err != nil {

		if errors.Is(err, auth.ErrUserWithEmailNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("User not found")

			return entity.User{}, auth.ErrUserWithEmailNotFound
		} else {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to get user by email")

			return entity.User{}, err
		}
	}

	return user, nil
}

func (s *userDomainImpl) UpdateUser(ctx context.Context, user entity.UserLoginData, req auth.UpdateUserRequest) error {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	userData, err := repo.Users.GetByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("User not found")

			return auth.ErrUserNotFound
		} else {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to get user by ID")

			return err
		}
	}

	newUser, err := GetUserDifferenceData(userData, req)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get user difference data")
		return err
	}

	if err := repo.Users.UpdateUser(ctx, newUser); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to update user")
		return err
	}

	return nil
}

func (s *userDomainImpl) DeleteUser(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	if err := repo.Users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("User not found")

			return auth.ErrUserNotFound
		} else {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to delete user")

			return err
		}
	}

	return nil
}

func (s *userDomainImpl) UpdateProfilePhoto(ctx context.Context, userID string, photoFile *multipart.FileHeader) (*auth.ProfilePhotoResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if photoFile == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
		}).Warn("No file provided")
		return nil, auth.ErrInvalidFileType
	}

	if photoFile.Size > 5*1024*1024 {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"file_size":  photoFile.Size,
		}).Warn("File too large")
		return nil, auth.ErrFileTooLarge
	}

	contentType := photoFile.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"user_id":      userID,
			"content_type": contentType,
		}).Warn("Invalid file type")
		return nil, auth.ErrInvalidFileType
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	userData, err := repo.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
				"error":      err.Error(),
			}).Warn("User not found")
			return nil, auth.ErrUserNotFound
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to get user by ID")
		return nil, err
	}

	uploadedFileURL, err := s.s3Client.UploadFile(photoFile)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to upload file to S3")
		return nil, auth.ErrFailedToUploadFile
	}

	if userData.ProfilePhotoURL != "" {
		oldPhotoURL := userData.ProfilePhotoURL
		parts := strings.Split(oldPhotoURL, "/")
		if len(parts) > 0 {
			fileName := parts[len(parts)-1]
			go func() {
				if err := s.s3Client.DeleteFile(fileName); err != nil {
					s.log.WithFields(logrus.Fields{
						"request_id": requestID,
						"user_id":    userID,
						"file_name":  fileName,
						"error":      err.Error(),
					}).Warn("Failed to delete old profile photo")
				}
			}()
		}
	}

	if err := repo.Users.UpdateProfilePhoto(ctx, userID, uploadedFileURL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to update profile photo URL in database")

		parts := strings.Split(uploadedFileURL, "/")
		if len(parts) > 0 {
			fileName := parts[len(parts)-1]
			if err := s.s3Client.DeleteFile(fileName); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"user_id":    userID,
					"file_name":  fileName,
					"error":      err.Error(),
				}).Warn("Failed to delete uploaded file after database update failure")
			}
		}

		return nil, err
	}

	return &auth.ProfilePhotoResponse{
		ID:              userID,
		ProfilePhotoURL: uploadedFileURL,
	}, nil
}

func (s *userDomainImpl) UpdateFacePhoto(ctx context.Context, userID string, facePhotoFile *multipart.FileHeader) error {
	requestID := contextPkg.GetRequestID(ctx)

	if facePhotoFile == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
		}).Warn("No file provided")
		return auth.ErrInvalidFileType
	}

	if facePhotoFile.Size > 5*1024*1024 {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"file_size":  facePhotoFile.Size,
		}).Warn("File too large")
		return auth.ErrFileTooLarge
	}

	contentType := facePhotoFile.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"user_id":      userID,
			"content_type": contentType,
		}).Warn("Invalid file type")
		return auth.ErrInvalidFileType
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	userData, err := repo.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
				"error":      err.Error(),
			}).Warn("User not found")
			return auth.ErrUserNotFound
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to get user by ID")
		return err
	}

	fileContent, err := facePhotoFile.Open()
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to open face photo file")
		return err
	}
	defer fileContent.Close()

	imageBytes, err := s.utils.FileToBytes(fileContent)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to read face photo file")
		return err
	}

	// The photo becomes the matching reference for every later check-in,
	// so it has to pass the enrollment gate before anything is stored.
	gate, err := s.verificationService.GateEnrollment(ctx, imageBytes)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Enrollment gate errored")
		return err
	}
	if !gate.Eligible {
		s.log.WithFields(logrus.Fields{
			"request_id":     requestID,
			"user_id":        userID,
			"failure_reason": gate.FailureReason,
		}).Warn("Enrollment gate rejected face photo")
		return fmt.Errorf("%w: %s", auth.ErrFacePhotoRejected, gate.FailureReason)
	}

	uploadedFileURL, err := s.s3Client.UploadFile(facePhotoFile)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to upload file to S3")
		return auth.ErrFailedToUploadFile
	}

	if userData.FacePhotoURL != "" {
		oldPhotoURL := userData.FacePhotoURL
		parts := strings.Split(oldPhotoURL, "/")
		if len(parts) > 0 {
			fileName := parts[len(parts)-1]
			go func() {
				if err := s.s3Client.DeleteFile(fileName); err != nil {
					s.log.WithFields(logrus.Fields{
						"request_id": requestID,
						"user_id":    userID,
						"file_name":  fileName,
						"error":      err.Error(),
					}).Warn("Failed to delete old face photo")
				}
			}()
		}
	}

	if err := repo.Users.UpdateFacePhoto(ctx, userID, uploadedFileURL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to update face photo URL in database")
		parts := strings.Split(uploadedFileURL, "/")
		if len(parts) > 0 {
			fileName := parts[len(parts)-1]
			if err := s.s3Client.DeleteFile(fileName); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"user_id":    userID,
					"file_name":  fileName,
					"error":      err.Error(),
				}).Warn("Failed to delete uploaded file after database update failure")
			}
		}

		return err
	}
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Successfully updated face photo URL in database")
	return nil
}
