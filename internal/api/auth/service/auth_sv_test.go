package authService

import (
	"Attendify/internal/api/auth"
	authRepository "Attendify/internal/api/auth/repository"
	"Attendify/internal/entity"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users     map[string]entity.User
	updated   []entity.User
	commits   int
	rollbacks int
	clientErr error
}

func (f *fakeUserStore) NewClient(bool) (authRepository.Client, error) {
	if f.clientErr != nil {
		return authRepository.Client{}, f.clientErr
	}
	return authRepository.Client{
		Users:    f,
		Commit:   func() error { f.commits++; return nil },
		Rollback: func() error { f.rollbacks++; return nil },
	}, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, user entity.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return entity.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return entity.User{}, auth.ErrUserWithEmailNotFound
}

func (f *fakeUserStore) GetByPhoneNumber(_ context.Context, phoneNumber string) (entity.User, error) {
	for _, user := range f.users {
		if user.PhoneNumber == phoneNumber {
			return user, nil
		}
	}
	return entity.User{}, auth.ErrUserNotFound
}

func (f *fakeUserStore) UpdateUser(_ context.Context, user entity.User) error {
	f.users[user.ID] = user
	f.updated = append(f.updated, user)
	return nil
}

func (f *fakeUserStore) UpdateUserVerification(_ context.Context, email string) error {
	for id, user := range f.users {
		if user.Email == email {
			user.IsVerified = true
			f.users[id] = user
		}
	}
	return nil
}

func (f *fakeUserStore) UpdateUserPassword(_ context.Context, id string, password string) error {
	user := f.users[id]
	user.Password = password
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) EnableTouchID(_ context.Context, id string, hash string) error {
	user := f.users[id]
	user.EnableTouchID = true
	user.HashTouchID = hash
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) UpdateProfilePhoto(_ context.Context, id string, photoURL string) error {
	user := f.users[id]
	user.ProfilePhotoURL = photoURL
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) UpdateFacePhoto(_ context.Context, id string, facePhotoURL string) error {
	user := f.users[id]
	user.FacePhotoURL = facePhotoURL
	f.users[id] = user
	return nil
}

type fakeBcrypt struct {
	compareCalls int
}

func (f *fakeBcrypt) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (f *fakeBcrypt) ComparePassword(hashPassword, password string) error {
	f.compareCalls++
	if hashPassword != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type fakeRedis struct {
	store     map[string]string
	lastTTL   time.Duration
	deleted   []string
	setErr    error
	deleteErr error
}

func (f *fakeRedis) SetOTP(_ context.Context, key string, code string, expiration time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.store[key] = code
	f.lastTTL = expiration
	return nil
}

func (f *fakeRedis) GetOTP(_ context.Context, key string) (string, error) {
	code, ok := f.store[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return code, nil
}

func (f *fakeRedis) DeleteOTP(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	delete(f.store, key)
	return nil
}

type fakeMailer struct {
	codes map[string]string
	err   error
}

func (f *fakeMailer) CreateSmtp(userEmail string, otp string) error {
	if f.err != nil {
		return f.err
	}
	f.codes[userEmail] = otp
	return nil
}

type fakeWhatsapp struct {
	messages map[string]string
	err      error
}

func (f *fakeWhatsapp) SendMessage(_ context.Context, phoneNumber string, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages[phoneNumber] = message
	return nil
}

func (f *fakeWhatsapp) Disconnect() error { return nil }

func (f *fakeWhatsapp) IsConnected() bool { return true }

type authDomainFixture struct {
	domain   *authDomainImpl
	users    *fakeUserStore
	bcrypt   *fakeBcrypt
	redis    *fakeRedis
	mailer   *fakeMailer
	whatsapp *fakeWhatsapp
}

func newAuthDomainFixture(t *testing.T) *authDomainFixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	users := &fakeUserStore{users: map[string]entity.User{
		"user-1": {
			ID:          "user-1",
			Email:       "putri@students.ac.id",
			Name:        "Putri Maharani",
			PhoneNumber: "+6281234567890",
			Password:    "hashed:correct-horse",
			Role:        "student",
			IsVerified:  true,
		},
		"user-2": {
			ID:          "user-2",
			Email:       "bayu@students.ac.id",
			Name:        "Bayu Nugroho",
			PhoneNumber: "+6289876543210",
			Password:    "hashed:other-secret",
			Role:        "student",
			IsVerified:  false,
		},
	}}

	fx := &authDomainFixture{
		users:    users,
		bcrypt:   &fakeBcrypt{},
		redis:    &fakeRedis{store: map[string]string{}},
		mailer:   &fakeMailer{codes: map[string]string{}},
		whatsapp: &fakeWhatsapp{messages: map[string]string{}},
	}
	fx.domain = &authDomainImpl{
		log:            log,
		repo:           users,
		redisServer:    fx.redis,
		whatsappSender: fx.whatsapp,
		smtpMailer:     fx.mailer,
		bcryptUtils:    fx.bcrypt,
	}
	return fx
}

func TestLogin(t *testing.T) {
	t.Run("issues a token for valid credentials", func(t *testing.T) {
		t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
		fx := newAuthDomainFixture(t)

		resp, err := fx.domain.Login(context.Background(), auth.LoginUserRequest{
			Email:    "putri@students.ac.id",
			Password: "correct-horse",
		})
		require.NoError(t, err)
		require.NotEmpty(t, resp.AccessToken)
		require.InDelta(t, 60, resp.ExpiresInMinutes, 1)
	})

	t.Run("unknown email", func(t *testing.T) {
		fx := newAuthDomainFixture(t)

		_, err := fx.domain.Login(context.Background(), auth.LoginUserRequest{
			Email:    "nobody@students.ac.id",
			Password: "whatever",
		})
		require.ErrorIs(t, err, auth.ErrInvalidEmailOrPassword)
	})

	t.Run("wrong password", func(t *testing.T) {
		fx := newAuthDomainFixture(t)

		_, err := fx.domain.Login(context.Background(), auth.LoginUserRequest{
			Email:    "putri@students.ac.id",
			Password: "not-the-password",
		})
		require.ErrorIs(t, err, auth.ErrInvalidEmailOrPassword)
	})

	t.Run("unverified account is rejected after the password check", func(t *testing.T) {
		fx := newAuthDomainFixture(t)

		_, err := fx.domain.Login(context.Background(), auth.LoginUserRequest{
			Email:    "bayu@students.ac.id",
			Password: "other-secret",
		})
		require.ErrorIs(t, err, auth.ErrAccountNotVerified)
		require.Equal(t, 1, fx.bcrypt.compareCalls)
	})
}

func TestSendEmailOTP(t *testing.T) {
	t.Run("stores and mails a five digit code", func(t *testing.T) {
		fx := newAuthDomainFixture(t)

		err := fx.domain.SendEmailOTP(context.Background(), "putri@students.ac.id")
		require.NoError(t, err)

		code := fx.redis.store["putri@students.ac.id"]
		require.Regexp(t, `^\d{5}$`, code)
		require.Equal(t, code, fx.mailer.codes["putri@students.ac.id"])
		require.Equal(t, 5*time.Minute, fx.redis.lastTTL)
	})

	t.Run("reads OTP_TTL for the expiry", func(t *testing.T) {
		t.Setenv("OTP_TTL", "90s")
		fx := newAuthDomainFixture(t)

		require.NoError(t, fx.domain.SendEmailOTP(context.Background(), "putri@students.ac.id"))
		require.Equal(t, 90*time.Second, fx.redis.lastTTL)
	})

	t.Run("redis failure stops the send", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.setErr = errors.New("redis down")

		err := fx.domain.SendEmailOTP(context.Background(), "putri@students.ac.id")
		require.Error(t, err)
		require.Empty(t, fx.mailer.codes)
	})

	t.Run("mailer failure surfaces", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.mailer.err = errors.New("smtp unreachable")

		err := fx.domain.SendEmailOTP(context.Background(), "putri@students.ac.id")
		require.Error(t, err)
	})
}

func TestPhoneNumberVerification(t *testing.T) {
	t.Run("delivers the code over whatsapp", func(t *testing.T) {
		fx := newAuthDomainFixture(t)

		err := fx.domain.PhoneNumberVerification(context.Background(), "+6281234567890")
		require.NoError(t, err)

		code := fx.redis.store["+6281234567890"]
		require.Regexp(t, `^\d{5}$`, code)
		require.Equal(t, code, fx.whatsapp.messages["+6281234567890"])
	})

	t.Run("send failure surfaces", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.whatsapp.err = errors.New("socket closed")

		err := fx.domain.PhoneNumberVerification(context.Background(), "+6281234567890")
		require.Error(t, err)
	})
}

func TestVerifyEmailOTP(t *testing.T) {
	const newEmail = "putri.maharani@students.ac.id"

	t.Run("updates the email and consumes the code", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.store[newEmail] = "12345"

		err := fx.domain.VerifyEmailOTP(context.Background(), "user-1", newEmail, "12345")
		require.NoError(t, err)

		require.Len(t, fx.users.updated, 1)
		require.Equal(t, newEmail, fx.users.updated[0].Email)
		require.Equal(t, 1, fx.users.commits)
		require.Contains(t, fx.redis.deleted, newEmail)
	})

	t.Run("re-verifying your own email succeeds", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.store["putri@students.ac.id"] = "12345"

		err := fx.domain.VerifyEmailOTP(context.Background(), "user-1", "putri@students.ac.id", "12345")
		require.NoError(t, err)
		require.Equal(t, 1, fx.users.commits)
	})

	t.Run("wrong code", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.store[newEmail] = "12345"

		err := fx.domain.VerifyEmailOTP(context.Background(), "user-1", newEmail, "54321")
		require.ErrorIs(t, err, auth.ErrorInvalidToken)
		require.Empty(t, fx.users.updated)
	})

	t.Run("missing code reads as expired", func(t *testing.T) {
		fx := newAuthDomainFixture(t)

		err := fx.domain.VerifyEmailOTP(context.Background(), "user-1", newEmail, "12345")
		require.ErrorIs(t, err, auth.ErrorTokenExpired)
	})

	t.Run("email owned by another user", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.store["bayu@students.ac.id"] = "12345"

		err := fx.domain.VerifyEmailOTP(context.Background(), "user-1", "bayu@students.ac.id", "12345")
		require.ErrorIs(t, err, auth.ErrEmailAlreadyInUse)
		require.Zero(t, fx.users.commits)
	})

	t.Run("failed delete does not undo the update", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.store[newEmail] = "12345"
		fx.redis.deleteErr = errors.New("redis down")

		err := fx.domain.VerifyEmailOTP(context.Background(), "user-1", newEmail, "12345")
		require.NoError(t, err)
		require.Equal(t, 1, fx.users.commits)
	})
}

func TestVerifyPhoneOTP(t *testing.T) {
	const newPhone = "+6285555555555"

	t.Run("updates the phone number and consumes the code", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.store[newPhone] = "67890"

		err := fx.domain.VerifyPhoneOTP(context.Background(), "user-1", newPhone, "67890")
		require.NoError(t, err)

		require.Len(t, fx.users.updated, 1)
		require.Equal(t, newPhone, fx.users.updated[0].PhoneNumber)
		require.Equal(t, 1, fx.users.commits)
		require.Contains(t, fx.redis.deleted, newPhone)
	})

	t.Run("phone number owned by another user", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.store["+6289876543210"] = "67890"

		err := fx.domain.VerifyPhoneOTP(context.Background(), "user-1", "+6289876543210", "67890")
		require.ErrorIs(t, err, auth.ErrPhoneNumberAlreadyExists)
		require.Zero(t, fx.users.commits)
	})

	t.Run("wrong code", func(t *testing.T) {
		fx := newAuthDomainFixture(t)
		fx.redis.store[newPhone] = "67890"

		err := fx.domain.VerifyPhoneOTP(context.Background(), "user-1", newPhone, "11111")
		require.ErrorIs(t, err, auth.ErrorInvalidToken)
		require.Empty(t, fx.users.updated)
	})
}
