package authService

import (
	"Attendify/internal/api/auth"
	"Attendify/internal/entity"
	"os"
	"time"
)

const defaultOTPTTL = 5 * time.Minute

// otpTTL reads OTP_TTL as a Go duration, falling back to five minutes.
func otpTTL() time.Duration {
	if v := os.Getenv("OTP_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultOTPTTL
}

func GetUserDifferenceData(DbUser entity.User, NewUser auth.UpdateUserRequest) (entity.User, error) {
	// Start with a copy of all existing user data
	result := DbUser

	// Then only override the fields that changed
	if NewUser.Name != "" && NewUser.Name != DbUser.Name {
		result.Name = NewUser.Name
	}

	if NewUser.PhoneNumber != "" && NewUser.PhoneNumber != DbUser.PhoneNumber {
		result.PhoneNumber = NewUser.PhoneNumber
	}

	if NewUser.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", NewUser.BirthDate)
		if err != nil {
			return entity.User{}, err
		}
		if !birthDate.IsZero() && !birthDate.Equal(DbUser.BirthDate) {
			result.BirthDate = birthDate
		}
	}

	// Make sure we preserve the IsVerified status
	result.IsVerified = DbUser.IsVerified

	return result, nil
}

func MakeUserData(user entity.User) map[string]interface{} {
	return map[string]interface{}{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Name,
		"role":     user.Role,
	}
}
