package authService

import (
	"Attendify/internal/api/auth"
	"Attendify/internal/entity"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetUserDifferenceData(t *testing.T) {
	birthDate := time.Date(2003, time.June, 21, 0, 0, 0, 0, time.UTC)
	existing := entity.User{
		ID:          "user-1",
		Email:       "putri@campus.ac.id",
		Name:        "Putri Maharani",
		PhoneNumber: "081234567890",
		BirthDate:   birthDate,
		IsVerified:  true,
	}

	t.Run("overrides changed fields", func(t *testing.T) {
		result, err := GetUserDifferenceData(existing, auth.UpdateUserRequest{
			Name:        "Putri M. Dewi",
			PhoneNumber: "089876543210",
		})
		require.NoError(t, err)
		require.Equal(t, "Putri M. Dewi", result.Name)
		require.Equal(t, "089876543210", result.PhoneNumber)
		require.Equal(t, birthDate, result.BirthDate)
		require.Equal(t, existing.Email, result.Email)
	})

	t.Run("empty request preserves everything", func(t *testing.T) {
		result, err := GetUserDifferenceData(existing, auth.UpdateUserRequest{})
		require.NoError(t, err)
		require.Equal(t, existing, result)
	})

	t.Run("parses a new birth date", func(t *testing.T) {
		result, err := GetUserDifferenceData(existing, auth.UpdateUserRequest{BirthDate: "2004-08-17"})
		require.NoError(t, err)
		require.Equal(t, time.Date(2004, time.August, 17, 0, 0, 0, 0, time.UTC), result.BirthDate)
	})

	t.Run("rejects a malformed birth date", func(t *testing.T) {
		_, err := GetUserDifferenceData(existing, auth.UpdateUserRequest{BirthDate: "17-08-2004"})
		require.Error(t, err)
	})

	t.Run("verification status survives the merge", func(t *testing.T) {
		result, err := GetUserDifferenceData(existing, auth.UpdateUserRequest{Name: "Someone Else"})
		require.NoError(t, err)
		require.True(t, result.IsVerified)
	})
}

func TestMakeUserData(t *testing.T) {
	claims := MakeUserData(entity.User{
		ID:    "user-1",
		Email: "putri@campus.ac.id",
		Name:  "Putri Maharani",
		Role:  "student",
	})

	require.Equal(t, map[string]interface{}{
		"id":       "user-1",
		"email":    "putri@campus.ac.id",
		"username": "Putri Maharani",
		"role":     "student",
	}, claims)
}

func TestOTPTTL(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", defaultOTPTTL},
		{"custom", "90s", 90 * time.Second},
		{"garbage", "soon", defaultOTPTTL},
		{"negative", "-5m", defaultOTPTTL},
		{"zero", "0", defaultOTPTTL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OTP_TTL", tc.value)
			require.Equal(t, tc.want, otpTTL())
		})
	}
}
