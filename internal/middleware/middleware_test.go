package middleware

import (
	"testing"
	"time"

	"Attendify/internal/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestLoginDataFromClaims(t *testing.T) {
	t.Run("complete claims", func(t *testing.T) {
		user, ok := loginDataFromClaims(jwt.MapClaims{
			"id":       "user-1",
			"email":    "putri@students.ac.id",
			"username": "Putri Maharani",
			"role":     "student",
		})
		require.True(t, ok)
		require.Equal(t, entity.UserLoginData{
			ID:       "user-1",
			Email:    "putri@students.ac.id",
			Username: "Putri Maharani",
			Role:     "student",
		}, user)
	})

	t.Run("missing role", func(t *testing.T) {
		_, ok := loginDataFromClaims(jwt.MapClaims{
			"id":       "user-1",
			"email":    "putri@students.ac.id",
			"username": "Putri Maharani",
		})
		require.False(t, ok)
	})

	t.Run("non-string claim", func(t *testing.T) {
		_, ok := loginDataFromClaims(jwt.MapClaims{
			"id":       42,
			"email":    "putri@students.ac.id",
			"username": "Putri Maharani",
			"role":     "student",
		})
		require.False(t, ok)
	})
}

func TestRateLimiterReusesBuckets(t *testing.T) {
	rl := newRateLimiter(1, 1)

	first := rl.GetLimiterFrom("10.0.0.1")
	require.Same(t, first, rl.GetLimiterFrom("10.0.0.1"))
	require.NotSame(t, first, rl.GetLimiterFrom("10.0.0.2"))
}

func TestRateLimiterPrunesIdleClients(t *testing.T) {
	rl := newRateLimiter(1, 1)
	rl.GetLimiterFrom("10.0.0.1")

	rl.bucket["10.0.0.1"].lastSeen = time.Now().Add(-2 * pruneAfter)
	rl.lastPrune = time.Now().Add(-2 * pruneAfter)

	rl.GetLimiterFrom("10.0.0.2")

	_, exists := rl.bucket["10.0.0.1"]
	require.False(t, exists)
	require.Len(t, rl.bucket, 1)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := newRateLimiter(1, 2)
	limiter := rl.GetLimiterFrom("10.0.0.9")

	require.True(t, limiter.Allow())
	require.True(t, limiter.Allow())
	require.False(t, limiter.Allow())
}
