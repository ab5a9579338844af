package middleware

import (
	"strings"

	"Attendify/internal/entity"
	jwtPkg "Attendify/pkg/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
)

type tokenMiddleware struct {
}

func newTokenMiddleware() *tokenMiddleware {
	return &tokenMiddleware{}
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized, access token invalid or expired",
	})
}

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	m.log.WithFields(logrus.Fields{
		"path":      ctx.Path(),
		"method":    ctx.Method(),
		"client_ip": ctx.IP(),
	}).Debug("Authenticating request")

	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		m.log.WithFields(logrus.Fields{
			"error": "Authorization header is missing",
		}).Warn("Authorization header check")
		return unauthorized(ctx)
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		m.log.WithFields(logrus.Fields{
			"error": "Authorization header format is invalid",
		}).Warn("Authorization header check")
		return unauthorized(ctx)
	}

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, AccessTokenSecret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Token verification failed")
		return unauthorized(ctx)
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.Warn("Token claims have an unexpected shape")
		return unauthorized(ctx)
	}

	user, ok := loginDataFromClaims(claims)
	if !ok {
		m.log.WithFields(logrus.Fields{
			"error": "Token claims are missing required fields",
		}).Warn("Token claims check")
		return unauthorized(ctx)
	}

	ctx.Locals("user", user)

	return ctx.Next()
}

// loginDataFromClaims pulls the identity claims, refusing tokens where any
// of them is absent or not a string.
func loginDataFromClaims(claims jwt.MapClaims) (entity.UserLoginData, bool) {
	id, okID := claims["id"].(string)
	email, okEmail := claims["email"].(string)
	username, okUsername := claims["username"].(string)
	role, okRole := claims["role"].(string)

	if !okID || !okEmail || !okUsername || !okRole {
		return entity.UserLoginData{}, false
	}

	return entity.UserLoginData{
		ID:       id,
		Email:    email,
		Username: username,
		Role:     role,
	}, true
}
