package middleware

import (
	"Attendify/internal/entity"
	jwtPkg "Attendify/pkg/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// NewRoleMiddleware allows the request through only when the authenticated
// user carries one of the given roles. It must run after NewTokenMiddleware.
func (m *middleware) NewRoleMiddleware(roles ...entity.UserRole) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, err := jwtPkg.GetUserLoginData(ctx)
		if err != nil {
			m.log.WithFields(logrus.Fields{
				"path": ctx.Path(),
			}).Warn("Role check without authenticated user")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized, access token invalid or expired",
			})
		}

		for _, role := range roles {
			if user.Role == string(role) {
				return ctx.Next()
			}
		}

		m.log.WithFields(logrus.Fields{
			"path":    ctx.Path(),
			"user_id": user.ID,
			"role":    user.Role,
		}).Warn("Role not permitted for route")
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden, this action requires a different role",
		})
	}
}
