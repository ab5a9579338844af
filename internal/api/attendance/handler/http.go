package attendanceHandler

import (
	attendanceService "Attendify/internal/api/attendance/service"
	"Attendify/internal/entity"
	"Attendify/internal/middleware"
	"Attendify/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type AttendanceHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	attendanceService attendanceService.IAttendanceService
	utils             utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as attendanceService.IAttendanceService,
	utils utils.IUtils,
) *AttendanceHandler {
	return &AttendanceHandler{
		log:               log,
		validator:         validate,
		middleware:        middleware,
		attendanceService: as,
		utils:             utils,
	}
}

func (h *AttendanceHandler) Start(srv fiber.Router) {
	facultyOnly := h.middleware.NewRoleMiddleware(entity.RoleFaculty)
	studentOnly := h.middleware.NewRoleMiddleware(entity.RoleStudent)

	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	attendance := srv.Group("/attendance")
	attendance.Post("", h.middleware.NewTokenMiddleware, studentOnly, h.Submit)
	attendance.Get("/today", h.middleware.NewTokenMiddleware, studentOnly, h.GetToday)
	attendance.Get("/history", h.middleware.NewTokenMiddleware, studentOnly, h.GetHistory)
	attendance.Get("/sections/:id/eligibility", h.middleware.NewTokenMiddleware, studentOnly, h.CheckEligibility)
	attendance.Get("/sections/:id/recap", h.middleware.NewTokenMiddleware, facultyOnly, h.GetRecap)
	attendance.Patch("/:id/status", h.middleware.NewTokenMiddleware, facultyOnly, h.OverrideStatus)

	attendance.Use("/sections/:id/live", wsMiddleware)
	attendance.Get("/sections/:id/live", h.middleware.NewTokenMiddleware, facultyOnly, websocket.New(h.handleLiveFeed))
}
