package verificationHandler

import (
	verificationService "Attendify/internal/api/verification/service"
	"Attendify/internal/entity"
	"Attendify/internal/middleware"
	"Attendify/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type VerificationHandler struct {
	log                 *logrus.Logger
	validator           *validator.Validate
	middleware          middleware.Middleware
	verificationService verificationService.IVerificationService
	utils               utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	vs verificationService.IVerificationService,
	utils utils.IUtils,
) *VerificationHandler {
	return &VerificationHandler{
		log:                 log,
		validator:           validator,
		middleware:          middleware,
		verificationService: vs,
		utils:               utils,
	}
}

func (h *VerificationHandler) Start(srv fiber.Router) {
	face := srv.Group("/face")

	facultyOnly := h.middleware.NewRoleMiddleware(entity.RoleFaculty)

	face.Post("/verify", h.middleware.NewTokenMiddleware, h.VerifyFace)
	face.Post("/enroll-check", h.middleware.NewTokenMiddleware, h.EnrollCheck)
	face.Get("/audits", h.middleware.NewTokenMiddleware, h.GetMyAudits)
	face.Post("/student-card", h.ExtractStudentCard)
	face.Get("/engine", h.middleware.NewTokenMiddleware, facultyOnly, h.EngineStatus)
}
