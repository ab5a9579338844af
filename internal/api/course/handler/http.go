package courseHandler

import (
	courseService "Attendify/internal/api/course/service"
	"Attendify/internal/entity"
	"Attendify/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CourseHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	courseService courseService.CourseService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	courseService courseService.CourseService,
) *CourseHandler {
	return &CourseHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		courseService: courseService,
	}
}

func (h *CourseHandler) Start(srv fiber.Router) {
	facultyOnly := h.middleware.NewRoleMiddleware(entity.RoleFaculty)
	studentOnly := h.middleware.NewRoleMiddleware(entity.RoleStudent)

	courses := srv.Group("/courses")
	courses.Post("", h.middleware.NewTokenMiddleware, facultyOnly, h.CreateCourse)
	courses.Get("", h.middleware.NewTokenMiddleware, h.GetCourses)
	courses.Get("/:id", h.middleware.NewTokenMiddleware, h.GetCourseByID)
	courses.Put("/:id", h.middleware.NewTokenMiddleware, facultyOnly, h.UpdateCourse)
	courses.Delete("/:id", h.middleware.NewTokenMiddleware, facultyOnly, h.DeleteCourse)
	courses.Get("/:id/sections", h.middleware.NewTokenMiddleware, h.GetSectionsByCourseID)

	sections := srv.Group("/sections")
	sections.Post("", h.middleware.NewTokenMiddleware, facultyOnly, h.CreateSection)
	sections.Get("/mine", h.middleware.NewTokenMiddleware, facultyOnly, h.GetMySections)
	sections.Get("/:id", h.middleware.NewTokenMiddleware, h.GetSectionByID)
	sections.Put("/:id", h.middleware.NewTokenMiddleware, facultyOnly, h.UpdateSection)
	sections.Delete("/:id", h.middleware.NewTokenMiddleware, facultyOnly, h.DeleteSection)
	sections.Post("/:id/schedules", h.middleware.NewTokenMiddleware, facultyOnly, h.AddSchedule)
	sections.Delete("/:id/schedules/:scheduleID", h.middleware.NewTokenMiddleware, facultyOnly, h.RemoveSchedule)
	sections.Post("/:id/enroll", h.middleware.NewTokenMiddleware, studentOnly, h.RequestEnrollment)
	sections.Get("/:id/roster", h.middleware.NewTokenMiddleware, facultyOnly, h.GetRoster)

	enrollments := srv.Group("/enrollments")
	enrollments.Get("/mine", h.middleware.NewTokenMiddleware, studentOnly, h.GetMyEnrollments)
	enrollments.Patch("/:id", h.middleware.NewTokenMiddleware, facultyOnly, h.DecideEnrollment)
}
