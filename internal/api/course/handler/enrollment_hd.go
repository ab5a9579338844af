package courseHandler

import (
	"Attendify/internal/api/course"
	contextPkg "Attendify/pkg/context"
	"Attendify/pkg/handlerUtil"
	jwtPkg "Attendify/pkg/jwt"
	"Attendify/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *CourseHandler) RequestEnrollment(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing enrollment request")

	sectionID := ctx.Params("id")
	if sectionID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("section ID is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	created, err := h.courseService.Enrollment().RequestEnrollment(c, userData.ID, sectionID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "request_enrollment")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, created)
	}
}

func (h *CourseHandler) GetMyEnrollments(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	enrollments, err := h.courseService.Enrollment().GetMyEnrollments(c, userData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_my_enrollments")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"enrollments": enrollments,
		})
	}
}

func (h *CourseHandler) GetRoster(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	sectionID := ctx.Params("id")
	if sectionID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("section ID is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	roster, err := h.courseService.Enrollment().GetRoster(c, userData.ID, sectionID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_roster")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"roster": roster,
		})
	}
}

func (h *CourseHandler) DecideEnrollment(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing enrollment decision request")

	enrollmentID := ctx.Params("id")
	if enrollmentID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("enrollment ID is required"), ctx.Path())
	}

	var req course.DecideEnrollmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.courseService.Enrollment().DecideEnrollment(c, userData.ID, enrollmentID, req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "decide_enrollment")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Enrollment decision recorded",
		})
	}
}
