package config

import (
	"Attendify/database/postgres"
	attendanceHandler "Attendify/internal/api/attendance/handler"
	attendanceRepository "Attendify/internal/api/attendance/repository"
	attendanceService "Attendify/internal/api/attendance/service"
	authHandler "Attendify/internal/api/auth/handler"
	authRepository "Attendify/internal/api/auth/repository"
	authService "Attendify/internal/api/auth/service"
	courseHandler "Attendify/internal/api/course/handler"
	courseRepository "Attendify/internal/api/course/repository"
	courseService "Attendify/internal/api/course/service"
	verificationHandler "Attendify/internal/api/verification/handler"
	verificationRepository "Attendify/internal/api/verification/repository"
	verificationService "Attendify/internal/api/verification/service"
	"Attendify/internal/middleware"
	"Attendify/pkg/bcrypt"
	"Attendify/pkg/face"
	"Attendify/pkg/gemini"
	"Attendify/pkg/google"
	"Attendify/pkg/redis"
	"Attendify/pkg/s3"
	"Attendify/pkg/smtp"
	"Attendify/pkg/utils"
	websocketPkg "Attendify/pkg/websocket"
	"Attendify/pkg/whatsapp"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	bcryptUtils    bcrypt.IBcrypt
	handlers       []handler
	googleProvider google.ItfGoogle
	redisServer    redis.IRedis
	smtpMailer     smtp.ItfSmtp
	embedBridge    websocketPkg.IEmbedBridge
	whatsappClient whatsapp.IWhatsappSender
	geminiClient   gemini.IGemini
	s3Client       s3.ItfS3
	faceEngine     *face.Verifier
	faceConfig     face.Config
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithGoogleProvider(provider google.ItfGoogle) ServerOption {
	return func(s *Server) error {
		s.googleProvider = provider
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSMTPMailer(smtpMailer smtp.ItfSmtp) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithEmbedBridge(bridge websocketPkg.IEmbedBridge) ServerOption {
	return func(s *Server) error {
		s.embedBridge = bridge
		return nil
	}
}

// WithFaceEngine builds the verification pipeline. Binaries compiled without
// the gocv tag get a nil engine and serve 503 on the verification routes,
// which keeps the rest of the API usable on machines without OpenCV.
func WithFaceEngine() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before face engine")
		}

		cfg := face.ConfigFromEnv()
		s.faceConfig = cfg

		engine, err := face.NewEngine(cfg, s.embedBridge, s.log)
		if err != nil {
			if errors.Is(err, face.ErrEngineDisabled) {
				s.log.Warn("Face engine disabled, verification endpoints will be unavailable")
				return nil
			}
			return fmt.Errorf("failed to build face engine: %w", err)
		}

		s.faceEngine = engine
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithWhatsappClient() ServerOption {
	return func(s *Server) error {
		client, err := whatsapp.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize WhatsApp client: %v", err)
			}
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		s.whatsappClient = client
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Verification Domain
	verifRepo := verificationRepository.New(s.db, s.log)
	authRepo := authRepository.New(s.db, s.log)
	verificationServices := verificationService.NewVerificationService(s.log, s.faceEngine, s.faceConfig, s.embedBridge, verifRepo, authRepo, s.s3Client, s.geminiClient, s.utils)
	verificationHandlers := verificationHandler.New(s.log, s.validator, s.middleware, verificationServices, s.utils)

	// Auth Domain
	authServices := authService.New(s.log, authRepo, s.googleProvider, s.smtpMailer, s.redisServer, s.whatsappClient, s.s3Client, s.smtpMailer, s.bcryptUtils, s.utils, verificationServices)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware, s.googleProvider, s.redisServer, s.s3Client)

	// Course Domain
	courseRepo := courseRepository.New(s.db, s.log)
	courseServices := courseService.New(s.log, courseRepo, s.utils)
	courseHandlers := courseHandler.New(s.log, s.validator, s.middleware, courseServices)

	// Attendance Domain
	attendanceRepo := attendanceRepository.New(s.db, s.log)
	attendanceServices := attendanceService.NewAttendanceService(s.log, attendanceRepo, courseRepo, authRepo, verificationServices, s.s3Client, s.utils)
	attendanceHandlers := attendanceHandler.New(s.log, s.validator, s.middleware, attendanceServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, authHandlers, verificationHandlers, courseHandlers, attendanceHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())
	s.engine.Use(s.middleware.NewRateLimiter)

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting connections and releases every attached client.
func (s *Server) Shutdown() {
	if err := s.engine.Shutdown(); err != nil {
		s.log.WithError(err).Warn("Fiber shutdown did not finish cleanly")
	}

	if s.whatsappClient != nil {
		s.whatsappClient.Disconnect()
	}
	if s.embedBridge != nil {
		s.embedBridge.CloseConnection()
	}
	if s.faceEngine != nil {
		s.faceEngine.Close()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.WithError(err).Warn("Database close failed")
		}
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
