package verificationService

import (
	authRepository "Attendify/internal/api/auth/repository"
	"Attendify/internal/api/verification"
	verificationRepository "Attendify/internal/api/verification/repository"
	"Attendify/internal/entity"
	"Attendify/pkg/face"
	"Attendify/pkg/gemini"
	"Attendify/pkg/s3"
	"Attendify/pkg/utils"
	websocketPkg "Attendify/pkg/websocket"
	"os"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/sync/semaphore"
)

type IVerificationService interface {
	VerifyFace(ctx context.Context, userID string, image []byte, opts verification.VerifyOptions) (*verification.VerifyFaceResponse, error)
	GateEnrollment(ctx context.Context, image []byte) (*verification.EnrollCheckResponse, error)
	GetMyAudits(ctx context.Context, userID string, limit int) ([]entity.VerificationAudit, error)
	ExtractStudentCard(ctx context.Context, base64Image string) (*entity.StudentCard, error)
	EngineStatus(ctx context.Context) (*verification.EngineStatusResponse, error)
}

type verificationService struct {
	log         *logrus.Logger
	engine      *face.Verifier
	engineCfg   face.Config
	bridge      websocketPkg.IEmbedBridge
	verifRepo   verificationRepository.Repository
	authRepo    authRepository.Repository
	s3Client    s3.ItfS3
	gemini      gemini.IGemini
	utils       utils.IUtils
	sem         *semaphore.Weighted
	maxInFlight int64
}

// NewVerificationService wires the face engine behind a weighted semaphore.
// A nil engine is a valid configuration (builds without the gocv tag); every
// pipeline operation then answers ErrEngineDisabled.
func NewVerificationService(
	log *logrus.Logger,
	engine *face.Verifier,
	engineCfg face.Config,
	bridge websocketPkg.IEmbedBridge,
	verifRepo verificationRepository.Repository,
	authRepo authRepository.Repository,
	s3Client s3.ItfS3,
	gemini gemini.IGemini,
	utils utils.IUtils,
) IVerificationService {
	maxInFlight := int64(runtime.NumCPU())
	if v := os.Getenv("VERIFIER_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxInFlight = n
		}
	}

	return &verificationService{
		log:         log,
		engine:      engine,
		engineCfg:   engineCfg,
		bridge:      bridge,
		verifRepo:   verifRepo,
		authRepo:    authRepo,
		s3Client:    s3Client,
		gemini:      gemini,
		utils:       utils,
		sem:         semaphore.NewWeighted(maxInFlight),
		maxInFlight: maxInFlight,
	}
}
