package verificationService

import (
	"Attendify/internal/api/verification"
	"Attendify/internal/entity"
	contextPkg "Attendify/pkg/context"
	"Attendify/pkg/face"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *verificationService) VerifyFace(ctx context.Context, userID string, image []byte, opts verification.VerifyOptions) (*verification.VerifyFaceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.engine == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Face verification requested while the engine is disabled")
		return nil, verification.ErrEngineDisabled
	}

	authClient, err := s.authRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create auth repository client")
		return nil, err
	}

	user, err := authClient.Users.GetByID(ctx, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to load user for face verification")
		return nil, err
	}

	// A stale or deleted S3 object degrades to the no-reference-image
	// outcome instead of failing the request; enrollment fixes it.
	var reference []byte
	if user.FacePhotoURL != "" {
		reference, err = s.s3Client.DownloadFile(user.FacePhotoURL)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
				"error":      err.Error(),
			}).Warn("Enrolled face photo could not be fetched")
			reference = nil
		}
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("No verification slot acquired before the deadline")
		return nil, verification.ErrVerifierBusy
	}
	defer s.sem.Release(1)

	start := time.Now()
	result, err := s.engine.Verify(image, reference, face.Options{
		Profile:        face.ToleranceProfile(opts.Profile),
		ForceHistogram: opts.ForceHistogram,
	})
	duration := time.Since(start)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Face engine fault during verification")
		return nil, verification.ErrInternalServerError
	}

	signalsJSON := s.marshalSignals(requestID, result.SpoofSignals)

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"user_id":        userID,
		"section_id":     opts.SectionID,
		"accepted":       result.Accepted,
		"confidence":     result.Confidence,
		"failure_reason": result.FailureReason,
		"strategy":       string(result.MatchStrategyUsed),
		"duration_ms":    duration.Milliseconds(),
		"spoof_signals":  signalsJSON,
	}).Info("Face verification decided")

	s.recordAudit(ctx, requestID, entity.VerificationAudit{
		UserID:        userID,
		SectionID:     opts.SectionID,
		Accepted:      result.Accepted,
		Confidence:    result.Confidence,
		FailureReason: result.FailureReason,
		MatchStrategy: string(result.MatchStrategyUsed),
		SpoofSignals:  signalsJSON,
		DurationMs:    duration.Milliseconds(),
	})

	return &verification.VerifyFaceResponse{
		Accepted:          result.Accepted,
		ConfidenceScore:   result.Confidence,
		FailureReason:     result.FailureReason,
		MatchStrategyUsed: string(result.MatchStrategyUsed),
		SpoofSignals:      result.SpoofSignals,
		DurationMs:        duration.Milliseconds(),
	}, nil
}

func (s *verificationService) GateEnrollment(ctx context.Context, image []byte) (*verification.EnrollCheckResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.engine == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Enrollment gate requested while the engine is disabled")
		return nil, verification.ErrEngineDisabled
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("No verification slot acquired before the deadline")
		return nil, verification.ErrVerifierBusy
	}
	defer s.sem.Release(1)

	result, err := s.engine.Screen(image)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Face engine fault during enrollment gate")
		return nil, verification.ErrInternalServerError
	}

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"eligible":       result.Accepted,
		"failure_reason": result.FailureReason,
		"spoof_signals":  s.marshalSignals(requestID, result.SpoofSignals),
	}).Info("Enrollment gate decided")

	return &verification.EnrollCheckResponse{
		Eligible:      result.Accepted,
		FailureReason: result.FailureReason,
		SpoofSignals:  result.SpoofSignals,
	}, nil
}

func (s *verificationService) GetMyAudits(ctx context.Context, userID string, limit int) ([]entity.VerificationAudit, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	verifClient, err := s.verifRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create verification repository client")
		return nil, err
	}

	audits, err := verifClient.Audit.GetAuditsByUserID(ctx, userID, limit)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to list verification audits")
		return nil, err
	}

	return audits, nil
}

const (
	ocrMaxDimension = 1024
	ocrJPEGQuality  = 85
)

func (s *verificationService) ExtractStudentCard(ctx context.Context, base64Image string) (*entity.StudentCard, error) {
	requestID := contextPkg.GetRequestID(ctx)

	// Oversized uploads get downscaled before OCR; payloads that do not
	// decode as images are sent to the provider unchanged.
	if raw, decodeErr := base64.StdEncoding.DecodeString(base64Image); decodeErr == nil {
		optimized, optErr := s.utils.OptimizeImageForOCR(raw, ocrMaxDimension, ocrMaxDimension, ocrJPEGQuality)
		if optErr == nil {
			base64Image = base64.StdEncoding.EncodeToString(optimized)
		} else {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      optErr.Error(),
			}).Warn("Student card image could not be optimized, sending original")
		}
	}

	prompt := `
	Ekstrak informasi dari Kartu Tanda Mahasiswa ini dan berikan hasilnya dalam format JSON.
	Format output yang diinginkan:
	{
		"student_number": "2110512345",
		"name": "NAMA LENGKAP",
		"faculty": "NAMA FAKULTAS",
		"study_program": "NAMA PROGRAM STUDI"
	}
	Berikan HANYA respons JSON, tanpa teks tambahan apapun.
	`

	result, err := s.gemini.AnalyzeImage(ctx, base64Image, prompt)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Gemini student card analysis failed")
		return nil, err
	}

	card, err := parseStudentCardResponse(result)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Student card response could not be parsed")
		return nil, verification.ErrCardUnreadable
	}

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"student_number": card.StudentNumber,
	}).Info("Student card extraction successful")

	return card, nil
}

func parseStudentCardResponse(response string) (*entity.StudentCard, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	jsonStr := response[jsonStart : jsonEnd+1]

	var card entity.StudentCard
	if err := json.Unmarshal([]byte(jsonStr), &card); err != nil {
		return nil, err
	}

	if card.StudentNumber == "" || card.Name == "" {
		return nil, errors.New("failed to extract essential student card information")
	}

	return &card, nil
}

func (s *verificationService) EngineStatus(ctx context.Context) (*verification.EngineStatusResponse, error) {
	status := &verification.EngineStatusResponse{
		Enabled:        s.engine != nil,
		ModelPath:      s.engineCfg.ModelPath,
		MaxConcurrency: s.maxInFlight,
	}

	if s.engine != nil {
		status.Strategy = string(s.engine.Strategy())
	}

	if _, err := os.Stat(s.engineCfg.ModelPath); err == nil {
		status.ModelPresent = true
	}

	if s.bridge != nil {
		status.BridgeConnected = s.bridge.IsConnected()
	}

	return status, nil
}

// recordAudit persists the decision trail. Audit failures are logged and
// swallowed so a storage hiccup never changes a verification answer.
func (s *verificationService) recordAudit(ctx context.Context, requestID string, audit entity.VerificationAudit) {
	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate audit id")
		return
	}
	audit.ID = id

	verifClient, err := s.verifRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create verification repository client")
		return
	}

	if err := verifClient.Audit.InsertAudit(ctx, audit); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    audit.UserID,
			"error":      err.Error(),
		}).Error("Failed to persist verification audit")
	}
}

func (s *verificationService) marshalSignals(requestID string, signals []face.SpoofSignal) string {
	if len(signals) == 0 {
		return ""
	}

	raw, err := json.Marshal(signals)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal spoof signals")
		return ""
	}

	return string(raw)
}
