package attendanceService

import (
	"Attendify/internal/api/attendance"
	attendanceRepository "Attendify/internal/api/attendance/repository"
	authRepository "Attendify/internal/api/auth/repository"
	courseRepository "Attendify/internal/api/course/repository"
	verificationService "Attendify/internal/api/verification/service"
	"Attendify/pkg/s3"
	"Attendify/pkg/utils"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// lateThreshold is how long after class start a submission still counts
	// as present.
	lateThreshold = 15 * time.Minute

	// closeBuffer keeps the window open past the scheduled end so students
	// can still check in while packing up.
	closeBuffer = 30 * time.Minute
)

type IAttendanceService interface {
	CheckEligibility(ctx context.Context, studentID string, sectionID string) (*attendance.EligibilityResponse, error)
	Submit(ctx context.Context, studentID string, req attendance.SubmitAttendanceRequest, image []byte) (*attendance.SubmitAttendanceResponse, error)
	GetToday(ctx context.Context, studentID string) ([]attendance.TodayEntry, error)
	GetHistory(ctx context.Context, studentID string, from string, to string) ([]attendance.HistoryEntry, error)
	GetRecap(ctx context.Context, facultyID string, sectionID string) ([]attendance.RecapEntry, error)
	OverrideStatus(ctx context.Context, facultyID string, recordID string, req attendance.OverrideStatusRequest) error
	VerifySectionOwnership(ctx context.Context, facultyID string, sectionID string) error
	Feed() *FeedHub
}

type attendanceService struct {
	log                 *logrus.Logger
	attendanceRepo      attendanceRepository.Repository
	courseRepo          courseRepository.Repository
	authRepo            authRepository.Repository
	verificationService verificationService.IVerificationService
	s3Client            s3.ItfS3
	utils               utils.IUtils
	feed                *FeedHub

	// now is the window clock; tests pin it.
	now func() time.Time
}

func NewAttendanceService(
	log *logrus.Logger,
	attendanceRepo attendanceRepository.Repository,
	courseRepo courseRepository.Repository,
	authRepo authRepository.Repository,
	verification verificationService.IVerificationService,
	s3Client s3.ItfS3,
	utils utils.IUtils,
) IAttendanceService {
	return &attendanceService{
		log:                 log,
		attendanceRepo:      attendanceRepo,
		courseRepo:          courseRepo,
		authRepo:            authRepo,
		verificationService: verification,
		s3Client:            s3Client,
		utils:               utils,
		feed:                NewFeedHub(),
		now:                 time.Now,
	}
}

func (s *attendanceService) Feed() *FeedHub {
	return s.feed
}
