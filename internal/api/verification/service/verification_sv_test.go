package verificationService

import (
	"Attendify/internal/api/auth"
	authRepository "Attendify/internal/api/auth/repository"
	"Attendify/internal/api/verification"
	verificationRepository "Attendify/internal/api/verification/repository"
	"Attendify/internal/entity"
	"Attendify/pkg/face"
	"Attendify/pkg/utils"
	"context"
	"errors"
	"image"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type stubFrame struct {
	name string
}

func (f *stubFrame) Width() int  { return 640 }
func (f *stubFrame) Height() int { return 480 }
func (f *stubFrame) Close()      {}

type stubDecoder struct{}

func (d *stubDecoder) Decode(data []byte) (face.Frame, error) {
	return &stubFrame{name: string(data)}, nil
}

func (d *stubDecoder) Sharpness(face.Frame, face.FaceRegion) (float64, error) {
	return 500, nil
}

type stubLocator struct{}

func (l *stubLocator) DetectFaces(face.Frame) ([]face.FaceRegion, error) {
	return []face.FaceRegion{image.Rect(100, 100, 300, 300)}, nil
}

func (l *stubLocator) DetectEyes(face.Frame, face.FaceRegion) (int, error) { return 2, nil }
func (l *stubLocator) Close()                                             {}

type stubMatcher struct {
	strategy face.MatchStrategy
	outcome  face.MatchOutcome
	err      error
}

func (m *stubMatcher) Strategy() face.MatchStrategy { return m.strategy }
func (m *stubMatcher) Match(_, _ face.Frame, _, _ face.FaceRegion, _ face.MatchParams) (face.MatchOutcome, error) {
	if m.err != nil {
		return face.MatchOutcome{}, m.err
	}
	return m.outcome, nil
}
func (m *stubMatcher) Close() {}

func acceptingMatcher() *stubMatcher {
	return &stubMatcher{
		strategy: face.StrategyEmbedding,
		outcome: face.MatchOutcome{
			Strategy:   face.StrategyEmbedding,
			Distance:   0.21,
			Confidence: 0.91,
			Accepted:   true,
		},
	}
}

func passingBattery() []face.SpoofCheck {
	return []face.SpoofCheck{{
		Technique: face.TechniqueMoire,
		Run: func(face.Frame, face.FaceRegion) (face.SpoofSignal, error) {
			return face.SpoofSignal{Technique: face.TechniqueMoire, Metric: 0.1, Passed: true}, nil
		},
	}}
}

func failingBattery() []face.SpoofCheck {
	return []face.SpoofCheck{{
		Technique: face.TechniqueMoire,
		Run: func(face.Frame, face.FaceRegion) (face.SpoofSignal, error) {
			return face.SpoofSignal{Technique: face.TechniqueMoire, Metric: 0.9, Passed: false, Reason: "grid interference"}, nil
		},
	}}
}

func newTestEngine(t *testing.T, matcher face.Matcher, battery []face.SpoofCheck) *face.Verifier {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	engine, err := face.New(face.DefaultConfig(), &stubDecoder{}, &stubLocator{}, battery, matcher, log)
	require.NoError(t, err)
	return engine
}

type fakeAuditStore struct {
	audits    []entity.VerificationAudit
	lastLimit int
}

func (f *fakeAuditStore) NewClient(bool) (verificationRepository.Client, error) {
	return verificationRepository.Client{
		Audit:    f,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func (f *fakeAuditStore) InsertAudit(_ context.Context, audit entity.VerificationAudit) error {
	f.audits = append(f.audits, audit)
	return nil
}

func (f *fakeAuditStore) GetAuditsByUserID(_ context.Context, userID string, limit int) ([]entity.VerificationAudit, error) {
	f.lastLimit = limit

	var out []entity.VerificationAudit
	for _, audit := range f.audits {
		if audit.UserID == userID && len(out) < limit {
			out = append(out, audit)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[string]entity.User
}

func (f *fakeUserStore) NewClient(bool) (authRepository.Client, error) {
	return authRepository.Client{
		Users:    f,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func (f *fakeUserStore) CreateUser(context.Context, entity.User) error { return nil }
func (f *fakeUserStore) GetByID(_ context.Context, id string) (entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return entity.User{}, auth.ErrUserNotFound
	}
	return user, nil
}
func (f *fakeUserStore) GetByEmail(context.Context, string) (entity.User, error) {
	return entity.User{}, auth.ErrUserNotFound
}
func (f *fakeUserStore) GetByPhoneNumber(context.Context, string) (entity.User, error) {
	return entity.User{}, auth.ErrUserNotFound
}
func (f *fakeUserStore) UpdateUser(context.Context, entity.User) error            { return nil }
func (f *fakeUserStore) UpdateUserVerification(context.Context, string) error     { return nil }
func (f *fakeUserStore) UpdateUserPassword(context.Context, string, string) error { return nil }
func (f *fakeUserStore) DeleteUser(context.Context, string) error                 { return nil }
func (f *fakeUserStore) EnableTouchID(context.Context, string, string) error      { return nil }
func (f *fakeUserStore) UpdateProfilePhoto(context.Context, string, string) error { return nil }
func (f *fakeUserStore) UpdateFacePhoto(context.Context, string, string) error    { return nil }

type fakeS3 struct {
	files       map[string][]byte
	downloads   int
	downloadErr error
}

func (f *fakeS3) UploadFile(*multipart.FileHeader) (string, error) { return "", nil }
func (f *fakeS3) UploadBytes([]byte, string) (string, error)       { return "", nil }
func (f *fakeS3) DownloadFile(fileURL string) ([]byte, error) {
	f.downloads++
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	data, ok := f.files[fileURL]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}
func (f *fakeS3) PresignUrl(string) (string, error) { return "", nil }
func (f *fakeS3) DeleteFile(string) error           { return nil }

type fakeGemini struct {
	result string
	err    error
}

func (f *fakeGemini) AnalyzeImage(context.Context, string, string) (string, error) {
	return f.result, f.err
}

type fakeBridge struct {
	connected bool
}

func (f *fakeBridge) EmbedFace([]byte) ([]float32, error) { return nil, nil }
func (f *fakeBridge) IsConnected() bool                   { return f.connected }
func (f *fakeBridge) Reconnect() error                    { return nil }
func (f *fakeBridge) CloseConnection()                    {}

type verificationFixture struct {
	svc    *verificationService
	users  *fakeUserStore
	audits *fakeAuditStore
	s3     *fakeS3
	gemini *fakeGemini
	bridge *fakeBridge
}

const referenceURL = "https://cdn.attendify.test/faces/student-1.jpg"

// newVerificationFixture enrolls student-1 with a downloadable reference
// photo; student-2 exists but never enrolled a face.
func newVerificationFixture(t *testing.T, engine *face.Verifier) *verificationFixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	users := &fakeUserStore{users: map[string]entity.User{
		"student-1": {ID: "student-1", Name: "Putri Maharani", FacePhotoURL: referenceURL},
		"student-2": {ID: "student-2", Name: "Bayu Nugroho"},
	}}
	audits := &fakeAuditStore{}
	s3Client := &fakeS3{files: map[string][]byte{referenceURL: []byte("reference")}}
	geminiClient := &fakeGemini{}
	bridge := &fakeBridge{connected: true}

	svc := NewVerificationService(log, engine, face.DefaultConfig(), bridge, audits, users, s3Client, geminiClient, utils.New()).(*verificationService)

	return &verificationFixture{
		svc:    svc,
		users:  users,
		audits: audits,
		s3:     s3Client,
		gemini: geminiClient,
		bridge: bridge,
	}
}

func TestVerifyFaceAccepts(t *testing.T) {
	fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), passingBattery()))

	resp, err := fx.svc.VerifyFace(context.Background(), "student-1", []byte("candidate"), verification.VerifyOptions{SectionID: "section-1"})
	require.NoError(t, err)

	require.True(t, resp.Accepted)
	require.Equal(t, 0.91, resp.ConfidenceScore)
	require.Empty(t, resp.FailureReason)
	require.Equal(t, string(face.StrategyEmbedding), resp.MatchStrategyUsed)
	require.Len(t, resp.SpoofSignals, 1)
	require.GreaterOrEqual(t, resp.DurationMs, int64(0))

	require.Len(t, fx.audits.audits, 1)
	audit := fx.audits.audits[0]
	require.NotEmpty(t, audit.ID)
	require.Equal(t, "student-1", audit.UserID)
	require.Equal(t, "section-1", audit.SectionID)
	require.True(t, audit.Accepted)
	require.Equal(t, 0.91, audit.Confidence)
	require.Equal(t, string(face.StrategyEmbedding), audit.MatchStrategy)
	require.Contains(t, audit.SpoofSignals, `"technique":"moire"`)
}

func TestVerifyFaceRejectsBelowThreshold(t *testing.T) {
	matcher := acceptingMatcher()
	matcher.outcome = face.MatchOutcome{
		Strategy:   face.StrategyEmbedding,
		Distance:   0.78,
		Confidence: 0.22,
		Accepted:   false,
	}
	fx := newVerificationFixture(t, newTestEngine(t, matcher, passingBattery()))

	resp, err := fx.svc.VerifyFace(context.Background(), "student-1", []byte("candidate"), verification.VerifyOptions{})
	require.NoError(t, err)

	require.False(t, resp.Accepted)
	require.Equal(t, face.ReasonMatchBelowThreshold, resp.FailureReason)

	require.Len(t, fx.audits.audits, 1)
	require.False(t, fx.audits.audits[0].Accepted)
	require.Equal(t, face.ReasonMatchBelowThreshold, fx.audits.audits[0].FailureReason)
}

func TestVerifyFaceSpoofRejected(t *testing.T) {
	fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), failingBattery()))

	resp, err := fx.svc.VerifyFace(context.Background(), "student-1", []byte("candidate"), verification.VerifyOptions{})
	require.NoError(t, err)

	require.False(t, resp.Accepted)
	require.Equal(t, face.SpoofReason(face.TechniqueMoire), resp.FailureReason)

	require.Len(t, fx.audits.audits, 1)
	require.Contains(t, fx.audits.audits[0].SpoofSignals, `"passed":false`)
}

func TestVerifyFaceWithoutEnrolledReference(t *testing.T) {
	fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), passingBattery()))

	resp, err := fx.svc.VerifyFace(context.Background(), "student-2", []byte("candidate"), verification.VerifyOptions{})
	require.NoError(t, err)

	require.False(t, resp.Accepted)
	require.Equal(t, face.ReasonNoReferenceImage, resp.FailureReason)
	require.Zero(t, fx.s3.downloads)
}

func TestVerifyFaceStaleReferenceDegrades(t *testing.T) {
	fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), passingBattery()))
	fx.s3.downloadErr = errors.New("object expired")

	resp, err := fx.svc.VerifyFace(context.Background(), "student-1", []byte("candidate"), verification.VerifyOptions{})
	require.NoError(t, err)

	require.False(t, resp.Accepted)
	require.Equal(t, face.ReasonNoReferenceImage, resp.FailureReason)
}

func TestVerifyFaceEngineDisabled(t *testing.T) {
	fx := newVerificationFixture(t, nil)

	_, err := fx.svc.VerifyFace(context.Background(), "student-1", []byte("candidate"), verification.VerifyOptions{})
	require.ErrorIs(t, err, verification.ErrEngineDisabled)
	require.Empty(t, fx.audits.audits)
}

func TestVerifyFaceUnknownUser(t *testing.T) {
	fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), passingBattery()))

	_, err := fx.svc.VerifyFace(context.Background(), "ghost", []byte("candidate"), verification.VerifyOptions{})
	require.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestVerifyFaceEngineFault(t *testing.T) {
	matcher := acceptingMatcher()
	matcher.err = errors.New("model inference crashed")
	fx := newVerificationFixture(t, newTestEngine(t, matcher, passingBattery()))

	_, err := fx.svc.VerifyFace(context.Background(), "student-1", []byte("candidate"), verification.VerifyOptions{})
	require.ErrorIs(t, err, verification.ErrInternalServerError)
	require.Empty(t, fx.audits.audits)
}

func TestVerifyFaceBusy(t *testing.T) {
	t.Setenv("VERIFIER_MAX_CONCURRENCY", "1")

	fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), passingBattery()))

	// Hold the only slot so the call has to wait out its deadline.
	require.NoError(t, fx.svc.sem.Acquire(context.Background(), 1))
	defer fx.svc.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fx.svc.VerifyFace(ctx, "student-1", []byte("candidate"), verification.VerifyOptions{})
	require.ErrorIs(t, err, verification.ErrVerifierBusy)
}

func TestGateEnrollment(t *testing.T) {
	t.Run("clean image passes", func(t *testing.T) {
		fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), passingBattery()))

		resp, err := fx.svc.GateEnrollment(context.Background(), []byte("enrollment"))
		require.NoError(t, err)
		require.True(t, resp.Eligible)
		require.Empty(t, resp.FailureReason)
		require.Len(t, resp.SpoofSignals, 1)
	})

	t.Run("spoofed image is turned away", func(t *testing.T) {
		fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), failingBattery()))

		resp, err := fx.svc.GateEnrollment(context.Background(), []byte("enrollment"))
		require.NoError(t, err)
		require.False(t, resp.Eligible)
		require.Equal(t, face.SpoofReason(face.TechniqueMoire), resp.FailureReason)
	})

	t.Run("engine disabled", func(t *testing.T) {
		fx := newVerificationFixture(t, nil)

		_, err := fx.svc.GateEnrollment(context.Background(), []byte("enrollment"))
		require.ErrorIs(t, err, verification.ErrEngineDisabled)
	})
}

func TestGetMyAuditsClampsLimit(t *testing.T) {
	fx := newVerificationFixture(t, nil)

	cases := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-5, 20},
		{50, 50},
		{1000, 100},
	}

	for _, tc := range cases {
		_, err := fx.svc.GetMyAudits(context.Background(), "student-1", tc.limit)
		require.NoError(t, err)
		require.Equal(t, tc.want, fx.audits.lastLimit)
	}
}

func TestExtractStudentCard(t *testing.T) {
	t.Run("json wrapped in prose", func(t *testing.T) {
		fx := newVerificationFixture(t, nil)
		fx.gemini.result = "Berikut hasilnya:\n```json\n{\"student_number\": \"2110512345\", \"name\": \"PUTRI MAHARANI\", \"faculty\": \"ILMU KOMPUTER\", \"study_program\": \"INFORMATIKA\"}\n```"

		card, err := fx.svc.ExtractStudentCard(context.Background(), "base64-image")
		require.NoError(t, err)
		require.Equal(t, "2110512345", card.StudentNumber)
		require.Equal(t, "PUTRI MAHARANI", card.Name)
		require.Equal(t, "ILMU KOMPUTER", card.Faculty)
		require.Equal(t, "INFORMATIKA", card.StudyProgram)
	})

	t.Run("no json in answer", func(t *testing.T) {
		fx := newVerificationFixture(t, nil)
		fx.gemini.result = "Maaf, saya tidak dapat membaca kartu ini."

		_, err := fx.svc.ExtractStudentCard(context.Background(), "base64-image")
		require.ErrorIs(t, err, verification.ErrCardUnreadable)
	})

	t.Run("essential fields missing", func(t *testing.T) {
		fx := newVerificationFixture(t, nil)
		fx.gemini.result = `{"faculty": "ILMU KOMPUTER"}`

		_, err := fx.svc.ExtractStudentCard(context.Background(), "base64-image")
		require.ErrorIs(t, err, verification.ErrCardUnreadable)
	})

	t.Run("provider error propagates", func(t *testing.T) {
		fx := newVerificationFixture(t, nil)
		providerErr := errors.New("quota exhausted")
		fx.gemini.err = providerErr

		_, err := fx.svc.ExtractStudentCard(context.Background(), "base64-image")
		require.ErrorIs(t, err, providerErr)
	})
}

func TestParseStudentCardResponse(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
		number  string
	}{
		{
			name:   "bare json",
			input:  `{"student_number": "2110512345", "name": "PUTRI MAHARANI"}`,
			number: "2110512345",
		},
		{
			name:   "json inside markdown fence",
			input:  "```json\n{\"student_number\": \"2110512345\", \"name\": \"PUTRI MAHARANI\"}\n```",
			number: "2110512345",
		},
		{
			name:    "no braces",
			input:   "tidak ada data",
			wantErr: true,
		},
		{
			name:    "invalid json",
			input:   "{student_number: oops}",
			wantErr: true,
		},
		{
			name:    "missing name",
			input:   `{"student_number": "2110512345"}`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card, err := parseStudentCardResponse(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.number, card.StudentNumber)
		})
	}
}

func TestEngineStatus(t *testing.T) {
	t.Run("engine online", func(t *testing.T) {
		fx := newVerificationFixture(t, newTestEngine(t, acceptingMatcher(), passingBattery()))

		status, err := fx.svc.EngineStatus(context.Background())
		require.NoError(t, err)
		require.True(t, status.Enabled)
		require.Equal(t, string(face.StrategyEmbedding), status.Strategy)
		require.True(t, status.BridgeConnected)
		require.Positive(t, status.MaxConcurrency)
		require.False(t, status.ModelPresent)
	})

	t.Run("engine disabled build", func(t *testing.T) {
		fx := newVerificationFixture(t, nil)
		fx.bridge.connected = false

		status, err := fx.svc.EngineStatus(context.Background())
		require.NoError(t, err)
		require.False(t, status.Enabled)
		require.Empty(t, status.Strategy)
		require.False(t, status.BridgeConnected)
	})
}
