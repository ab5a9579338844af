//go:build gocv
// +build gocv

package face

import (
	"fmt"
	"image"
	"os"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// NewEngine wires the gocv-backed pipeline: decoder, cascade locator, the
// anti-spoofing battery and the matcher. Builds without the gocv tag get the
// stub that reports ErrEngineDisabled instead.
func NewEngine(cfg Config, bridge EmbedBridge, log *logrus.Logger) (*Verifier, error) {
	locator, err := NewLocator(cfg)
	if err != nil {
		return nil, err
	}

	return New(cfg, NewDecoder(cfg), locator, Battery(cfg), NewMatcher(cfg, bridge, log), log)
}

// matFrame owns a decoded BGR mat for the life of the Frame.
type matFrame struct {
	mat gocv.Mat
}

func (m *matFrame) Width() int  { return m.mat.Cols() }
func (m *matFrame) Height() int { return m.mat.Rows() }
func (m *matFrame) Close()      { m.mat.Close() }

func frameMat(f Frame) (gocv.Mat, error) {
	mf, ok := f.(*matFrame)
	if !ok {
		return gocv.Mat{}, ErrUnsupportedFrame
	}

	return mf.mat, nil
}

// CVDecoder turns JPEG/PNG bytes into BGR mats and measures focus.
type CVDecoder struct {
	cfg Config
}

func NewDecoder(cfg Config) *CVDecoder {
	return &CVDecoder{cfg: cfg}
}

func (d *CVDecoder) Decode(data []byte) (Frame, error) {
	if len(data) == 0 {
		return nil, ErrMalformedImage
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImage, err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrMalformedImage
	}

	if mat.Cols() < d.cfg.MinImageWidth || mat.Rows() < d.cfg.MinImageHeight {
		mat.Close()
		return nil, ErrImageTooSmall
	}
	if mat.Cols() > d.cfg.MaxImageWidth || mat.Rows() > d.cfg.MaxImageHeight {
		mat.Close()
		return nil, ErrImageTooLarge
	}

	return &matFrame{mat: mat}, nil
}

func (d *CVDecoder) Sharpness(f Frame, region FaceRegion) (float64, error) {
	mat, err := frameMat(f)
	if err != nil {
		return 0, err
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	target := gray
	clamped := region.Intersect(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	if !clamped.Empty() {
		roi := gray.Region(clamped)
		defer roi.Close()
		target = roi
	}

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(target, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	return matVariance(lap), nil
}

// CascadeLocator runs the Haar cascades loaded at construction.
type CascadeLocator struct {
	cfg         Config
	faceCascade gocv.CascadeClassifier
	eyeCascade  gocv.CascadeClassifier
}

func NewLocator(cfg Config) (*CascadeLocator, error) {
	if _, err := os.Stat(cfg.CascadePath); err != nil {
		return nil, fmt.Errorf("face cascade: %w", err)
	}
	if _, err := os.Stat(cfg.EyeCascadePath); err != nil {
		return nil, fmt.Errorf("eye cascade: %w", err)
	}

	faceCascade := gocv.NewCascadeClassifier()
	if !faceCascade.Load(cfg.CascadePath) {
		faceCascade.Close()
		return nil, fmt.Errorf("loading face cascade %s failed", cfg.CascadePath)
	}

	eyeCascade := gocv.NewCascadeClassifier()
	if !eyeCascade.Load(cfg.EyeCascadePath) {
		faceCascade.Close()
		eyeCascade.Close()
		return nil, fmt.Errorf("loading eye cascade %s failed", cfg.EyeCascadePath)
	}

	return &CascadeLocator{
		cfg:         cfg,
		faceCascade: faceCascade,
		eyeCascade:  eyeCascade,
	}, nil
}

func (l *CascadeLocator) DetectFaces(f Frame) ([]FaceRegion, error) {
	mat, err := frameMat(f)
	if err != nil {
		return nil, err
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	faces := l.faceCascade.DetectMultiScaleWithParams(
		gray,
		l.cfg.CascadeScaleFactor,
		l.cfg.CascadeMinNeighbors,
		0,
		image.Pt(l.cfg.FaceMinSize, l.cfg.FaceMinSize),
		image.Pt(0, 0),
	)

	return faces, nil
}

func (l *CascadeLocator) DetectEyes(f Frame, face FaceRegion) (int, error) {
	mat, err := frameMat(f)
	if err != nil {
		return 0, err
	}

	clamped := face.Intersect(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	if clamped.Empty() {
		return 0, nil
	}

	roi := mat.Region(clamped)
	defer roi.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	eyes := l.eyeCascade.DetectMultiScale(gray)

	return len(eyes), nil
}

func (l *CascadeLocator) Close() {
	l.faceCascade.Close()
	l.eyeCascade.Close()
}

// matVariance computes exact population variance over any single-channel mat.
// Multiply would saturate integer types, so values go through CV64F first.
func matVariance(m gocv.Mat) float64 {
	f := gocv.NewMat()
	defer f.Close()
	m.ConvertTo(&f, gocv.MatTypeCV64F)

	sq := gocv.NewMat()
	defer sq.Close()
	gocv.Multiply(f, f, &sq)

	mean := f.Mean().Val1

	return sq.Mean().Val1 - mean*mean
}
