//go:build !gocv
// +build !gocv

package face

import "github.com/sirupsen/logrus"

// Stub build. The server compiles and runs without OpenCV; every attempt to
// construct the pipeline reports ErrEngineDisabled and the verification
// endpoints answer accordingly.

func NewEngine(cfg Config, bridge EmbedBridge, log *logrus.Logger) (*Verifier, error) {
	_ = cfg
	_ = bridge
	_ = log

	return nil, ErrEngineDisabled
}
