//go:build !portaudio
// +build !portaudio

// Package capture provides the platform speech capture behind the voice
// bidding session's Recognizer interface.
package capture

import (
	"context"
	"fmt"

	"voicebid/internal/auctionerrors"
	"voicebid/internal/stt"
	"voicebid/internal/voicebid"
)

// MicrophoneRecognizer stub when portaudio is not compiled in. Start reports
// the capture capability as unavailable, which the session surfaces as the
// unsupported-capability failure.
type MicrophoneRecognizer struct{}

// NewMicrophoneRecognizer creates the stub recognizer
func NewMicrophoneRecognizer(_ stt.Transcriber, _ int) *MicrophoneRecognizer {
	return &MicrophoneRecognizer{}
}

// Start always fails; rebuild with -tags portaudio for microphone support.
func (m *MicrophoneRecognizer) Start(_ context.Context) (<-chan voicebid.CaptureEvent, error) {
	return nil, fmt.Errorf("capture: %w: rebuild with -tags portaudio", auctionerrors.ErrCaptureUnsupported)
}
