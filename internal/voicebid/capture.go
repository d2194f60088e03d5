package voicebid

import "context"

// CaptureEventKind enumerates the messages a speech capture emits.
type CaptureEventKind int

const (
	// CaptureStarted reports that the capture is listening.
	CaptureStarted CaptureEventKind = iota
	// CaptureTranscript carries the final transcript of the capture.
	CaptureTranscript
	// CaptureError reports a platform-level capture or transcription failure.
	CaptureError
	// CaptureEnded is the terminal event; it always arrives exactly once.
	CaptureEnded
)

// CaptureEvent is one message from an in-flight speech capture.
type CaptureEvent struct {
	Kind       CaptureEventKind
	Transcript string
	Err        error
}

// Recognizer is a single-shot speech capture. Start begins one capture and
// returns a channel that delivers exactly one of CaptureTranscript or
// CaptureError, then CaptureEnded, then closes. No interim results are
// surfaced. Start fails immediately with auctionerrors.ErrCaptureUnsupported
// when no capture capability exists on this platform.
type Recognizer interface {
	Start(ctx context.Context) (<-chan CaptureEvent, error)
}
