package voicebid

import (
	"context"
	"fmt"
	"sync"

	"voicebid/internal/auctionerrors"
	model "voicebid/internal/models"
)

// State identifies the phase of a voice bid session.
type State int

const (
	// StateIdle means no transcript or recognized amount is held.
	StateIdle State = iota
	// StateListening means a capture is in flight.
	StateListening
	// StateRecognized means an amount is held, awaiting confirm or cancel.
	StateRecognized
	// StateSubmitting means a confirmed bid is being persisted.
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateRecognized:
		return "recognized"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Gateway persists a confirmed bid for an auction.
type Gateway interface {
	Submit(ctx context.Context, auctionID string, bidder model.Profile, amount float64) (model.Bid, error)
}

// BaselineFunc returns the price a new bid must exceed: the auction's current
// bid, or its base price when no bids exist yet.
type BaselineFunc func() float64

// Session drives one voice bidding attempt cycle for a single auction panel:
// listen, recognize, confirm or cancel, submit. It is reusable for repeated
// attempts and holds no identity beyond the current one.
type Session struct {
	recognizer Recognizer
	gateway    Gateway
	auctionID  string
	bidder     model.Profile
	baseline   BaselineFunc
	onPlaced   func()

	mu         sync.Mutex
	state      State
	transcript string
	amount     float64
	recognized bool
}

// NewSession creates an idle session. baseline is consulted at confirm time;
// onPlaced, when non-nil, is invoked exactly once after each successful
// submission so the caller can refresh auction state.
func NewSession(auctionID string, bidder model.Profile, recognizer Recognizer, gateway Gateway, baseline BaselineFunc, onPlaced func()) *Session {
	return &Session{
		recognizer: recognizer,
		gateway:    gateway,
		auctionID:  auctionID,
		bidder:     bidder,
		baseline:   baseline,
		onPlaced:   onPlaced,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns the last final transcript, if any.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// RecognizedAmount returns the amount awaiting confirmation. The second
// return is false when nothing has been recognized.
func (s *Session) RecognizedAmount() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amount, s.recognized
}

// Listen runs one capture to completion and folds its events into the
// session. It blocks until the capture's terminal event. While a capture or
// submission is already in flight, Listen is a no-op. It returns
// auctionerrors.ErrCaptureUnsupported when the platform offers no capture
// capability, and auctionerrors.ErrRecognitionFailed when the capture failed
// or produced no parseable amount; both leave the session idle and
// retryable.
func (s *Session) Listen(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateListening || s.state == StateSubmitting {
		s.mu.Unlock()
		return nil
	}

	events, err := s.recognizer.Start(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("voicebid: start capture: %w", err)
	}
	s.state = StateListening
	s.mu.Unlock()

	var (
		transcript string
		captureErr error
	)
	for ev := range events {
		switch ev.Kind {
		case CaptureTranscript:
			transcript = ev.Transcript
		case CaptureError:
			captureErr = ev.Err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if captureErr != nil {
		s.state = StateIdle
		s.amount, s.recognized = 0, false
		return fmt.Errorf("voicebid: %w: %v", auctionerrors.ErrRecognitionFailed, captureErr)
	}

	s.transcript = transcript
	if amount, ok := ExtractAmount(transcript); ok {
		s.amount, s.recognized = amount, true
		s.state = StateRecognized
		return nil
	}

	s.amount, s.recognized = 0, false
	s.state = StateIdle
	return fmt.Errorf("voicebid: %w", auctionerrors.ErrRecognitionFailed)
}

// Confirm submits the recognized amount through the gateway. With nothing
// recognized, or while a submission is already in flight, Confirm is a
// no-op. An amount at or below the baseline is refused with
// auctionerrors.ErrBidTooLow before the gateway is called and the session
// stays in the recognized state. On gateway failure the amount is likewise
// retained so the bidder can retry confirming without speaking again; on
// success the session resets to idle and the refresh callback fires once.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRecognized || !s.recognized {
		s.mu.Unlock()
		return nil
	}

	amount := s.amount
	if floor := s.baseline(); amount <= floor {
		s.mu.Unlock()
		return fmt.Errorf("voicebid: %w - bid must be higher than %.2f", auctionerrors.ErrBidTooLow, floor)
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	_, err := s.gateway.Submit(ctx, s.auctionID, s.bidder, amount)

	s.mu.Lock()
	if err != nil {
		s.state = StateRecognized
		s.mu.Unlock()
		return fmt.Errorf("voicebid: submit bid: %w", err)
	}
	s.resetLocked()
	s.mu.Unlock()

	if s.onPlaced != nil {
		s.onPlaced()
	}
	return nil
}

// Cancel discards the transcript and recognized amount and returns the
// session to idle. It is idempotent; while a capture or submission is in
// flight it is a no-op, since neither can be aborted midway.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateListening || s.state == StateSubmitting {
		return
	}
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = StateIdle
	s.transcript = ""
	s.amount = 0
	s.recognized = false
}
