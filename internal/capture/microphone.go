//go:build portaudio
// +build portaudio

// Package capture provides the platform speech capture behind the voice
// bidding session's Recognizer interface.
package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"voicebid/internal/auctionerrors"
	"voicebid/internal/stt"
	"voicebid/internal/voicebid"
)

const framesPerBuffer = 1024

// MicrophoneRecognizer records a single utterance from the default input
// device, transcribes it, and emits the result as capture events. One
// capture may be active at a time.
type MicrophoneRecognizer struct {
	transcriber stt.Transcriber
	sampleRate  int

	mu     sync.Mutex
	active bool
}

// NewMicrophoneRecognizer creates a microphone recognizer
func NewMicrophoneRecognizer(transcriber stt.Transcriber, sampleRate int) *MicrophoneRecognizer {
	return &MicrophoneRecognizer{
		transcriber: transcriber,
		sampleRate:  sampleRate,
	}
}

// Start begins one single-shot capture. The returned channel delivers one
// transcript or error event, then an ended event, then closes.
func (m *MicrophoneRecognizer) Start(ctx context.Context) (<-chan voicebid.CaptureEvent, error) {
	if m.transcriber == nil {
		return nil, fmt.Errorf("capture: no transcriber configured: %w", auctionerrors.ErrCaptureUnsupported)
	}

	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return nil, errors.New("capture: already listening")
	}
	m.active = true
	m.mu.Unlock()

	events := make(chan voicebid.CaptureEvent, 4)
	go m.run(ctx, events)
	return events, nil
}

func (m *MicrophoneRecognizer) run(ctx context.Context, events chan<- voicebid.CaptureEvent) {
	defer close(events)
	defer func() {
		m.mu.Lock()
		m.active = false
		m.mu.Unlock()
	}()

	events <- voicebid.CaptureEvent{Kind: voicebid.CaptureStarted}

	fail := func(err error) {
		events <- voicebid.CaptureEvent{Kind: voicebid.CaptureError, Err: err}
		events <- voicebid.CaptureEvent{Kind: voicebid.CaptureEnded}
	}

	audio, err := m.record(ctx)
	if err != nil {
		fail(fmt.Errorf("recording: %w", err))
		return
	}

	text, err := m.transcriber.Transcribe(ctx, audio)
	if err != nil {
		fail(fmt.Errorf("transcribing: %w", err))
		return
	}

	events <- voicebid.CaptureEvent{Kind: voicebid.CaptureTranscript, Transcript: text}
	events <- voicebid.CaptureEvent{Kind: voicebid.CaptureEnded}
}

// record captures audio until roughly a second of silence follows speech, or
// the ten second cap is hit, and returns it as a WAV payload.
func (m *MicrophoneRecognizer) record(ctx context.Context) ([]byte, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, buffer)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	const silenceThreshold = 500
	samples := make([]int16, 0, m.sampleRate*5)
	silentSamples := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, buffer...)

		silent := true
		for _, sample := range buffer {
			if sample > silenceThreshold || sample < -silenceThreshold {
				silent = false
				break
			}
		}
		if silent {
			silentSamples += len(buffer)
		} else {
			silentSamples = 0
		}

		if silentSamples > m.sampleRate && len(samples) > m.sampleRate {
			break
		}
		if len(samples) > m.sampleRate*10 {
			break
		}
	}

	return samplesToWav(samples, m.sampleRate), nil
}

// samplesToWav wraps 16-bit mono PCM samples in a WAV container
func samplesToWav(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	for _, sample := range samples {
		binary.Write(&buf, binary.LittleEndian, sample)
	}

	return buf.Bytes()
}
