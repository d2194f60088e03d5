// Package stt provides speech-to-text clients for the voice bidding flow.
package stt

import "context"

// Transcriber converts captured audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
