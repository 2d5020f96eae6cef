package repositories

import "context"

// TextToSpeech abstracts the remote voice-synthesis provider.
//
// ConvertTextToSpeech performs the remote exchange up to the status line
// synchronously, so an error return means no audio was produced at all.
// Audio bytes then arrive on the channel in chunks; a mid-stream failure
// closes the channel early.
type TextToSpeech interface {
	ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error)
}
