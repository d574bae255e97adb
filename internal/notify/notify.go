// Package notify abstracts the host's chat/notification channel. The
// service only decides content and visibility; rendering and sound
// playback stay on the host side.
package notify

import (
	"context"

	"github.com/forgelight/crucible/internal/logger"
)

// Message is one user-facing notification.
type Message struct {
	Content string `json:"content"`
	// Whisper restricts visibility to these user ids. Empty means public.
	Whisper []string `json:"whisper,omitempty"`
	// Sound is an optional completion cue path for the host to play.
	Sound string `json:"sound,omitempty"`
}

// Sink posts notifications to the host
type Sink interface {
	Post(ctx context.Context, msg Message) error
}

type logSink struct{}

// NewLogSink returns a Sink that writes notifications to the service log.
// Used when no host callback is configured and in tests.
func NewLogSink() Sink {
	return logSink{}
}

func (logSink) Post(ctx context.Context, msg Message) error {
	logger.FromContext(ctx).Info("Notification",
		"content", msg.Content,
		"whisper", msg.Whisper,
		"sound", msg.Sound)
	return nil
}
