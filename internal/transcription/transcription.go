package transcription

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/config"
)

const Dependency = "speech"

// Transcriber turns an audio file on local disk into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// New returns the HTTP client, or the mock when USE_MOCK_TRANSCRIBE is on.
func New(cfg config.SpeechConfig, log *logrus.Entry) Transcriber {
	if cfg.UseMock {
		log.Info("mock transcription mode ON")
		return Mock{}
	}
	return NewClient(cfg, log)
}

// Mock returns a fixed transcript without touching the network.
type Mock struct {
	Text string
}

func (m Mock) Transcribe(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// the file must still exist while a transcription is in flight
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	if m.Text != "" {
		return m.Text, nil
	}
	return "MOCK TRANSCRIPT: Good morning class, chalo start karte hain. What is photosynthesis? " +
		"Take a moment to think. Yes, plants use sunlight to make food. Samajh mein aaya? " +
		"Let us quickly review what we covered yesterday before moving on.", nil
}
