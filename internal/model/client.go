// Package model adapts the external generative-model SDK behind a small
// conversation interface the gateway can be tested against.
package model

import (
	"context"

	"lira-chatbot/internal/session"
)

// GenerationConfig carries the per-call sampling parameters. Everything but
// Temperature is fixed per deployment.
type GenerationConfig struct {
	Temperature     float64
	TopP            float64
	TopK            float64
	MaxOutputTokens int
}

// Client opens stateful conversations seeded with prior history.
type Client interface {
	Open(history []session.Turn) Conversation
}

// Conversation is one running exchange with the model. Send blocks on the
// network round trip; History returns the full serialized transcript with
// ordering and role attribution exactly as the service reported them.
type Conversation interface {
	Send(ctx context.Context, text string, cfg GenerationConfig) (string, error)
	History() []session.Turn
}
