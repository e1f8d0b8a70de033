package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	stderrors "lira-chatbot/internal/common/errors"
	"lira-chatbot/internal/session"
)

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed model client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Open starts a conversation seeded with the given history.
func (g *GeminiClient) Open(history []session.Turn) Conversation {
	return &geminiConversation{
		client:   g.client,
		model:    g.model,
		contents: turnsToContents(history),
	}
}

// Close closes the underlying genai client. The genai SDK's Client has no
// Close method (nothing to release), so this is a no-op.
func (g *GeminiClient) Close() error {
	return nil
}

type geminiConversation struct {
	client   *genai.Client
	model    string
	contents []*genai.Content
}

func (c *geminiConversation) Send(ctx context.Context, text string, cfg GenerationConfig) (string, error) {
	contents := append(c.contents, genai.NewContentFromText(text, genai.RoleUser))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(cfg.Temperature)),
		TopP:            genai.Ptr(float32(cfg.TopP)),
		TopK:            genai.Ptr(float32(cfg.TopK)),
		MaxOutputTokens: int32(cfg.MaxOutputTokens),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", stderrors.NewModelTimeoutError()
		}
		return "", stderrors.NewModelCallFailedError(err)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", stderrors.NewEmptyReplyError()
	}

	// Keep the service's own content for the model turn so role attribution
	// round-trips untouched.
	c.contents = contents
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		c.contents = append(c.contents, resp.Candidates[0].Content)
	} else {
		c.contents = append(c.contents, genai.NewContentFromText(reply, genai.RoleModel))
	}

	return reply, nil
}

func (c *geminiConversation) History() []session.Turn {
	return contentsToTurns(c.contents)
}

func turnsToContents(turns []session.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		parts := make([]*genai.Part, 0, len(t.Parts))
		for _, p := range t.Parts {
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
		contents = append(contents, &genai.Content{Role: t.Role, Parts: parts})
	}
	return contents
}

func contentsToTurns(contents []*genai.Content) []session.Turn {
	turns := make([]session.Turn, 0, len(contents))
	for _, c := range contents {
		parts := make([]session.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			parts = append(parts, session.Part{Text: p.Text})
		}
		turns = append(turns, session.Turn{Role: c.Role, Parts: parts})
	}
	return turns
}
