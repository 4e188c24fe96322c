// Package gemini wraps the Gemini API for vision prompting: one image
// plus a text prompt in, the model's text answer out. Supports both the
// Gemini API (API key) and Vertex AI (project + location) backends.
package gemini

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// Client defines the Gemini operation used by the benchmark.
type Client interface {
	SolveImage(ctx context.Context, req SolveRequest) (*SolveResponse, error)
}

// SolveRequest is a single vision prompt: the puzzle image plus the
// instruction text.
type SolveRequest struct {
	Prompt    string
	ImageData []byte
	MIMEType  string // "image/png" or "image/jpeg"
}

// SolveResponse carries the model's answer text and token usage.
type SolveResponse struct {
	Text         string
	InputTokens  int32
	OutputTokens int32
}

// Config selects the backend and model.
type Config struct {
	APIKey          string
	Model           string
	UseVertex       bool
	Project         string
	Location        string
	MaxOutputTokens int32
}

type genaiClient struct {
	client *genai.Client
	cfg    Config
}

// NewClient creates a Gemini vision client on the configured backend.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.UseVertex {
		clientCfg = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Project,
			Location: cfg.Location,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &genaiClient{client: client, cfg: cfg}, nil
}

func (c *genaiClient) SolveImage(ctx context.Context, req SolveRequest) (*SolveResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.ImageData, req.MIMEType),
			{Text: req.Prompt},
		}, genai.RoleUser),
	}

	genCfg := &genai.GenerateContentConfig{}
	if c.cfg.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = c.cfg.MaxOutputTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, genCfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: generate content")
	}

	out := &SolveResponse{}
	if resp.UsageMetadata != nil {
		out.InputTokens = resp.UsageMetadata.PromptTokenCount
		out.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				out.Text += part.Text
			}
		}
	}
	if out.Text == "" {
		return nil, eris.New("gemini: empty response")
	}
	return out, nil
}
