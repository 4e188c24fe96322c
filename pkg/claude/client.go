// Package claude wraps the Anthropic API for vision prompting: one
// image plus a text prompt in, the model's text answer out.
package claude

import (
	"context"
	"encoding/base64"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const defaultMaxTokens = 1024

// Client defines the Anthropic operation used by the benchmark.
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
	InputTokens  int64
	OutputTokens int64
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// Option configures the client.
type Option func(*sdkClient)

// WithMaxTokens overrides the default response token cap.
func WithMaxTokens(n int64) Option {
	return func(c *sdkClient) {
		c.maxTokens = n
	}
}

// NewClient creates a new Anthropic vision client backed by the SDK.
func NewClient(apiKey, model string, opts ...Option) Client {
	c := &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
		model:     model,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *sdkClient) SolveImage(ctx context.Context, req SolveRequest) (*SolveResponse, error) {
	imageBlock := sdk.ContentBlockParamUnion{
		OfImage: &sdk.ImageBlockParam{
			Source: sdk.ImageBlockParamSourceUnion{
				OfBase64: &sdk.Base64ImageSourceParam{
					Data:      base64.StdEncoding.EncodeToString(req.ImageData),
					MediaType: sdk.Base64ImageSourceMediaType(req.MIMEType),
				},
			},
		},
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(imageBlock, sdk.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "claude: solve image")
	}

	resp := &SolveResponse{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			resp.Text += block.Text
		}
	}
	return resp, nil
}
