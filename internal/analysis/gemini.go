package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("model returned no content")

// GeminiModel is a thin wrapper around the official genai client.
type GeminiModel struct {
	cli   *genai.Client
	model string
}

func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiModel{cli: cli, model: model}, nil
}

func (g *GeminiModel) Name() string { return "gemini:" + g.model }

// GenerateJSON sends the prompt, the input as JSON and any attachments as
// inline data, and returns the model's JSON response.
func (g *GeminiModel) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	in, err := json.MarshalIndent(req.Input, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	parts := []*genai.Part{{Text: req.Prompt + "\n\n[INPUT JSON]\n" + string(in)}}
	for _, a := range req.Attachments {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: a.MIMEType, Data: a.Data}})
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: parts}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	txt := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if txt == "" {
		return nil, ErrEmptyResponse
	}
	return json.RawMessage(txt), nil
}
