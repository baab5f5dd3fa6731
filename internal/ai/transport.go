package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Transport sends a request to a text-generation model and returns the raw reply
type Transport interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiTransport calls the Gemini API through the genai SDK
type GeminiTransport struct {
	client *genai.Client
}

// NewGeminiTransport creates a client for the Gemini developer API.
// The key is passed in rather than read from the environment so callers
// decide where credentials come from.
func NewGeminiTransport(ctx context.Context, apiKey string) (*GeminiTransport, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiTransport{client: client}, nil
}

// Generate asks for a JSON reply constrained by req.Schema
func (t *GeminiTransport) Generate(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}

	resp, err := t.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Instruction), config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
