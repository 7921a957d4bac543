package provider

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/lewisedginton/chat-gateway/internal/config"
	"github.com/lewisedginton/chat-gateway/internal/secrets"
	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

var (
	ErrUnknownProviderKind = errors.New("unknown provider kind")
	ErrMissingProject      = errors.New("google cloud project is required")
	ErrMissingSecretRef    = errors.New("api key secret reference is required")
	ErrEmptySecret         = errors.New("api key secret resolved to an empty value")
	ErrNotInitialized      = errors.New("provider has not been initialized")
	ErrMalformedResponse   = errors.New("model returned no usable content")
)

// Provider is a chat completion backend. Init must be called once before
// Generate; Generate is safe for concurrent use afterwards.
type Provider interface {
	Kind() string
	Init(ctx context.Context) error
	Generate(ctx context.Context, message string) (string, error)
}

// generateFunc matches genai.Models.GenerateContent and is swapped out in tests.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// ResolveKind normalizes the configured provider kind. An unset kind falls
// back to AI Studio, but anything else unrecognized is an error so that a
// misspelled value fails loudly instead of silently picking a default.
func ResolveKind(kind string) (string, error) {
	switch kind {
	case "":
		return config.KindAIStudio, nil
	case config.KindVertexAI, config.KindAIStudio:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProviderKind, kind)
	}
}

// New builds the provider selected by cfg.Kind. The secrets accessor is only
// used by the AI Studio variant and may be nil for Vertex AI.
func New(cfg config.ProviderConfig, accessor secrets.Accessor, l logger.Logger) (Provider, error) {
	kind, err := ResolveKind(cfg.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case config.KindVertexAI:
		return NewVertexAI(cfg, l), nil
	default:
		return NewAIStudio(cfg, accessor, l), nil
	}
}

func generate(ctx context.Context, fn generateFunc, model, message string) (string, error) {
	if fn == nil {
		return "", ErrNotInitialized
	}
	contents := []*genai.Content{genai.NewContentFromText(message, genai.RoleUser)}
	resp, err := fn(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	return firstCandidateText(resp)
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrMalformedResponse
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", ErrMalformedResponse
	}
	return content.Parts[0].Text, nil
}
