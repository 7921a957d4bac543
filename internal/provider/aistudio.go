package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/lewisedginton/chat-gateway/internal/config"
	"github.com/lewisedginton/chat-gateway/internal/secrets"
	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

// AIStudio talks to the Gemini API directly, authenticating with an API key
// fetched from Secret Manager at startup.
type AIStudio struct {
	cfg     config.ProviderConfig
	secrets secrets.Accessor
	log     logger.Logger
	apiKey  string
	genFn   generateFunc
}

func NewAIStudio(cfg config.ProviderConfig, accessor secrets.Accessor, l logger.Logger) *AIStudio {
	return &AIStudio{cfg: cfg, secrets: accessor, log: l}
}

func (a *AIStudio) Kind() string {
	return config.KindAIStudio
}

func (a *AIStudio) Init(ctx context.Context) error {
	if a.cfg.SecretRef == "" {
		return ErrMissingSecretRef
	}
	path, err := secrets.LatestVersionPath(a.cfg.SecretRef, a.cfg.Project)
	if err != nil {
		return err
	}
	payload, err := a.secrets.AccessVersion(ctx, path)
	if err != nil {
		return fmt.Errorf("fetching api key secret: %w", err)
	}
	a.apiKey = strings.TrimSpace(string(payload))
	if a.apiKey == "" {
		return ErrEmptySecret
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  a.apiKey,
	})
	if err != nil {
		return fmt.Errorf("creating gemini client: %w", err)
	}
	a.genFn = client.Models.GenerateContent
	a.log.Info("ai studio provider initialized",
		logger.StringField("model", a.cfg.Model),
		logger.StringField("secret", path))
	return nil
}

func (a *AIStudio) Generate(ctx context.Context, message string) (string, error) {
	return generate(ctx, a.genFn, a.cfg.Model, message)
}
