package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/lewisedginton/chat-gateway/internal/config"
	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

// VertexAI talks to Gemini through Vertex AI using ambient application
// default credentials. No API key is involved.
type VertexAI struct {
	cfg   config.ProviderConfig
	log   logger.Logger
	genFn generateFunc
}

func NewVertexAI(cfg config.ProviderConfig, l logger.Logger) *VertexAI {
	return &VertexAI{cfg: cfg, log: l}
}

func (v *VertexAI) Kind() string {
	return config.KindVertexAI
}

func (v *VertexAI) Init(ctx context.Context) error {
	if v.cfg.Project == "" {
		return ErrMissingProject
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  v.cfg.Project,
		Location: v.cfg.Region,
	})
	if err != nil {
		return fmt.Errorf("creating vertex ai client: %w", err)
	}
	v.genFn = client.Models.GenerateContent
	v.log.Info("vertex ai provider initialized",
		logger.StringField("model", v.cfg.Model),
		logger.StringField("project", v.cfg.Project),
		logger.StringField("region", v.cfg.Region))
	return nil
}

func (v *VertexAI) Generate(ctx context.Context, message string) (string, error) {
	return generate(ctx, v.genFn, v.cfg.Model, message)
}
