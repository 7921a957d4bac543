package config

// Recognized provider kinds. An empty selector falls back to AI Studio;
// anything else is a fatal startup error.
const (
	KindVertexAI = "VERTEX_AI"
	KindAIStudio = "AI_STUDIO"
)

// ProviderConfig holds model provider selection and backend settings
type ProviderConfig struct {
	// Kind selects the backend: "VERTEX_AI" or "AI_STUDIO". Unset defaults
	// to AI Studio.
	Kind string `env:"LLM_PROVIDER" yaml:"kind"`

	// Model is the Gemini model to call
	Model string `env:"GEMINI_MODEL" yaml:"model" default:"gemini-2.5-flash"`

	// Project is the Google Cloud project. Required for Vertex AI, and for
	// AI Studio when SecretRef is a bare secret name.
	Project string `env:"GOOGLE_CLOUD_PROJECT" yaml:"project"`

	// Region is the Vertex AI location
	Region string `env:"GOOGLE_CLOUD_REGION" yaml:"region" default:"us-central1"`

	// SecretRef names the Secret Manager secret holding the Gemini API key.
	// Either a bare secret name or a fully-qualified
	// projects/{project}/secrets/{name} resource path.
	SecretRef string `env:"GEMINI_API_KEY_SECRET" yaml:"secret_ref"`
}
