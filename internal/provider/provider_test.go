package provider

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/lewisedginton/chat-gateway/internal/config"
	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

type stubAccessor struct {
	payload  []byte
	err      error
	lastPath string
}

func (s *stubAccessor) AccessVersion(_ context.Context, versionPath string) ([]byte, error) {
	s.lastPath = versionPath
	return s.payload, s.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestResolveKind(t *testing.T) {
	testCases := []struct {
		name    string
		kind    string
		want    string
		wantErr bool
	}{
		{name: "unset defaults to ai studio", kind: "", want: config.KindAIStudio},
		{name: "vertex ai", kind: config.KindVertexAI, want: config.KindVertexAI},
		{name: "ai studio", kind: config.KindAIStudio, want: config.KindAIStudio},
		{name: "misspelled kind is rejected", kind: "VERTEX", wantErr: true},
		{name: "lowercase kind is rejected", kind: "ai_studio", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveKind(tc.kind)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownProviderKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewSelectsVariant(t *testing.T) {
	p, err := New(config.ProviderConfig{Kind: config.KindVertexAI}, nil, testLogger())
	require.NoError(t, err)
	assert.Equal(t, config.KindVertexAI, p.Kind())

	p, err = New(config.ProviderConfig{}, &stubAccessor{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, config.KindAIStudio, p.Kind())

	_, err = New(config.ProviderConfig{Kind: "GEMINI"}, nil, testLogger())
	require.ErrorIs(t, err, ErrUnknownProviderKind)
}

func TestVertexAIInitRequiresProject(t *testing.T) {
	v := NewVertexAI(config.ProviderConfig{Model: "gemini-2.5-flash"}, testLogger())
	err := v.Init(context.Background())
	require.ErrorIs(t, err, ErrMissingProject)
}

func TestAIStudioInitRequiresSecretRef(t *testing.T) {
	a := NewAIStudio(config.ProviderConfig{Model: "gemini-2.5-flash"}, &stubAccessor{}, testLogger())
	err := a.Init(context.Background())
	require.ErrorIs(t, err, ErrMissingSecretRef)
}

func TestAIStudioInitResolvesSecretPath(t *testing.T) {
	accessor := &stubAccessor{payload: []byte("test-key\n")}
	a := NewAIStudio(config.ProviderConfig{
		Model:     "gemini-2.5-flash",
		Project:   "proj-1",
		SecretRef: "gemini-key",
	}, accessor, testLogger())

	require.NoError(t, a.Init(context.Background()))
	assert.Equal(t, "projects/proj-1/secrets/gemini-key/versions/latest", accessor.lastPath)
	assert.Equal(t, "test-key", a.apiKey, "api key should be whitespace trimmed")
}

func TestAIStudioInitFailures(t *testing.T) {
	t.Run("accessor error", func(t *testing.T) {
		accessor := &stubAccessor{err: errors.New("permission denied")}
		a := NewAIStudio(config.ProviderConfig{SecretRef: "projects/p/secrets/k"}, accessor, testLogger())
		err := a.Init(context.Background())
		require.ErrorContains(t, err, "permission denied")
	})

	t.Run("empty payload", func(t *testing.T) {
		accessor := &stubAccessor{payload: []byte("  \n")}
		a := NewAIStudio(config.ProviderConfig{SecretRef: "projects/p/secrets/k"}, accessor, testLogger())
		err := a.Init(context.Background())
		require.ErrorIs(t, err, ErrEmptySecret)
	})
}

func TestGenerateBeforeInit(t *testing.T) {
	v := NewVertexAI(config.ProviderConfig{Model: "m"}, testLogger())
	_, err := v.Generate(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestGenerateReturnsFirstCandidateText(t *testing.T) {
	v := NewVertexAI(config.ProviderConfig{Model: "gemini-2.5-flash"}, testLogger())
	var gotModel string
	var gotContents []*genai.Content
	v.genFn = func(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel = model
		gotContents = contents
		return textResponse("hello there"), nil
	}

	reply, err := v.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
	assert.Equal(t, "gemini-2.5-flash", gotModel)
	require.Len(t, gotContents, 1)
	require.Len(t, gotContents[0].Parts, 1)
	assert.Equal(t, "hi", gotContents[0].Parts[0].Text)
}

func TestGenerateIsRepeatable(t *testing.T) {
	a := NewAIStudio(config.ProviderConfig{Model: "m"}, &stubAccessor{}, testLogger())
	calls := 0
	a.genFn = func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return textResponse("same answer"), nil
	}

	for i := 0; i < 3; i++ {
		reply, err := a.Generate(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, "same answer", reply)
	}
	assert.Equal(t, 3, calls)
}

func TestGeneratePropagatesBackendError(t *testing.T) {
	v := NewVertexAI(config.ProviderConfig{Model: "m"}, testLogger())
	v.genFn = func(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("quota exceeded")
	}

	_, err := v.Generate(context.Background(), "hi")
	require.ErrorContains(t, err, "quota exceeded")
}

func TestFirstCandidateText(t *testing.T) {
	testCases := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "nil response", resp: nil},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "nil content", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{
			name: "no parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{}},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := firstCandidateText(tc.resp)
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}

	text, err := firstCandidateText(textResponse("ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}
