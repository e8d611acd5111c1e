package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/spec-kit/checkin-service/internal/config"
)

type fakeModel struct {
	content  string
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.content}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerateSplitsLines(t *testing.T) {
	model := &fakeModel{content: "1. Which printer?\r\n\r\n2. Any error code?\n3. Is there a login?\n"}
	gen := NewFollowupGenerator(model, config.TextGenConfig{MaxTokens: 300}, nil)

	questions, err := gen.Generate(context.Background(), "Printer offline")
	require.NoError(t, err)
	assert.Equal(t, []string{"1. Which printer?", "2. Any error code?", "3. Is there a login?"}, questions)

	require.Len(t, model.messages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "Printer offline"}, model.messages[1].Parts[0])
	assert.Equal(t, 300, model.options.MaxTokens)
}

func TestGenerateKeepsUnexpectedShapes(t *testing.T) {
	model := &fakeModel{content: "Could you describe it more?"}
	questions, err := NewFollowupGenerator(model, config.TextGenConfig{}, nil).Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Could you describe it more?"}, questions)
}

func TestGenerateEmptyCompletion(t *testing.T) {
	model := &fakeModel{content: "\n  \n"}
	_, err := NewFollowupGenerator(model, config.TextGenConfig{}, nil).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestGenerateWrapsServiceError(t *testing.T) {
	cause := errors.New("429 too many requests")
	model := &fakeModel{err: cause}
	_, err := NewFollowupGenerator(model, config.TextGenConfig{}, nil).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, cause)
}

func TestOpenAIModelGivesUpOnStalledServer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := config.TextGenConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4", MaxTokens: 300, TimeoutSeconds: 1}
	model, err := NewOpenAIModel(cfg)
	require.NoError(t, err)

	start := time.Now()
	_, err = NewFollowupGenerator(model, cfg, nil).Generate(context.Background(), "Printer offline")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
