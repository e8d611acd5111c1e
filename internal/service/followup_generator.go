package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/spec-kit/checkin-service/internal/config"
)

// ErrNoQuestions is returned when the completion holds no usable text.
var ErrNoQuestions = errors.New("text generation returned no questions")

const followupInstructions = `You are a helpful IT support agent. A client at the front desk has described an issue.
Please provide 2-3 clarifying questions that would help our techs resolve the issue faster.
Always include a question about whether there is a login username/password for the affected system.
Respond only with the questions in numbered format.`

// NewOpenAIModel builds the chat completion client from explicit configuration.
// Each request is bounded by cfg.Timeout regardless of the caller's context.
func NewOpenAIModel(cfg config.TextGenConfig) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}
	return llm, nil
}

// FollowupGenerator asks the text-generation service for clarifying questions.
type FollowupGenerator struct {
	llm       llms.Model
	maxTokens int
	logger    *zap.Logger
}

// NewFollowupGenerator wraps llm.
func NewFollowupGenerator(llm llms.Model, cfg config.TextGenConfig, logger *zap.Logger) *FollowupGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowupGenerator{llm: llm, maxTokens: cfg.MaxTokens, logger: logger}
}

// Generate returns the completion split into lines. Question count and wording are not
// checked; only blank lines are dropped. Because blank lines are dropped, question N is the
// Nth non-blank line and pairs with response_N, not with the Nth raw line of the completion.
// Errors are returned as-is, without retry.
func (g *FollowupGenerator) Generate(ctx context.Context, issue string) ([]string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, followupInstructions),
		llms.TextParts(schema.ChatMessageTypeHuman, issue),
	}
	var opts []llms.CallOption
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}

	resp, err := g.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		g.logger.Error("follow-up generation failed", zap.Error(err))
		return nil, fmt.Errorf("generate follow-ups: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrNoQuestions
	}

	questions := splitLines(resp.Choices[0].Content)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	g.logger.Debug("follow-ups generated", zap.Int("count", len(questions)))
	return questions, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
