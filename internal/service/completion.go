package service

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"whatsapp-gpt-relay/internal/config"
	"whatsapp-gpt-relay/internal/metrics"
	"whatsapp-gpt-relay/internal/model"
	"whatsapp-gpt-relay/pkg/logger"
)

// CompletionService generates replies through the OpenAI Chat Completions API
type CompletionService struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

// NewCompletionService creates a new completion service.
// The underlying client is built once and shared by every request.
func NewCompletionService(cfg *config.OpenAIConfig, log *logger.Logger) *CompletionService {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &CompletionService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: log,
	}
}

// Model returns the completion model identifier
func (s *CompletionService) Model() string {
	return s.model
}

// Complete sends text as a single user message and returns the first choice.
// An empty or missing choice yields model.FallbackReply.
func (s *CompletionService) Complete(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	s.logger.Debug("Completion received",
		"model", resp.Model,
		"choices", len(resp.Choices),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	if content == "" {
		metrics.CompletionFallbacks.Inc()
		return model.FallbackReply, nil
	}
	return content, nil
}
