package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/study-helper/internal/config"
	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/integration/common"
	pkgRetry "github.com/futig/study-helper/internal/pkg/retry"
	pkghttp "github.com/futig/study-helper/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Sent as X-Title; OpenRouter attributes usage to it.
const appTitle = "study-helper"

// ChatConnector talks to an OpenAI-compatible chat completions endpoint
// (OpenRouter by default).
type ChatConnector struct {
	config    config.ChatLLMConfig
	connector *pkghttp.Connector
}

func NewChatConnector(cfg config.ChatLLMConfig, logger *zap.Logger) *ChatConnector {
	return &ChatConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, nil),
		config:    cfg,
	}
}

func (c *ChatConnector) Model() string {
	return c.config.Model
}

// Complete sends messages with the configured sampling parameters and
// returns the first choice, trimmed.
func (c *ChatConnector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	req := &entity.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	if c.config.TopP > 0 {
		topP := c.config.TopP
		req.TopP = &topP
	}

	ctxzap.Info(ctx, "requesting chat completion",
		zap.String("model", req.Model),
		zap.Int("messages", len(messages)),
	)

	resp, err := pkgRetry.Do(ctx, &c.config.Retry, pkghttp.IsRetryable, func() (*entity.ChatCompletionResponse, error) {
		var raw entity.ChatCompletionResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.CompletionsEndpoint, req, &raw, pkghttp.WithHeader("X-Title", appTitle)); err != nil {
			return nil, err
		}
		return &raw, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %w", entity.ErrExternalService, err)
	}

	if resp.Error != nil && resp.Error.Message != "" {
		return "", fmt.Errorf("%w: chat completion: %s", entity.ErrExternalService, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", entity.ErrExternalService)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	ctxzap.Info(ctx, "chat completion received", zap.Int("answer_length", len(answer)))

	return answer, nil
}
