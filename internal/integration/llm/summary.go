package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/futig/study-helper/internal/config"
	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/integration/common"
	pkgRetry "github.com/futig/study-helper/internal/pkg/retry"
	pkghttp "github.com/futig/study-helper/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SummaryConnector calls the Gemini generateContent API with a single prompt.
type SummaryConnector struct {
	config    config.SummaryLLMConfig
	connector *pkghttp.Connector
}

func NewSummaryConnector(cfg config.SummaryLLMConfig, logger *zap.Logger) *SummaryConnector {
	return &SummaryConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithHeaderToken("x-goog-api-key", cfg.Token)),
		config:    cfg,
	}
}

func (c *SummaryConnector) Model() string {
	return c.config.Model
}

// Summarize returns the concatenated text parts of the first candidate.
func (c *SummaryConnector) Summarize(ctx context.Context, prompt string) (string, error) {
	req := &entity.GeminiGenerateRequest{
		Contents: []entity.GeminiContent{
			{Parts: []entity.GeminiPart{{Text: prompt}}},
		},
		GenerationConfig: entity.GeminiGenerationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
		},
	}
	endpoint := "/models/" + url.PathEscape(c.config.Model) + ":generateContent"

	ctxzap.Info(ctx, "requesting summary", zap.String("model", c.config.Model), zap.Int("prompt_length", len(prompt)))

	resp, err := pkgRetry.Do(ctx, &c.config.Retry, pkghttp.IsRetryable, func() (*entity.GeminiGenerateResponse, error) {
		var raw entity.GeminiGenerateResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &raw); err != nil {
			return nil, err
		}
		return &raw, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: generate summary: %w", entity.ErrExternalService, err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: generate summary returned no candidates", entity.ErrExternalService)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	summary := strings.TrimSpace(sb.String())

	ctxzap.Info(ctx, "summary generated", zap.Int("result_length", len(summary)))

	return summary, nil
}
