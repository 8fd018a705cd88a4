package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/study-helper/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockModel = "mock"

// MockConnector stands in for both model endpoints when ENABLE_MOCKS is
// set. Quiz prompts get a valid 10-question quiz, everything else a canned
// answer echoing the request.
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) Model() string {
	return mockModel
}

func (m *MockConnector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] chat completion", zap.Int("messages", len(messages)))

	if len(messages) == 0 {
		return "", fmt.Errorf("%w: no messages", entity.ErrExternalService)
	}
	last := messages[len(messages)-1].Content

	if strings.Contains(last, "multiple-choice questions") {
		return mockQuiz()
	}

	return fmt.Sprintf("This is a mock answer to: %s", strings.TrimSpace(last)), nil
}

func (m *MockConnector) Summarize(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] summary", zap.Int("prompt_length", len(prompt)))

	return "- This is a mock summary.\n- It lists the key points of the document.", nil
}

func mockQuiz() (string, error) {
	quiz := make(entity.Quiz, 0, entity.QuizQuestionCount)
	keys := []string{"A", "B", "C", "D"}
	for i := 1; i <= entity.QuizQuestionCount; i++ {
		quiz = append(quiz, entity.QuizQuestion{
			Question: fmt.Sprintf("Mock question %d?", i),
			Options:  []string{"Option A", "Option B", "Option C", "Option D"},
			Correct:  keys[(i-1)%len(keys)],
		})
	}

	data, err := json.Marshal(quiz)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
