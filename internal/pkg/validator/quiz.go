package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/study-helper/internal/entity"
	"github.com/go-playground/validator/v10"
)

var quizFields = []string{"question", "options", "correct"}

// QuizValidator checks raw model output against the fixed quiz shape. Any
// violation rejects the whole quiz.
type QuizValidator struct {
	validate *validator.Validate
}

func NewQuizValidator() *QuizValidator {
	return &QuizValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate strips one code fence, parses raw and returns the quiz or a
// *entity.QuizValidationError describing the first violation.
func (v *QuizValidator) Validate(raw string) (entity.Quiz, error) {
	body := StripCodeFence(raw)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		if !json.Valid([]byte(body)) {
			return nil, &entity.QuizValidationError{Kind: entity.QuizMalformedJSON, Detail: err.Error()}
		}
		// Valid JSON that is not an array.
		return nil, &entity.QuizValidationError{Kind: entity.QuizWrongCount, Detail: "expected a JSON array"}
	}

	if len(items) != entity.QuizQuestionCount {
		return nil, &entity.QuizValidationError{
			Kind:   entity.QuizWrongCount,
			Detail: fmt.Sprintf("got %d questions, want %d", len(items), entity.QuizQuestionCount),
		}
	}

	quiz := make(entity.Quiz, 0, len(items))
	for i, item := range items {
		q, err := v.validateQuestion(item)
		if err != nil {
			err.Index = i + 1
			return nil, err
		}
		quiz = append(quiz, q)
	}

	return quiz, nil
}

func (v *QuizValidator) validateQuestion(item json.RawMessage) (entity.QuizQuestion, *entity.QuizValidationError) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return entity.QuizQuestion{}, &entity.QuizValidationError{Kind: entity.QuizMalformedJSON, Detail: "question is not a JSON object"}
	}

	for _, name := range quizFields {
		value, ok := fields[name]
		if !ok || isNull(value) {
			return entity.QuizQuestion{}, &entity.QuizValidationError{Kind: entity.QuizMissingField, Detail: name}
		}
	}

	var options []json.RawMessage
	if err := json.Unmarshal(fields["options"], &options); err != nil || len(options) != entity.QuizOptionCount {
		return entity.QuizQuestion{}, &entity.QuizValidationError{
			Kind:   entity.QuizWrongOptionCount,
			Detail: fmt.Sprintf("got %d options, want %d", len(options), entity.QuizOptionCount),
		}
	}

	var q entity.QuizQuestion
	if err := json.Unmarshal(item, &q); err != nil {
		return entity.QuizQuestion{}, &entity.QuizValidationError{Kind: entity.QuizMalformedJSON, Detail: err.Error()}
	}

	if err := v.validate.Struct(q); err != nil {
		return entity.QuizQuestion{}, structFailure(err)
	}

	return q, nil
}

func structFailure(err error) *entity.QuizValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &entity.QuizValidationError{Kind: entity.QuizMalformedJSON, Detail: err.Error()}
	}

	fe := errs[0]
	switch fe.Tag() {
	case "len":
		return &entity.QuizValidationError{Kind: entity.QuizWrongOptionCount, Detail: fe.Field()}
	case "oneof":
		return &entity.QuizValidationError{
			Kind:   entity.QuizInvalidAnswerKey,
			Detail: fmt.Sprintf("got %q", fe.Value()),
		}
	default:
		return &entity.QuizValidationError{Kind: entity.QuizMissingField, Detail: strings.ToLower(fe.Field())}
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// StripCodeFence removes a single leading ``` or ```json marker and a single
// trailing ``` marker.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
