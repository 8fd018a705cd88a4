package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/futig/study-helper/internal/entity"
)

func questionJSON(i int) string {
	return fmt.Sprintf(`{"question":"Q%d?","options":["a","b","c","d"],"correct":"B"}`, i)
}

func quizJSON(n int, mutate func(i int) string) string {
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if mutate != nil {
			if q := mutate(i); q != "" {
				parts = append(parts, q)
				continue
			}
		}
		parts = append(parts, questionJSON(i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestValidate_Accepts(t *testing.T) {
	quiz, err := NewQuizValidator().Validate(quizJSON(10, nil))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(quiz) != 10 {
		t.Fatalf("len = %d", len(quiz))
	}
	if quiz[0].Question != "Q1?" || quiz[9].Correct != "B" || len(quiz[3].Options) != 4 {
		t.Errorf("unexpected quiz: %+v", quiz)
	}
}

func TestValidate_StripsCodeFences(t *testing.T) {
	body := quizJSON(10, nil)
	inputs := map[string]string{
		"json fence":  "```json\n" + body + "\n```",
		"plain fence": "```\n" + body + "\n```",
		"whitespace":  "\n\n  ```json" + body + "```  \n",
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			quiz, err := NewQuizValidator().Validate(raw)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if len(quiz) != 10 {
				t.Errorf("len = %d", len(quiz))
			}
		})
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kind     entity.QuizFailureKind
		sentinel error
		index    int
	}{
		{
			name:     "not json",
			raw:      "Here are your questions: 1. What...",
			kind:     entity.QuizMalformedJSON,
			sentinel: entity.ErrMalformedJSON,
		},
		{
			name:     "nine questions",
			raw:      quizJSON(9, nil),
			kind:     entity.QuizWrongCount,
			sentinel: entity.ErrWrongCount,
		},
		{
			name:     "eleven questions",
			raw:      quizJSON(11, nil),
			kind:     entity.QuizWrongCount,
			sentinel: entity.ErrWrongCount,
		},
		{
			name:     "object instead of array",
			raw:      `{"questions":[]}`,
			kind:     entity.QuizWrongCount,
			sentinel: entity.ErrWrongCount,
		},
		{
			name: "missing correct",
			raw: quizJSON(10, func(i int) string {
				if i == 4 {
					return `{"question":"Q?","options":["a","b","c","d"]}`
				}
				return ""
			}),
			kind:     entity.QuizMissingField,
			sentinel: entity.ErrMissingField,
			index:    4,
		},
		{
			name: "null question",
			raw: quizJSON(10, func(i int) string {
				if i == 1 {
					return `{"question":null,"options":["a","b","c","d"],"correct":"A"}`
				}
				return ""
			}),
			kind:     entity.QuizMissingField,
			sentinel: entity.ErrMissingField,
			index:    1,
		},
		{
			name: "empty question",
			raw: quizJSON(10, func(i int) string {
				if i == 2 {
					return `{"question":"","options":["a","b","c","d"],"correct":"A"}`
				}
				return ""
			}),
			kind:     entity.QuizMissingField,
			sentinel: entity.ErrMissingField,
			index:    2,
		},
		{
			name: "three options",
			raw: quizJSON(10, func(i int) string {
				if i == 10 {
					return `{"question":"Q?","options":["a","b","c"],"correct":"A"}`
				}
				return ""
			}),
			kind:     entity.QuizWrongOptionCount,
			sentinel: entity.ErrWrongOptionCount,
			index:    10,
		},
		{
			name: "options not a list",
			raw: quizJSON(10, func(i int) string {
				if i == 5 {
					return `{"question":"Q?","options":"a,b,c,d","correct":"A"}`
				}
				return ""
			}),
			kind:     entity.QuizWrongOptionCount,
			sentinel: entity.ErrWrongOptionCount,
			index:    5,
		},
		{
			name: "answer key out of range",
			raw: quizJSON(10, func(i int) string {
				if i == 7 {
					return `{"question":"Q?","options":["a","b","c","d"],"correct":"E"}`
				}
				return ""
			}),
			kind:     entity.QuizInvalidAnswerKey,
			sentinel: entity.ErrInvalidAnswerKey,
			index:    7,
		},
		{
			name: "non-string option",
			raw: quizJSON(10, func(i int) string {
				if i == 3 {
					return `{"question":"Q?","options":["a","b","c",4],"correct":"A"}`
				}
				return ""
			}),
			kind:     entity.QuizMalformedJSON,
			sentinel: entity.ErrMalformedJSON,
			index:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz, err := NewQuizValidator().Validate(tt.raw)
			if quiz != nil {
				t.Errorf("partial quiz returned: %d questions", len(quiz))
			}

			var verr *entity.QuizValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *QuizValidationError, got %T: %v", err, err)
			}
			if verr.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", verr.Kind, tt.kind)
			}
			if verr.Index != tt.index {
				t.Errorf("index = %d, want %d", verr.Index, tt.index)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v) = false", tt.sentinel)
			}
			if !errors.Is(err, entity.ErrMalformedResponse) {
				t.Error("quiz failures should classify as malformed responses")
			}
		})
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	v := NewQuizValidator()

	quiz, err := v.Validate("```json\n" + quizJSON(10, nil) + "\n```")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	again, err := v.Validate(string(data))
	if err != nil {
		t.Fatalf("re-validate: %v", err)
	}
	if len(again) != len(quiz) || again[5].Question != quiz[5].Question {
		t.Errorf("round trip changed the quiz")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"[1]":                    "[1]",
		"```json\n[1]\n```":      "[1]",
		"```\n[1]\n```":          "[1]",
		"```json[1]":             "[1]",
		"  [1]```  ":             "[1]",
		"```json\n```json[1]```": "```json[1]",
	}
	for in, want := range tests {
		if got := StripCodeFence(in); got != want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("note_id", " 42 "); err != nil || id != 42 {
		t.Errorf("ParseID = %d, %v", id, err)
	}
	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		if _, err := ParseID("note_id", raw); !errors.Is(err, entity.ErrUsage) {
			t.Errorf("ParseID(%q) err = %v, want usage error", raw, err)
		}
	}
}

func TestRequireArgs(t *testing.T) {
	if err := RequireArgs([]string{"1", "2"}, 2, "summary <note_id> <user_id>"); err != nil {
		t.Errorf("RequireArgs: %v", err)
	}
	if err := RequireArgs([]string{"1"}, 2, "summary <note_id> <user_id>"); !errors.Is(err, entity.ErrUsage) {
		t.Errorf("err = %v, want usage error", err)
	}
}
