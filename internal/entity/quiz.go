package entity

const (
	QuizQuestionCount = 10
	QuizOptionCount   = 4
)

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"len=4"`
	Correct  string   `json:"correct" validate:"oneof=A B C D"`
}

// Quiz is exactly QuizQuestionCount questions once validated.
type Quiz []QuizQuestion
