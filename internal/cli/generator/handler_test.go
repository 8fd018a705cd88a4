package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/futig/study-helper/internal/cli"
	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/pkg/response"
)

type fakeUsecase struct {
	noteID, userID int64
	format         entity.ResultFormat
	summary        *entity.Summary
	quiz           *entity.StoredQuiz
	file           *entity.ExportedFile
	err            error
}

func (f *fakeUsecase) Summary(_ context.Context, noteID, userID int64) (*entity.Summary, error) {
	f.noteID, f.userID = noteID, userID
	return f.summary, f.err
}

func (f *fakeUsecase) Quiz(_ context.Context, noteID, userID int64) (*entity.StoredQuiz, error) {
	f.noteID, f.userID = noteID, userID
	return f.quiz, f.err
}

func (f *fakeUsecase) Export(_ context.Context, noteID, userID int64, format entity.ResultFormat) (*entity.ExportedFile, error) {
	f.noteID, f.userID, f.format = noteID, userID, format
	return f.file, f.err
}

func run(t *testing.T, uc GenerationUsecase, args ...string) (int, map[string]any) {
	t.Helper()
	r := cli.NewRouter(Usage)
	RegisterRoutes(r, NewHandler(uc))

	var buf bytes.Buffer
	code := cli.Execute(context.Background(), &buf, r, args)

	var env map[string]any
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return code, env
}

func TestSummary(t *testing.T) {
	uc := &fakeUsecase{summary: &entity.Summary{
		ID:        3,
		NoteID:    10,
		UserID:    20,
		Text:      "- point",
		AIModel:   "gemini-2.5-flash",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	code, env := run(t, uc, "summary", "10", "20")

	if code != 0 || env["success"] != true || env["message"] != "Summary generated successfully" {
		t.Fatalf("got %d %v", code, env)
	}
	summary, ok := env["summary"].(map[string]any)
	if !ok {
		t.Fatalf("summary payload missing: %v", env)
	}
	if summary["content"] != "- point" || summary["ai_model"] != "gemini-2.5-flash" ||
		summary["note_id"] != float64(10) || summary["user_id"] != float64(20) ||
		summary["created_at"] != "2024-01-02T03:04:05Z" {
		t.Errorf("unexpected summary payload: %v", summary)
	}
	if uc.noteID != 10 || uc.userID != 20 {
		t.Errorf("ids = %d, %d", uc.noteID, uc.userID)
	}
}

func TestQuiz(t *testing.T) {
	questions := make(entity.Quiz, entity.QuizQuestionCount)
	for i := range questions {
		questions[i] = entity.QuizQuestion{
			Question: fmt.Sprintf("Q%d?", i+1),
			Options:  []string{"a", "b", "c", "d"},
			Correct:  "C",
		}
	}
	uc := &fakeUsecase{quiz: &entity.StoredQuiz{ID: 8, NoteID: 10, UserID: 20, Title: "Cells", Questions: questions}}

	code, env := run(t, uc, "quiz", "10", "20")

	if code != 0 || env["message"] != "Quiz generated successfully" {
		t.Fatalf("got %d %v", code, env)
	}
	quiz := env["quiz"].(map[string]any)
	if quiz["id"] != float64(8) || quiz["title"] != "Cells" {
		t.Errorf("unexpected quiz payload: %v", quiz)
	}
	qs := quiz["questions"].([]any)
	if len(qs) != 10 {
		t.Fatalf("questions = %d", len(qs))
	}
	first := qs[0].(map[string]any)
	if first["question"] != "Q1?" || first["correct"] != "C" || len(first["options"].([]any)) != 4 {
		t.Errorf("unexpected question: %v", first)
	}
}

func TestQuiz_OwnershipFailure(t *testing.T) {
	uc := &fakeUsecase{err: fmt.Errorf("note 10 for user 21: %w", entity.ErrNotFound)}

	code, env := run(t, uc, "quiz", "10", "21")

	if code != 0 || env["success"] != false || env["message"] != response.MessageNotFound {
		t.Errorf("got %d %v", code, env)
	}
	if _, leaked := env["quiz"]; leaked {
		t.Error("failure must not carry a payload")
	}
}

func TestExport(t *testing.T) {
	uc := &fakeUsecase{file: &entity.ExportedFile{Path: "exports/summary_note_10.pdf", ContentType: "application/pdf", Size: 2048}}

	code, env := run(t, uc, "export", "10", "20", ".PDF")

	if code != 0 || env["message"] != "Summary exported successfully" {
		t.Fatalf("got %d %v", code, env)
	}
	if uc.format != entity.FormatPDF {
		t.Errorf("format = %q", uc.format)
	}
	export := env["export"].(map[string]any)
	if export["path"] != "exports/summary_note_10.pdf" || export["format"] != "pdf" || export["size"] != float64(2048) {
		t.Errorf("unexpected export payload: %v", export)
	}
}

func TestBadArguments(t *testing.T) {
	cases := [][]string{
		{"summary", "10"},
		{"summary", "x", "20"},
		{"quiz", "10", "0"},
		{"export", "10", "20"},
		{"export", "10", "20", "odt"},
		{"poem", "10", "20"},
	}
	for _, args := range cases {
		uc := &fakeUsecase{}
		code, env := run(t, uc, args...)
		if code != 1 || env["success"] != false || env["message"] != Usage {
			t.Errorf("%v: got %d %v", args, code, env)
		}
		if uc.noteID != 0 {
			t.Errorf("%v: use case must not run", args)
		}
	}
}
