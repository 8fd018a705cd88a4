package generator

import (
	"time"

	"github.com/futig/study-helper/internal/entity"
)

type summaryDTO struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	NoteID    int64  `json:"note_id"`
	UserID    int64  `json:"user_id"`
	AIModel   string `json:"ai_model"`
	CreatedAt string `json:"created_at,omitempty"`
}

type summaryPayload struct {
	Summary summaryDTO `json:"summary"`
}

type quizDTO struct {
	ID        int64       `json:"id"`
	NoteID    int64       `json:"note_id"`
	UserID    int64       `json:"user_id"`
	Title     string      `json:"title"`
	Questions entity.Quiz `json:"questions"`
	CreatedAt string      `json:"created_at,omitempty"`
}

type quizPayload struct {
	Quiz quizDTO `json:"quiz"`
}

type exportDTO struct {
	NoteID      int64  `json:"note_id"`
	Format      string `json:"format"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type exportPayload struct {
	Export exportDTO `json:"export"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toSummaryPayload(s *entity.Summary) summaryPayload {
	return summaryPayload{Summary: summaryDTO{
		ID:        s.ID,
		Content:   s.Text,
		NoteID:    s.NoteID,
		UserID:    s.UserID,
		AIModel:   s.AIModel,
		CreatedAt: formatTime(s.CreatedAt),
	}}
}

func toQuizPayload(q *entity.StoredQuiz) quizPayload {
	return quizPayload{Quiz: quizDTO{
		ID:        q.ID,
		NoteID:    q.NoteID,
		UserID:    q.UserID,
		Title:     q.Title,
		Questions: q.Questions,
		CreatedAt: formatTime(q.CreatedAt),
	}}
}

func toExportPayload(noteID int64, format entity.ResultFormat, f *entity.ExportedFile) exportPayload {
	return exportPayload{Export: exportDTO{
		NoteID:      noteID,
		Format:      string(format),
		Path:        f.Path,
		ContentType: f.ContentType,
		Size:        f.Size,
	}}
}
