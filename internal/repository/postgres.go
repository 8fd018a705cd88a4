package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/study-helper/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = &Postgres{}

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (r *Postgres) Close() error {
	r.db.Close()
	return nil
}

func (r *Postgres) GetNote(ctx context.Context, noteID int64) (*entity.Note, error) {
	const query = `
		SELECT id, user_id, title, content, file_size, file_type, original_filename, uploaded_at
		FROM notes
		WHERE id = $1`

	note, err := scanNote(r.db.QueryRow(ctx, query, noteID))
	if err != nil {
		return nil, pgError("get note", err)
	}
	return note, nil
}

func (r *Postgres) GetExtraction(ctx context.Context, noteID int64) (*entity.ExtractionRecord, error) {
	const query = `
		SELECT note_id, user_id, extracted_text, extraction_status, error_message, extracted_at
		FROM extracted_content
		WHERE note_id = $1`

	var (
		rec    entity.ExtractionRecord
		status string
		errMsg *string
	)
	err := r.db.QueryRow(ctx, query, noteID).Scan(
		&rec.NoteID, &rec.UserID, &rec.ExtractedText, &status, &errMsg, &rec.ExtractedAt,
	)
	if err != nil {
		return nil, pgError("get extraction", err)
	}

	rec.Status = entity.ExtractionStatus(status)
	if errMsg != nil {
		rec.ErrorMessage = *errMsg
	}
	return &rec, nil
}

func (r *Postgres) UpsertExtraction(ctx context.Context, rec entity.ExtractionRecord) error {
	const query = `
		INSERT INTO extracted_content (note_id, user_id, extracted_text, extraction_status, error_message, extracted_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (note_id) DO UPDATE SET
			extracted_text = EXCLUDED.extracted_text,
			extraction_status = EXCLUDED.extraction_status,
			error_message = EXCLUDED.error_message,
			extracted_at = NOW()`

	if !rec.Status.Validate() {
		return fmt.Errorf("upsert extraction: invalid status %q", rec.Status)
	}

	_, err := r.db.Exec(ctx, query, rec.NoteID, rec.UserID, rec.ExtractedText, string(rec.Status), nullString(rec.ErrorMessage))
	if err != nil {
		return pgError("upsert extraction", err)
	}
	return nil
}

func (r *Postgres) ListNotesPendingExtraction(ctx context.Context) ([]entity.Note, error) {
	const query = `
		SELECT n.id, n.user_id, n.title, n.content, n.file_size, n.file_type, n.original_filename, n.uploaded_at
		FROM notes n
		LEFT JOIN extracted_content ec ON n.id = ec.note_id
		WHERE n.file_type IN ('PDF Document', 'PDF')
		  AND (ec.note_id IS NULL OR ec.extraction_status <> 'completed')
		ORDER BY n.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, pgError("list pending extractions", err)
	}
	defer rows.Close()

	var notes []entity.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, pgError("scan note", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, pgError("list pending extractions", err)
	}

	return notes, nil
}

func (r *Postgres) UpsertSummary(ctx context.Context, s entity.Summary) (*entity.Summary, error) {
	const query = `
		INSERT INTO summaries (note_id, user_id, summary_text, ai_model)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (note_id) DO UPDATE SET
			summary_text = EXCLUDED.summary_text,
			ai_model = EXCLUDED.ai_model,
			created_at = NOW()
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, s.NoteID, s.UserID, s.Text, s.AIModel).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, pgError("upsert summary", err)
	}
	return &s, nil
}

func (r *Postgres) GetSummary(ctx context.Context, noteID int64) (*entity.Summary, error) {
	const query = `
		SELECT id, note_id, user_id, summary_text, ai_model, created_at
		FROM summaries
		WHERE note_id = $1`

	var s entity.Summary
	err := r.db.QueryRow(ctx, query, noteID).Scan(&s.ID, &s.NoteID, &s.UserID, &s.Text, &s.AIModel, &s.CreatedAt)
	if err != nil {
		return nil, pgError("get summary", err)
	}
	return &s, nil
}

func (r *Postgres) UpsertQuiz(ctx context.Context, q entity.StoredQuiz) (*entity.StoredQuiz, error) {
	const query = `
		INSERT INTO quizzes (note_id, user_id, questions, title)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (note_id) DO UPDATE SET
			questions = EXCLUDED.questions,
			title = EXCLUDED.title,
			created_at = NOW()
		RETURNING id, created_at`

	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return nil, fmt.Errorf("marshal quiz questions: %w", err)
	}

	err = r.db.QueryRow(ctx, query, q.NoteID, q.UserID, string(questions), q.Title).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return nil, pgError("upsert quiz", err)
	}
	return &q, nil
}

func scanNote(row pgx.Row) (*entity.Note, error) {
	var (
		note       entity.Note
		fileType   string
		uploadedAt time.Time
	)
	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content,
		&note.FileSize, &fileType, &note.OriginalFilename, &uploadedAt,
	)
	if err != nil {
		return nil, err
	}

	note.FileType = entity.ParseFileType(fileType)
	note.UploadedAt = uploadedAt
	return &note, nil
}

func pgError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrExternalService, op, err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
