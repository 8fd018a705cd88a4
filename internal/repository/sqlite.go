package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/study-helper/internal/entity"
	_ "modernc.org/sqlite"
)

var _ Store = &SQLite{}

const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLite implements Store on a local database file. It mirrors the Postgres
// schema for local runs and tests.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateNote inserts a note. The web application owns notes in production;
// this exists for local seeding and tests.
func (s *SQLite) CreateNote(ctx context.Context, note entity.Note) (*entity.Note, error) {
	const query = `
		INSERT INTO notes (user_id, title, content, file_size, file_type, original_filename, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	if note.UploadedAt.IsZero() {
		note.UploadedAt = time.Now().UTC().Truncate(time.Second)
	}

	res, err := s.db.ExecContext(ctx, query,
		note.UserID, note.Title, note.Content, note.FileSize, string(note.FileType),
		note.OriginalFilename, note.UploadedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return nil, sqliteError("create note", err)
	}

	if note.ID, err = res.LastInsertId(); err != nil {
		return nil, sqliteError("create note", err)
	}
	return &note, nil
}

func (s *SQLite) GetNote(ctx context.Context, noteID int64) (*entity.Note, error) {
	const query = `
		SELECT id, user_id, title, content, file_size, file_type, original_filename, uploaded_at
		FROM notes
		WHERE id = ?`

	note, err := scanSQLiteNote(s.db.QueryRowContext(ctx, query, noteID))
	if err != nil {
		return nil, sqliteError("get note", err)
	}
	return note, nil
}

func (s *SQLite) GetExtraction(ctx context.Context, noteID int64) (*entity.ExtractionRecord, error) {
	const query = `
		SELECT note_id, user_id, extracted_text, extraction_status, error_message, extracted_at
		FROM extracted_content
		WHERE note_id = ?`

	var (
		rec         entity.ExtractionRecord
		status      string
		errMsg      sql.NullString
		extractedAt string
	)
	err := s.db.QueryRowContext(ctx, query, noteID).Scan(
		&rec.NoteID, &rec.UserID, &rec.ExtractedText, &status, &errMsg, &extractedAt,
	)
	if err != nil {
		return nil, sqliteError("get extraction", err)
	}

	rec.Status = entity.ExtractionStatus(status)
	rec.ErrorMessage = errMsg.String
	rec.ExtractedAt = parseSQLiteTime(extractedAt)
	return &rec, nil
}

func (s *SQLite) UpsertExtraction(ctx context.Context, rec entity.ExtractionRecord) error {
	const query = `
		INSERT INTO extracted_content (note_id, user_id, extracted_text, extraction_status, error_message, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (note_id) DO UPDATE SET
			extracted_text = excluded.extracted_text,
			extraction_status = excluded.extraction_status,
			error_message = excluded.error_message,
			extracted_at = excluded.extracted_at`

	if !rec.Status.Validate() {
		return fmt.Errorf("upsert extraction: invalid status %q", rec.Status)
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.NoteID, rec.UserID, rec.ExtractedText, string(rec.Status),
		nullString(rec.ErrorMessage), now(),
	)
	if err != nil {
		return sqliteError("upsert extraction", err)
	}
	return nil
}

func (s *SQLite) ListNotesPendingExtraction(ctx context.Context) ([]entity.Note, error) {
	const query = `
		SELECT n.id, n.user_id, n.title, n.content, n.file_size, n.file_type, n.original_filename, n.uploaded_at
		FROM notes n
		LEFT JOIN extracted_content ec ON n.id = ec.note_id
		WHERE n.file_type IN ('PDF Document', 'PDF')
		  AND (ec.note_id IS NULL OR ec.extraction_status <> 'completed')
		ORDER BY n.id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, sqliteError("list pending extractions", err)
	}
	defer rows.Close()

	var notes []entity.Note
	for rows.Next() {
		note, err := scanSQLiteNote(rows)
		if err != nil {
			return nil, sqliteError("scan note", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteError("list pending extractions", err)
	}

	return notes, nil
}

func (s *SQLite) UpsertSummary(ctx context.Context, sum entity.Summary) (*entity.Summary, error) {
	const query = `
		INSERT INTO summaries (note_id, user_id, summary_text, ai_model, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (note_id) DO UPDATE SET
			summary_text = excluded.summary_text,
			ai_model = excluded.ai_model,
			created_at = excluded.created_at
		RETURNING id, created_at`

	var createdAt string
	err := s.db.QueryRowContext(ctx, query, sum.NoteID, sum.UserID, sum.Text, sum.AIModel, now()).
		Scan(&sum.ID, &createdAt)
	if err != nil {
		return nil, sqliteError("upsert summary", err)
	}

	sum.CreatedAt = parseSQLiteTime(createdAt)
	return &sum, nil
}

func (s *SQLite) GetSummary(ctx context.Context, noteID int64) (*entity.Summary, error) {
	const query = `
		SELECT id, note_id, user_id, summary_text, ai_model, created_at
		FROM summaries
		WHERE note_id = ?`

	var (
		sum       entity.Summary
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, noteID).
		Scan(&sum.ID, &sum.NoteID, &sum.UserID, &sum.Text, &sum.AIModel, &createdAt)
	if err != nil {
		return nil, sqliteError("get summary", err)
	}

	sum.CreatedAt = parseSQLiteTime(createdAt)
	return &sum, nil
}

func (s *SQLite) UpsertQuiz(ctx context.Context, q entity.StoredQuiz) (*entity.StoredQuiz, error) {
	const query = `
		INSERT INTO quizzes (note_id, user_id, questions, title, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (note_id) DO UPDATE SET
			questions = excluded.questions,
			title = excluded.title,
			created_at = excluded.created_at
		RETURNING id, created_at`

	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return nil, fmt.Errorf("marshal quiz questions: %w", err)
	}

	var createdAt string
	err = s.db.QueryRowContext(ctx, query, q.NoteID, q.UserID, string(questions), q.Title, now()).
		Scan(&q.ID, &createdAt)
	if err != nil {
		return nil, sqliteError("upsert quiz", err)
	}

	q.CreatedAt = parseSQLiteTime(createdAt)
	return &q, nil
}

// GetQuiz reads a stored quiz back. Used by tests and local tooling.
func (s *SQLite) GetQuiz(ctx context.Context, noteID int64) (*entity.StoredQuiz, error) {
	const query = `
		SELECT id, note_id, user_id, title, questions, created_at
		FROM quizzes
		WHERE note_id = ?`

	var (
		q         entity.StoredQuiz
		questions string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, noteID).
		Scan(&q.ID, &q.NoteID, &q.UserID, &q.Title, &questions, &createdAt)
	if err != nil {
		return nil, sqliteError("get quiz", err)
	}

	if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
		return nil, fmt.Errorf("decode quiz questions: %w", err)
	}
	q.CreatedAt = parseSQLiteTime(createdAt)
	return &q, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteNote(row rowScanner) (*entity.Note, error) {
	var (
		note       entity.Note
		fileType   string
		uploadedAt string
	)
	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content,
		&note.FileSize, &fileType, &note.OriginalFilename, &uploadedAt,
	)
	if err != nil {
		return nil, err
	}

	note.FileType = entity.ParseFileType(fileType)
	note.UploadedAt = parseSQLiteTime(uploadedAt)
	return &note, nil
}

func sqliteError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrExternalService, op, err)
}

func now() string {
	return time.Now().UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
