package repository

import (
	"context"

	"github.com/futig/study-helper/internal/entity"
)

// NoteRepository reads uploaded notes. Notes are owned by the web
// application; this module never writes them.
type NoteRepository interface {
	GetNote(ctx context.Context, noteID int64) (*entity.Note, error)
}

// ExtractionRepository persists PDF extraction results.
type ExtractionRepository interface {
	// GetExtraction returns the record for noteID in any status.
	GetExtraction(ctx context.Context, noteID int64) (*entity.ExtractionRecord, error)
	UpsertExtraction(ctx context.Context, rec entity.ExtractionRecord) error
	// ListNotesPendingExtraction returns PDF notes without a completed record.
	ListNotesPendingExtraction(ctx context.Context) ([]entity.Note, error)
}

type SummaryRepository interface {
	UpsertSummary(ctx context.Context, s entity.Summary) (*entity.Summary, error)
	GetSummary(ctx context.Context, noteID int64) (*entity.Summary, error)
}

type QuizRepository interface {
	UpsertQuiz(ctx context.Context, q entity.StoredQuiz) (*entity.StoredQuiz, error)
}

// Store bundles every repository for one backing database.
type Store interface {
	NoteRepository
	ExtractionRepository
	SummaryRepository
	QuizRepository
	Close() error
}
