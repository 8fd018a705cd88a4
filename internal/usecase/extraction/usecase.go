package extraction

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/integration/pdf"
	"github.com/futig/study-helper/internal/pkg/logger"
	"github.com/futig/study-helper/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	msgNoteNotFound = "Note not found"
	msgNotPDF       = "Note is not a PDF document"
	msgEmptyText    = "Extracted text is empty"
	msgNoContent    = "No extracted content found for this note"
	msgStoreFailed  = "Failed to store extracted content"
)

// Result is the outcome of extracting one note.
type Result struct {
	NoteID     int64
	TextLength int
}

// BatchItem reports one note of a batch run. Message is caller-safe.
type BatchItem struct {
	NoteID  int64
	Success bool
	Message string
}

// ExtractionUsecase turns uploaded PDFs into stored text.
type ExtractionUsecase struct {
	notes       repository.NoteRepository
	extractions repository.ExtractionRepository
	source      TextSource
	paths       PathResolver
}

func NewUsecase(store repository.Store, source TextSource, paths PathResolver) *ExtractionUsecase {
	return &ExtractionUsecase{
		notes:       store,
		extractions: store,
		source:      source,
		paths:       paths,
	}
}

// Extract reads every page of the note's PDF and stores the text. Failures
// past the note checks are recorded as a failed extraction before they are
// returned.
func (uc *ExtractionUsecase) Extract(ctx context.Context, noteID int64) (*Result, error) {
	note, err := uc.notes.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.WithUserMessage(fmt.Errorf("get note %d: %w", noteID, err), msgNoteNotFound)
		}
		return nil, fmt.Errorf("get note %d: %w", noteID, err)
	}

	if !note.FileType.IsPDF() {
		return nil, entity.WithUserMessage(
			fmt.Errorf("note %d has file type %q", noteID, note.FileType),
			msgNotPDF,
		)
	}

	ref := note.Content
	path, err := uc.paths.ResolvePath(ref)
	if err != nil {
		ctxzap.Warn(ctx, "rejected storage reference", zap.Int64("note_id", noteID), zap.Error(err))
		return nil, uc.fail(ctx, note, "PDF file not found: "+ref, &entity.ContentUnavailable{
			Ref: ref, Reason: entity.ReasonFileNotFound, Err: err,
		})
	}
	ctxzap.Info(ctx, "processing pdf", zap.Int64("note_id", noteID), zap.String("path", path))

	extraction, err := uc.source.ExtractText(ctx, path, pdf.Limits{})
	if err != nil {
		if pdf.IsNotFound(err) {
			msg := "PDF file not found: " + ref
			return nil, uc.fail(ctx, note, msg, &entity.ContentUnavailable{
				Ref: ref, Path: path, Reason: entity.ReasonFileNotFound, Err: err,
			})
		}
		msg := "Error during text extraction: " + err.Error()
		return nil, uc.fail(ctx, note, msg, &entity.ContentUnavailable{
			Ref: ref, Path: path, Reason: entity.ReasonExtractionFailed, Err: err,
		})
	}

	if extraction.Text == "" {
		return nil, uc.fail(ctx, note, msgEmptyText, &entity.ContentUnavailable{
			Ref: ref, Path: path, Reason: entity.ReasonEmptyText,
		})
	}

	err = uc.extractions.UpsertExtraction(ctx, entity.ExtractionRecord{
		NoteID:        note.ID,
		UserID:        note.UserID,
		ExtractedText: extraction.Text,
		Status:        entity.ExtractionCompleted,
	})
	if err != nil {
		return nil, entity.WithUserMessage(fmt.Errorf("store extraction: %w", err), msgStoreFailed)
	}

	ctxzap.Info(ctx, "extraction stored",
		zap.Int64("note_id", note.ID),
		zap.Int("pages_read", extraction.PagesRead),
		zap.Int("text_length", len(extraction.Text)),
	)

	return &Result{NoteID: note.ID, TextLength: len(extraction.Text)}, nil
}

// fail records a failed extraction and returns cause with msg attached.
func (uc *ExtractionUsecase) fail(ctx context.Context, note *entity.Note, msg string, cause error) error {
	ctxzap.Warn(ctx, "extraction failed", zap.Int64("note_id", note.ID), zap.Error(cause))

	err := uc.extractions.UpsertExtraction(ctx, entity.ExtractionRecord{
		NoteID:       note.ID,
		UserID:       note.UserID,
		Status:       entity.ExtractionFailed,
		ErrorMessage: msg,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to record extraction failure", zap.Int64("note_id", note.ID), zap.Error(err))
	}

	return entity.WithUserMessage(cause, msg)
}

// Batch extracts every PDF note without a completed extraction, one after
// another. A failing note does not stop the run.
func (uc *ExtractionUsecase) Batch(ctx context.Context) ([]BatchItem, error) {
	notes, err := uc.extractions.ListNotesPendingExtraction(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending notes: %w", err)
	}

	ctxzap.Info(ctx, "batch extraction started", zap.Int("notes", len(notes)))

	items := make([]BatchItem, 0, len(notes))
	for _, note := range notes {
		if err := ctx.Err(); err != nil {
			return items, fmt.Errorf("batch interrupted after %d notes: %w", len(items), err)
		}

		noteCtx := logger.AddFields(ctx, zap.Int64("note_id", note.ID))
		res, err := uc.Extract(noteCtx, note.ID)
		if err != nil {
			items = append(items, BatchItem{NoteID: note.ID, Message: batchMessage(err)})
			continue
		}
		items = append(items, BatchItem{
			NoteID:  note.ID,
			Success: true,
			Message: fmt.Sprintf("Content extracted and stored successfully (%d characters)", res.TextLength),
		})
	}

	return items, nil
}

func batchMessage(err error) string {
	var ue *entity.UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return "Unexpected error during extraction"
}

// Get returns the completed extraction of a note.
func (uc *ExtractionUsecase) Get(ctx context.Context, noteID int64) (*entity.ExtractionRecord, error) {
	rec, err := uc.extractions.GetExtraction(ctx, noteID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.WithUserMessage(fmt.Errorf("get extraction %d: %w", noteID, err), msgNoContent)
		}
		return nil, fmt.Errorf("get extraction %d: %w", noteID, err)
	}

	if rec.Status != entity.ExtractionCompleted {
		return nil, entity.WithUserMessage(
			fmt.Errorf("extraction %d is %s: %w", noteID, rec.Status, entity.ErrNotFound),
			msgNoContent,
		)
	}

	return rec, nil
}
