package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/pkg/formatter"
	"github.com/futig/study-helper/internal/repository"
	"github.com/futig/study-helper/internal/usecase/content"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Config struct {
	// MaxInputTokens caps the document text sent to a model; 0 sends it all.
	MaxInputTokens int
	ExportDir      string
}

// GenerationUsecase produces and stores summaries and quizzes for notes.
type GenerationUsecase struct {
	notes       repository.NoteRepository
	extractions repository.ExtractionRepository
	summaries   repository.SummaryRepository
	quizzes     repository.QuizRepository
	resolver    ContentResolver
	summarizer  Summarizer
	quizLLM     Completer
	validator   QuizValidator
	counter     TokenCounter
	formatters  FormatterFactory
	cfg         Config
}

func NewUsecase(
	store repository.Store,
	resolver ContentResolver,
	summarizer Summarizer,
	quizLLM Completer,
	validator QuizValidator,
	counter TokenCounter,
	formatters FormatterFactory,
	cfg Config,
) *GenerationUsecase {
	return &GenerationUsecase{
		notes:       store,
		extractions: store,
		summaries:   store,
		quizzes:     store,
		resolver:    resolver,
		summarizer:  summarizer,
		quizLLM:     quizLLM,
		validator:   validator,
		counter:     counter,
		formatters:  formatters,
		cfg:         cfg,
	}
}

// Summary summarizes the note and stores the result, replacing any earlier
// summary of the same note.
func (uc *GenerationUsecase) Summary(ctx context.Context, noteID, userID int64) (*entity.Summary, error) {
	note, err := uc.ownedNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	text, err := uc.sourceText(ctx, note)
	if err != nil {
		return nil, err
	}

	summary, err := uc.summarizer.Summarize(ctx, summaryPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, entity.WithUserMessage(
			fmt.Errorf("%w: summary model returned no text", entity.ErrExternalService),
			"Failed to generate summary - empty response from AI model",
		)
	}

	ctxzap.Info(ctx, "summary generated", zap.Int("summary_length", len(summary)))

	saved, err := uc.summaries.UpsertSummary(ctx, entity.Summary{
		NoteID:  note.ID,
		UserID:  userID,
		Text:    summary,
		AIModel: uc.summarizer.Model(),
	})
	if err != nil {
		return nil, entity.WithUserMessage(fmt.Errorf("save summary: %w", err), "Failed to save summary to database")
	}

	return saved, nil
}

// Quiz generates 10 multiple-choice questions for the note. A quiz that
// fails validation is rejected whole and nothing is stored.
func (uc *GenerationUsecase) Quiz(ctx context.Context, noteID, userID int64) (*entity.StoredQuiz, error) {
	note, err := uc.ownedNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	text, err := uc.sourceText(ctx, note)
	if err != nil {
		return nil, err
	}

	raw, err := uc.quizLLM.Complete(ctx, []entity.ChatMessage{
		{Role: entity.RoleUser, Content: quizPrompt(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	questions, err := uc.validator.Validate(raw)
	if err != nil {
		ctxzap.Warn(ctx, "quiz rejected",
			zap.Error(err),
			zap.String("raw_prefix", rawPrefix(raw)),
		)
		return nil, entity.WithUserMessage(fmt.Errorf("validate quiz: %w", err), "Failed to generate 10 questions")
	}

	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = untitledQuiz
	}

	saved, err := uc.quizzes.UpsertQuiz(ctx, entity.StoredQuiz{
		NoteID:    note.ID,
		UserID:    userID,
		Title:     title,
		Questions: questions,
	})
	if err != nil {
		return nil, entity.WithUserMessage(fmt.Errorf("save quiz: %w", err), "Failed to save quiz to database")
	}

	ctxzap.Info(ctx, "quiz stored", zap.Int64("quiz_id", saved.ID))

	return saved, nil
}

// Export renders the stored summary of a note into ExportDir.
func (uc *GenerationUsecase) Export(ctx context.Context, noteID, userID int64, format entity.ResultFormat) (*entity.ExportedFile, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	note, err := uc.ownedNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	summary, err := uc.summaries.GetSummary(ctx, note.ID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.WithUserMessage(fmt.Errorf("get summary: %w", err), "No summary found for this note")
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}

	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = "Summary"
	}

	data, err := f.Format(formatter.Document{
		Title:    title,
		Subtitle: fmt.Sprintf("Generated by %s on %s", summary.AIModel, summary.CreatedAt.UTC().Format("2006-01-02 15:04")),
		Body:     summary.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}

	if err := os.MkdirAll(uc.cfg.ExportDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(uc.cfg.ExportDir, fmt.Sprintf("summary_note_%d%s", note.ID, f.FileExtension()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}

	ctxzap.Info(ctx, "summary exported", zap.String("path", path), zap.Int("size", len(data)))

	return &entity.ExportedFile{
		Path:        path,
		ContentType: f.ContentType(),
		Size:        int64(len(data)),
	}, nil
}

// ownedNote hides notes of other users behind NotFound.
func (uc *GenerationUsecase) ownedNote(ctx context.Context, noteID, userID int64) (*entity.Note, error) {
	note, err := uc.notes.GetNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("get note %d: %w", noteID, err)
	}

	if !note.OwnedBy(userID) {
		ctxzap.Info(ctx, "note belongs to another user",
			zap.Int64("note_id", noteID),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("note %d for user %d: %w", noteID, userID, entity.ErrNotFound)
	}

	return note, nil
}

// sourceText returns the full document text of note, optionally cut to the
// input token budget.
func (uc *GenerationUsecase) sourceText(ctx context.Context, note *entity.Note) (string, error) {
	d := entity.ContentDescriptor{
		Title:      note.Title,
		RawContent: note.Content,
		FileType:   note.FileType,
		NoteID:     note.ID,
	}

	var cached *entity.ExtractionRecord
	if d.FileType.IsPDF() {
		rec, err := uc.extractions.GetExtraction(ctx, note.ID)
		switch {
		case err == nil:
			cached = rec
		case !errors.Is(err, entity.ErrNotFound):
			ctxzap.Warn(ctx, "stored extraction lookup failed", zap.Int64("note_id", note.ID), zap.Error(err))
		}
	}

	resolved := uc.resolver.Resolve(ctx, d, cached, content.ModeFull)
	if u := resolved.Unavailable; u != nil {
		ctxzap.Warn(ctx, "note content unavailable", zap.Error(u))
		return "", unavailableError(u)
	}

	text := resolved.Text
	if strings.TrimSpace(text) == "" {
		return "", entity.WithUserMessage(
			fmt.Errorf("%w: note %d is empty", entity.ErrContentUnavailable, note.ID),
			"Note content is empty",
		)
	}

	ctxzap.Info(ctx, "note content resolved",
		zap.String("source", string(resolved.Source)),
		zap.Int("text_length", len(text)),
	)

	if uc.cfg.MaxInputTokens > 0 && uc.counter != nil {
		if cut, truncated := uc.counter.Truncate(text, uc.cfg.MaxInputTokens); truncated {
			ctxzap.Warn(ctx, "document cut to input token budget",
				zap.Int("max_input_tokens", uc.cfg.MaxInputTokens),
				zap.Int("original_length", len(text)),
				zap.Int("sent_length", len(cut)),
			)
			text = cut
		}
	}

	return text, nil
}

func unavailableError(u *entity.ContentUnavailable) error {
	switch u.Reason {
	case entity.ReasonFileNotFound:
		return entity.WithUserMessage(u, "PDF file not found at: "+u.Ref)
	case entity.ReasonEmptyText:
		return entity.WithUserMessage(u, "Extracted text from PDF is empty")
	default:
		return entity.WithUserMessage(u, "Error accessing extracted content or processing PDF")
	}
}

func rawPrefix(raw string) string {
	prefix, _ := content.TruncateRunes(raw, 500)
	return prefix
}
