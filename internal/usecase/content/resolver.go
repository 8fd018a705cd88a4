package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/integration/pdf"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Mode selects how much text the caller can take.
type Mode int

const (
	// ModeChat caps the grounding text and the pages read on demand.
	ModeChat Mode = iota
	// ModeFull returns whole documents; callers size prompts themselves.
	ModeFull
)

func (m Mode) String() string {
	if m == ModeChat {
		return "chat"
	}
	return "full"
}

const (
	DefaultGroundingChars  = 4000
	DefaultChatMaxPages    = 5
	DefaultChatStopAtChars = 4000

	uploadsPrefix = "/uploads/"
	maxRefLength  = 1024
)

// ErrOutsideStorage rejects references that resolve outside the storage root.
var ErrOutsideStorage = errors.New("storage reference outside storage root")

type Config struct {
	// StorageRoot is the directory /uploads/... references live under.
	StorageRoot     string
	GroundingChars  int
	ChatMaxPages    int
	ChatStopAtChars int
}

// Resolver turns a content descriptor into the text a prompt is grounded in.
type Resolver struct {
	source TextSource
	cfg    Config
}

func NewResolver(source TextSource, cfg Config) *Resolver {
	if cfg.GroundingChars <= 0 {
		cfg.GroundingChars = DefaultGroundingChars
	}
	if cfg.ChatMaxPages <= 0 {
		cfg.ChatMaxPages = DefaultChatMaxPages
	}
	if cfg.ChatStopAtChars <= 0 {
		cfg.ChatStopAtChars = DefaultChatStopAtChars
	}
	return &Resolver{source: source, cfg: cfg}
}

// Resolve never fails: when a PDF cannot be read the result carries an
// Unavailable description instead of text. cached may be nil.
func (r *Resolver) Resolve(ctx context.Context, d entity.ContentDescriptor, cached *entity.ExtractionRecord, mode Mode) entity.ResolvedContent {
	if !d.FileType.IsPDF() {
		return r.finish(entity.ResolvedContent{Text: d.RawContent, Source: entity.SourceInline}, mode)
	}

	if cached.Usable() {
		ctxzap.Debug(ctx, "using stored extraction", zap.Int64("note_id", cached.NoteID))
		return r.finish(entity.ResolvedContent{Text: cached.ExtractedText, Source: entity.SourceCached}, mode)
	}

	if !IsStorageRef(d.RawContent) {
		// Already extracted upstream.
		return r.finish(entity.ResolvedContent{Text: d.RawContent, Source: entity.SourceInline}, mode)
	}

	ref := strings.TrimSpace(d.RawContent)
	path, err := r.ResolvePath(ref)
	if err != nil {
		ctxzap.Warn(ctx, "rejected storage reference", zap.String("ref", ref), zap.Error(err))
		return unavailable(ref, "", entity.ReasonFileNotFound, err)
	}

	limits := pdf.Limits{}
	if mode == ModeChat {
		limits = pdf.Limits{MaxPages: r.cfg.ChatMaxPages, StopAfterChars: r.cfg.ChatStopAtChars}
	}

	extraction, err := r.source.ExtractText(ctx, path, limits)
	if err != nil {
		reason := entity.ReasonExtractionFailed
		if pdf.IsNotFound(err) {
			reason = entity.ReasonFileNotFound
		}
		ctxzap.Warn(ctx, "pdf content unavailable",
			zap.String("path", path),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		return unavailable(ref, path, reason, err)
	}

	if strings.TrimSpace(extraction.Text) == "" {
		ctxzap.Warn(ctx, "pdf has no extractable text", zap.String("path", path))
		return unavailable(ref, path, entity.ReasonEmptyText, nil)
	}

	ctxzap.Info(ctx, "extracted pdf on demand",
		zap.String("path", path),
		zap.String("mode", mode.String()),
		zap.Int("pages_read", extraction.PagesRead),
		zap.Int("text_length", len(extraction.Text)),
	)

	return r.finish(entity.ResolvedContent{Text: extraction.Text, Source: entity.SourceExtracted}, mode)
}

func (r *Resolver) finish(rc entity.ResolvedContent, mode Mode) entity.ResolvedContent {
	if mode == ModeChat {
		rc.Text, rc.Truncated = TruncateRunes(rc.Text, r.cfg.GroundingChars)
	}
	return rc
}

func unavailable(ref, path string, reason entity.UnavailableReason, err error) entity.ResolvedContent {
	return entity.ResolvedContent{
		Source: entity.SourceUnavailable,
		Unavailable: &entity.ContentUnavailable{
			Ref:    ref,
			Path:   path,
			Reason: reason,
			Err:    err,
		},
	}
}

// ResolvePath maps a storage reference to a file on disk. /uploads/...
// references and relative paths live under the storage root; absolute
// paths are accepted only when they already point inside it.
func (r *Resolver) ResolvePath(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	root := filepath.Clean(r.cfg.StorageRoot)

	var path string
	switch {
	case strings.HasPrefix(ref, uploadsPrefix):
		path = filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	case filepath.IsAbs(ref):
		path = filepath.Clean(ref)
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	default:
		path = filepath.Join(root, filepath.FromSlash(ref))
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideStorage, ref)
	}
	return path, nil
}

// IsStorageRef reports whether raw names a stored upload rather than
// holding document text. Only /uploads/ references qualify; anything else
// is text the caller already extracted.
func IsStorageRef(raw string) bool {
	ref := strings.TrimSpace(raw)
	if ref == "" || len(ref) > maxRefLength || strings.ContainsAny(ref, "\r\n") {
		return false
	}
	return strings.HasPrefix(ref, uploadsPrefix) ||
		strings.HasPrefix(ref, strings.TrimPrefix(uploadsPrefix, "/"))
}

// TruncateRunes keeps the first limit characters of s.
func TruncateRunes(s string, limit int) (string, bool) {
	if limit <= 0 {
		return s, false
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i], true
		}
		count++
	}
	return s, false
}
