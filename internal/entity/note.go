package entity

import (
	"strings"
	"time"
)

type FileType string

const (
	FileTypeText        FileType = "Text"
	FileTypePDFDocument FileType = "PDF Document"
)

// ParseFileType maps the stored file_type column onto the two kinds the
// pipeline distinguishes. Upload code has written both "PDF Document" and
// "PDF"; anything else is treated as already-resolved text.
func ParseFileType(raw string) FileType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PDF", "PDF DOCUMENT":
		return FileTypePDFDocument
	default:
		return FileTypeText
	}
}

func (ft FileType) IsPDF() bool {
	return ft == FileTypePDFDocument
}

// Note is a row of the notes table. For PDFs Content holds the storage
// reference (e.g. /uploads/abc.pdf), for text notes the text itself.
type Note struct {
	ID               int64
	UserID           int64
	Title            string
	Content          string
	FileType         FileType
	FileSize         string
	OriginalFilename string
	UploadedAt       time.Time
}

// OwnedBy reports whether the note belongs to userID.
func (n *Note) OwnedBy(userID int64) bool {
	return n != nil && n.UserID == userID
}

type ExtractionStatus string

const (
	ExtractionPending   ExtractionStatus = "pending"
	ExtractionCompleted ExtractionStatus = "completed"
	ExtractionFailed    ExtractionStatus = "failed"
)

func (s ExtractionStatus) Validate() bool {
	switch s {
	case ExtractionPending, ExtractionCompleted, ExtractionFailed:
		return true
	default:
		return false
	}
}

// ExtractionRecord is a persisted result of running PDF text extraction.
type ExtractionRecord struct {
	NoteID        int64
	UserID        int64
	ExtractedText string
	Status        ExtractionStatus
	ErrorMessage  string
	ExtractedAt   time.Time
}

// Usable reports whether the record may be trusted as grounding text.
func (r *ExtractionRecord) Usable() bool {
	return r != nil && r.Status == ExtractionCompleted && r.ExtractedText != ""
}

// Summary is a row of the summaries table.
type Summary struct {
	ID        int64
	NoteID    int64
	UserID    int64
	Text      string
	AIModel   string
	CreatedAt time.Time
}

// StoredQuiz is a row of the quizzes table.
type StoredQuiz struct {
	ID        int64
	NoteID    int64
	UserID    int64
	Title     string
	Questions Quiz
	CreatedAt time.Time
}
