package entity

import (
	"fmt"
)

// ContentDescriptor is the request-scoped bundle identifying what to ground a
// generation call in.
type ContentDescriptor struct {
	Title      string
	RawContent string
	FileType   FileType
	History    []ChatTurn
	// NoteID is optional; when set the cached extraction can be looked up.
	NoteID int64
	// Policy is optional; empty means the configured default.
	Policy string
}

type ContentSource string

const (
	SourceInline      ContentSource = "inline"
	SourceCached      ContentSource = "cached"
	SourceExtracted   ContentSource = "extracted"
	SourceUnavailable ContentSource = "unavailable"
)

type UnavailableReason string

const (
	ReasonFileNotFound     UnavailableReason = "file_not_found"
	ReasonExtractionFailed UnavailableReason = "extraction_failed"
	ReasonEmptyText        UnavailableReason = "empty_text"
)

// ContentUnavailable describes why a PDF could not be turned into text.
// Ref is the storage reference as the caller knows it, Path the resolved
// location on disk.
type ContentUnavailable struct {
	Ref    string
	Path   string
	Reason UnavailableReason
	Err    error
}

func (c *ContentUnavailable) Error() string {
	where := c.Path
	if where == "" {
		where = c.Ref
	}
	msg := fmt.Sprintf("%s: %s", c.Reason, where)
	if c.Err != nil {
		msg += ": " + c.Err.Error()
	}
	return msg
}

func (c *ContentUnavailable) Unwrap() []error {
	if c.Err == nil {
		return []error{ErrContentUnavailable}
	}
	return []error{ErrContentUnavailable, c.Err}
}

// Marker renders the placeholder put in front of the model instead of
// document text.
func (c *ContentUnavailable) Marker() string {
	switch c.Reason {
	case ReasonFileNotFound:
		return fmt.Sprintf("[PDF file not found: %s]", c.Ref)
	case ReasonEmptyText:
		return fmt.Sprintf("[PDF contains no extractable text: %s]", c.Ref)
	default:
		return fmt.Sprintf("[PDF Content extraction failed: %s]", c.Ref)
	}
}

// ResolvedContent is the outcome of content resolution. Exactly one of Text
// (for every source but unavailable) or Unavailable is meaningful.
type ResolvedContent struct {
	Text        string
	Source      ContentSource
	Truncated   bool
	Unavailable *ContentUnavailable
}

// Render returns the text to place in a prompt.
func (r ResolvedContent) Render() string {
	if r.Unavailable != nil {
		return r.Unavailable.Marker()
	}
	return r.Text
}

// Err returns the unavailability as an error, or nil.
func (r ResolvedContent) Err() error {
	if r.Unavailable == nil {
		return nil
	}
	return r.Unavailable
}
