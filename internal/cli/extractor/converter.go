package extractor

import (
	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/usecase/extraction"
)

const timestampLayout = "2006-01-02 15:04:05"

type extractPayload struct {
	NoteID     int64 `json:"note_id"`
	TextLength int   `json:"text_length"`
}

type batchResult struct {
	NoteID  int64  `json:"note_id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type batchPayload struct {
	Results []batchResult `json:"results"`
}

type getPayload struct {
	NoteID        int64   `json:"note_id"`
	ExtractedText string  `json:"extracted_text"`
	ExtractedAt   *string `json:"extracted_at"`
}

func toExtractPayload(r *extraction.Result) extractPayload {
	return extractPayload{
		NoteID:     r.NoteID,
		TextLength: r.TextLength,
	}
}

func toBatchPayload(items []extraction.BatchItem) batchPayload {
	results := make([]batchResult, 0, len(items))
	for _, item := range items {
		results = append(results, batchResult{
			NoteID:  item.NoteID,
			Success: item.Success,
			Message: item.Message,
		})
	}
	return batchPayload{Results: results}
}

func toGetPayload(rec *entity.ExtractionRecord) getPayload {
	p := getPayload{
		NoteID:        rec.NoteID,
		ExtractedText: rec.ExtractedText,
	}
	if !rec.ExtractedAt.IsZero() {
		at := rec.ExtractedAt.Format(timestampLayout)
		p.ExtractedAt = &at
	}
	return p
}
