package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/futig/study-helper/internal/entity"
)

// LoadContextFile reads the JSON document the web application writes
// before invoking a chat turn.
func LoadContextFile(path string) (*entity.ChatContextFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read context file: %w", entity.ErrUsage, err)
	}

	var file entity.ChatContextFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse context file %s: %w", entity.ErrUsage, path, err)
	}

	return &file, nil
}

// ToDescriptor fills absent fields with defaults: no title, no content and
// no history are all valid.
func ToDescriptor(file *entity.ChatContextFile) entity.ContentDescriptor {
	d := entity.ContentDescriptor{
		Title:    unknownTitle,
		FileType: entity.FileTypeText,
		Policy:   file.Policy,
	}

	if file.NoteID != nil {
		d.NoteID = *file.NoteID
	}
	if file.NoteTitle != nil && strings.TrimSpace(*file.NoteTitle) != "" {
		d.Title = *file.NoteTitle
	}
	if file.NoteContent != nil {
		d.RawContent = *file.NoteContent
	}
	if file.FileType != nil {
		d.FileType = entity.ParseFileType(*file.FileType)
	}

	d.History = make([]entity.ChatTurn, 0, len(file.ConversationHistory))
	for _, rec := range file.ConversationHistory {
		turn := entity.ChatTurn{Role: entity.RoleUser}
		if rec.Role != nil {
			turn.Role = normalizeRole(entity.Role(strings.ToLower(strings.TrimSpace(*rec.Role))))
		}
		if rec.Content != nil {
			turn.Content = *rec.Content
		}
		d.History = append(d.History, turn)
	}

	return d
}
