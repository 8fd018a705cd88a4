package entity

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message of prior conversation.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatMessage is one role-tagged segment of an assembled prompt.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatContextFile is the JSON document the web backend writes before
// invoking the chat binary.
type ChatContextFile struct {
	NoteID              *int64          `json:"note_id,omitempty"`
	NoteTitle           *string         `json:"note_title"`
	NoteContent         *string         `json:"note_content"`
	FileType            *string         `json:"file_type"`
	ConversationHistory []HistoryRecord `json:"conversation_history"`
	Policy              string          `json:"policy,omitempty"`
}

// HistoryRecord keeps role/content optional so absent fields can be told
// apart from empty ones.
type HistoryRecord struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

// ChatAnswer is the result of one chat turn.
type ChatAnswer struct {
	Message string
	Model   string
}
