package chat

import (
	"fmt"
	"os"
	"strings"

	"github.com/futig/study-helper/internal/entity"
	"gopkg.in/yaml.v3"
)

// Policy selects the instruction block of the system message.
type Policy string

const (
	// PolicyStrict answers only from the document and declines the rest.
	PolicyStrict Policy = "strict"
	// PolicyAdjacent prefers the document but allows general knowledge for
	// questions related to it.
	PolicyAdjacent Policy = "adjacent"
)

const (
	DefaultHistoryTurns = 10
	unknownTitle        = "Unknown Note"
	truncatedSuffix     = "... (truncated for brevity)"
)

// ParsePolicy accepts the policy names case-insensitively.
func ParsePolicy(raw string) (Policy, bool) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case PolicyStrict:
		return PolicyStrict, true
	case PolicyAdjacent:
		return PolicyAdjacent, true
	default:
		return "", false
	}
}

// Templates holds the instruction block for each policy.
type Templates struct {
	Strict   string `yaml:"strict"`
	Adjacent string `yaml:"adjacent"`
}

func DefaultTemplates() Templates {
	return Templates{
		Strict: strings.Join([]string{
			"- Answer questions based ONLY on the provided content",
			"- If you don't know the answer from the content, say so politely",
			"- Keep responses helpful and informative",
			"- Reference specific parts of the content when possible",
			"- Maintain context from the conversation history",
			"- Be concise but thorough",
		}, "\n"),
		Adjacent: strings.Join([]string{
			"- Answer from the provided content first and reference the parts you use",
			"- If the content does not cover a question that is related to its subject, you may use general knowledge and say that you did",
			"- Politely decline questions unrelated to the content",
			"- Keep responses helpful and informative",
			"- Maintain context from the conversation history",
			"- Be concise but thorough",
		}, "\n"),
	}
}

// LoadTemplates reads instruction overrides from a YAML file. Policies the
// file leaves out keep their defaults.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Templates{}, fmt.Errorf("read prompt templates: %w", err)
	}

	var override Templates
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Templates{}, fmt.Errorf("parse prompt templates %s: %w", path, err)
	}

	if s := strings.TrimSpace(override.Strict); s != "" {
		templates.Strict = s
	}
	if s := strings.TrimSpace(override.Adjacent); s != "" {
		templates.Adjacent = s
	}
	return templates, nil
}

func (t Templates) instructions(p Policy) string {
	if p == PolicyAdjacent {
		return t.Adjacent
	}
	return t.Strict
}

// PromptInput is everything one chat turn is assembled from.
type PromptInput struct {
	Title   string
	Content string
	// Truncated marks Content as cut to the grounding budget.
	Truncated   bool
	History     []entity.ChatTurn
	UserMessage string
	Policy      Policy
}

// Assembler builds the message sequence sent to the chat model.
type Assembler struct {
	templates    Templates
	historyTurns int
}

func NewAssembler(templates Templates, historyTurns int) *Assembler {
	if historyTurns < 0 {
		historyTurns = DefaultHistoryTurns
	}
	return &Assembler{templates: templates, historyTurns: historyTurns}
}

// Assemble returns one system message, the last historyTurns turns in their
// original order, and the user message: 1 + min(n, historyTurns) + 1
// messages.
func (a *Assembler) Assemble(in PromptInput) []entity.ChatMessage {
	history := in.History
	if len(history) > a.historyTurns {
		history = history[len(history)-a.historyTurns:]
	}

	messages := make([]entity.ChatMessage, 0, len(history)+2)
	messages = append(messages, entity.ChatMessage{
		Role:    entity.RoleSystem,
		Content: a.systemPrompt(in),
	})

	for _, turn := range history {
		messages = append(messages, entity.ChatMessage{
			Role:    normalizeRole(turn.Role),
			Content: turn.Content,
		})
	}

	messages = append(messages, entity.ChatMessage{
		Role:    entity.RoleUser,
		Content: in.UserMessage,
	})

	return messages
}

func (a *Assembler) systemPrompt(in PromptInput) string {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = unknownTitle
	}

	content := in.Content
	if in.Truncated {
		content += truncatedSuffix
	}

	var sb strings.Builder
	sb.WriteString("You are a helpful AI assistant who can answer questions about the user's uploaded content.\n\n")
	fmt.Fprintf(&sb, "CONTENT TITLE: %s\n", title)
	fmt.Fprintf(&sb, "CONTENT: %s\n\n", content)
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString(a.templates.instructions(in.Policy))
	sb.WriteString("\n\nCONVERSATION HISTORY:")
	return sb.String()
}

// normalizeRole maps anything but assistant to user; history never carries
// system messages.
func normalizeRole(r entity.Role) entity.Role {
	if r == entity.RoleAssistant {
		return entity.RoleAssistant
	}
	return entity.RoleUser
}
