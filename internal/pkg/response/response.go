package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/futig/study-helper/internal/entity"
)

// Caller-safe messages.
const (
	MessageNotFound           = "Note not found"
	MessageContentUnavailable = "The note content is not available. Please try again later."
	MessageGeneric            = "I'm sorry, I encountered an error while processing your request. Please try again."
	MessageChatGeneric        = "I'm sorry, I encountered an error while processing your question. Please try again."
)

// Outcome is the result of one operation before it is shown to the caller.
type Outcome struct {
	// Message accompanies a successful payload.
	Message string
	// Payload must marshal to a JSON object; its fields are flattened into
	// the envelope.
	Payload any
	Err     error
	// FallbackMessage replaces MessageGeneric for errors that carry no
	// caller-safe message of their own.
	FallbackMessage string
}

// Envelope is the single JSON object written to stdout.
type Envelope struct {
	Success bool
	Message string
	Payload any
	// Error is diagnostic detail for logs and the calling process, never
	// for end users.
	Error string
}

// Format maps an outcome to its envelope. It does not modify o.
func Format(o Outcome) Envelope {
	if o.Err == nil {
		return Envelope{
			Success: true,
			Message: o.Message,
			Payload: o.Payload,
		}
	}

	return Envelope{
		Success: false,
		Message: failureMessage(o),
		Error:   o.Err.Error(),
	}
}

func failureMessage(o Outcome) string {
	var userErr *entity.UserError
	if errors.As(o.Err, &userErr) && userErr.Message != "" {
		return userErr.Message
	}

	switch entity.KindOf(o.Err) {
	case entity.KindNotFound:
		return MessageNotFound
	case entity.KindContentUnavailable:
		return MessageContentUnavailable
	}

	if o.FallbackMessage != "" {
		return o.FallbackMessage
	}
	return MessageGeneric
}

// MarshalJSON writes success and message first, then the payload fields,
// then error. HTML characters are not escaped.
func (e Envelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"success":`)
	if e.Success {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}

	if e.Message != "" {
		buf.WriteString(`,"message":`)
		if err := encode(&buf, e.Message); err != nil {
			return nil, err
		}
	}

	if e.Payload != nil {
		var payload bytes.Buffer
		if err := encode(&payload, e.Payload); err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body := bytes.TrimSpace(payload.Bytes())
		if len(body) < 2 || body[0] != '{' || body[len(body)-1] != '}' {
			return nil, fmt.Errorf("payload %T is not a JSON object", e.Payload)
		}
		if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
			buf.WriteByte(',')
			buf.Write(inner)
		}
	}

	if e.Error != "" {
		buf.WriteString(`,"error":`)
		if err := encode(&buf, e.Error); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Write encodes env as one line of JSON.
func Write(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(env)
}
