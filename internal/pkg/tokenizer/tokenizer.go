package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// Counter measures and trims text in model tokens. The BPE tables are loaded
// on first use; if they cannot be loaded (tiktoken fetches them over the
// network) the counter estimates four characters per token.
type Counter struct {
	encoding string
	logger   *zap.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func New(encoding string, logger *zap.Logger) *Counter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Counter{encoding: encoding, logger: logger}
}

// NewEstimator returns a counter that never loads BPE tables.
func NewEstimator() *Counter {
	c := &Counter{logger: zap.NewNop()}
	c.once.Do(func() {})
	return c
}

func (c *Counter) load() *tiktoken.Tiktoken {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.logger.Warn("token encoding unavailable, estimating token counts",
				zap.String("encoding", c.encoding),
				zap.Error(err),
			)
			return
		}
		c.enc = enc
	})
	return c.enc
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if enc := c.load(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return estimate(text)
}

// Truncate returns the longest prefix of text that fits in limit tokens and
// whether anything was cut. A non-positive limit returns text unchanged.
func (c *Counter) Truncate(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}

	if enc := c.load(); enc != nil {
		tokens := enc.Encode(text, nil, nil)
		if len(tokens) <= limit {
			return text, false
		}
		return enc.Decode(tokens[:limit]), true
	}

	maxRunes := limit * 4
	if utf8.RuneCountInString(text) <= maxRunes {
		return text, false
	}
	return string([]rune(text)[:maxRunes]), true
}

func estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
