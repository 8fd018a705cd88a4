package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/study-helper/internal/entity"
)

// ParseID parses a positive numeric identifier given on the command line.
func ParseID(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", entity.ErrUsage, name)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", entity.ErrUsage, name, raw)
	}

	return id, nil
}

// RequireArgs checks that args has exactly n entries.
func RequireArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d argument(s), got %d; usage: %s", entity.ErrUsage, n, len(args), usage)
	}
	return nil
}
