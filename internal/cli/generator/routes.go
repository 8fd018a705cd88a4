package generator

import "github.com/futig/study-helper/internal/cli"

// RegisterRoutes registers generation modes
func RegisterRoutes(r *cli.Router, h *Handler) {
	r.Handle("summary", h.Summary)
	r.Handle("quiz", h.Quiz)
	r.Handle("export", h.Export)
}
