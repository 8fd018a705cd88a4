package extractor

import "github.com/futig/study-helper/internal/cli"

// RegisterRoutes registers extraction modes
func RegisterRoutes(r *cli.Router, h *Handler) {
	r.Handle("extract", h.Extract)
	r.Handle("batch", h.Batch)
	r.Handle("get", h.Get)
}
