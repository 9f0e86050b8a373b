package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	apperrors "salesdash/internal/errors"
	"salesdash/internal/services"
)

// PageHandler serves the dashboard document rendered at startup
type PageHandler struct {
	pages  *services.PageService
	errors *apperrors.ErrorHandler
	logger *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(pages *services.PageService, errors *apperrors.ErrorHandler, logger *slog.Logger) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandler{
		pages:  pages,
		errors: errors,
		logger: logger.With(slog.String("handler", "page")),
	}
}

// ServeDashboard handles GET / and HEAD /
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) error {
	page, err := h.pages.Page(r.Context())
	if errors.Is(err, services.ErrPageNotBuilt) {
		return apperrors.ErrPageNotReady
	}
	if err != nil {
		return err
	}

	w.Header().Set("ETag", page.ETag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), page.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(page.HTML)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return nil
	}

	if _, err := w.Write(page.HTML); err != nil {
		// the client went away; the status is already sent
		h.logger.DebugContext(r.Context(), "page write failed", slog.String("error", err.Error()))
	}
	return nil
}

// Handler adapts ServeDashboard to net/http
func (h *PageHandler) Handler() http.HandlerFunc {
	return apperrors.Handle(h.errors, h.ServeDashboard)
}

// etagMatches applies the weak comparison of If-None-Match: a list of tags
// or "*", each matching regardless of a W/ prefix
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}
