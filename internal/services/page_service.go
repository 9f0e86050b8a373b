package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"salesdash/internal/infrastructure"
)

// RenderedPage is a published dashboard document
type RenderedPage struct {
	HTML     []byte
	ETag     string
	BuiltAt  time.Time
	Duration time.Duration
}

// PageService holds the dashboard page rendered at startup. Requests only
// read the stored bytes; nothing is recomputed per request.
type PageService struct {
	page    atomic.Pointer[RenderedPage]
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewPageService creates an empty page store
func NewPageService(metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *PageService {
	return &PageService{
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "page_service"),
	}
}

// Publish stores a rendered page. The slice must not be modified afterwards.
func (s *PageService) Publish(html []byte, duration time.Duration) *RenderedPage {
	p := &RenderedPage{
		HTML:     html,
		ETag:     pageETag(html),
		BuiltAt:  time.Now(),
		Duration: duration,
	}
	s.page.Store(p)

	s.logger.Info("dashboard page published",
		slog.Int("bytes", len(html)),
		slog.String("etag", p.ETag),
		slog.Duration("build_duration", duration))
	return p
}

// Page returns the stored page or ErrPageNotBuilt
func (s *PageService) Page(ctx context.Context) (*RenderedPage, error) {
	p := s.page.Load()
	if p == nil {
		return nil, ErrPageNotBuilt
	}
	infrastructure.RecordPageServed(ctx, s.metrics)
	return p, nil
}

// Ready reports whether a page has been published
func (s *PageService) Ready() bool {
	return s.page.Load() != nil
}

// Snapshot returns the stored page without counting a view
func (s *PageService) Snapshot() *RenderedPage {
	return s.page.Load()
}
