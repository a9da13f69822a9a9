package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/httpclient"
	"github.com/kbukum/pipegen/httpclient/rest"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/observability"
)

// Fetcher loads pipeline catalogs from a discovery endpoint.
type Fetcher struct {
	client  *rest.Client
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// WithMetrics records fetch outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// WithClock overrides the time source used for Catalog.FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher creates a Fetcher. The transport is taken from cfg, so callers
// route discovery through a proxy or a custom RoundTripper there.
func NewFetcher(cfg httpclient.Config, opts ...Option) (*Fetcher, error) {
	client, err := rest.New(cfg)
	if err != nil {
		return nil, err
	}
	f := &Fetcher{
		client: client,
		log:    logger.Get("catalog"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch normalizes root, requests the discovery endpoint and returns the
// validated catalog. An invalid root fails before any request is made.
func (f *Fetcher) Fetch(ctx context.Context, root string) (cat *Catalog, err error) {
	base, err := NormalizeBaseURL(root)
	if err != nil {
		return nil, err
	}
	target := DiscoveryURL(base)

	ctx, span := observability.StartSpan(ctx, observability.SpanCatalogFetch)
	observability.SetSpanAttribute(ctx, observability.AttrURL, target)
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = string(errors.Wrap(err).Code)
		}
		f.metrics.RecordFetch(ctx, status, time.Since(start))
		observability.EndSpan(span, err)
	}()

	resp, err := rest.Get[json.RawMessage](ctx, f.client, target)
	if err != nil {
		appErr := f.classify(err, target)
		f.log.WithContext(ctx).Warn("catalog fetch failed", logger.Fields(
			logger.FieldURL, target,
			logger.FieldError, appErr.Message,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
		return nil, appErr
	}

	decoded, err := Decode(resp.Raw)
	if err != nil {
		f.log.WithContext(ctx).Warn("catalog shape mismatch", logger.Fields(
			logger.FieldURL, target,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	cat = &Catalog{
		BaseURL:   APIBase(base),
		Pipelines: Transform(decoded),
		FetchedAt: f.now().UTC(),
	}
	observability.SetSpanAttribute(ctx, observability.AttrPipelines, len(cat.Pipelines))
	f.log.WithContext(ctx).Info("catalog loaded", logger.Fields(
		logger.FieldURL, target,
		"pipelines", len(cat.Pipelines),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return cat, nil
}

func (f *Fetcher) classify(err error, target string) *errors.AppError {
	switch {
	case rest.IsDecode(err):
		return errors.ShapeMismatch("body is not valid JSON").WithCause(err)
	case rest.IsStatus(err):
		return errors.FetchFailed(httpclient.StatusCodeOf(err), target).WithCause(err)
	default:
		return errors.FetchFailed(0, target).WithCause(err)
	}
}
