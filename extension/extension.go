package extension

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kbukum/pipegen/catalog"
	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/host"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/microflow"
	"github.com/kbukum/pipegen/observability"
	"github.com/kbukum/pipegen/validation"
)

// Operation names, used for guards, notices and metrics.
const (
	OpLoadCatalog   = "load_catalog"
	OpPipelines     = "pipelines"
	OpSetPrefix     = "set_prefix"
	OpCreate        = "create_microflow"
	OpPreview       = "preview_microflow"
	OpDiscover      = "discover_existing"
	OpModules       = "modules"
	OpOpenMicroflow = "open_microflow"
)

// Fetcher loads a pipeline catalog from a root URL.
type Fetcher interface {
	Fetch(ctx context.Context, root string) (*catalog.Catalog, error)
}

// Config holds the user-adjustable extension settings.
type Config struct {
	Prefix   string
	Language string
	PerPage  int
}

// Extension is the boundary UI triggers call into. Each trigger runs at
// most once at a time; a second call while one is running fails with
// CONFLICT. Every failure is delivered to the Notifier.
type Extension struct {
	fetcher  Fetcher
	model    host.Model
	builder  *microflow.Builder
	notifier Notifier
	log      *logger.Logger
	metrics  *observability.Metrics

	catalog atomic.Pointer[catalog.Catalog]

	mu       sync.RWMutex
	prefix   string
	language string
	perPage  int

	guards map[string]*semaphore.Weighted
}

// Option configures an Extension.
type Option func(*Extension)

// WithNotifier sets where notices are delivered.
func WithNotifier(n Notifier) Option {
	return func(e *Extension) { e.notifier = n }
}

// WithLogger sets the extension logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Extension) { e.log = l }
}

// WithMetrics records operations on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Extension) { e.metrics = m }
}

// WithBuilder overrides the microflow builder.
func WithBuilder(b *microflow.Builder) Option {
	return func(e *Extension) { e.builder = b }
}

// New creates an Extension. cfg.Prefix is not checked here: generation
// rejects a bad prefix with INVALID_PREFIX and reports it as a notice.
// Callers that must fail early pass the prefix through SetPrefix.
func New(fetcher Fetcher, model host.Model, cfg Config, opts ...Option) *Extension {
	e := &Extension{
		fetcher:  fetcher,
		model:    model,
		prefix:   cfg.Prefix,
		language: cfg.Language,
		perPage:  cfg.PerPage,
		log:      logger.Get("extension"),
		guards:   make(map[string]*semaphore.Weighted),
	}
	if e.language == "" {
		e.language = microflow.DefaultLanguage
	}
	if e.perPage <= 0 {
		e.perPage = 10
	}
	for _, op := range []string{OpLoadCatalog, OpCreate, OpDiscover, OpModules, OpOpenMicroflow} {
		e.guards[op] = semaphore.NewWeighted(1)
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notifier == nil {
		e.notifier = LogNotifier{Log: e.log}
	}
	if e.builder == nil {
		e.builder = microflow.NewBuilder(
			microflow.WithBuilderLogger(e.log.WithComponent("microflow")),
			microflow.WithBuilderMetrics(e.metrics),
		)
	}
	return e
}

// run executes fn under the guard of op, recording metrics and turning a
// failure into a notice. Operations without a guard never overlap on
// shared state and run directly.
func (e *Extension) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if g, ok := e.guards[op]; ok {
		if !g.TryAcquire(1) {
			err := errors.Conflict(fmt.Sprintf("%s is already in progress.", humanize(op))).
				WithDetail("operation", op)
			e.notifier.Notify(ctx, NoticeFromError(op, err))
			return err
		}
		defer g.Release(1)
	}

	start := time.Now()
	err := fn(ctx)
	status := "success"
	if err != nil {
		status = "error"
		e.log.WithContext(ctx).Warn("Operation failed", logger.ErrorFields(op, err))
		e.notifier.Notify(ctx, NoticeFromError(op, err))
	}
	e.metrics.RecordOperation(ctx, op, status, time.Since(start))
	return err
}

// LoadCatalog fetches the catalog under root and makes it current. The
// previous catalog stays current when the fetch fails.
func (e *Extension) LoadCatalog(ctx context.Context, root string) (*catalog.Catalog, error) {
	var cat *catalog.Catalog
	err := e.run(ctx, OpLoadCatalog, func(ctx context.Context) error {
		var err error
		cat, err = e.fetcher.Fetch(ctx, root)
		if err != nil {
			return err
		}
		e.catalog.Store(cat)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Catalog returns the current catalog, or nil before the first load.
func (e *Extension) Catalog() *catalog.Catalog {
	return e.catalog.Load()
}

// PipelinePage is one page of the current catalog.
type PipelinePage struct {
	BaseURL   string             `json:"base_url" yaml:"base_url"`
	Page      catalog.Page       `json:"page" yaml:"page"`
	Total     int                `json:"total" yaml:"total"`
	Pipelines []catalog.Pipeline `json:"pipelines" yaml:"pipelines"`
}

// Pipelines returns a page of the current catalog. perPage <= 0 uses the
// configured page size.
func (e *Extension) Pipelines(ctx context.Context, page, perPage int) (*PipelinePage, error) {
	var out *PipelinePage
	err := e.run(ctx, OpPipelines, func(ctx context.Context) error {
		cat, err := e.current()
		if err != nil {
			return err
		}
		if perPage <= 0 {
			e.mu.RLock()
			perPage = e.perPage
			e.mu.RUnlock()
		}
		p := catalog.Paginate(len(cat.Pipelines), page, perPage)
		out = &PipelinePage{
			BaseURL:   cat.BaseURL,
			Page:      p,
			Total:     len(cat.Pipelines),
			Pipelines: append([]catalog.Pipeline{}, cat.Pipelines[p.Start:p.End]...),
		}
		return nil
	})
	return out, err
}

// SetPrefix validates and stores the naming prefix.
func (e *Extension) SetPrefix(ctx context.Context, prefix string) error {
	return e.run(ctx, OpSetPrefix, func(context.Context) error {
		if err := microflow.ValidatePrefix(prefix); err != nil {
			return err
		}
		e.mu.Lock()
		e.prefix = prefix
		e.mu.Unlock()
		return nil
	})
}

// Prefix returns the current naming prefix.
func (e *Extension) Prefix() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prefix
}

// Preview generates the template for a pipeline of the current catalog
// without touching the host.
func (e *Extension) Preview(ctx context.Context, pipeline string) (*microflow.Template, error) {
	var t *microflow.Template
	err := e.run(ctx, OpPreview, func(ctx context.Context) error {
		var err error
		t, err = e.generate(ctx, pipeline)
		return err
	})
	return t, err
}

// CreateMicroflow generates the microflow for a pipeline of the current
// catalog and builds it in module.
func (e *Extension) CreateMicroflow(ctx context.Context, pipeline, module string) (*microflow.BuildResult, error) {
	var res *microflow.BuildResult
	err := e.run(ctx, OpCreate, func(ctx context.Context) error {
		if verr := validation.New().
			Required("pipeline", pipeline).
			Required("module", module).
			Custom(module != host.SystemModule, "module", "cannot hold microflows").
			Validate(); verr != nil {
			return verr
		}
		t, err := e.generate(ctx, pipeline)
		if err != nil {
			return err
		}
		res, err = e.builder.Build(ctx, e.model, t, module)
		if err != nil {
			return err
		}

		e.notifier.Notify(ctx, Notice{
			Severity:  errors.SeverityInfo,
			Operation: OpCreate,
			Message:   fmt.Sprintf("Microflow %s created in module %s.", res.Name, module),
		})
		if len(res.Skipped) > 0 {
			e.notifier.Notify(ctx, Notice{
				Severity:  errors.SeverityWarning,
				Operation: OpCreate,
				Message:   fmt.Sprintf("Could not add parameters: %s.", strings.Join(res.Skipped, ", ")),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Extension) generate(ctx context.Context, name string) (t *microflow.Template, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanMicroflowGen)
	defer func() { observability.EndSpan(span, err) }()
	observability.SetSpanAttribute(ctx, observability.AttrPipeline, name)

	if verr := validation.New().Required("pipeline", name).Validate(); verr != nil {
		return nil, verr
	}
	cat, err := e.current()
	if err != nil {
		return nil, err
	}
	p, ok := cat.Lookup(name)
	if !ok {
		return nil, errors.NotFound("pipeline", name)
	}
	observability.SetSpanAttribute(ctx, observability.AttrParameters, len(p.RequiredFields))

	e.mu.RLock()
	prefix, language := e.prefix, e.language
	e.mu.RUnlock()
	return microflow.Generate(p, cat.BaseURL, prefix, microflow.WithLanguage(language))
}

// DiscoverExisting lists the microflows generated for the current
// catalog's base URL.
func (e *Extension) DiscoverExisting(ctx context.Context) ([]microflow.ExistingCall, error) {
	var out []microflow.ExistingCall
	err := e.run(ctx, OpDiscover, func(ctx context.Context) (err error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanMicroflowDiscover)
		defer func() { observability.EndSpan(span, err) }()

		cat, err := e.current()
		if err != nil {
			return err
		}
		observability.SetSpanAttribute(ctx, observability.AttrURL, cat.BaseURL)
		docs, err := e.model.ListDocuments(ctx, func(d host.Document) bool {
			return len(d.ElementsOf(host.KindRestCall)) > 0
		})
		if err != nil {
			return errors.HostOperation("list documents", err)
		}
		out = microflow.Match(docs, cat.BaseURL)
		return nil
	})
	return out, err
}

// Modules lists the user modules microflows can be created in.
func (e *Extension) Modules(ctx context.Context) ([]host.Module, error) {
	var out []host.Module
	err := e.run(ctx, OpModules, func(ctx context.Context) error {
		modules, err := e.model.QueryModules(ctx)
		if err != nil {
			return errors.HostOperation("query modules", err)
		}
		out = modules
		return nil
	})
	return out, err
}

// OpenMicroflow brings a persisted microflow into focus.
func (e *Extension) OpenMicroflow(ctx context.Context, id string) (*host.Document, error) {
	var doc host.Document
	err := e.run(ctx, OpOpenMicroflow, func(ctx context.Context) error {
		if verr := validation.New().Required("id", id).Validate(); verr != nil {
			return verr
		}
		var err error
		doc, err = e.model.OpenDocument(ctx, id)
		if err != nil {
			return errors.HostOperation("open document", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

var _ observability.HealthChecker = (*Extension)(nil)

// CheckHealth reports the loaded catalog. Until one is loaded the service
// is degraded, since only module queries work.
func (e *Extension) CheckHealth(context.Context) observability.Health {
	h := observability.Health{Name: "catalog", Status: observability.HealthStatusUp}
	cat := e.catalog.Load()
	if cat == nil {
		h.Status = observability.HealthStatusDegraded
		h.Message = "no catalog loaded"
		return h
	}
	h.Details = map[string]string{
		"base_url":  cat.BaseURL,
		"pipelines": fmt.Sprint(len(cat.Pipelines)),
	}
	return h
}

func (e *Extension) current() (*catalog.Catalog, error) {
	cat := e.catalog.Load()
	if cat == nil {
		return nil, errors.NotFound("catalog", "").
			WithDetail("hint", "load a catalog first")
	}
	return cat, nil
}

func humanize(op string) string {
	s := strings.ReplaceAll(op, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
