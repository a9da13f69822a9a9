package microflow

import (
	"context"
	"time"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/host"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/observability"
)

// BuildResult describes a microflow written into the host.
type BuildResult struct {
	MicroflowID string `json:"microflow_id" yaml:"microflow_id"`
	Name        string `json:"name" yaml:"name"`
	Module      string `json:"module" yaml:"module"`
	// Skipped lists the parameters the host refused to declare.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Builder writes templates into a host Model.
type Builder struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBuilderLogger sets the builder logger.
func WithBuilderLogger(l *logger.Logger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

// WithBuilderMetrics records generated microflows on m.
func WithBuilderMetrics(m *observability.Metrics) BuilderOption {
	return func(b *Builder) { b.metrics = m }
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{log: logger.Get("microflow")}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// field is one SetField call.
type field struct {
	name  string
	value any
}

// Build creates the microflow described by t in module and persists it.
//
// A parameter the host refuses to declare is logged, left out of the
// request payload and reported in BuildResult.Skipped; building goes on.
// Every other host failure aborts the build with HOST_OPERATION_FAILED and
// discards the objects created so far.
func (b *Builder) Build(ctx context.Context, model host.Model, t *Template, module string) (res *BuildResult, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanMicroflowBuild)
	start := time.Now()
	defer func() {
		observability.EndSpan(span, err)
		status := "success"
		if err != nil {
			status = "error"
		}
		b.metrics.RecordOperation(ctx, "build", status, time.Since(start))
	}()
	observability.SetSpanAttribute(ctx, observability.AttrPipeline, t.Pipeline)
	observability.SetSpanAttribute(ctx, observability.AttrModule, module)

	if err := t.Validate(); err != nil {
		return nil, errors.GenerationFailed(t.Pipeline, err.Error())
	}
	log := b.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldMicroflow, t.Name,
		logger.FieldModule, module,
	))

	mf, err := model.CreateDocument(ctx, host.KindMicroflow)
	if err != nil {
		return nil, errors.HostOperation("create microflow", err)
	}
	created := []host.Handle{mf}
	defer func() {
		if err == nil {
			return
		}
		if derr := model.Discard(context.WithoutCancel(ctx), created...); derr != nil {
			log.Warn("Could not discard partial microflow", logger.Fields(logger.FieldError, derr.Error()))
		}
	}()
	if err := setFields(ctx, model, mf, []field{
		{host.FieldName, t.Name},
		{host.FieldModule, module},
	}); err != nil {
		return nil, err
	}

	res = &BuildResult{MicroflowID: string(mf), Name: t.Name, Module: module}
	declared := make([]ParameterSpec, 0, len(t.Nodes))
	for _, n := range t.Parameters() {
		p := host.Parameter{
			Name:   n.Parameter.Name,
			Type:   n.Parameter.Type,
			X:      n.Position.X,
			Y:      n.Position.Y,
			Width:  n.Size.Width,
			Height: n.Size.Height,
		}
		if err := model.DeclareParameter(ctx, mf, p); err != nil {
			log.Warn("Could not add parameter", logger.Fields(
				"parameter", p.Name,
				logger.FieldError, err.Error(),
			))
			res.Skipped = append(res.Skipped, p.Name)
			continue
		}
		declared = append(declared, *n.Parameter)
	}
	payload, args := Payload(declared)

	handles := make(map[string]host.Handle)
	for _, n := range t.FlowNodes() {
		kind, _ := n.Kind.ElementKind()
		h, err := model.CreateDocument(ctx, kind)
		if err != nil {
			return nil, errors.HostOperation("create "+n.Kind.String(), err)
		}
		created = append(created, h)
		if err := setFields(ctx, model, h, nodeFields(n, payload, args)); err != nil {
			return nil, err
		}
		if err := model.AppendChild(ctx, mf, h); err != nil {
			return nil, errors.HostOperation("append "+n.Kind.String(), err)
		}
		handles[n.ID] = h
	}

	for _, e := range t.Edges {
		var cond *host.Condition
		if e.Case != "" {
			cond = &host.Condition{CaseValue: e.Case}
		}
		if err := model.Connect(ctx, handles[e.From], handles[e.To], cond); err != nil {
			return nil, errors.HostOperation("connect "+e.From+" to "+e.To, err)
		}
	}

	if err := model.Persist(ctx, mf); err != nil {
		return nil, errors.HostOperation("persist", err)
	}

	observability.SetSpanAttribute(ctx, observability.AttrSkipped, len(res.Skipped))
	b.metrics.RecordGenerated(ctx, module, len(res.Skipped))
	log.Info("Microflow created", logger.Fields(
		"id", res.MicroflowID,
		"parameters", len(declared),
		"skipped", len(res.Skipped),
	))
	return res, nil
}

// nodeFields returns the host fields of a flow node. The call node takes
// the payload rebuilt from the declared parameters.
func nodeFields(n Node, payload string, args []string) []field {
	fields := []field{
		{host.FieldX, n.Position.X},
		{host.FieldY, n.Position.Y},
	}
	switch {
	case n.Call != nil:
		c := n.Call
		fields = append(fields,
			field{host.FieldMethod, c.Method},
			field{host.FieldLocationTemplate, c.LocationTemplate},
			field{host.FieldLocationArgs, c.LocationArgs},
			field{host.FieldRequestTemplate, payload},
			field{host.FieldRequestArgs, args},
			field{host.FieldHeaders, c.Headers},
			field{host.FieldOutputVariable, c.OutputVariable},
			field{host.FieldOutputType, c.OutputType},
			field{host.FieldResultHandling, c.ResultHandling},
		)
	case n.Branch != nil:
		fields = append(fields, field{host.FieldCondition, n.Branch.Condition})
	case n.Report != nil:
		r := n.Report
		fields = append(fields,
			field{host.FieldMessageType, string(r.Type)},
			field{host.FieldText, r.Text},
			field{host.FieldTextArgs, r.Args},
			field{host.FieldLanguage, r.Language},
		)
	}
	return fields
}

func setFields(ctx context.Context, model host.Model, h host.Handle, fields []field) error {
	for _, f := range fields {
		if err := model.SetField(ctx, h, f.name, f.value); err != nil {
			return errors.HostOperation("set "+f.name, err)
		}
	}
	return nil
}
