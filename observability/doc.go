// Package observability wires OpenTelemetry tracing and metrics for pipegen.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("pipegen"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanCatalogFetch)
//	defer func() { observability.EndSpan(span, err) }()
//
// Metrics are recorded through a *Metrics built on any meter; a nil *Metrics
// records nothing.
//
// Health:
//
//	health := observability.NewServiceHealth("pipegen", version)
//	health.AddComponent(store.CheckHealth(ctx))
package observability
