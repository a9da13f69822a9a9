package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/host"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/observability"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{DSN: ":memory:", LogLevel: "silent"}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_DocumentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saved := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	doc := host.Document{
		ID:         "mf-1",
		Kind:       host.KindMicroflow,
		Module:     "Sales",
		Name:       "HB_Orders_Microflow",
		Parameters: []host.Parameter{{Name: "id", Type: "Integer", X: 100, Width: 30, Height: 30}},
		Elements: []host.Element{{
			ID:   "call",
			Kind: host.KindRestCall,
			Fields: map[string]any{
				host.FieldLocationTemplate: "{1}",
				host.FieldLocationArgs:     []string{"'http://h/v1/Orders/value'"},
			},
		}},
		Flows:   []host.Flow{{ID: "f1", Origin: "start", Target: "call"}},
		SavedAt: saved,
	}
	if err := store.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	got, err := store.LoadDocument(ctx, "mf-1")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if got.Name != doc.Name || got.Module != doc.Module || !got.SavedAt.Equal(saved) {
		t.Errorf("unexpected document %+v", got)
	}
	if len(got.Parameters) != 1 || got.Parameters[0].Width != 30 {
		t.Errorf("unexpected parameters %+v", got.Parameters)
	}
	args := got.Elements[0].StringsField(host.FieldLocationArgs)
	if len(args) != 1 || args[0] != "'http://h/v1/Orders/value'" {
		t.Errorf("unexpected location args %v", args)
	}

	// Saving again replaces the row.
	doc.Name = "HB_Renamed_Microflow"
	if err := store.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("second SaveDocument failed: %v", err)
	}
	docs, err := store.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "HB_Renamed_Microflow" {
		t.Errorf("expected one renamed document, got %+v", docs)
	}
}

func TestStore_LoadDocument_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadDocument(context.Background(), "missing")
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestStore_ListDocumentsOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		doc := host.Document{ID: id, Module: "M", Name: "n" + id, SavedAt: t0.Add(time.Duration(i) * time.Minute)}
		if err := store.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument(%s) failed: %v", id, err)
		}
	}
	docs, err := store.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	var ids string
	for _, d := range docs {
		ids += d.ID
	}
	if ids != "cab" {
		t.Errorf("expected save order cab, got %s", ids)
	}
}

func TestStore_Modules(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, m := range []host.Module{{Name: "System"}, {Name: "Admin"}, {Name: "Atlas", FromAppStore: true}} {
		if err := store.SaveModule(ctx, m); err != nil {
			t.Fatalf("SaveModule(%s) failed: %v", m.Name, err)
		}
	}
	if err := store.SaveModule(ctx, host.Module{}); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}

	modules, err := store.ListModules(ctx)
	if err != nil {
		t.Fatalf("ListModules failed: %v", err)
	}
	if len(modules) != 3 || modules[0].Name != "Admin" || !modules[1].FromAppStore {
		t.Errorf("unexpected modules %+v", modules)
	}
}

func TestStore_BacksWorkspace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.SaveModule(ctx, host.Module{Name: "MyFirstModule"}); err != nil {
		t.Fatalf("SaveModule failed: %v", err)
	}

	ws := host.NewWorkspace(store, host.WithLogger(logger.NewNop()))
	mf, _ := ws.CreateDocument(ctx, host.KindMicroflow)
	_ = ws.SetField(ctx, mf, host.FieldName, "Flow")
	_ = ws.SetField(ctx, mf, host.FieldModule, "MyFirstModule")
	if err := ws.Persist(ctx, mf); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	other, _ := ws.CreateDocument(ctx, host.KindMicroflow)
	_ = ws.SetField(ctx, other, host.FieldName, "Flow")
	_ = ws.SetField(ctx, other, host.FieldModule, "MyFirstModule")
	if err := ws.Persist(ctx, other); !errors.HasCode(err, errors.ErrCodeConflict) {
		t.Errorf("expected CONFLICT for duplicate name, got %v", err)
	}
}

func TestStore_CheckHealth(t *testing.T) {
	store := newTestStore(t)
	h := store.CheckHealth(context.Background())
	if h.Name != "sqlite" || h.Status != observability.HealthStatusUp || h.Details["latency"] == "" || h.Details["open_connections"] == "" {
		t.Errorf("expected up with latency and connections, got %+v", h)
	}
	store.Close()
	if h := store.CheckHealth(context.Background()); h.Status != observability.HealthStatusDown {
		t.Errorf("expected down after close, got %+v", h)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.DSN != "pipegen.db" || cfg.LogLevel != "warn" || cfg.MaxRetries != 3 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		memory bool
		valid  bool
	}{
		{"memory", func(c *Config) { c.DSN = ":memory:" }, true, true},
		{"shared memory", func(c *Config) { c.DSN = "file::memory:?cache=shared" }, true, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false, false},
		{"bad threshold", func(c *Config) { c.SlowQueryThreshold = "soon" }, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cfg
			tc.mutate(&c)
			if c.InMemory() != tc.memory {
				t.Errorf("InMemory() = %v, want %v", c.InMemory(), tc.memory)
			}
			if err := c.Validate(); (err == nil) != tc.valid {
				t.Errorf("Validate() = %v, want valid=%v", err, tc.valid)
			}
		})
	}
}
