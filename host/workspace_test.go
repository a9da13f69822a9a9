package host

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/logger"
)

func newTestWorkspace(modules ...Module) *Workspace {
	if len(modules) == 0 {
		modules = []Module{{Name: "MyFirstModule"}}
	}
	return NewWorkspace(NewMemoryBackend(modules...), WithLogger(logger.NewNop()))
}

// buildFlow creates a microflow with a start, a split and an end.
func buildFlow(t *testing.T, ws *Workspace, name, module string) (Handle, []Handle) {
	t.Helper()
	ctx := context.Background()
	mf, err := ws.CreateDocument(ctx, KindMicroflow)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	mustOK(t, ws.SetField(ctx, mf, FieldName, name))
	mustOK(t, ws.SetField(ctx, mf, FieldModule, module))

	var elems []Handle
	for _, kind := range []ElementKind{KindStartEvent, KindExclusiveSplit, KindEndEvent} {
		h, err := ws.CreateDocument(ctx, kind)
		if err != nil {
			t.Fatalf("CreateDocument(%s): %v", kind, err)
		}
		mustOK(t, ws.AppendChild(ctx, mf, h))
		elems = append(elems, h)
	}
	return mf, elems
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWorkspace_CreateDocument_UnknownKind(t *testing.T) {
	ws := newTestWorkspace()
	if _, err := ws.CreateDocument(context.Background(), ElementKind("Microflows$Loop")); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestWorkspace_PersistSnapshot(t *testing.T) {
	ctx := context.Background()
	saved := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ws := NewWorkspace(NewMemoryBackend(Module{Name: "Sales"}), WithLogger(logger.NewNop()), WithClock(func() time.Time { return saved }))

	mf, elems := buildFlow(t, ws, "HB_Orders_Microflow", "Sales")
	mustOK(t, ws.DeclareParameter(ctx, mf, Parameter{Name: "id", Type: "Integer", X: 100, Width: 30, Height: 30}))
	mustOK(t, ws.SetField(ctx, elems[1], FieldCondition, "$RESTResponse/StatusCode = 200"))
	mustOK(t, ws.Connect(ctx, elems[0], elems[1], nil))
	mustOK(t, ws.Connect(ctx, elems[1], elems[2], &Condition{CaseValue: "true"}))
	mustOK(t, ws.Persist(ctx, mf))

	docs, err := ws.ListDocuments(ctx, nil)
	mustOK(t, err)
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]
	if doc.ID != string(mf) || doc.Name != "HB_Orders_Microflow" || doc.Module != "Sales" {
		t.Errorf("unexpected document header: %+v", doc)
	}
	if !doc.SavedAt.Equal(saved) {
		t.Errorf("expected SavedAt %v, got %v", saved, doc.SavedAt)
	}
	if len(doc.Parameters) != 1 || doc.Parameters[0].Type != "Integer" {
		t.Errorf("unexpected parameters: %+v", doc.Parameters)
	}
	if len(doc.Elements) != 3 || doc.Elements[1].Kind != KindExclusiveSplit {
		t.Fatalf("unexpected elements: %+v", doc.Elements)
	}
	if got := doc.Elements[1].StringField(FieldCondition); got != "$RESTResponse/StatusCode = 200" {
		t.Errorf("unexpected condition %q", got)
	}
	if len(doc.Flows) != 2 || doc.Flows[1].CaseValue != "true" || doc.Flows[0].CaseValue != "" {
		t.Errorf("unexpected flows: %+v", doc.Flows)
	}

	// Persisting releases the live objects.
	if n := ws.Live(); n != 0 {
		t.Errorf("expected no live objects after persist, got %d", n)
	}
	if err := ws.SetField(ctx, elems[1], FieldCondition, "changed"); !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND for a released element, got %v", err)
	}
	if err := ws.Persist(ctx, mf); !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND when persisting twice, got %v", err)
	}
	again, err := ws.OpenDocument(ctx, string(mf))
	mustOK(t, err)
	if len(again.Elements) != 3 {
		t.Errorf("expected the saved document to survive, got %+v", again)
	}
	if ws.Opened() != string(mf) {
		t.Errorf("expected %s to be opened, got %q", mf, ws.Opened())
	}
}

func TestWorkspace_Discard(t *testing.T) {
	ctx := context.Background()
	ws := newTestWorkspace()

	mf, elems := buildFlow(t, ws, "Gone", "MyFirstModule")
	kept, keptElems := buildFlow(t, ws, "Kept", "MyFirstModule")
	loose, err := ws.CreateDocument(ctx, KindEndEvent)
	mustOK(t, err)
	if n := ws.Live(); n != 9 {
		t.Fatalf("expected 9 live objects, got %d", n)
	}

	mustOK(t, ws.Discard(ctx, mf, loose, Handle("unknown")))
	if n := ws.Live(); n != 4 {
		t.Errorf("expected 4 live objects, got %d", n)
	}
	if err := ws.SetField(ctx, elems[0], FieldX, 1); !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected children of a discarded microflow to be released, got %v", err)
	}

	// Discarding an attached element unlinks it from its microflow.
	mustOK(t, ws.Discard(ctx, keptElems[2]))
	mustOK(t, ws.Persist(ctx, kept))
	doc, err := ws.OpenDocument(ctx, string(kept))
	mustOK(t, err)
	if len(doc.Elements) != 2 {
		t.Errorf("expected 2 elements after discarding one, got %d", len(doc.Elements))
	}
	if n := ws.Live(); n != 0 {
		t.Errorf("expected no live objects, got %d", n)
	}
}

func TestWorkspace_PersistErrors(t *testing.T) {
	ctx := context.Background()
	ws := newTestWorkspace()

	first, _ := buildFlow(t, ws, "Dup", "MyFirstModule")
	mustOK(t, ws.Persist(ctx, first))

	tests := []struct {
		name   string
		module string
		flow   string
		want   errors.ErrorCode
	}{
		{"duplicate name", "MyFirstModule", "Dup", errors.ErrCodeConflict},
		{"unknown module", "Nope", "Other", errors.ErrCodeNotFound},
		{"missing name", "MyFirstModule", "", errors.ErrCodeInvalidInput},
		{"missing module", "", "Other", errors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mf, _ := buildFlow(t, ws, tc.flow, tc.module)
			if err := ws.Persist(ctx, mf); !errors.HasCode(err, tc.want) {
				t.Errorf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestWorkspace_DeclareParameter(t *testing.T) {
	ctx := context.Background()
	ws := newTestWorkspace()
	mf, elems := buildFlow(t, ws, "P", "MyFirstModule")

	mustOK(t, ws.DeclareParameter(ctx, mf, Parameter{Name: "id", Type: "String"}))

	tests := []struct {
		name   string
		target Handle
		param  Parameter
		want   errors.ErrorCode
	}{
		{"duplicate", mf, Parameter{Name: "id", Type: "String"}, errors.ErrCodeConflict},
		{"invalid name", mf, Parameter{Name: "1st", Type: "String"}, errors.ErrCodeInvalidInput},
		{"empty type", mf, Parameter{Name: "x", Type: ""}, errors.ErrCodeInvalidInput},
		{"not a microflow", elems[0], Parameter{Name: "y", Type: "String"}, errors.ErrCodeInvalidInput},
		{"unknown handle", Handle("missing"), Parameter{Name: "y", Type: "String"}, errors.ErrCodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := ws.DeclareParameter(ctx, tc.target, tc.param); !errors.HasCode(err, tc.want) {
				t.Errorf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestWorkspace_AppendAndConnectErrors(t *testing.T) {
	ctx := context.Background()
	ws := newTestWorkspace()
	mf, elems := buildFlow(t, ws, "A", "MyFirstModule")
	other, otherElems := buildFlow(t, ws, "B", "MyFirstModule")
	detached, _ := ws.CreateDocument(ctx, KindEndEvent)

	if err := ws.AppendChild(ctx, mf, elems[0]); !errors.HasCode(err, errors.ErrCodeConflict) {
		t.Errorf("re-append: expected CONFLICT, got %v", err)
	}
	if err := ws.AppendChild(ctx, mf, other); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nested microflow: expected INVALID_INPUT, got %v", err)
	}
	if err := ws.Connect(ctx, elems[0], otherElems[1], nil); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("cross-microflow flow: expected INVALID_INPUT, got %v", err)
	}
	if err := ws.Connect(ctx, elems[0], detached, nil); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("detached target: expected INVALID_INPUT, got %v", err)
	}
	if err := ws.Connect(ctx, elems[0], elems[2], &Condition{CaseValue: "true"}); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("case on non-split: expected INVALID_INPUT, got %v", err)
	}
	if err := ws.Connect(ctx, elems[1], elems[2], &Condition{CaseValue: "maybe"}); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("non-boolean case: expected INVALID_INPUT, got %v", err)
	}
	if err := ws.SetField(ctx, elems[0], "", 1); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty field: expected INVALID_INPUT, got %v", err)
	}
}

func TestWorkspace_ListDocumentsPredicate(t *testing.T) {
	ctx := context.Background()
	ws := newTestWorkspace(Module{Name: "A"}, Module{Name: "B"})
	for i, m := range []string{"A", "B", "A"} {
		mf, _ := buildFlow(t, ws, fmt.Sprintf("flow_%d", i), m)
		mustOK(t, ws.Persist(ctx, mf))
	}

	docs, err := ws.ListDocuments(ctx, func(d Document) bool { return d.Module == "A" })
	mustOK(t, err)
	if len(docs) != 2 {
		t.Errorf("expected 2 documents in A, got %d", len(docs))
	}
}

func TestWorkspace_OpenDocument_NotFound(t *testing.T) {
	ws := newTestWorkspace()
	if _, err := ws.OpenDocument(context.Background(), "nope"); !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if ws.Opened() != "" {
		t.Error("failed open must not change the opened document")
	}
}

func TestWorkspace_QueryModules(t *testing.T) {
	ws := newTestWorkspace(
		Module{Name: "System"},
		Module{Name: "Atlas_Core", FromAppStore: true},
		Module{Name: "MyFirstModule"},
		Module{Name: "Administration"},
	)
	modules, err := ws.QueryModules(context.Background())
	mustOK(t, err)

	var names []string
	for _, m := range modules {
		names = append(names, m.Name)
	}
	if len(names) != 2 || names[0] != "Administration" || names[1] != "MyFirstModule" {
		t.Errorf("unexpected modules %v", names)
	}
}

func TestElement_Fields(t *testing.T) {
	e := Element{Fields: map[string]any{
		"typed":   []string{"a", "b"},
		"decoded": []any{"c"},
		"mixed":   []any{"d", 1},
		"scalar":  "e",
	}}
	tests := []struct {
		field string
		want  int
	}{
		{"typed", 2},
		{"decoded", 1},
		{"mixed", 0},
		{"scalar", 0},
		{"missing", 0},
	}
	for _, tc := range tests {
		if got := len(e.StringsField(tc.field)); got != tc.want {
			t.Errorf("StringsField(%q) has %d items, want %d", tc.field, got, tc.want)
		}
	}
	if e.StringField("scalar") != "e" || e.StringField("typed") != "" {
		t.Error("StringField returned unexpected values")
	}
}

func TestDocument_ElementsOf(t *testing.T) {
	d := Document{Elements: []Element{
		{ID: "1", Kind: KindStartEvent},
		{ID: "2", Kind: KindEndEvent},
		{ID: "3", Kind: KindEndEvent},
	}}
	if got := d.ElementsOf(KindEndEvent); len(got) != 2 || got[0].ID != "2" {
		t.Errorf("unexpected elements %+v", got)
	}
	if got := d.ElementsOf(KindRestCall); len(got) != 0 {
		t.Errorf("expected none, got %+v", got)
	}
}
