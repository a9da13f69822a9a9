package host

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/logger"
	"github.com/kbukum/pipegen/validation"
)

// SystemModule is the built-in module that never holds user documents.
const SystemModule = "System"

// object is a live, not yet persisted, microflow or element.
type object struct {
	kind      ElementKind
	fields    map[string]any
	parent    Handle
	children  []Handle
	params    []Parameter
	flows     []Flow
	createdAt time.Time
}

// Workspace is an in-process Model backed by a Backend.
type Workspace struct {
	mu      sync.Mutex
	backend Backend
	objects map[Handle]*object
	opened  string
	log     *logger.Logger
	now     func() time.Time
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*Workspace)

// WithLogger sets the workspace logger.
func WithLogger(l *logger.Logger) WorkspaceOption {
	return func(w *Workspace) { w.log = l }
}

// WithClock overrides the time source used for SavedAt.
func WithClock(now func() time.Time) WorkspaceOption {
	return func(w *Workspace) { w.now = now }
}

// NewWorkspace creates a Workspace over backend.
func NewWorkspace(backend Backend, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{
		backend: backend,
		objects: make(map[Handle]*object),
		log:     logger.Get("host"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ Model = (*Workspace)(nil)

// Backend returns the workspace's persistence backend.
func (w *Workspace) Backend() Backend { return w.backend }

func (w *Workspace) CreateDocument(_ context.Context, kind ElementKind) (Handle, error) {
	if !kind.Valid() {
		return "", errors.InvalidInput("kind", fmt.Sprintf("unknown element kind %q", kind))
	}
	h := Handle(uuid.NewString())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.objects[h] = &object{kind: kind, fields: make(map[string]any), createdAt: w.now()}
	return h, nil
}

func (w *Workspace) DeclareParameter(_ context.Context, microflow Handle, p Parameter) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	mf, err := w.microflow(microflow)
	if err != nil {
		return err
	}
	if !validation.IsVariableName(p.Name) {
		return errors.InvalidInput("name", fmt.Sprintf("%q is not a valid parameter name", p.Name))
	}
	if p.Type == "" {
		return errors.InvalidInput("type", fmt.Sprintf("parameter %q has no type", p.Name))
	}
	for _, existing := range mf.params {
		if existing.Name == p.Name {
			return errors.Conflict(fmt.Sprintf("Parameter %q is already declared.", p.Name))
		}
	}
	mf.params = append(mf.params, p)
	return nil
}

func (w *Workspace) SetField(_ context.Context, h Handle, field string, value any) error {
	if field == "" {
		return errors.InvalidInput("field", "field name is required")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	obj, err := w.lookup(h)
	if err != nil {
		return err
	}
	obj.fields[field] = value
	return nil
}

func (w *Workspace) AppendChild(_ context.Context, container, child Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	mf, err := w.microflow(container)
	if err != nil {
		return err
	}
	obj, err := w.lookup(child)
	if err != nil {
		return err
	}
	if obj.kind == KindMicroflow {
		return errors.InvalidInput("child", "a microflow cannot be nested")
	}
	if obj.parent != "" {
		return errors.Conflict(fmt.Sprintf("Element %s is already attached.", child))
	}
	obj.parent = container
	mf.children = append(mf.children, child)
	return nil
}

func (w *Workspace) Connect(_ context.Context, from, to Handle, cond *Condition) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	origin, err := w.lookup(from)
	if err != nil {
		return err
	}
	target, err := w.lookup(to)
	if err != nil {
		return err
	}
	if origin.parent == "" || origin.parent != target.parent {
		return errors.InvalidInput("flow", "both ends must belong to the same microflow")
	}
	if from == to {
		return errors.InvalidInput("flow", "an element cannot connect to itself")
	}

	flow := Flow{ID: uuid.NewString(), Origin: string(from), Target: string(to)}
	if cond != nil {
		if origin.kind != KindExclusiveSplit {
			return errors.InvalidInput("condition", "only a split can carry a case value")
		}
		if cond.CaseValue != "true" && cond.CaseValue != "false" {
			return errors.InvalidInput("condition", fmt.Sprintf("case value %q is not boolean", cond.CaseValue))
		}
		flow.CaseValue = cond.CaseValue
	}

	mf := w.objects[origin.parent]
	mf.flows = append(mf.flows, flow)
	return nil
}

// Persist snapshots the microflow into a Document and saves it. The name
// must be unique within the module and the module must exist.
func (w *Workspace) Persist(ctx context.Context, microflow Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	mf, err := w.microflow(microflow)
	if err != nil {
		return err
	}
	doc := w.snapshot(microflow, mf)
	if doc.Name == "" {
		return errors.InvalidInput(FieldName, "microflow name is required")
	}
	if doc.Module == "" {
		return errors.InvalidInput(FieldModule, "microflow module is required")
	}

	modules, err := w.backend.ListModules(ctx)
	if err != nil {
		return err
	}
	if !containsModule(modules, doc.Module) {
		return errors.NotFound("module", doc.Module)
	}

	existing, err := w.backend.ListDocuments(ctx)
	if err != nil {
		return err
	}
	for _, d := range existing {
		if d.ID != doc.ID && d.Module == doc.Module && d.Name == doc.Name {
			return errors.Conflict(fmt.Sprintf("A microflow named %q already exists in module %q.", doc.Name, doc.Module))
		}
	}

	if err := w.backend.SaveDocument(ctx, doc); err != nil {
		return err
	}
	w.release(microflow)
	w.log.Info("Microflow persisted", logger.Fields(
		logger.FieldMicroflow, doc.Name,
		logger.FieldModule, doc.Module,
		"elements", len(doc.Elements),
	))
	return nil
}

func (w *Workspace) Discard(_ context.Context, handles ...Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, h := range handles {
		w.release(h)
	}
	return nil
}

// Live returns the number of objects created but not yet persisted or
// discarded.
func (w *Workspace) Live() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.objects)
}

func (w *Workspace) ListDocuments(ctx context.Context, pred func(Document) bool) ([]Document, error) {
	docs, err := w.backend.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return docs, nil
	}
	out := docs[:0]
	for _, d := range docs {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (w *Workspace) OpenDocument(ctx context.Context, id string) (Document, error) {
	doc, err := w.backend.LoadDocument(ctx, id)
	if err != nil {
		return Document{}, err
	}
	w.mu.Lock()
	w.opened = id
	w.mu.Unlock()
	return doc, nil
}

// Opened returns the id of the last opened document.
func (w *Workspace) Opened() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opened
}

// QueryModules lists user modules, hiding app-store modules and System.
func (w *Workspace) QueryModules(ctx context.Context) ([]Module, error) {
	modules, err := w.backend.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	return UserModules(modules), nil
}

// UserModules filters out app-store modules and the System module.
func UserModules(modules []Module) []Module {
	out := make([]Module, 0, len(modules))
	for _, m := range modules {
		if m.FromAppStore || m.Name == SystemModule {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (w *Workspace) lookup(h Handle) (*object, error) {
	obj, ok := w.objects[h]
	if !ok {
		return nil, errors.NotFound("element", string(h))
	}
	return obj, nil
}

func (w *Workspace) microflow(h Handle) (*object, error) {
	obj, err := w.lookup(h)
	if err != nil {
		return nil, err
	}
	if obj.kind != KindMicroflow {
		return nil, errors.InvalidInput("microflow", fmt.Sprintf("%s is a %s, not a microflow", h, obj.kind))
	}
	return obj, nil
}

// release drops h and, for a microflow, its children. An attached element
// is also unlinked from its parent. Caller holds mu.
func (w *Workspace) release(h Handle) {
	obj, ok := w.objects[h]
	if !ok {
		return
	}
	delete(w.objects, h)
	for _, child := range obj.children {
		delete(w.objects, child)
	}
	if parent, ok := w.objects[obj.parent]; ok {
		parent.children = slices.DeleteFunc(parent.children, func(c Handle) bool { return c == h })
	}
}

func (w *Workspace) snapshot(h Handle, mf *object) Document {
	doc := Document{
		ID:         string(h),
		Kind:       KindMicroflow,
		Parameters: append([]Parameter(nil), mf.params...),
		Flows:      append([]Flow(nil), mf.flows...),
		SavedAt:    w.now(),
	}
	doc.Name, _ = mf.fields[FieldName].(string)
	doc.Module, _ = mf.fields[FieldModule].(string)
	for _, child := range mf.children {
		obj := w.objects[child]
		doc.Elements = append(doc.Elements, cloneElement(Element{
			ID:     string(child),
			Kind:   obj.kind,
			Fields: obj.fields,
		}))
	}
	return doc
}

func containsModule(modules []Module, name string) bool {
	for _, m := range modules {
		if m.Name == name {
			return true
		}
	}
	return false
}
