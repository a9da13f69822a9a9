package host

import (
	"context"
	"sort"
	"sync"

	"github.com/kbukum/pipegen/errors"
)

// Backend persists documents and modules for a Workspace.
type Backend interface {
	SaveDocument(ctx context.Context, doc Document) error
	// LoadDocument returns a NOT_FOUND AppError for unknown ids.
	LoadDocument(ctx context.Context, id string) (Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	ListModules(ctx context.Context) ([]Module, error)
	SaveModule(ctx context.Context, m Module) error
}

// MemoryBackend keeps everything in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	docs    map[string]Document
	modules map[string]Module
}

// NewMemoryBackend creates an empty MemoryBackend seeded with modules.
func NewMemoryBackend(modules ...Module) *MemoryBackend {
	b := &MemoryBackend{
		docs:    make(map[string]Document),
		modules: make(map[string]Module),
	}
	for _, m := range modules {
		b.modules[m.Name] = m
	}
	return b
}

func (b *MemoryBackend) SaveDocument(_ context.Context, doc Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (b *MemoryBackend) LoadDocument(_ context.Context, id string) (Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	doc, ok := b.docs[id]
	if !ok {
		return Document{}, errors.NotFound("microflow", id)
	}
	return cloneDocument(doc), nil
}

// ListDocuments returns documents ordered by save time, then id.
func (b *MemoryBackend) ListDocuments(_ context.Context) ([]Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Document, 0, len(b.docs))
	for _, d := range b.docs {
		out = append(out, cloneDocument(d))
	}
	SortDocuments(out)
	return out, nil
}

// ListModules returns modules ordered by name.
func (b *MemoryBackend) ListModules(_ context.Context) ([]Module, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Module, 0, len(b.modules))
	for _, m := range b.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b *MemoryBackend) SaveModule(_ context.Context, m Module) error {
	if m.Name == "" {
		return errors.InvalidInput("name", "module name is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modules[m.Name] = m
	return nil
}

// SortDocuments orders documents by save time, then id.
func SortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].SavedAt.Equal(docs[j].SavedAt) {
			return docs[i].SavedAt.Before(docs[j].SavedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}

func cloneDocument(d Document) Document {
	out := d
	out.Parameters = append([]Parameter(nil), d.Parameters...)
	out.Flows = append([]Flow(nil), d.Flows...)
	out.Elements = make([]Element, len(d.Elements))
	for i, e := range d.Elements {
		out.Elements[i] = cloneElement(e)
	}
	return out
}

func cloneElement(e Element) Element {
	out := Element{ID: e.ID, Kind: e.Kind}
	if e.Fields != nil {
		out.Fields = make(map[string]any, len(e.Fields))
		for k, v := range e.Fields {
			switch t := v.(type) {
			case []string:
				out.Fields[k] = append([]string(nil), t...)
			case []any:
				out.Fields[k] = append([]any(nil), t...)
			case map[string]string:
				m := make(map[string]string, len(t))
				for hk, hv := range t {
					m[hk] = hv
				}
				out.Fields[k] = m
			default:
				out.Fields[k] = v
			}
		}
	}
	return out
}
