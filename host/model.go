package host

import (
	"context"
	"time"
)

// Handle references an object created in a Model. Handles are opaque.
type Handle string

// ElementKind enumerates the object kinds a Model can create.
type ElementKind string

const (
	KindMicroflow      ElementKind = "Microflows$Microflow"
	KindStartEvent     ElementKind = "Microflows$StartEvent"
	KindEndEvent       ElementKind = "Microflows$EndEvent"
	KindRestCall       ElementKind = "Microflows$RestCallAction"
	KindExclusiveSplit ElementKind = "Microflows$ExclusiveSplit"
	KindShowMessage    ElementKind = "Microflows$ShowMessageAction"
)

// Valid reports whether k is a known kind.
func (k ElementKind) Valid() bool {
	switch k {
	case KindMicroflow, KindStartEvent, KindEndEvent, KindRestCall, KindExclusiveSplit, KindShowMessage:
		return true
	}
	return false
}

// Field names set on microflow documents and elements.
const (
	FieldName   = "name"
	FieldModule = "module"

	// Rest call
	FieldMethod           = "method"
	FieldLocationTemplate = "location_template"
	FieldLocationArgs     = "location_args"
	FieldRequestTemplate  = "request_template"
	FieldRequestArgs      = "request_args"
	FieldHeaders          = "headers"
	FieldOutputVariable   = "output_variable"
	FieldOutputType       = "output_type"
	FieldResultHandling   = "result_handling"

	// Exclusive split
	FieldCondition = "condition"

	// Show message
	FieldMessageType = "message_type"
	FieldText        = "text"
	FieldTextArgs    = "text_args"
	FieldLanguage    = "language"

	// Layout
	FieldX = "x"
	FieldY = "y"
)

// Parameter is a microflow input parameter with its layout.
type Parameter struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Condition labels a flow leaving an exclusive split.
type Condition struct {
	// CaseValue is "true" or "false".
	CaseValue string `json:"case_value" yaml:"case_value"`
}

// Module is a project module documents live in.
type Module struct {
	Name         string `json:"name" yaml:"name"`
	FromAppStore bool   `json:"from_app_store" yaml:"from_app_store"`
}

// Model is the host object model the generator writes into.
type Model interface {
	// CreateDocument creates a detached microflow or element.
	CreateDocument(ctx context.Context, kind ElementKind) (Handle, error)
	// DeclareParameter adds an input parameter to a microflow.
	DeclareParameter(ctx context.Context, microflow Handle, p Parameter) error
	// SetField sets a named field on a microflow or element.
	SetField(ctx context.Context, h Handle, field string, value any) error
	// AppendChild attaches an element to a microflow.
	AppendChild(ctx context.Context, container, child Handle) error
	// Connect adds a sequence flow between two elements of one microflow.
	Connect(ctx context.Context, from, to Handle, cond *Condition) error
	// Persist saves a microflow as a Document and releases its live objects.
	Persist(ctx context.Context, microflow Handle) error
	// Discard releases live objects that will not be persisted. Discarding
	// a microflow also releases its children. Unknown handles are ignored.
	Discard(ctx context.Context, handles ...Handle) error
	// ListDocuments returns persisted documents matching pred (all when nil).
	ListDocuments(ctx context.Context, pred func(Document) bool) ([]Document, error)
	// OpenDocument brings a persisted document into focus.
	OpenDocument(ctx context.Context, id string) (Document, error)
	// QueryModules lists the user modules documents can be created in.
	QueryModules(ctx context.Context) ([]Module, error)
}

// Document is a persisted microflow.
type Document struct {
	ID         string      `json:"id" yaml:"id"`
	Kind       ElementKind `json:"kind" yaml:"kind"`
	Module     string      `json:"module" yaml:"module"`
	Name       string      `json:"name" yaml:"name"`
	Parameters []Parameter `json:"parameters" yaml:"parameters"`
	Elements   []Element   `json:"elements" yaml:"elements"`
	Flows      []Flow      `json:"flows" yaml:"flows"`
	SavedAt    time.Time   `json:"saved_at" yaml:"saved_at"`
}

// Element is one object inside a Document.
type Element struct {
	ID     string         `json:"id" yaml:"id"`
	Kind   ElementKind    `json:"kind" yaml:"kind"`
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Flow is a sequence flow inside a Document.
type Flow struct {
	ID        string `json:"id" yaml:"id"`
	Origin    string `json:"origin" yaml:"origin"`
	Target    string `json:"target" yaml:"target"`
	CaseValue string `json:"case_value,omitempty" yaml:"case_value,omitempty"`
}

// ElementsOf returns the elements of the given kind, in document order.
func (d Document) ElementsOf(kind ElementKind) []Element {
	var out []Element
	for _, e := range d.Elements {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// StringField returns a string field, or "" when absent or not a string.
func (e Element) StringField(field string) string {
	s, _ := e.Fields[field].(string)
	return s
}

// StringsField returns a string list field. Lists decoded from JSON as []any
// are accepted.
func (e Element) StringsField(field string) []string {
	switch v := e.Fields[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}
