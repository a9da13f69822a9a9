package microflow

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kbukum/pipegen/host"
)

// NodeKind enumerates the closed set of template node kinds.
type NodeKind int

const (
	NodeStart NodeKind = iota
	NodeParameter
	NodeCall
	NodeBranch
	NodeSuccessReport
	NodeErrorReport
	NodeEnd
	NodeErrorEnd
)

var nodeKindNames = [...]string{
	NodeStart:         "start",
	NodeParameter:     "parameter",
	NodeCall:          "call",
	NodeBranch:        "branch",
	NodeSuccessReport: "success_report",
	NodeErrorReport:   "error_report",
	NodeEnd:           "end",
	NodeErrorEnd:      "error_end",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "unknown"
	}
	return nodeKindNames[k]
}

// MarshalText encodes the kind by name.
func (k NodeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ElementKind returns the host element kind a node is built as. Parameters
// are declared on the microflow and have no element kind.
func (k NodeKind) ElementKind() (host.ElementKind, bool) {
	switch k {
	case NodeStart:
		return host.KindStartEvent, true
	case NodeCall:
		return host.KindRestCall, true
	case NodeBranch:
		return host.KindExclusiveSplit, true
	case NodeSuccessReport, NodeErrorReport:
		return host.KindShowMessage, true
	case NodeEnd, NodeErrorEnd:
		return host.KindEndEvent, true
	}
	return "", false
}

// IsEvent reports whether the kind is a start or end event.
func (k NodeKind) IsEvent() bool {
	return k == NodeStart || k == NodeEnd || k == NodeErrorEnd
}

// FieldType is the declared type of a required pipeline field.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldInteger  FieldType = "integer"
	FieldDecimal  FieldType = "decimal"
	FieldBoolean  FieldType = "boolean"
	FieldDateTime FieldType = "datetime"
	// FieldOther covers every unrecognised type. It behaves like a string.
	FieldOther FieldType = "other"
)

// ParseFieldType matches raw case-insensitively against the known types.
func ParseFieldType(raw string) FieldType {
	switch t := FieldType(strings.ToLower(raw)); t {
	case FieldString, FieldInteger, FieldDecimal, FieldBoolean, FieldDateTime:
		return t
	}
	return FieldOther
}

// ParameterType renders raw as a host parameter type tag: the first letter
// upper-cased, the rest unchanged. Unknown types pass through.
func ParameterType(raw string) string {
	r, size := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError {
		return raw
	}
	return string(unicode.ToUpper(r)) + raw[size:]
}

// TemplateExpression renders the expression that stringifies field for the
// request payload. Only integer and boolean values are converted.
func TemplateExpression(raw, field string) string {
	ref := "$" + field
	switch ParseFieldType(raw) {
	case FieldInteger:
		return "toString(" + ref + ")"
	case FieldBoolean:
		return "if " + ref + " = true then 'true' else 'false'"
	default:
		return ref
	}
}
