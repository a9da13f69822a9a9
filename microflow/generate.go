package microflow

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kbukum/pipegen/catalog"
	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/validation"
)

// Fixed parts of every generated microflow.
const (
	NameSuffix      = "_Microflow"
	DefaultLanguage = "en_US"

	MethodPost         = "POST"
	ResponseVariable   = "RESTResponse"
	ResponseEntity     = "System.HttpResponse"
	ResultHandlingHTTP = "HttpResponse"

	BranchCondition = "$" + ResponseVariable + "/StatusCode = 200"
	SuccessText     = "{1}"
	SuccessArg      = "$" + ResponseVariable + "/Content"
	ErrorText       = "Request failed with status code {1}"
	ErrorArg        = "toString($" + ResponseVariable + "/StatusCode)"

	parameterSize    = 30
	parameterSpacing = 100
)

type generateOptions struct {
	language string
}

// GenerateOption configures Generate.
type GenerateOption func(*generateOptions)

// WithLanguage sets the language code of the report messages.
func WithLanguage(code string) GenerateOption {
	return func(o *generateOptions) {
		if code != "" {
			o.language = code
		}
	}
}

type prefixInput struct {
	Prefix string `json:"prefix" validate:"min=2,identifier"`
}

// ValidatePrefix checks a naming prefix: at least two characters, letters,
// digits and underscores only.
func ValidatePrefix(prefix string) error {
	fieldErrors, err := validation.Check(prefixInput{Prefix: prefix})
	if err != nil {
		return err
	}
	if len(fieldErrors) > 0 {
		return errors.InvalidPrefix(prefix, fieldErrors[0].Message)
	}
	return nil
}

// Name returns the generated microflow name for a pipeline.
func Name(prefix, pipeline string) string {
	return prefix + ReplaceWhitespace(pipeline, "_") + NameSuffix
}

// ReplaceWhitespace replaces every whitespace character in s with repl.
func ReplaceWhitespace(s, repl string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CallURL returns the endpoint a generated microflow posts to. base is
// used verbatim and is expected to end with a slash.
func CallURL(base, pipeline string) string {
	return base + "v1/" + pipeline + "/value"
}

// Generate builds the microflow template for p. The prefix is validated
// before anything else. It performs no I/O.
func Generate(p catalog.Pipeline, baseURL, prefix string, opts ...GenerateOption) (*Template, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	if err := checkFields(p); err != nil {
		return nil, err
	}

	o := generateOptions{language: DefaultLanguage}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Template{
		Name:     Name(prefix, p.Name),
		Pipeline: p.Name,
		BaseURL:  baseURL,
	}

	params := make([]ParameterSpec, 0, len(p.RequiredFields))
	for i, f := range p.RequiredFields {
		spec := ParameterSpec{
			Name:       f.Name,
			Type:       ParameterType(f.Type),
			Expression: TemplateExpression(f.Type, f.Name),
		}
		params = append(params, spec)
		t.Nodes = append(t.Nodes, Node{
			ID:        ParameterID(f.Name),
			Kind:      NodeParameter,
			Position:  Point{X: parameterSpacing + i*parameterSpacing, Y: 0},
			Size:      Size{Width: parameterSize, Height: parameterSize},
			Parameter: &spec,
		})
	}
	payload, args := Payload(params)

	url := CallURL(baseURL, p.Name)
	t.Nodes = append(t.Nodes,
		Node{ID: IDStart, Kind: NodeStart, Position: Point{X: 100, Y: 200}, Size: Size{20, 20}},
		Node{
			ID: IDCall, Kind: NodeCall, Position: Point{X: 250, Y: 200}, Size: Size{120, 60},
			Call: &CallSpec{
				Method:           MethodPost,
				URL:              url,
				LocationTemplate: "{1}",
				LocationArgs:     []string{quote(url)},
				RequestTemplate:  payload,
				RequestArgs:      args,
				Headers:          map[string]string{"Content-Type": "application/json"},
				OutputVariable:   ResponseVariable,
				OutputType:       ResponseEntity,
				ResultHandling:   ResultHandlingHTTP,
			},
		},
		Node{
			ID: IDBranch, Kind: NodeBranch, Position: Point{X: 420, Y: 200}, Size: Size{60, 60},
			Branch: &BranchSpec{Condition: BranchCondition},
		},
		Node{
			ID: IDSuccess, Kind: NodeSuccessReport, Position: Point{X: 570, Y: 100}, Size: Size{120, 60},
			Report: &ReportSpec{Type: MessageInformation, Text: SuccessText, Args: []string{SuccessArg}, Language: o.language},
		},
		Node{ID: IDEnd, Kind: NodeEnd, Position: Point{X: 740, Y: 100}, Size: Size{20, 20}},
		Node{
			ID: IDError, Kind: NodeErrorReport, Position: Point{X: 570, Y: 300}, Size: Size{120, 60},
			Report: &ReportSpec{Type: MessageError, Text: ErrorText, Args: []string{ErrorArg}, Language: o.language},
		},
		Node{ID: IDErrorEnd, Kind: NodeErrorEnd, Position: Point{X: 740, Y: 300}, Size: Size{20, 20}},
	)
	t.Edges = []Edge{
		{From: IDStart, To: IDCall},
		{From: IDCall, To: IDBranch},
		{From: IDBranch, To: IDSuccess, Case: "true"},
		{From: IDSuccess, To: IDEnd},
		{From: IDBranch, To: IDError, Case: "false"},
		{From: IDError, To: IDErrorEnd},
	}

	if err := t.Validate(); err != nil {
		return nil, errors.GenerationFailed(p.Name, err.Error())
	}
	return t, nil
}

// Payload renders the request body template and its arguments: a JSON
// object keyed by parameter name whose values are positional slots, with
// braces doubled for the host template syntax. No parameters give "{{}}".
func Payload(params []ParameterSpec) (string, []string) {
	keys := make([]string, len(params))
	args := make([]string, len(params))
	for i, p := range params {
		keys[i] = strconv.Quote(p.Name) + ":{" + strconv.Itoa(i+1) + "}"
		args[i] = p.Expression
	}
	return "{{" + strings.Join(keys, ",") + "}}", args
}

// checkFields rejects field names that would break the payload template:
// names with braces or double quotes, and purely numeric names that read as
// slot references. Other unusual names are left for the host to accept or
// refuse parameter by parameter.
func checkFields(p catalog.Pipeline) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.GenerationFailed(p.Name, "pipeline name is empty")
	}
	seen := make(map[string]bool, len(p.RequiredFields))
	for _, f := range p.RequiredFields {
		switch {
		case f.Name == "":
			return errors.GenerationFailed(p.Name, "a required field has no name")
		case seen[f.Name]:
			return errors.GenerationFailed(p.Name, fmt.Sprintf("field %q is declared twice", f.Name))
		case collidesWithSlots(f.Name):
			return errors.GenerationFailed(p.Name, fmt.Sprintf("field %q collides with the template slot syntax", f.Name)).
				WithDetail("field", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

func collidesWithSlots(name string) bool {
	if strings.ContainsAny(name, `{}"`) {
		return true
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// quote wraps s as a string literal of the host expression language.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
