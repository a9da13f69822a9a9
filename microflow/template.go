package microflow

// Node IDs of the fixed template topology.
const (
	IDStart    = "start"
	IDCall     = "call"
	IDBranch   = "branch"
	IDSuccess  = "success"
	IDError    = "error"
	IDEnd      = "end"
	IDErrorEnd = "error_end"
)

// ParameterID returns the node id of the parameter for field.
func ParameterID(field string) string { return "param:" + field }

// Point is a layout coordinate.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a layout extent.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Node is one template node. Exactly one spec pointer is set, chosen by
// Kind; events carry none.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Kind     NodeKind `json:"kind" yaml:"kind"`
	Position Point    `json:"position" yaml:"position"`
	Size     Size     `json:"size" yaml:"size"`

	Parameter *ParameterSpec `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Call      *CallSpec      `json:"call,omitempty" yaml:"call,omitempty"`
	Branch    *BranchSpec    `json:"branch,omitempty" yaml:"branch,omitempty"`
	Report    *ReportSpec    `json:"report,omitempty" yaml:"report,omitempty"`
}

// ParameterSpec declares a microflow input parameter.
type ParameterSpec struct {
	Name string `json:"name" yaml:"name"`
	// Type is the host parameter type tag, e.g. "Integer".
	Type string `json:"type" yaml:"type"`
	// Expression stringifies the parameter in the request payload.
	Expression string `json:"expression" yaml:"expression"`
}

// CallSpec is the REST call to the pipeline endpoint.
type CallSpec struct {
	Method           string            `json:"method" yaml:"method"`
	URL              string            `json:"url" yaml:"url"`
	LocationTemplate string            `json:"location_template" yaml:"location_template"`
	LocationArgs     []string          `json:"location_args" yaml:"location_args"`
	RequestTemplate  string            `json:"request_template" yaml:"request_template"`
	RequestArgs      []string          `json:"request_args" yaml:"request_args"`
	Headers          map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	OutputVariable   string            `json:"output_variable" yaml:"output_variable"`
	OutputType       string            `json:"output_type" yaml:"output_type"`
	ResultHandling   string            `json:"result_handling" yaml:"result_handling"`
}

// BranchSpec is the binary split on the call result.
type BranchSpec struct {
	Condition string `json:"condition" yaml:"condition"`
}

// MessageType is the severity of a user-facing message.
type MessageType string

const (
	MessageInformation MessageType = "Information"
	MessageError       MessageType = "Error"
)

// ReportSpec is a user-facing message shown at the end of a branch.
type ReportSpec struct {
	Type     MessageType `json:"type" yaml:"type"`
	Text     string      `json:"text" yaml:"text"`
	Args     []string    `json:"args" yaml:"args"`
	Language string      `json:"language" yaml:"language"`
}

// Edge is a sequence flow. Case is "true" or "false" on edges leaving the
// branch and empty elsewhere.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Case string `json:"case,omitempty" yaml:"case,omitempty"`
}

// Template is the generated description of one microflow. It is never
// modified after Generate returns it.
type Template struct {
	Name     string `json:"name" yaml:"name"`
	Pipeline string `json:"pipeline" yaml:"pipeline"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	Nodes    []Node `json:"nodes" yaml:"nodes"`
	Edges    []Edge `json:"edges" yaml:"edges"`
}

// Node returns the node with the given id.
func (t *Template) Node(id string) (Node, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Parameters returns the parameter nodes in declaration order.
func (t *Template) Parameters() []Node {
	var out []Node
	for _, n := range t.Nodes {
		if n.Kind == NodeParameter {
			out = append(out, n)
		}
	}
	return out
}

// Call returns the call node's spec.
func (t *Template) Call() *CallSpec {
	if n, ok := t.Node(IDCall); ok {
		return n.Call
	}
	return nil
}

// FlowNodes returns the nodes that take part in sequence flows, that is
// every node but the parameters.
func (t *Template) FlowNodes() []Node {
	var out []Node
	for _, n := range t.Nodes {
		if n.Kind != NodeParameter {
			out = append(out, n)
		}
	}
	return out
}
