package microflow

import (
	"regexp"
	"strings"

	"github.com/kbukum/pipegen/host"
)

// UnknownPipeline is reported when a call URL does not name a pipeline.
const UnknownPipeline = "Unknown"

var pipelineNameRe = regexp.MustCompile(`v1/([^/]+)/value`)

// ExistingCall is a previously generated microflow found in the host.
type ExistingCall struct {
	MicroflowID  string `json:"microflow_id" yaml:"microflow_id"`
	Module       string `json:"module" yaml:"module"`
	Name         string `json:"name" yaml:"name"`
	PipelineName string `json:"pipeline_name" yaml:"pipeline_name"`
}

// Match returns the documents whose REST call targets baseURL, annotated
// with the pipeline name taken from the call URL. Documents without a
// recognisable call are skipped. docs is not modified.
func Match(docs []host.Document, baseURL string) []ExistingCall {
	out := make([]ExistingCall, 0)
	for _, doc := range docs {
		url, ok := CallTarget(doc)
		if !ok || !strings.HasPrefix(url, baseURL) {
			continue
		}
		out = append(out, ExistingCall{
			MicroflowID:  doc.ID,
			Module:       doc.Module,
			Name:         doc.Name,
			PipelineName: PipelineFromURL(url),
		})
	}
	return out
}

// CallTarget returns the unquoted location of the first REST call in doc.
func CallTarget(doc host.Document) (string, bool) {
	for _, e := range doc.ElementsOf(host.KindRestCall) {
		args := e.StringsField(host.FieldLocationArgs)
		if len(args) == 0 {
			continue
		}
		if url := Unquote(args[0]); url != "" {
			return url, true
		}
	}
	return "", false
}

// PipelineFromURL extracts the pipeline name from a call URL.
func PipelineFromURL(url string) string {
	m := pipelineNameRe.FindStringSubmatch(url)
	if m == nil {
		return UnknownPipeline
	}
	return m[1]
}

// Unquote strips one layer of single or double quotes.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	switch {
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	case s[0] == '"' && s[len(s)-1] == '"':
		return s[1 : len(s)-1]
	}
	return s
}
