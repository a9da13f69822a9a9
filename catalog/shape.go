package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kbukum/pipegen/errors"
)

// IsPipelinesResponse reports whether a decoded JSON value satisfies the
// catalog shape contract. Unknown fields are ignored.
func IsPipelinesResponse(v any) bool {
	return checkShape(v) == ""
}

// checkShape returns the first contract violation, or "" when v conforms.
func checkShape(v any) string {
	root, ok := v.(map[string]any)
	if !ok {
		return "body is not a JSON object"
	}
	list, ok := root["pipelines"].([]any)
	if !ok {
		return `"pipelines" is not an array`
	}
	for i, item := range list {
		if reason := checkPipeline(item); reason != "" {
			return "pipelines[" + strconv.Itoa(i) + "]: " + reason
		}
	}
	return ""
}

func checkPipeline(item any) string {
	p, ok := item.(map[string]any)
	if !ok {
		return "not an object"
	}
	if _, ok := p["name"].(string); !ok {
		return `"name" is not a string`
	}
	if _, ok := p["description"].(string); !ok {
		return `"description" is not a string`
	}
	params, ok := p["parameters"].(map[string]any)
	if !ok {
		return `"parameters" is not an object`
	}
	required, ok := params["required"].([]any)
	if !ok {
		return `"parameters.required" is not an array`
	}
	for _, r := range required {
		if _, ok := r.(string); !ok {
			return `"parameters.required" contains a non-string`
		}
	}
	if _, ok := params["properties"].(map[string]any); !ok {
		return `"parameters.properties" is not an object`
	}
	return ""
}

// Decode validates raw JSON against the shape contract and decodes it.
func Decode(body []byte) (*Response, error) {
	var generic any
	if err := json.Unmarshal(body, &generic); err != nil {
		return nil, errors.ShapeMismatch("body is not valid JSON").WithCause(err)
	}
	if reason := checkShape(generic); reason != "" {
		return nil, errors.ShapeMismatch(reason)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.ShapeMismatch(fmt.Sprintf("decode: %v", err)).WithCause(err)
	}
	return &resp, nil
}
