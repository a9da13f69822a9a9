package catalog

import (
	"encoding/json"
	"time"
)

// UnknownType is the field type assigned when a property declares none.
const UnknownType = "unknown"

// Field is one required input of a pipeline.
type Field struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Pipeline describes one discovered pipeline endpoint.
// RequiredFields keeps the declaration order of the source schema.
type Pipeline struct {
	// ID is the pipeline's position in the catalog response.
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Description    string  `json:"description" yaml:"description"`
	RequiredFields []Field `json:"required_fields" yaml:"required_fields"`
}

// Catalog is the result of one successful discovery fetch.
// A Catalog is never modified after construction.
type Catalog struct {
	// BaseURL is the API base generated calls are addressed to. It always
	// ends with a single slash.
	BaseURL   string     `json:"base_url" yaml:"base_url"`
	Pipelines []Pipeline `json:"pipelines" yaml:"pipelines"`
	FetchedAt time.Time  `json:"fetched_at" yaml:"fetched_at"`
}

// Lookup finds a pipeline by name.
func (c *Catalog) Lookup(name string) (Pipeline, bool) {
	if c == nil {
		return Pipeline{}, false
	}
	for _, p := range c.Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return Pipeline{}, false
}

// Response is the body of GET <base>/v1/pipelines/params.
type Response struct {
	Pipelines []RawPipeline `json:"pipelines"`
}

// RawPipeline is one catalog entry as served.
type RawPipeline struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is the JSON-schema-like parameter block of a pipeline.
// Property descriptors are kept raw; only their "type" is read.
type Parameters struct {
	Required   []string                   `json:"required"`
	Properties map[string]json.RawMessage `json:"properties"`
}
