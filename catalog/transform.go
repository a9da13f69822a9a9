package catalog

import (
	"encoding/json"
	"strconv"
)

// Transform converts a catalog response into pipelines. A pipeline's ID is
// its index; a required field whose property has no string "type" is
// typed UnknownType.
func Transform(resp *Response) []Pipeline {
	if resp == nil {
		return nil
	}
	out := make([]Pipeline, 0, len(resp.Pipelines))
	for i, raw := range resp.Pipelines {
		fields := make([]Field, 0, len(raw.Parameters.Required))
		for _, name := range raw.Parameters.Required {
			fields = append(fields, Field{
				Name: name,
				Type: propertyType(raw.Parameters.Properties[name]),
			})
		}
		out = append(out, Pipeline{
			ID:             strconv.Itoa(i),
			Name:           raw.Name,
			Description:    raw.Description,
			RequiredFields: fields,
		})
	}
	return out
}

func propertyType(raw json.RawMessage) string {
	if len(raw) == 0 {
		return UnknownType
	}
	var prop struct {
		Type any `json:"type"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil {
		return UnknownType
	}
	if s, ok := prop.Type.(string); ok && s != "" {
		return s
	}
	return UnknownType
}
