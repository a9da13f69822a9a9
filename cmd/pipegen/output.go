package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/pipegen/validation"
)

// Output formats.
const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

// render writes v in the requested format. table is used for the table
// format and may be nil when a command has no tabular view.
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	allowed := []string{formatTable, formatYAML, formatJSON}
	if table == nil {
		allowed = allowed[1:]
	}
	if verr := validation.New().OneOf("output", format, allowed).Validate(); verr != nil {
		return verr
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatTable:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q (want table, yaml or json)", format)
	}
}
