package catalog

import (
	"encoding/json"
	"math"
	"testing"
)

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestIsPipelinesResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"empty list", `{"pipelines":[]}`, true},
		{"valid", `{"pipelines":[{"name":"a","description":"","parameters":{"required":["x"],"properties":{"x":{"type":"string"}}}}]}`, true},
		{"extra fields ignored", `{"version":2,"pipelines":[{"name":"a","description":"d","tags":[1],"parameters":{"type":"object","required":[],"properties":{},"additionalProperties":false}}]}`, true},
		{"not an object", `[]`, false},
		{"pipelines missing", `{}`, false},
		{"pipelines not array", `{"pipelines":{}}`, false},
		{"missing name", `{"pipelines":[{"description":"","parameters":{"required":[],"properties":{}}}]}`, false},
		{"name not string", `{"pipelines":[{"name":1,"description":"","parameters":{"required":[],"properties":{}}}]}`, false},
		{"missing description", `{"pipelines":[{"name":"a","parameters":{"required":[],"properties":{}}}]}`, false},
		{"missing parameters", `{"pipelines":[{"name":"a","description":""}]}`, false},
		{"parameters null", `{"pipelines":[{"name":"a","description":"","parameters":null}]}`, false},
		{"missing required", `{"pipelines":[{"name":"a","description":"","parameters":{"properties":{}}}]}`, false},
		{"required not strings", `{"pipelines":[{"name":"a","description":"","parameters":{"required":[1],"properties":{}}}]}`, false},
		{"missing properties", `{"pipelines":[{"name":"a","description":"","parameters":{"required":[]}}]}`, false},
		{"element not object", `{"pipelines":["a"]}`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPipelinesResponse(decodeJSON(t, tc.body)); got != tc.want {
				t.Errorf("IsPipelinesResponse(%s) = %v, want %v", tc.body, got, tc.want)
			}
		})
	}
}

func TestDecodeAndTransform(t *testing.T) {
	body := `{"pipelines":[
		{"name":"Orders Sync","description":"","parameters":{"required":["id","active"],"properties":{"id":{"type":"integer"},"active":{"type":"boolean"}}}},
		{"name":"Loose","description":"no types","parameters":{"required":["a","b","c"],"properties":{"a":{},"b":{"type":["string","null"]}}}}
	]}`

	resp, err := Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	pipelines := Transform(resp)
	if len(pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(pipelines))
	}

	orders := pipelines[0]
	if orders.ID != "0" || orders.Name != "Orders Sync" {
		t.Errorf("unexpected pipeline %+v", orders)
	}
	want := []Field{{"id", "integer"}, {"active", "boolean"}}
	for i, f := range want {
		if orders.RequiredFields[i] != f {
			t.Errorf("field %d = %+v, want %+v", i, orders.RequiredFields[i], f)
		}
	}

	loose := pipelines[1]
	if loose.ID != "1" {
		t.Errorf("expected ID 1, got %s", loose.ID)
	}
	for _, f := range loose.RequiredFields {
		if f.Type != UnknownType {
			t.Errorf("field %s: expected %q, got %q", f.Name, UnknownType, f.Type)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode([]byte("<html>")); err == nil {
		t.Error("expected error for non-JSON body")
	}
	if _, err := Decode([]byte(`{"pipelines":[{"name":"a"}]}`)); err == nil {
		t.Error("expected error for shape mismatch")
	}
}

func TestTransform_Nil(t *testing.T) {
	if got := Transform(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestCatalogLookup(t *testing.T) {
	cat := &Catalog{Pipelines: []Pipeline{{ID: "0", Name: "a"}, {ID: "1", Name: "b"}}}
	if p, ok := cat.Lookup("b"); !ok || p.ID != "1" {
		t.Errorf("Lookup(b) = %+v, %v", p, ok)
	}
	if _, ok := cat.Lookup("missing"); ok {
		t.Error("expected miss")
	}
	var empty *Catalog
	if _, ok := empty.Lookup("a"); ok {
		t.Error("nil catalog should not match")
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                    string
		total, page, perPage    int
		wantPages, wantS, wantE int
	}{
		{"first page", 25, 1, 10, 3, 0, 10},
		{"last partial page", 25, 3, 10, 3, 20, 25},
		{"past the end", 25, 5, 10, 3, 25, 25},
		{"empty", 0, 1, 10, 0, 0, 0},
		{"exact fit", 20, 2, 10, 2, 10, 20},
		{"page clamped", 5, 0, 2, 3, 0, 2},
		{"size clamped", 3, 2, 0, 3, 1, 2},
		{"huge page", 25, math.MaxInt/10 + 2, 10, 3, 25, 25},
		{"huge page size", 25, 2, math.MaxInt, 1, 25, 25},
		{"max page and size", math.MaxInt, math.MaxInt, math.MaxInt, 1, math.MaxInt, math.MaxInt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Paginate(tc.total, tc.page, tc.perPage)
			if p.TotalPages != tc.wantPages || p.Start != tc.wantS || p.End != tc.wantE {
				t.Errorf("Paginate(%d,%d,%d) = %+v", tc.total, tc.page, tc.perPage, p)
			}
		})
	}

	items := make([]Pipeline, 25)
	if got := PageOf(items, Paginate(25, 3, 10)); len(got) != 5 {
		t.Errorf("expected 5 items on last page, got %d", len(got))
	}
	if got := PageOf(items, Paginate(len(items), math.MaxInt/10+2, 10)); len(got) != 0 {
		t.Errorf("expected an empty page far past the end, got %d items", len(got))
	}
}
