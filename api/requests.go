package api

// LoadCatalogRequest is the body of POST /api/v1/catalog.
type LoadCatalogRequest struct {
	URL string `json:"url"`
}

// PageQuery is the query of GET /api/v1/pipelines.
type PageQuery struct {
	Page    int `form:"page" json:"page" validate:"min=0"`
	PerPage int `form:"per_page" json:"per_page" validate:"min=0,max=100"`
}

// PrefixRequest is the body of PUT /api/v1/prefix.
type PrefixRequest struct {
	Prefix string `json:"prefix"`
}

// CreateMicroflowRequest is the body of POST /api/v1/microflows. DryRun
// returns the generated template without building it.
type CreateMicroflowRequest struct {
	Pipeline string `json:"pipeline"`
	Module   string `json:"module"`
	DryRun   bool   `json:"dry_run"`
}

// CatalogSummary is the answer to a catalog load.
type CatalogSummary struct {
	BaseURL   string `json:"base_url"`
	Pipelines int    `json:"pipelines"`
	FetchedAt string `json:"fetched_at"`
}
