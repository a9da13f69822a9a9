package catalog

// Page is a window over a list of items.
type Page struct {
	Number     int `json:"page" yaml:"page"`
	PerPage    int `json:"per_page" yaml:"per_page"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
	// Start and End are slice bounds clamped to the item count.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Paginate computes the window for a 1-based page. Pages below 1 and
// non-positive sizes are clamped to 1; a page past the end yields an empty
// window.
func Paginate(total, page, perPage int) Page {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	p := Page{
		Number:     page,
		PerPage:    perPage,
		TotalPages: total / perPage,
		Start:      total,
		End:        total,
	}
	if total%perPage != 0 {
		p.TotalPages++
	}
	// Pages past the end stay empty without multiplying, so huge page
	// numbers cannot overflow.
	if page-1 < p.TotalPages {
		p.Start = (page - 1) * perPage
		p.End = p.Start + min(perPage, total-p.Start)
	}
	return p
}

// PageOf returns the pipelines inside page.
func PageOf(items []Pipeline, page Page) []Pipeline {
	return items[page.Start:page.End]
}
