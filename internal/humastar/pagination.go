// pagination.go — pagination via RFC 8288 Link headers.
//
// Listing handlers return PageBody[T]; the link transformer spots the
// Pager interface and emits first/prev/next/last headers so clients can
// walk pages without constructing offsets themselves.
package humastar

import "fmt"

// Pager is implemented by response bodies that carry pagination metadata.
type Pager interface {
	PaginationLinks(basePath string) []string
}

// PageBody is a generic paginated response envelope.
type PageBody[T any] struct {
	Total  int `json:"total" doc:"Total number of items"`
	Offset int `json:"offset" doc:"Current offset"`
	Limit  int `json:"limit" doc:"Page size"`
	Data   []T `json:"data" doc:"Items"`
}

// PaginationLinks returns Link header values for the page window. The
// first and last rels are always present; prev and next only when a page
// exists in that direction.
func (p PageBody[T]) PaginationLinks(basePath string) []string {
	limit := p.Limit
	if limit <= 0 {
		limit = 1
	}
	page := func(rel string, offset int) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, basePath, offset, limit, rel)
	}

	links := []string{page("first", 0)}
	if p.Offset > 0 {
		links = append(links, page("prev", max(p.Offset-limit, 0)))
	}
	if next := p.Offset + limit; next < p.Total {
		links = append(links, page("next", next))
	}
	return append(links, page("last", max((p.Total-1)/limit*limit, 0)))
}
