// Package pagination implements the offset paging policy shared by the
// message and conversation stores: pages are 1-indexed windows over a fully
// materialized, already-sorted result set, and Total always reports the size
// of the entire matching set rather than the page.
package pagination

// PagedResult is one page of a larger result set.
type PagedResult[T any] struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Data  []T `json:"data"`
}

// DefaultLimit is applied by the boundary layer when no limit is requested.
const DefaultLimit = 20

// Paginate slices items into the requested page. Pages past the end of the
// set yield empty data, as do page <= 0 and limit <= 0; in every case Total,
// Page and Limit echo the full set size and the request as given.
func Paginate[T any](items []T, page, limit int) PagedResult[T] {
	result := PagedResult[T]{
		Total: len(items),
		Page:  page,
		Limit: limit,
		Data:  []T{},
	}

	if page <= 0 || limit <= 0 {
		return result
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return result
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	result.Data = items[start:end]
	return result
}
