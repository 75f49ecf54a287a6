package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ListQuery captures the common collection query parameters.
type ListQuery struct {
	Limit    int
	Offset   int
	Search   string
	OrderBy  string
	OrderDir string
}

// ParseListQuery reads limit/offset/search/ordering from the request.
// Ordering values are matched against sortFields, a map from the public
// parameter name to the SQL expression that implements it; unknown values
// fall back to defaultOrder.
func ParseListQuery(r *http.Request, sortFields map[string]string, defaultOrder string) ListQuery {
	q := r.URL.Query()
	lq := ListQuery{
		Limit:    DefaultPageSize,
		Offset:   0,
		Search:   strings.TrimSpace(q.Get("search")),
		OrderBy:  defaultOrder,
		OrderDir: "ASC",
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			lq.Limit = parsed
		}
	}
	if lq.Limit > MaxPageSize {
		lq.Limit = MaxPageSize
	}
	if raw := q.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			lq.Offset = parsed
		}
	}
	ordering := strings.TrimSpace(q.Get("ordering"))
	if ordering != "" {
		if strings.HasPrefix(ordering, "-") {
			lq.OrderDir = "DESC"
			ordering = ordering[1:]
		}
		if expr, ok := sortFields[ordering]; ok {
			lq.OrderBy = expr
		}
	}
	return lq
}

// OrderClause renders the ORDER BY fragment for the query.
func (q ListQuery) OrderClause() string {
	if q.OrderBy == "" {
		return ""
	}
	return " ORDER BY " + q.OrderBy + " " + q.OrderDir
}
