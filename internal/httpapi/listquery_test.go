package httpapi

import (
	"net/http/httptest"
	"testing"
)

func TestParseListQuery_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/stations", nil)
	lq := ParseListQuery(req, map[string]string{"name": "name"}, "id")
	if lq.Limit != DefaultPageSize || lq.Offset != 0 {
		t.Fatalf("unexpected paging defaults: %+v", lq)
	}
	if lq.OrderBy != "id" || lq.OrderDir != "ASC" {
		t.Fatalf("unexpected ordering defaults: %+v", lq)
	}
}

func TestParseListQuery_OrderingWhitelist(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/stations?ordering=-name", nil)
	lq := ParseListQuery(req, map[string]string{"name": "name"}, "id")
	if lq.OrderBy != "name" || lq.OrderDir != "DESC" {
		t.Fatalf("expected descending name ordering, got %+v", lq)
	}

	req = httptest.NewRequest("GET", "/api/v1/stations?ordering=latitude;DROP", nil)
	lq = ParseListQuery(req, map[string]string{"name": "name"}, "id")
	if lq.OrderBy != "id" {
		t.Fatalf("unknown ordering must fall back to default, got %q", lq.OrderBy)
	}
}

func TestParseListQuery_LimitClamped(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/stations?limit=10000&offset=30", nil)
	lq := ParseListQuery(req, nil, "id")
	if lq.Limit != MaxPageSize {
		t.Fatalf("expected clamped limit, got %d", lq.Limit)
	}
	if lq.Offset != 30 {
		t.Fatalf("expected offset 30, got %d", lq.Offset)
	}
}
