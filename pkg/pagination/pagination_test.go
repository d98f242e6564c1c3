package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CapsLimit(t *testing.T) {
	p := paramsFor(t, "limit=5000")
	if p.Limit != MaxLimit {
		t.Errorf("expected capped limit %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := paramsFor(t, "limit=5&offset=10")
	if p.Limit != 5 || p.Offset != 10 {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected more pages")
	}
	r = NewResponse(nil, 50, 20, 40)
	if r.HasMore {
		t.Error("expected last page")
	}
}
