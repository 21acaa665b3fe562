package destination

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestAttributesFromCount(t *testing.T) {
	tests := []struct {
		total      int
		quality    int
		activities int
	}{
		{total: 0, quality: 1, activities: 0},
		{total: 39, quality: 1, activities: 0},
		{total: 40, quality: 2, activities: 0},
		{total: 80, quality: 3, activities: 1},
		{total: 159, quality: 4, activities: 1},
		{total: 160, quality: 5, activities: 2},
		{total: 5000, quality: 5, activities: 2},
		{total: -3, quality: 1, activities: 0},
	}
	for _, tt := range tests {
		got := AttributesFromCount(tt.total)
		if got.AttractionsQuality != tt.quality || got.ActivitiesMatch != tt.activities {
			t.Fatalf("total %d: expected quality=%d activities=%d, got %+v", tt.total, tt.quality, tt.activities, got)
		}
	}
}

func newOSMServer(t *testing.T, geocode, overpass string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" || r.URL.Query().Get("limit") != "1" {
			t.Errorf("unexpected geocode query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "travel-test/1.0" {
			t.Errorf("missing user agent")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geocode))
	})
	mux.HandleFunc("/interpreter", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		q := r.PostForm.Get("data")
		if !strings.Contains(q, "around:2500,48.85,2.35") || !strings.Contains(q, "out count;") {
			t.Errorf("unexpected overpass query: %s", q)
		}
		_, _ = w.Write([]byte(overpass))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientLookup(t *testing.T) {
	srv := newOSMServer(t,
		`[{"name":"Paris","display_name":"Paris, France","lat":"48.85","lon":"2.35"}]`,
		`{"elements":[{"tags":{"total":"130"}}]}`,
	)
	c := NewHTTPClient(srv.URL, srv.URL+"/interpreter", "travel-test/1.0", 2500, zap.NewNop())

	attrs, err := c.Lookup(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attrs.TotalAttractions != 130 || attrs.AttractionsQuality != 4 || attrs.ActivitiesMatch != 1 {
		t.Fatalf("unexpected attributes %+v", attrs)
	}
	if attrs.City != "Paris" || attrs.Place.DisplayName != "Paris, France" {
		t.Fatalf("unexpected place %+v", attrs)
	}
}

func TestHTTPClientCityNotFound(t *testing.T) {
	srv := newOSMServer(t, `[]`, `{"elements":[]}`)
	c := NewHTTPClient(srv.URL, srv.URL+"/interpreter", "travel-test/1.0", 2500, zap.NewNop())

	_, err := c.Lookup(context.Background(), "Atlantis")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("expected city not found, got %v", err)
	}

	if _, err := c.Geocode(context.Background(), "   "); !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("expected city not found for blank input, got %v", err)
	}
}

func TestHTTPClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, srv.URL, "travel-test/1.0", 0, nil)
	if _, err := c.Lookup(context.Background(), "Paris"); err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestHTTPClientMissingTotal(t *testing.T) {
	srv := newOSMServer(t,
		`[{"lat":"48.85","lon":"2.35"}]`,
		`{"elements":[{"tags":{}}]}`,
	)
	c := NewHTTPClient(srv.URL, srv.URL+"/interpreter", "travel-test/1.0", 2500, zap.NewNop())

	attrs, err := c.Lookup(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attrs.TotalAttractions != 0 || attrs.AttractionsQuality != 1 {
		t.Fatalf("expected minimal attributes, got %+v", attrs)
	}
	if attrs.Place.Name != "Paris" {
		t.Fatalf("expected name fallback to input, got %q", attrs.Place.Name)
	}
}

func TestMockClient(t *testing.T) {
	m := &MockClient{
		Cities: map[string]Attributes{"Rome": {AttractionsQuality: 5, ActivitiesMatch: 2}},
		Errs:   map[string]error{"Tokyo": errors.New("timeout")},
	}
	if a, err := m.Lookup(context.Background(), "Rome"); err != nil || a.City != "Rome" {
		t.Fatalf("unexpected lookup %+v %v", a, err)
	}
	if _, err := m.Lookup(context.Background(), "Tokyo"); err == nil {
		t.Fatalf("expected configured error")
	}
	if _, err := m.Lookup(context.Background(), "Oslo"); !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(m.Calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(m.Calls))
	}
}
