package destination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrCityNotFound = errors.New("city not found")

// Client resuelve una ciudad en los atributos que alimentan las preferencias.
type Client interface {
	Lookup(ctx context.Context, city string) (Attributes, error)
}

// Place es el resultado del geocoder.
type Place struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// HTTPClient implementa Client contra Nominatim (geocoding) y Overpass (conteo de atracciones).
type HTTPClient struct {
	geocoderURL string
	overpassURL string
	userAgent   string
	radius      int
	client      *http.Client
	logger      *zap.Logger
}

// NewHTTPClient construye el cliente. Valores vacíos caen en los endpoints públicos de OSM.
func NewHTTPClient(geocoderURL, overpassURL, userAgent string, radiusMeters int, logger *zap.Logger) *HTTPClient {
	if geocoderURL == "" {
		geocoderURL = "https://nominatim.openstreetmap.org"
	}
	if overpassURL == "" {
		overpassURL = "https://overpass-api.de/api/interpreter"
	}
	if userAgent == "" {
		userAgent = "TravelAgent/1.0"
	}
	if radiusMeters <= 0 {
		radiusMeters = 5000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		geocoderURL: strings.TrimRight(geocoderURL, "/"),
		overpassURL: overpassURL,
		userAgent:   userAgent,
		radius:      radiusMeters,
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

func (c *HTTPClient) Lookup(ctx context.Context, city string) (Attributes, error) {
	place, err := c.Geocode(ctx, city)
	if err != nil {
		return Attributes{}, err
	}
	total, err := c.CountAttractions(ctx, place.Lat, place.Lon)
	if err != nil {
		return Attributes{}, err
	}
	attrs := AttributesFromCount(total)
	attrs.City = city
	attrs.Place = place
	return attrs, nil
}

// Geocode devuelve la primera coincidencia del geocoder.
func (c *HTTPClient) Geocode(ctx context.Context, city string) (Place, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Place{}, ErrCityNotFound
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("format", "json")
	q.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocoderURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	body, err := c.do(req, "geocode")
	if err != nil {
		return Place{}, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Place{}, fmt.Errorf("unmarshal geocode response: %w", err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}

	r := results[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse lat %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse lon %q: %w", r.Lon, err)
	}
	place := Place{Name: r.Name, DisplayName: r.DisplayName, Lat: lat, Lon: lon}
	if place.Name == "" {
		place.Name = city
	}
	if place.DisplayName == "" {
		place.DisplayName = city
	}
	return place, nil
}

// CountAttractions cuenta nodos y ways con tag tourism dentro del radio configurado.
func (c *HTTPClient) CountAttractions(ctx context.Context, lat, lon float64) (int, error) {
	form := url.Values{}
	form.Set("data", overpassCountQuery(lat, lon, c.radius))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("create overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	body, err := c.do(req, "overpass")
	if err != nil {
		return 0, err
	}

	var or overpassResponse
	if err := json.Unmarshal(body, &or); err != nil {
		return 0, fmt.Errorf("unmarshal overpass response: %w", err)
	}
	if len(or.Elements) == 0 {
		return 0, errors.New("overpass empty response")
	}
	raw := or.Elements[0].Tags["total"]
	if raw == "" {
		return 0, nil
	}
	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse overpass total %q: %w", raw, err)
	}
	return total, nil
}

func (c *HTTPClient) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("destination upstream error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 256)),
		)
		return nil, fmt.Errorf("%s http error: status=%d", op, resp.StatusCode)
	}
	return body, nil
}

func overpassCountQuery(lat, lon float64, radius int) string {
	return fmt.Sprintf(`[out:json];
(
  node["tourism"](around:%d,%g,%g);
  way["tourism"](around:%d,%g,%g);
);
out count;`, radius, lat, lon, radius, lat, lon)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type nominatimResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

type overpassResponse struct {
	Elements []struct {
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}
