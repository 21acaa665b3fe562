package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"travel-agent/internal/destination"
	"travel-agent/internal/domain"
)

// DefaultAlternativeCities es el catálogo de destinos conocidos. Sin lista explícita
// se consultan los primeros defaultCandidateCount.
var DefaultAlternativeCities = []string{
	"Paris", "London", "Tokyo", "New York", "Barcelona",
	"Rome", "Amsterdam", "Prague", "Vienna", "Berlin",
	"Dubai", "Singapore", "Lisbon", "Copenhagen", "Istanbul",
}

const (
	defaultCandidateCount   = 5
	defaultAlternativeLimit = 3
	lookupConcurrency       = 4
)

var ErrAlternativesNotConfigured = errors.New("alternatives not configured")

// Alternative es un destino que puntúa mejor que la oferta actual.
type Alternative struct {
	City               string `json:"city"`
	Score              int    `json:"score"`
	AttractionsQuality int    `json:"attractions_quality"`
	ActivitiesMatch    int    `json:"activities_match"`
	TotalAttractions   int    `json:"total_attractions"`
}

// AlternativesService busca destinos que mejoran la heurística con las mismas preferencias.
type AlternativesService struct {
	client destination.Client
	logger *zap.Logger
}

func NewAlternativesService(client destination.Client, logger *zap.Logger) *AlternativesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlternativesService{client: client, logger: logger}
}

// Rank consulta cada ciudad en paralelo, reemplaza atracciones y actividades en las
// preferencias base y se queda con las que superan currentScore, ordenadas por
// score descendente (empates en orden de entrada). Las ciudades que fallan se omiten.
func (s *AlternativesService) Rank(ctx context.Context, base domain.Preferences, currentScore int, cities []string, limit int) ([]Alternative, error) {
	if s == nil || s.client == nil {
		return nil, ErrAlternativesNotConfigured
	}
	if len(cities) == 0 {
		cities = DefaultAlternativeCities[:defaultCandidateCount]
	}
	if limit <= 0 {
		limit = defaultAlternativeLimit
	}

	results := make([]*Alternative, len(cities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	for i, city := range cities {
		i, city := i, strings.TrimSpace(city)
		if city == "" {
			continue
		}
		g.Go(func() error {
			attrs, err := s.client.Lookup(gctx, city)
			if err != nil {
				s.logger.Warn("alternative lookup failed", zap.String("city", city), zap.Error(err))
				return nil
			}
			candidate := base
			candidate.AttractionsQuality = attrs.AttractionsQuality
			candidate.ActivitiesMatch = attrs.ActivitiesMatch
			if err := candidate.Validate(); err != nil {
				s.logger.Warn("alternative attributes out of range", zap.String("city", city), zap.Error(err))
				return nil
			}
			results[i] = &Alternative{
				City:               city,
				Score:              candidate.Score(),
				AttractionsQuality: attrs.AttractionsQuality,
				ActivitiesMatch:    attrs.ActivitiesMatch,
				TotalAttractions:   attrs.TotalAttractions,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Alternative, 0, len(results))
	for _, r := range results {
		if r != nil && r.Score > currentScore {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
