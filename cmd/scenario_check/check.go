package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"travel-agent/internal/domain"
	"travel-agent/internal/service"
)

// Scenario es una oferta con el resultado que se espera del modelo.
type Scenario struct {
	Name                 string             `yaml:"name"`
	Preferences          domain.Preferences `yaml:"preferences"`
	ExpectAccepted       bool               `yaml:"expect_accepted"`
	ExpectRecommendation string             `yaml:"expect_recommendation,omitempty"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

type scenarioResult struct {
	Scenario Scenario
	Decision domain.Decision
	Err      error
	Problems []string
}

func (r scenarioResult) Passed() bool {
	return r.Err == nil && len(r.Problems) == 0
}

// defaultScenarios son las ofertas de referencia del agente.
func defaultScenarios() []Scenario {
	return []Scenario{
		{
			Name: "Oferta ideal",
			Preferences: domain.Preferences{
				TravelComfort: 5, AttractionsQuality: 5, ActivitiesMatch: 2, SeasonMatch: true,
				UserBudget: domain.LevelHigh, TripCost: domain.LevelHigh,
			},
			ExpectAccepted: true,
		},
		{
			Name: "Oferta pobre fuera de presupuesto",
			Preferences: domain.Preferences{
				TravelComfort: 1, AttractionsQuality: 1, ActivitiesMatch: 0, SeasonMatch: false,
				UserBudget: domain.LevelMedium, TripCost: domain.LevelHigh,
			},
			ExpectAccepted:       false,
			ExpectRecommendation: service.RecommendBudget,
		},
	}
}

// parseScenarios lee escenarios desde YAML. Los campos de preferencias usan las
// mismas claves que el payload HTTP.
func parseScenarios(doc []byte) ([]Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(doc, &file); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	for i, sc := range file.Scenarios {
		if strings.TrimSpace(sc.Name) == "" {
			return nil, fmt.Errorf("scenario %d: name is required", i)
		}
		if err := sc.Preferences.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
	}
	return file.Scenarios, nil
}

func evaluateScenario(ctx context.Context, agent *service.Agent, sc Scenario) scenarioResult {
	res := scenarioResult{Scenario: sc}
	d, err := agent.Decide(ctx, sc.Preferences)
	if err != nil {
		res.Err = err
		return res
	}
	res.Decision = d

	if d.Accepted != sc.ExpectAccepted {
		res.Problems = append(res.Problems, fmt.Sprintf("expected accepted=%t, got %t", sc.ExpectAccepted, d.Accepted))
	}
	if d.Accepted && len(d.RecommendedChanges) > 0 {
		res.Problems = append(res.Problems, "accepted offer carries recommendations")
	}
	if sc.ExpectRecommendation != "" && !contains(d.RecommendedChanges, sc.ExpectRecommendation) {
		res.Problems = append(res.Problems, fmt.Sprintf("missing recommendation %q", sc.ExpectRecommendation))
	}
	return res
}

// scoreBucket acumula aceptaciones por score heurístico.
type scoreBucket struct {
	Score    int
	Total    int
	Accepted int
}

func (b scoreBucket) Rate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Accepted) / float64(b.Total)
}

type sweepReport struct {
	Total    int
	Accepted int
	Failures map[string]int
	Buckets  []scoreBucket
}

// sweep evalúa cada registro y agrupa resultados por score y por tipo de error.
func sweep(ctx context.Context, agent *service.Agent, all []domain.Preferences) sweepReport {
	report := sweepReport{Failures: map[string]int{}}
	buckets := map[int]*scoreBucket{}

	for _, p := range all {
		report.Total++
		d, err := agent.Decide(ctx, p)
		if err != nil {
			report.Failures[domain.ErrorKind(err)]++
			continue
		}
		b, ok := buckets[d.Score]
		if !ok {
			b = &scoreBucket{Score: d.Score}
			buckets[d.Score] = b
		}
		b.Total++
		if d.Accepted {
			b.Accepted++
			report.Accepted++
		}
	}

	for _, b := range buckets {
		report.Buckets = append(report.Buckets, *b)
	}
	sort.Slice(report.Buckets, func(i, j int) bool { return report.Buckets[i].Score < report.Buckets[j].Score })
	return report
}

// inversions lista los scores cuya tasa de aceptación cae respecto del score anterior.
func inversions(buckets []scoreBucket) []int {
	var out []int
	for i := 1; i < len(buckets); i++ {
		if buckets[i].Rate() < buckets[i-1].Rate() {
			out = append(out, buckets[i].Score)
		}
	}
	return out
}

func contains(items []string, target string) bool {
	for _, it := range items {
		if it == target {
			return true
		}
	}
	return false
}
