package service

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"travel-agent/internal/domain"
)

// RecommendBudget es la sugerencia asociada a la rama user_budget_low; la política la reconoce.
const RecommendBudget = "increase budget or choose a cheaper offer"

//go:embed recommendation_rules.yaml
var recommendationRulesYAML []byte

// RecommendationRule asocia un fragmento de nombre de feature con una sugerencia.
type RecommendationRule struct {
	Match          string `yaml:"match"`
	Recommendation string `yaml:"recommendation"`
}

type recommendationRuleSet struct {
	Version int                  `yaml:"version"`
	Rules   []RecommendationRule `yaml:"rules"`
}

// defaultRecommendationRules se usa si el YAML embebido falta o es inválido.
var defaultRecommendationRules = []RecommendationRule{
	{Match: "user_budget_low", Recommendation: RecommendBudget},
	{Match: "trip_cost_high", Recommendation: "choose a cheaper destination or shorter stay"},
	{Match: "activities_match", Recommendation: "choose an offer better matched to stated interests"},
	{Match: "season_match", Recommendation: "consider a different travel date"},
	{Match: "attractions_quality", Recommendation: "choose a destination with better attractions"},
	{Match: "travel_comfort", Recommendation: "consider an offer with better travel comfort"},
}

// Recommender traduce las ramas bloqueantes del camino en sugerencias accionables.
type Recommender struct {
	rules []RecommendationRule
}

// NewRecommender usa la tabla embebida, o la tabla por defecto si no se puede leer.
func NewRecommender() *Recommender {
	rules, err := ParseRecommendationRules(recommendationRulesYAML)
	if err != nil {
		rules = defaultRecommendationRules
	}
	return &Recommender{rules: rules}
}

// NewRecommenderWithRules permite inyectar una tabla propia.
func NewRecommenderWithRules(rules []RecommendationRule) *Recommender {
	if len(rules) == 0 {
		rules = defaultRecommendationRules
	}
	return &Recommender{rules: append([]RecommendationRule(nil), rules...)}
}

// ParseRecommendationRules decodifica y valida un documento de reglas.
func ParseRecommendationRules(doc []byte) ([]RecommendationRule, error) {
	var set recommendationRuleSet
	if err := yaml.Unmarshal(doc, &set); err != nil {
		return nil, fmt.Errorf("parse recommendation rules: %w", err)
	}
	if len(set.Rules) == 0 {
		return nil, errors.New("recommendation rules: empty rule set")
	}
	for i, r := range set.Rules {
		if strings.TrimSpace(r.Match) == "" || strings.TrimSpace(r.Recommendation) == "" {
			return nil, fmt.Errorf("recommendation rules: rule %d is incomplete", i)
		}
	}
	return set.Rules, nil
}

// Rules devuelve una copia de la tabla activa.
func (r *Recommender) Rules() []RecommendationRule {
	return append([]RecommendationRule(nil), r.rules...)
}

// Suggest evalúa sólo los pasos hacia la izquierda. Cada paso dispara a lo sumo
// la primera regla que coincide; el resultado no repite sugerencias y conserva
// el orden de primera aparición. Nunca devuelve nil.
func (r *Recommender) Suggest(path []domain.PathStep) []string {
	out := make([]string, 0, len(path))
	seen := make(map[string]struct{}, len(path))
	for _, step := range path {
		if step.Direction != domain.DirectionLeft {
			continue
		}
		for _, rule := range r.rules {
			if !strings.Contains(step.Feature, rule.Match) {
				continue
			}
			if _, dup := seen[rule.Recommendation]; !dup {
				seen[rule.Recommendation] = struct{}{}
				out = append(out, rule.Recommendation)
			}
			break
		}
	}
	return out
}
