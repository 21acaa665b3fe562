package service

import (
	"fmt"
	"strings"

	"travel-agent/internal/domain"
)

type featureAccessor func(p domain.Preferences) float64

// rawAccessors mapea cada campo crudo a su lector tipado.
var rawAccessors = map[string]featureAccessor{
	domain.FieldTravelComfort:      func(p domain.Preferences) float64 { return float64(p.TravelComfort) },
	domain.FieldAttractionsQuality: func(p domain.Preferences) float64 { return float64(p.AttractionsQuality) },
	domain.FieldActivitiesMatch:    func(p domain.Preferences) float64 { return float64(p.ActivitiesMatch) },
	domain.FieldSeasonMatch:        func(p domain.Preferences) float64 { return p.SeasonMatchValue() },
	domain.FieldScore:              func(p domain.Preferences) float64 { return float64(p.Score()) },
}

// FeatureVectorizer arma el vector en el orden canónico declarado por el árbol.
type FeatureVectorizer struct {
	names     []string
	accessors []featureAccessor
}

// NewFeatureVectorizer resuelve cada nombre declarado a un accessor y falla rápido
// con SchemaMismatch si el árbol declara una feature desconocida.
func NewFeatureVectorizer(featureNames []string) (*FeatureVectorizer, error) {
	if len(featureNames) == 0 {
		return nil, domain.NewSchemaMismatch("feature_names", "model declares no features")
	}

	v := &FeatureVectorizer{
		names:     append([]string(nil), featureNames...),
		accessors: make([]featureAccessor, len(featureNames)),
	}
	seen := make(map[string]struct{}, len(featureNames))
	for i, name := range featureNames {
		if _, dup := seen[name]; dup {
			return nil, domain.NewSchemaMismatch(name, "feature declared twice")
		}
		seen[name] = struct{}{}

		acc, err := accessorFor(name)
		if err != nil {
			return nil, err
		}
		v.accessors[i] = acc
	}
	return v, nil
}

func accessorFor(name string) (featureAccessor, error) {
	if acc, ok := rawAccessors[name]; ok {
		return acc, nil
	}
	for _, field := range []string{domain.FieldUserBudget, domain.FieldTripCost} {
		prefix := field + "_"
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		level := domain.Level(strings.TrimPrefix(name, prefix))
		if !level.Valid() {
			return nil, domain.NewSchemaMismatch(name, fmt.Sprintf("unknown %s category %q", field, level))
		}
		return oneHotAccessor(field, level), nil
	}
	return nil, domain.NewSchemaMismatch(name, "model declares a feature with no preference accessor")
}

func oneHotAccessor(field string, level domain.Level) featureAccessor {
	return func(p domain.Preferences) float64 {
		actual := p.UserBudget
		if field == domain.FieldTripCost {
			actual = p.TripCost
		}
		if actual == level {
			return 1
		}
		return 0
	}
}

// FeatureNames devuelve una copia del orden canónico.
func (v *FeatureVectorizer) FeatureNames() []string {
	return append([]string(nil), v.names...)
}

// Vectorize valida el registro y produce el vector alineado.
// Las columnas one-hot no declaradas por el árbol se descartan; las declaradas
// que no corresponden a la categoría del registro quedan en cero.
func (v *FeatureVectorizer) Vectorize(p domain.Preferences) (domain.FeatureVector, error) {
	if err := p.Validate(); err != nil {
		return domain.FeatureVector{}, err
	}

	values := make([]float64, len(v.accessors))
	for i, acc := range v.accessors {
		values[i] = acc(p)
	}
	return domain.FeatureVector{Names: v.FeatureNames(), Values: values}, nil
}

// VectorizeRaw parsea la entrada laxa y luego vectoriza.
func (v *FeatureVectorizer) VectorizeRaw(raw domain.RawPreferences) (domain.FeatureVector, domain.Preferences, error) {
	p, err := domain.ParsePreferences(raw)
	if err != nil {
		return domain.FeatureVector{}, domain.Preferences{}, err
	}
	vec, err := v.Vectorize(p)
	if err != nil {
		return domain.FeatureVector{}, domain.Preferences{}, err
	}
	return vec, p, nil
}
