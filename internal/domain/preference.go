package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Level es el nivel categórico de presupuesto o costo.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Levels lista los valores canónicos en orden ascendente.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

// Valid indica si el nivel es uno de los tres valores canónicos.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// Next devuelve el nivel inmediatamente superior; high se queda en high.
func (l Level) Next() Level {
	switch l {
	case LevelLow:
		return LevelMedium
	case LevelMedium:
		return LevelHigh
	}
	return l
}

// Nombres de campos crudos tal como los declara el artefacto del árbol.
const (
	FieldTravelComfort      = "travel_comfort"
	FieldAttractionsQuality = "attractions_quality"
	FieldActivitiesMatch    = "activities_match"
	FieldSeasonMatch        = "season_match"
	FieldScore              = "score"
	FieldUserBudget         = "user_budget"
	FieldTripCost           = "trip_cost"
)

// Preferences es el registro de preferencias de un viajero para una oferta concreta.
// Es un valor: las políticas devuelven una copia modificada en lugar de mutarlo.
type Preferences struct {
	TravelComfort      int   `json:"travel_comfort" yaml:"travel_comfort"`           // 1-5
	AttractionsQuality int   `json:"attractions_quality" yaml:"attractions_quality"` // 1-5
	ActivitiesMatch    int   `json:"activities_match" yaml:"activities_match"`       // 0-2
	SeasonMatch        bool  `json:"season_match" yaml:"season_match"`
	UserBudget         Level `json:"user_budget" yaml:"user_budget"`
	TripCost           Level `json:"trip_cost" yaml:"trip_cost"`
}

// Score calcula la heurística de deseabilidad (0-10).
// Las reglas son aditivas y se evalúan en este orden exacto.
func (p Preferences) Score() int {
	score := 0

	switch {
	case p.TravelComfort >= 4:
		score += 2
	case p.TravelComfort >= 3:
		score++
	}

	switch {
	case p.AttractionsQuality >= 4:
		score += 2
	case p.AttractionsQuality >= 3:
		score++
	}

	score += p.ActivitiesMatch

	if p.SeasonMatch {
		score++
	}

	if p.UserBudget == p.TripCost {
		score += 2
	} else if p.UserBudget == LevelHigh && p.TripCost != LevelHigh {
		score++
	}

	return score
}

// SeasonMatchValue codifica SeasonMatch como 0/1.
func (p Preferences) SeasonMatchValue() float64 {
	if p.SeasonMatch {
		return 1
	}
	return 0
}

// Validate verifica rangos ordinales y niveles canónicos. No recorta valores.
func (p Preferences) Validate() error {
	if p.TravelComfort < 1 || p.TravelComfort > 5 {
		return NewSchemaMismatch(FieldTravelComfort, fmt.Sprintf("value %d outside [1,5]", p.TravelComfort))
	}
	if p.AttractionsQuality < 1 || p.AttractionsQuality > 5 {
		return NewSchemaMismatch(FieldAttractionsQuality, fmt.Sprintf("value %d outside [1,5]", p.AttractionsQuality))
	}
	if p.ActivitiesMatch < 0 || p.ActivitiesMatch > 2 {
		return NewSchemaMismatch(FieldActivitiesMatch, fmt.Sprintf("value %d outside [0,2]", p.ActivitiesMatch))
	}
	if !p.UserBudget.Valid() {
		return NewSchemaMismatch(FieldUserBudget, fmt.Sprintf("%q is not one of low|medium|high", p.UserBudget))
	}
	if !p.TripCost.Valid() {
		return NewSchemaMismatch(FieldTripCost, fmt.Sprintf("%q is not one of low|medium|high", p.TripCost))
	}
	return nil
}

// AllPreferences enumera el dominio completo de registros válidos (5*5*3*2*3*3).
func AllPreferences() []Preferences {
	out := make([]Preferences, 0, 1350)
	for comfort := 1; comfort <= 5; comfort++ {
		for quality := 1; quality <= 5; quality++ {
			for activities := 0; activities <= 2; activities++ {
				for _, season := range []bool{false, true} {
					for _, budget := range Levels {
						for _, cost := range Levels {
							out = append(out, Preferences{
								TravelComfort:      comfort,
								AttractionsQuality: quality,
								ActivitiesMatch:    activities,
								SeasonMatch:        season,
								UserBudget:         budget,
								TripCost:           cost,
							})
						}
					}
				}
			}
		}
	}
	return out
}

// RawPreferences es la forma laxa que llega desde UI, CLI o HTTP.
type RawPreferences map[string]any

// ParsePreferences convierte la entrada cruda en Preferences validadas.
// Un campo requerido ausente es un SchemaMismatch; nunca se completa con defaults.
func ParsePreferences(raw RawPreferences) (Preferences, error) {
	var p Preferences
	var err error

	if p.TravelComfort, err = rawInt(raw, FieldTravelComfort); err != nil {
		return Preferences{}, err
	}
	if p.AttractionsQuality, err = rawInt(raw, FieldAttractionsQuality); err != nil {
		return Preferences{}, err
	}
	if p.ActivitiesMatch, err = rawInt(raw, FieldActivitiesMatch); err != nil {
		return Preferences{}, err
	}
	if p.SeasonMatch, err = rawFlag(raw, FieldSeasonMatch); err != nil {
		return Preferences{}, err
	}

	if p.UserBudget, err = rawLevel(raw, FieldUserBudget); err != nil {
		return Preferences{}, err
	}
	if p.TripCost, err = rawLevel(raw, FieldTripCost); err != nil {
		return Preferences{}, err
	}

	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

func rawInt(raw RawPreferences, field string) (int, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0, NewSchemaMismatch(field, "required field missing")
	}

	var f float64
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, NewSchemaMismatch(field, fmt.Sprintf("%q is not numeric", n))
		}
		f = parsed
	default:
		return 0, NewSchemaMismatch(field, fmt.Sprintf("unsupported type %T", v))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, NewSchemaMismatch(field, fmt.Sprintf("value %v is not an integer", f))
	}
	return int(f), nil
}

// rawFlag acepta bool o la codificación 0/1; el resto de los campos no admite bool.
func rawFlag(raw RawPreferences, field string) (bool, error) {
	if b, ok := raw[field].(bool); ok {
		return b, nil
	}
	v, err := rawInt(raw, field)
	if err != nil {
		return false, err
	}
	if v != 0 && v != 1 {
		return false, NewSchemaMismatch(field, fmt.Sprintf("value %d is not 0 or 1", v))
	}
	return v == 1, nil
}

func rawLevel(raw RawPreferences, field string) (Level, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return "", NewSchemaMismatch(field, "required field missing")
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case Level:
		s = string(t)
	default:
		return "", NewSchemaMismatch(field, fmt.Sprintf("unsupported type %T", v))
	}
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", NewSchemaMismatch(field, fmt.Sprintf("%q is not one of low|medium|high", s))
	}
	return l, nil
}
