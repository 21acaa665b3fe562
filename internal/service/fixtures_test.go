package service

import (
	"testing"

	"travel-agent/internal/domain"
	"travel-agent/internal/model"
)

var offerFeatureNames = []string{
	"travel_comfort", "attractions_quality", "activities_match", "season_match", "score",
	"user_budget_low", "user_budget_medium", "user_budget_high",
	"trip_cost_low", "trip_cost_medium", "trip_cost_high",
}

// offerTree:
//
//	0 score <= 6.5
//	├─ 1 user_budget_low <= 0.5
//	│  ├─ 2 leaf reject
//	│  └─ 3 leaf reject
//	└─ 4 season_match <= 0.5
//	   ├─ 5 leaf reject
//	   └─ 6 leaf accept
func offerTree(t *testing.T) *model.DecisionTree {
	t.Helper()
	tree, err := model.NewDecisionTree(offerFeatureNames, model.Structure{
		LeftChild:  []int{1, 2, -1, -1, 5, -1, -1},
		RightChild: []int{4, 3, -1, -1, 6, -1, -1},
		Feature:    []int{4, 5, -2, -2, 3, -2, -2},
		Threshold:  []float64{6.5, 0.5, -2, -2, 0.5, -2, -2},
	}, [][2]float64{{25, 26}, {18, 3}, {10, 2}, {8, 1}, {7, 23}, {6, 3}, {1, 20}})
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return tree
}

func scenarioA() domain.Preferences {
	return domain.Preferences{
		TravelComfort: 5, AttractionsQuality: 5, ActivitiesMatch: 2, SeasonMatch: true,
		UserBudget: domain.LevelHigh, TripCost: domain.LevelHigh,
	}
}

// scenarioB puntúa 0 y cae por la rama izquierda de user_budget_low.
func scenarioB() domain.Preferences {
	return domain.Preferences{
		TravelComfort: 1, AttractionsQuality: 1, ActivitiesMatch: 0, SeasonMatch: false,
		UserBudget: domain.LevelMedium, TripCost: domain.LevelHigh,
	}
}

// offSeason puntúa 7 pero viaja fuera de temporada.
func offSeason() domain.Preferences {
	return domain.Preferences{
		TravelComfort: 4, AttractionsQuality: 4, ActivitiesMatch: 1, SeasonMatch: false,
		UserBudget: domain.LevelMedium, TripCost: domain.LevelMedium,
	}
}

func allPreferences() []domain.Preferences {
	return domain.AllPreferences()
}
