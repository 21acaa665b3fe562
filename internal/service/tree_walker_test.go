package service

import (
	"errors"
	"strings"
	"testing"

	"travel-agent/internal/domain"
	"travel-agent/internal/model"
)

func TestTreeWalkerTieGoesLeft(t *testing.T) {
	tree := model.Structure{
		LeftChild:  []int{1, -1, -1},
		RightChild: []int{2, -1, -1},
		Feature:    []int{0, -2, -2},
		Threshold:  []float64{3.0, -2, -2},
	}
	vec := domain.FeatureVector{Names: []string{"travel_comfort"}, Values: []float64{3.0}}

	path, err := TreeWalker{}.ExtractPath(vec, tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 1 {
		t.Fatalf("expected 1 step, got %d", len(path))
	}
	step := path[0]
	if step.Direction != domain.DirectionLeft || step.Passed {
		t.Fatalf("expected value equal to threshold to go left, got %+v", step)
	}
	if step.Feature != "travel_comfort" || step.Value != 3.0 || step.Threshold != 3.0 {
		t.Fatalf("unexpected step: %+v", step)
	}

	vec.Values[0] = 3.0000001
	leaf, err := TreeWalker{}.LeafOf(vec, tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leaf != 2 {
		t.Fatalf("expected right leaf 2, got %d", leaf)
	}
}

func TestTreeWalkerSingleLeaf(t *testing.T) {
	tree := model.Structure{LeftChild: []int{-1}, RightChild: []int{-1}, Feature: []int{-2}, Threshold: []float64{-2}}
	vec := domain.FeatureVector{Names: []string{"score"}, Values: []float64{5}}

	path, err := TreeWalker{}.ExtractPath(vec, tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 0 {
		t.Fatalf("expected empty path, got %d steps", len(path))
	}
	if got := FormatPath(path); len(got) != 1 || got[0] != "no decision path" {
		t.Fatalf("unexpected empty rendering: %v", got)
	}
}

func TestTreeWalkerOfferPath(t *testing.T) {
	tree := offerTree(t)
	vectorizer, err := NewFeatureVectorizer(tree.FeatureNames())
	if err != nil {
		t.Fatalf("vectorizer: %v", err)
	}
	vec, err := vectorizer.Vectorize(scenarioB())
	if err != nil {
		t.Fatalf("vectorize: %v", err)
	}

	path, err := TreeWalker{}.ExtractPath(vec, tree.Structure())
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(path) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(path))
	}
	if path[0].Feature != "score" || path[0].Direction != domain.DirectionLeft {
		t.Fatalf("unexpected first step: %+v", path[0])
	}
	if path[1].Feature != "user_budget_low" || path[1].Direction != domain.DirectionLeft {
		t.Fatalf("unexpected second step: %+v", path[1])
	}

	lines := FormatPath(path)
	if lines[0] != "score: 0.00 ≤ 6.50" {
		t.Fatalf("unexpected rendering: %q", lines[0])
	}
	status := FormatPathStatus(path)
	if !strings.HasPrefix(status, "[-] score: 0.00 <= 6.50\n") {
		t.Fatalf("unexpected status rendering: %q", status)
	}
}

func TestTreeWalkerStructureErrors(t *testing.T) {
	vec := domain.FeatureVector{Names: []string{"a", "b"}, Values: []float64{1, 2}}

	tests := []struct {
		name string
		tree model.Structure
	}{
		{name: "empty", tree: model.Structure{}},
		{name: "ragged arrays", tree: model.Structure{LeftChild: []int{1, -1, -1}, RightChild: []int{2, -1}, Feature: []int{0, -2, -2}, Threshold: []float64{1, -2, -2}}},
		{name: "feature out of range", tree: model.Structure{LeftChild: []int{1, -1, -1}, RightChild: []int{2, -1, -1}, Feature: []int{7, -2, -2}, Threshold: []float64{1, -2, -2}}},
		{name: "missing right child", tree: model.Structure{LeftChild: []int{1, -1}, RightChild: []int{-1, -1}, Feature: []int{0, -2}, Threshold: []float64{1, -2}}},
		{name: "cycle", tree: model.Structure{LeftChild: []int{0, -1}, RightChild: []int{1, -1}, Feature: []int{0, -2}, Threshold: []float64{5, -2}}},
		{name: "child out of bounds", tree: model.Structure{LeftChild: []int{9, -1}, RightChild: []int{1, -1}, Feature: []int{0, -2}, Threshold: []float64{5, -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TreeWalker{}.ExtractPath(vec, tt.tree)
			if !errors.Is(err, domain.ErrTreeStructure) {
				t.Fatalf("expected tree structure error, got %v", err)
			}
		})
	}
}

func TestTreeWalkerLeafMatchesPredict(t *testing.T) {
	tree := offerTree(t)
	vectorizer, err := NewFeatureVectorizer(tree.FeatureNames())
	if err != nil {
		t.Fatalf("vectorizer: %v", err)
	}

	for _, prefs := range allPreferences() {
		vec, err := vectorizer.Vectorize(prefs)
		if err != nil {
			t.Fatalf("vectorize %+v: %v", prefs, err)
		}
		leaf, err := TreeWalker{}.LeafOf(vec, tree.Structure())
		if err != nil {
			t.Fatalf("walk %+v: %v", prefs, err)
		}
		leafClass, err := tree.LeafClass(leaf)
		if err != nil {
			t.Fatalf("leaf class: %v", err)
		}
		class, err := tree.Predict(vec.Values)
		if err != nil {
			t.Fatalf("predict: %v", err)
		}
		if leafClass != class {
			t.Fatalf("leaf %d class %d disagrees with predict %d for %+v", leaf, leafClass, class, prefs)
		}
	}
}
