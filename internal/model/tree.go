package model

import (
	"errors"
	"fmt"
	"math"

	"travel-agent/internal/domain"
)

// DecisionTree implementa TreeModel a partir de un artefacto exportado
// (arrays del árbol + conteos de clase por nodo).
type DecisionTree struct {
	featureNames []string
	structure    Structure
	values       [][2]float64
}

// NewDecisionTree valida el artefacto y construye el modelo.
func NewDecisionTree(featureNames []string, structure Structure, values [][2]float64) (*DecisionTree, error) {
	if len(featureNames) == 0 {
		return nil, errors.New("decision tree: no feature names")
	}
	if err := structure.Validate(len(featureNames)); err != nil {
		return nil, err
	}
	if len(values) != structure.NodeCount() {
		return nil, domain.NewTreeStructureError(0, fmt.Sprintf("value array has %d nodes, expected %d", len(values), structure.NodeCount()))
	}
	for node := 0; node < structure.NodeCount(); node++ {
		if !structure.IsLeaf(node) {
			continue
		}
		v := values[node]
		if v[0] < 0 || v[1] < 0 || v[0]+v[1] <= 0 {
			return nil, domain.NewTreeStructureError(node, "leaf has no class weight")
		}
	}

	names := append([]string(nil), featureNames...)
	return &DecisionTree{featureNames: names, structure: structure, values: values}, nil
}

func (t *DecisionTree) FeatureNames() []string {
	return append([]string(nil), t.featureNames...)
}

func (t *DecisionTree) Structure() Structure {
	return t.structure
}

// Predict devuelve la clase mayoritaria de la hoja (empate -> clase 0).
func (t *DecisionTree) Predict(vector []float64) (int, error) {
	leaf, err := t.apply(vector)
	if err != nil {
		return 0, err
	}
	return t.LeafClass(leaf)
}

// PredictProba devuelve [p0, p1] normalizando los conteos de la hoja.
func (t *DecisionTree) PredictProba(vector []float64) ([2]float64, error) {
	leaf, err := t.apply(vector)
	if err != nil {
		return [2]float64{}, err
	}
	v := t.values[leaf]
	total := v[0] + v[1]
	return [2]float64{v[0] / total, v[1] / total}, nil
}

// LeafClass devuelve la clase asignada a una hoja.
func (t *DecisionTree) LeafClass(node int) (int, error) {
	if node < 0 || node >= t.structure.NodeCount() || !t.structure.IsLeaf(node) {
		return 0, domain.NewTreeStructureError(node, "not a leaf")
	}
	v := t.values[node]
	if v[1] > v[0] {
		return 1, nil
	}
	return 0, nil
}

func (t *DecisionTree) apply(vector []float64) (int, error) {
	if len(vector) != len(t.featureNames) {
		return 0, &domain.ModelInvocationError{Op: "predict", Expected: len(t.featureNames), Provided: len(vector)}
	}
	for i, x := range vector {
		if math.IsNaN(x) {
			return 0, &domain.ModelInvocationError{Op: "predict", Err: fmt.Errorf("feature %s is NaN", t.featureNames[i])}
		}
	}

	s := t.structure
	node := 0
	for !s.IsLeaf(node) {
		if vector[s.Feature[node]] <= s.Threshold[node] {
			node = s.LeftChild[node]
		} else {
			node = s.RightChild[node]
		}
	}
	return node, nil
}
