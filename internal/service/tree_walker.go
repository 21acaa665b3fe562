package service

import (
	"fmt"
	"strings"

	"travel-agent/internal/domain"
	"travel-agent/internal/model"
)

// TreeWalker recorre el árbol nodo por nodo y registra cada rama tomada.
// No guarda estado: es seguro usarlo en paralelo sobre el mismo árbol.
type TreeWalker struct{}

// ExtractPath recorre desde la raíz hasta la primera hoja. Un valor igual al
// umbral va a la izquierda; no hay tolerancia epsilon.
func (w TreeWalker) ExtractPath(vec domain.FeatureVector, tree model.Structure) ([]domain.PathStep, error) {
	path, _, err := w.walk(vec, tree)
	return path, err
}

// LeafOf devuelve el id de la hoja alcanzada por el vector.
func (w TreeWalker) LeafOf(vec domain.FeatureVector, tree model.Structure) (int, error) {
	_, leaf, err := w.walk(vec, tree)
	return leaf, err
}

func (TreeWalker) walk(vec domain.FeatureVector, tree model.Structure) ([]domain.PathStep, int, error) {
	n := tree.NodeCount()
	if n == 0 {
		return nil, 0, domain.NewTreeStructureError(0, "tree has no nodes")
	}
	if len(tree.RightChild) != n || len(tree.Feature) != n || len(tree.Threshold) != n {
		return nil, 0, domain.NewTreeStructureError(0, "node arrays have different lengths")
	}

	path := make([]domain.PathStep, 0, 8)
	node := 0
	for !tree.IsLeaf(node) {
		// Un árbol bien formado nunca visita más nodos internos que los que tiene.
		if len(path) >= n {
			return nil, 0, domain.NewTreeStructureError(node, "traversal exceeds node count")
		}
		if err := tree.CheckInternal(node, vec.Len()); err != nil {
			return nil, 0, err
		}

		idx := tree.Feature[node]
		value := vec.Values[idx]
		threshold := tree.Threshold[node]
		name := fmt.Sprintf("feature_%d", idx)
		if idx < len(vec.Names) {
			name = vec.Names[idx]
		}

		step := domain.PathStep{Feature: name, Value: value, Threshold: threshold}
		if value <= threshold {
			step.Direction = domain.DirectionLeft
			node = tree.LeftChild[node]
		} else {
			step.Direction = domain.DirectionRight
			step.Passed = true
			node = tree.RightChild[node]
		}
		path = append(path, step)
	}
	return path, node, nil
}

// FormatPath convierte el camino en líneas legibles "feature: valor ≤|> umbral".
func FormatPath(path []domain.PathStep) []string {
	if len(path) == 0 {
		return []string{"no decision path"}
	}
	lines := make([]string, 0, len(path))
	for _, step := range path {
		symbol := ">"
		if step.Direction == domain.DirectionLeft {
			symbol = "≤"
		}
		lines = append(lines, fmt.Sprintf("%s: %.2f %s %.2f", step.Feature, step.Value, symbol, step.Threshold))
	}
	return lines
}

// FormatPathStatus agrega el marcador [+]/[-] por paso, como en la vista de detalle.
func FormatPathStatus(path []domain.PathStep) string {
	var b strings.Builder
	for _, step := range path {
		status, op := "[-]", "<="
		if step.Passed {
			status, op = "[+]", ">"
		}
		fmt.Fprintf(&b, "%s %s: %.2f %s %.2f\n", status, step.Feature, step.Value, op, step.Threshold)
	}
	return b.String()
}
