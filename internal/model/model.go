package model

import (
	"fmt"

	"travel-agent/internal/domain"
)

// LeafSentinel marca "sin hijo" en LeftChild/RightChild.
const LeafSentinel = -1

// TreeModel define el contrato del artefacto entrenado: orden de features,
// arrays del árbol y las operaciones nativas de predicción.
type TreeModel interface {
	FeatureNames() []string
	Structure() Structure
	Predict(vector []float64) (int, error)
	PredictProba(vector []float64) ([2]float64, error)
}

// LeafLabeler es opcional: permite comparar la hoja recorrida con la clase predicha.
type LeafLabeler interface {
	LeafClass(node int) (int, error)
}

// Structure son los arrays paralelos indexados por id de nodo.
// Se tratan como sólo lectura una vez cargados.
type Structure struct {
	LeftChild  []int     `json:"children_left" yaml:"children_left"`
	RightChild []int     `json:"children_right" yaml:"children_right"`
	Feature    []int     `json:"feature" yaml:"feature"`
	Threshold  []float64 `json:"threshold" yaml:"threshold"`
}

// NodeCount devuelve la cantidad de nodos.
func (s Structure) NodeCount() int {
	return len(s.LeftChild)
}

// IsLeaf indica si el nodo es hoja.
func (s Structure) IsLeaf(node int) bool {
	return s.LeftChild[node] == LeafSentinel
}

// MaxDepth calcula la profundidad máxima (cantidad de nodos internos en el camino más largo).
func (s Structure) MaxDepth() int {
	if s.NodeCount() == 0 {
		return 0
	}
	var depth func(node, level int) int
	depth = func(node, level int) int {
		if level > s.NodeCount() || node < 0 || node >= s.NodeCount() || s.IsLeaf(node) {
			return 0
		}
		l := depth(s.LeftChild[node], level+1)
		r := depth(s.RightChild[node], level+1)
		if r > l {
			l = r
		}
		return l + 1
	}
	return depth(0, 0)
}

// Validate comprueba que los arrays sean coherentes para nFeatures columnas.
func (s Structure) Validate(nFeatures int) error {
	n := s.NodeCount()
	if n == 0 {
		return domain.NewTreeStructureError(0, "tree has no nodes")
	}
	if len(s.RightChild) != n || len(s.Feature) != n || len(s.Threshold) != n {
		return domain.NewTreeStructureError(0, fmt.Sprintf(
			"array lengths differ: left=%d right=%d feature=%d threshold=%d",
			n, len(s.RightChild), len(s.Feature), len(s.Threshold)))
	}
	for node := 0; node < n; node++ {
		if s.IsLeaf(node) {
			continue
		}
		if err := s.CheckInternal(node, nFeatures); err != nil {
			return err
		}
	}
	return nil
}

// CheckInternal valida punteros e índice de feature de un nodo interno.
func (s Structure) CheckInternal(node, nFeatures int) error {
	n := s.NodeCount()
	left, right := s.LeftChild[node], s.RightChild[node]
	if left <= node || left >= n {
		return domain.NewTreeStructureError(node, fmt.Sprintf("left child %d out of range", left))
	}
	if right == LeafSentinel {
		return domain.NewTreeStructureError(node, "non-leaf node has no right child")
	}
	if right <= node || right >= n {
		return domain.NewTreeStructureError(node, fmt.Sprintf("right child %d out of range", right))
	}
	if f := s.Feature[node]; f < 0 || f >= nFeatures {
		return domain.NewTreeStructureError(node, fmt.Sprintf("feature index %d out of range [0,%d)", f, nFeatures))
	}
	return nil
}
