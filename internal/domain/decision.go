package domain

import "time"

// Direction es la rama tomada en un nodo interno.
type Direction string

const (
	DirectionLeft  Direction = "left"  // value <= threshold
	DirectionRight Direction = "right" // value > threshold
)

// PathStep registra la decisión tomada en un nodo interno del árbol.
type PathStep struct {
	Feature   string    `json:"feature"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Direction Direction `json:"direction"`
	Passed    bool      `json:"passed"`
}

// Decision es el resultado de evaluar una oferta. No se muta después de creada.
// RecommendedChanges serializa null si no se calculó (aceptación) y [] si un
// rechazo no disparó ninguna regla.
type Decision struct {
	ID                 string     `json:"id"`
	Accepted           bool       `json:"accepted"`
	PredictedClass     int        `json:"predicted_class"`
	Probability        float64    `json:"probability"`
	Confidence         float64    `json:"confidence"`
	Score              int        `json:"score"`
	Explanation        string     `json:"explanation"`
	RecommendedChanges []string   `json:"recommended_changes"`
	DecisionPath       []PathStep `json:"decision_path"`
	CreatedAt          time.Time  `json:"created_at"`
}

// LeftSteps devuelve los pasos bloqueantes (rama izquierda) en orden.
func LeftSteps(path []PathStep) []PathStep {
	blocked := make([]PathStep, 0, len(path))
	for _, step := range path {
		if step.Direction == DirectionLeft {
			blocked = append(blocked, step)
		}
	}
	return blocked
}

// MemoryEntry es un par (preferencias, decisión) del historial de la sesión.
type MemoryEntry struct {
	Preferences Preferences `json:"preferences"`
	Decision    Decision    `json:"decision"`
}

// DecisionRecord es la fila de auditoría persistida por el repositorio.
type DecisionRecord struct {
	Decision     Decision    `json:"decision"`
	Preferences  Preferences `json:"preferences"`
	FeatureNames []string    `json:"feature_names"`
	Vector       []float32   `json:"feature_vector"`
}
