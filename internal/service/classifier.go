package service

import (
	"errors"
	"fmt"
	"math"

	"travel-agent/internal/domain"
	"travel-agent/internal/model"
)

// Classifier delega en las operaciones nativas del artefacto.
// No reimplementa la estimación de probabilidad del árbol.
type Classifier struct {
	model model.TreeModel
}

func NewClassifier(m model.TreeModel) *Classifier {
	return &Classifier{model: m}
}

// Classify devuelve la clase predicha y la probabilidad de la clase positiva.
func (c *Classifier) Classify(vec domain.FeatureVector) (int, float64, error) {
	expected := len(c.model.FeatureNames())
	if vec.Len() != expected {
		return 0, 0, &domain.ModelInvocationError{Op: "predict", Expected: expected, Provided: vec.Len()}
	}

	class, err := c.model.Predict(vec.Values)
	if err != nil {
		return 0, 0, asInvocationError("predict", expected, vec.Len(), err)
	}
	if class != 0 && class != 1 {
		return 0, 0, &domain.ModelInvocationError{Op: "predict", Err: fmt.Errorf("class %d is not binary", class)}
	}

	proba, err := c.model.PredictProba(vec.Values)
	if err != nil {
		return 0, 0, asInvocationError("predict_proba", expected, vec.Len(), err)
	}
	p := proba[1]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, 0, &domain.ModelInvocationError{Op: "predict_proba", Err: fmt.Errorf("probability %v outside [0,1]", p)}
	}
	return class, p, nil
}

func asInvocationError(op string, expected, provided int, err error) error {
	var invocation *domain.ModelInvocationError
	if errors.As(err, &invocation) {
		return err
	}
	return &domain.ModelInvocationError{Op: op, Expected: expected, Provided: provided, Err: err}
}
