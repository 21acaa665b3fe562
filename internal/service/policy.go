package service

import (
	"context"
	"fmt"

	"travel-agent/internal/domain"
)

// Policy ajusta las preferencias antes de evaluar, a partir del historial.
// Siempre devuelve una copia; nunca modifica el registro recibido.
type Policy interface {
	Apply(ctx context.Context, prefs domain.Preferences, memory DecisionMemory) (domain.Preferences, error)
}

// NoopPolicy deja las preferencias como llegan.
type NoopPolicy struct{}

func (NoopPolicy) Apply(_ context.Context, prefs domain.Preferences, _ DecisionMemory) (domain.Preferences, error) {
	return prefs, nil
}

// BudgetPolicy sube un nivel el presupuesto cuando la razón dominante de rechazo
// en la memoria es el presupuesto.
type BudgetPolicy struct{}

func NewBudgetPolicy() BudgetPolicy {
	return BudgetPolicy{}
}

func (BudgetPolicy) Apply(ctx context.Context, prefs domain.Preferences, memory DecisionMemory) (domain.Preferences, error) {
	if memory == nil {
		return prefs, nil
	}
	history, err := memory.History(ctx)
	if err != nil {
		return prefs, fmt.Errorf("policy history: %w", err)
	}
	reason, _, ok := MostCommonRejectionReason(history)
	if !ok || reason != RecommendBudget {
		return prefs, nil
	}
	next := prefs.UserBudget.Next()
	if next == prefs.UserBudget {
		return prefs, nil
	}
	adjusted := prefs
	adjusted.UserBudget = next
	return adjusted, nil
}
