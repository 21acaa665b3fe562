package service

import (
	"context"
	"sync"

	"travel-agent/internal/domain"
)

// DecisionMemory guarda el historial (preferencias, decisión) de la sesión.
// Remember es exclusivo; las lecturas nunca ven un registro a medio escribir.
type DecisionMemory interface {
	Remember(ctx context.Context, prefs domain.Preferences, decision domain.Decision) error
	History(ctx context.Context) ([]domain.MemoryEntry, error)
}

// MemoryInsights resume los rechazos del historial.
type MemoryInsights struct {
	Total                int            `json:"total"`
	Rejected             int            `json:"rejected"`
	MostCommonReason     string         `json:"most_common_reason,omitempty"`
	MostCommonReasonHits int            `json:"most_common_reason_hits,omitempty"`
	RejectedBudgetLevels []domain.Level `json:"rejected_budget_levels"`
}

// MemoryDecisionStore es la implementación en proceso de DecisionMemory.
type MemoryDecisionStore struct {
	mu         sync.RWMutex
	entries    []domain.MemoryEntry
	maxEntries int
}

// NewMemoryDecisionStore crea la memoria en proceso. maxEntries <= 0 significa sin límite;
// con límite se descartan primero las entradas más viejas.
func NewMemoryDecisionStore(maxEntries int) *MemoryDecisionStore {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &MemoryDecisionStore{maxEntries: maxEntries}
}

func (m *MemoryDecisionStore) Remember(_ context.Context, prefs domain.Preferences, decision domain.Decision) error {
	entry := domain.MemoryEntry{Preferences: prefs, Decision: cloneDecision(decision)}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	if m.maxEntries > 0 && len(m.entries) > m.maxEntries {
		drop := len(m.entries) - m.maxEntries
		m.entries = append([]domain.MemoryEntry(nil), m.entries[drop:]...)
	}
	return nil
}

func (m *MemoryDecisionStore) History(_ context.Context) ([]domain.MemoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.MemoryEntry, len(m.entries))
	for i, e := range m.entries {
		out[i] = domain.MemoryEntry{Preferences: e.Preferences, Decision: cloneDecision(e.Decision)}
	}
	return out, nil
}

func (m *MemoryDecisionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryDecisionStore) Rejections() []domain.Decision {
	entries, _ := m.History(context.Background())
	return Rejections(entries)
}

func (m *MemoryDecisionStore) RejectedBudgetLevels() []domain.Level {
	entries, _ := m.History(context.Background())
	return RejectedBudgetLevels(entries)
}

func (m *MemoryDecisionStore) HasRejectedBudget(level domain.Level) bool {
	for _, l := range m.RejectedBudgetLevels() {
		if l == level {
			return true
		}
	}
	return false
}

func (m *MemoryDecisionStore) MostCommonRejectionReason() (string, int, bool) {
	entries, _ := m.History(context.Background())
	return MostCommonRejectionReason(entries)
}

// Rejections filtra las decisiones rechazadas en orden.
func Rejections(entries []domain.MemoryEntry) []domain.Decision {
	var out []domain.Decision
	for _, e := range entries {
		if !e.Decision.Accepted {
			out = append(out, e.Decision)
		}
	}
	return out
}

// RejectedBudgetLevels lista el presupuesto de cada evaluación rechazada.
func RejectedBudgetLevels(entries []domain.MemoryEntry) []domain.Level {
	out := []domain.Level{}
	for _, e := range entries {
		if !e.Decision.Accepted {
			out = append(out, e.Preferences.UserBudget)
		}
	}
	return out
}

// MostCommonRejectionReason cuenta las sugerencias de los rechazos.
// En empate gana la que apareció primero.
func MostCommonRejectionReason(entries []domain.MemoryEntry) (string, int, bool) {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		if e.Decision.Accepted {
			continue
		}
		for _, reason := range e.Decision.RecommendedChanges {
			if _, ok := counts[reason]; !ok {
				order = append(order, reason)
			}
			counts[reason]++
		}
	}
	if len(order) == 0 {
		return "", 0, false
	}

	best := order[0]
	for _, reason := range order[1:] {
		if counts[reason] > counts[best] {
			best = reason
		}
	}
	return best, counts[best], true
}

// SummarizeMemory arma el resumen que consumen la política y la API.
func SummarizeMemory(entries []domain.MemoryEntry) MemoryInsights {
	insights := MemoryInsights{
		Total:                len(entries),
		RejectedBudgetLevels: RejectedBudgetLevels(entries),
	}
	insights.Rejected = len(insights.RejectedBudgetLevels)
	if reason, hits, ok := MostCommonRejectionReason(entries); ok {
		insights.MostCommonReason = reason
		insights.MostCommonReasonHits = hits
	}
	return insights
}

func cloneDecision(d domain.Decision) domain.Decision {
	if d.RecommendedChanges != nil {
		d.RecommendedChanges = append([]string{}, d.RecommendedChanges...)
	}
	if d.DecisionPath != nil {
		d.DecisionPath = append([]domain.PathStep{}, d.DecisionPath...)
	}
	return d
}
