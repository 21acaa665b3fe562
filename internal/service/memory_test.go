package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"travel-agent/internal/domain"
)

func sampleProfile(budget domain.Level) domain.Preferences {
	return domain.Preferences{
		TravelComfort:      4,
		AttractionsQuality: 4,
		ActivitiesMatch:    1,
		SeasonMatch:        true,
		UserBudget:         budget,
		TripCost:           domain.LevelMedium,
	}
}

func rejected(reasons ...string) domain.Decision {
	return domain.Decision{Accepted: false, RecommendedChanges: reasons}
}

func TestMemoryDecisionStoreQueries(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryDecisionStore(0)

	_ = mem.Remember(ctx, sampleProfile(domain.LevelLow), rejected(RecommendBudget, "consider a different travel date"))
	_ = mem.Remember(ctx, sampleProfile(domain.LevelHigh), domain.Decision{Accepted: true})
	_ = mem.Remember(ctx, sampleProfile(domain.LevelMedium), rejected(RecommendBudget))

	if mem.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", mem.Len())
	}
	if got := len(mem.Rejections()); got != 2 {
		t.Fatalf("expected 2 rejections, got %d", got)
	}
	levels := mem.RejectedBudgetLevels()
	if len(levels) != 2 || levels[0] != domain.LevelLow || levels[1] != domain.LevelMedium {
		t.Fatalf("unexpected rejected budgets: %v", levels)
	}
	if !mem.HasRejectedBudget(domain.LevelLow) {
		t.Fatalf("expected low budget to be rejected")
	}
	if mem.HasRejectedBudget(domain.LevelHigh) {
		t.Fatalf("high budget was accepted, not rejected")
	}
	reason, hits, ok := mem.MostCommonRejectionReason()
	if !ok || reason != RecommendBudget || hits != 2 {
		t.Fatalf("expected budget reason x2, got %q x%d ok=%v", reason, hits, ok)
	}
}

func TestMostCommonRejectionReasonTieKeepsFirst(t *testing.T) {
	entries := []domain.MemoryEntry{
		{Decision: rejected("b", "a")},
		{Decision: rejected("a", "b")},
		{Decision: domain.Decision{Accepted: true, RecommendedChanges: []string{"a"}}},
	}
	reason, hits, ok := MostCommonRejectionReason(entries)
	if !ok || reason != "b" || hits != 2 {
		t.Fatalf("expected first seen reason b x2, got %q x%d", reason, hits)
	}

	if _, _, ok := MostCommonRejectionReason(nil); ok {
		t.Fatalf("expected no reason for empty history")
	}
}

func TestMemoryDecisionStoreBound(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryDecisionStore(2)
	for i := 0; i < 5; i++ {
		_ = mem.Remember(ctx, sampleProfile(domain.LevelLow), domain.Decision{ID: fmt.Sprint(i)})
	}
	history, _ := mem.History(ctx)
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Decision.ID != "3" || history[1].Decision.ID != "4" {
		t.Fatalf("expected newest entries kept, got %s,%s", history[0].Decision.ID, history[1].Decision.ID)
	}
}

func TestMemoryDecisionStoreHistoryIsCopy(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryDecisionStore(0)
	d := rejected(RecommendBudget)
	_ = mem.Remember(ctx, sampleProfile(domain.LevelLow), d)
	d.RecommendedChanges[0] = "mutated"

	history, _ := mem.History(ctx)
	history[0].Decision.Accepted = true
	if history[0].Decision.RecommendedChanges[0] != RecommendBudget {
		t.Fatalf("stored decision shares caller slice")
	}
	again, _ := mem.History(ctx)
	if again[0].Decision.Accepted {
		t.Fatalf("history mutation leaked into store")
	}
}

func TestMemoryDecisionStoreHistoryDeepCopiesSlices(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryDecisionStore(0)
	d := rejected(RecommendBudget)
	d.DecisionPath = []domain.PathStep{{Feature: "user_budget_low", Value: 0, Threshold: 0.5, Direction: domain.DirectionLeft}}
	if err := mem.Remember(ctx, sampleProfile(domain.LevelLow), d); err != nil {
		t.Fatalf("remember: %v", err)
	}

	history, _ := mem.History(ctx)
	history[0].Decision.RecommendedChanges[0] = "mutated"
	history[0].Decision.DecisionPath[0].Feature = "mutated"

	again, _ := mem.History(ctx)
	if again[0].Decision.RecommendedChanges[0] != RecommendBudget {
		t.Fatalf("history shares recommendations with store, got %v", again[0].Decision.RecommendedChanges)
	}
	if again[0].Decision.DecisionPath[0].Feature != "user_budget_low" {
		t.Fatalf("history shares decision path with store, got %+v", again[0].Decision.DecisionPath)
	}
}

func TestMemoryDecisionStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryDecisionStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = mem.Remember(ctx, sampleProfile(domain.LevelLow), rejected(RecommendBudget))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				for _, e := range mem.Rejections() {
					if len(e.RecommendedChanges) != 1 {
						t.Errorf("observed partial entry")
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	if mem.Len() != 400 {
		t.Fatalf("expected 400 entries, got %d", mem.Len())
	}
}

func TestSummarizeMemory(t *testing.T) {
	entries := []domain.MemoryEntry{
		{Preferences: sampleProfile(domain.LevelLow), Decision: rejected(RecommendBudget)},
		{Preferences: sampleProfile(domain.LevelHigh), Decision: domain.Decision{Accepted: true}},
	}
	got := SummarizeMemory(entries)
	if got.Total != 2 || got.Rejected != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.MostCommonReason != RecommendBudget || got.MostCommonReasonHits != 1 {
		t.Fatalf("unexpected reason: %+v", got)
	}

	empty := SummarizeMemory(nil)
	if empty.RejectedBudgetLevels == nil {
		t.Fatalf("expected non-nil budget levels for JSON")
	}
}
