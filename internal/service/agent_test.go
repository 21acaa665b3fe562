package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"travel-agent/internal/domain"
	"travel-agent/internal/model"
)

type fakeRecorder struct {
	records []domain.DecisionRecord
	err     error
}

func (f *fakeRecorder) Create(_ context.Context, record domain.DecisionRecord) error {
	f.records = append(f.records, record)
	return f.err
}

func newTestAgent(t *testing.T, tree model.TreeModel, memory DecisionMemory, policy Policy, recorder DecisionRecorder) *Agent {
	t.Helper()
	agent, err := NewAgent(zap.NewNop(), tree, memory, policy, recorder)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return agent
}

func TestAgentAcceptsScenarioA(t *testing.T) {
	mem := NewMemoryDecisionStore(0)
	rec := &fakeRecorder{}
	agent := newTestAgent(t, offerTree(t), mem, nil, rec)

	d, err := agent.Decide(context.Background(), scenarioA())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Accepted || d.PredictedClass != 1 {
		t.Fatalf("expected accepted decision, got %+v", d)
	}
	if d.Explanation != "offer meets model's decision criteria" {
		t.Fatalf("unexpected explanation %q", d.Explanation)
	}
	if len(d.RecommendedChanges) != 0 {
		t.Fatalf("expected no recommendations on accept, got %v", d.RecommendedChanges)
	}
	if d.Score != 9 {
		t.Fatalf("expected score 9, got %d", d.Score)
	}
	wantConfidence := math.Abs(20.0/21.0-0.5) * 2
	if math.Abs(d.Confidence-wantConfidence) > 1e-9 {
		t.Fatalf("expected confidence %v, got %v", wantConfidence, d.Confidence)
	}
	if d.ID == "" || d.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", d)
	}
	if len(d.DecisionPath) != 2 || d.DecisionPath[1].Feature != "season_match" {
		t.Fatalf("unexpected path %+v", d.DecisionPath)
	}

	if mem.Len() != 1 {
		t.Fatalf("expected 1 memory entry, got %d", mem.Len())
	}
	if len(rec.records) != 1 || len(rec.records[0].Vector) != len(offerFeatureNames) {
		t.Fatalf("expected audit record with full vector, got %+v", rec.records)
	}
	if rec.records[0].Decision.ID != d.ID {
		t.Fatalf("audit record id mismatch")
	}
}

func TestAgentRejectsWithRecommendations(t *testing.T) {
	agent := newTestAgent(t, offerTree(t), nil, nil, nil)

	d, err := agent.Decide(context.Background(), scenarioB())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Accepted {
		t.Fatalf("expected rejection")
	}
	if d.Explanation != "offer rejected by model (score 0/10)" {
		t.Fatalf("unexpected explanation %q", d.Explanation)
	}
	if len(d.RecommendedChanges) != 1 || d.RecommendedChanges[0] != RecommendBudget {
		t.Fatalf("expected budget recommendation, got %v", d.RecommendedChanges)
	}

	d, err = agent.Decide(context.Background(), offSeason())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Accepted || d.Score != 7 {
		t.Fatalf("expected rejected score 7, got %+v", d)
	}
	if len(d.RecommendedChanges) != 1 || d.RecommendedChanges[0] != "consider a different travel date" {
		t.Fatalf("expected season recommendation, got %v", d.RecommendedChanges)
	}
}

func TestAgentExhaustiveAcceptHasNoRecommendations(t *testing.T) {
	agent := newTestAgent(t, offerTree(t), NewMemoryDecisionStore(1), nil, nil)
	for _, prefs := range allPreferences() {
		d, err := agent.Decide(context.Background(), prefs)
		if err != nil {
			t.Fatalf("decide %+v: %v", prefs, err)
		}
		if d.Accepted && len(d.RecommendedChanges) != 0 {
			t.Fatalf("accepted decision carries recommendations: %+v", d)
		}
		if d.Confidence < 0 || d.Confidence > 1 {
			t.Fatalf("confidence out of range: %v", d.Confidence)
		}
	}
}

func TestAgentFailuresLeaveMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	validTree := offerTree(t).Structure()

	t.Run("schema mismatch", func(t *testing.T) {
		mem := NewMemoryDecisionStore(0)
		agent := newTestAgent(t, offerTree(t), mem, nil, nil)
		_, err := agent.DecideRaw(ctx, domain.RawPreferences{"travel_comfort": 3})
		if !errors.Is(err, domain.ErrSchemaMismatch) {
			t.Fatalf("expected schema mismatch, got %v", err)
		}
		if mem.Len() != 0 {
			t.Fatalf("memory changed on failure")
		}
	})

	t.Run("model invocation", func(t *testing.T) {
		mem := NewMemoryDecisionStore(0)
		stub := &model.Stub{Names: offerFeatureNames, Tree: validTree, PredictErr: errors.New("artifact crashed")}
		agent := newTestAgent(t, stub, mem, nil, nil)
		_, err := agent.Decide(ctx, scenarioA())
		if !errors.Is(err, domain.ErrModelInvocation) {
			t.Fatalf("expected model invocation error, got %v", err)
		}
		if mem.Len() != 0 {
			t.Fatalf("memory changed on failure")
		}
	})

	t.Run("leaf disagrees with predict", func(t *testing.T) {
		mem := NewMemoryDecisionStore(0)
		stub := &model.Stub{
			Names:  offerFeatureNames,
			Tree:   validTree,
			Class:  1,
			Proba:  [2]float64{0.1, 0.9},
			Leaves: map[int]int{6: 0},
		}
		agent := newTestAgent(t, stub, mem, nil, nil)
		_, err := agent.Decide(ctx, scenarioA())
		if !errors.Is(err, domain.ErrModelInvocation) {
			t.Fatalf("expected model invocation error, got %v", err)
		}
		if mem.Len() != 0 {
			t.Fatalf("memory changed on failure")
		}
	})

	t.Run("tree structure", func(t *testing.T) {
		mem := NewMemoryDecisionStore(0)
		stub := &model.Stub{Names: offerFeatureNames, Tree: validTree, Class: 1, Proba: [2]float64{0.1, 0.9}}
		agent := newTestAgent(t, stub, mem, nil, nil)
		stub.Tree = model.Structure{
			LeftChild:  []int{1, -1, -1},
			RightChild: []int{2, -1, -1},
			Feature:    []int{42, -2, -2},
			Threshold:  []float64{1, -2, -2},
		}
		_, err := agent.Decide(ctx, scenarioA())
		if !errors.Is(err, domain.ErrTreeStructure) {
			t.Fatalf("expected tree structure error, got %v", err)
		}
		if mem.Len() != 0 {
			t.Fatalf("memory changed on failure")
		}
	})
}

func TestNewAgentValidatesArtifact(t *testing.T) {
	if _, err := NewAgent(zap.NewNop(), nil, nil, nil, nil); !errors.Is(err, ErrAgentNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}

	stub := &model.Stub{Names: []string{"score", "hotel_stars"}, Tree: model.Structure{LeftChild: []int{-1}, RightChild: []int{-1}, Feature: []int{-2}, Threshold: []float64{-2}}}
	if _, err := NewAgent(zap.NewNop(), stub, nil, nil, nil); !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}

	broken := &model.Stub{Names: []string{"score"}, Tree: model.Structure{LeftChild: []int{0}, RightChild: []int{0}, Feature: []int{0}, Threshold: []float64{1}}}
	if _, err := NewAgent(zap.NewNop(), broken, nil, nil, nil); !errors.Is(err, domain.ErrTreeStructure) {
		t.Fatalf("expected tree structure error, got %v", err)
	}
}

func TestAgentRecorderFailureIsNotFatal(t *testing.T) {
	mem := NewMemoryDecisionStore(0)
	agent := newTestAgent(t, offerTree(t), mem, nil, &fakeRecorder{err: errors.New("db down")})
	if _, err := agent.Decide(context.Background(), scenarioA()); err != nil {
		t.Fatalf("expected recorder failure to be ignored, got %v", err)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected decision remembered")
	}
}

func TestAgentMemoryFailure(t *testing.T) {
	agent := newTestAgent(t, offerTree(t), failingMemory{}, nil, nil)
	if _, err := agent.Decide(context.Background(), scenarioA()); err == nil {
		t.Fatalf("expected memory error")
	}
}

func TestAgentAppliesBudgetPolicy(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryDecisionStore(0)
	agent := newTestAgent(t, offerTree(t), mem, NewBudgetPolicy(), nil)

	// Primera evaluación: memoria vacía, sin ajuste.
	if _, err := agent.Decide(ctx, scenarioB()); err != nil {
		t.Fatalf("decide: %v", err)
	}
	history, _ := mem.History(ctx)
	if history[0].Preferences.UserBudget != domain.LevelMedium {
		t.Fatalf("expected unadjusted budget, got %s", history[0].Preferences.UserBudget)
	}

	// Segunda: el rechazo dominante es el presupuesto, sube a high.
	d, err := agent.Decide(ctx, scenarioB())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	history, _ = mem.History(ctx)
	if history[1].Preferences.UserBudget != domain.LevelHigh {
		t.Fatalf("expected budget raised to high, got %s", history[1].Preferences.UserBudget)
	}
	if d.Score != 2 {
		t.Fatalf("expected score recomputed on adjusted record, got %d", d.Score)
	}

	insights, err := agent.Insights(ctx)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if insights.Rejected != 2 || insights.MostCommonReason != RecommendBudget {
		t.Fatalf("unexpected insights %+v", insights)
	}
}
