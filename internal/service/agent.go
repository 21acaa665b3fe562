package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travel-agent/internal/domain"
	"travel-agent/internal/model"
)

const explanationAccepted = "offer meets model's decision criteria"

var ErrAgentNotConfigured = errors.New("agent not configured")

// DecisionRecorder persiste cada decisión para auditoría.
type DecisionRecorder interface {
	Create(ctx context.Context, record domain.DecisionRecord) error
}

// Agent orquesta política, vectorización, clasificación, recorrido y memoria.
// Cada llamada a Decide es independiente; lo único compartido es la memoria.
type Agent struct {
	logger      *zap.Logger
	tree        model.TreeModel
	vectorizer  *FeatureVectorizer
	classifier  *Classifier
	walker      TreeWalker
	recommender *Recommender
	memory      DecisionMemory
	policy      Policy
	recorder    DecisionRecorder
	now         func() time.Time
}

// NewAgent valida el artefacto al construir: una feature desconocida o una
// estructura rota fallan acá y no en la primera evaluación.
// memory nil usa la memoria en proceso; policy nil no ajusta nada; recorder es opcional.
func NewAgent(logger *zap.Logger, tree model.TreeModel, memory DecisionMemory, policy Policy, recorder DecisionRecorder) (*Agent, error) {
	if tree == nil {
		return nil, ErrAgentNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	vectorizer, err := NewFeatureVectorizer(tree.FeatureNames())
	if err != nil {
		return nil, fmt.Errorf("build vectorizer: %w", err)
	}
	if err := tree.Structure().Validate(len(tree.FeatureNames())); err != nil {
		return nil, fmt.Errorf("validate tree: %w", err)
	}
	if memory == nil {
		memory = NewMemoryDecisionStore(0)
	}
	if policy == nil {
		policy = NoopPolicy{}
	}

	return &Agent{
		logger:      logger,
		tree:        tree,
		vectorizer:  vectorizer,
		classifier:  NewClassifier(tree),
		recommender: NewRecommender(),
		memory:      memory,
		policy:      policy,
		recorder:    recorder,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (a *Agent) Memory() DecisionMemory {
	return a.memory
}

func (a *Agent) FeatureNames() []string {
	return a.vectorizer.FeatureNames()
}

// DecideRaw parsea la entrada laxa y evalúa.
func (a *Agent) DecideRaw(ctx context.Context, raw domain.RawPreferences) (domain.Decision, error) {
	prefs, err := domain.ParsePreferences(raw)
	if err != nil {
		return domain.Decision{}, err
	}
	return a.Decide(ctx, prefs)
}

// Decide evalúa una oferta. Si algún paso falla no se toca la memoria.
func (a *Agent) Decide(ctx context.Context, prefs domain.Preferences) (domain.Decision, error) {
	if a == nil || a.tree == nil {
		return domain.Decision{}, ErrAgentNotConfigured
	}

	adjusted, err := a.policy.Apply(ctx, prefs, a.memory)
	if err != nil {
		a.logger.Warn("policy skipped", zap.Error(err))
		adjusted = prefs
	}
	if adjusted != prefs {
		a.logger.Info("policy adjusted preferences",
			zap.String("user_budget_from", string(prefs.UserBudget)),
			zap.String("user_budget_to", string(adjusted.UserBudget)),
		)
	}

	vec, err := a.vectorizer.Vectorize(adjusted)
	if err != nil {
		return domain.Decision{}, err
	}

	class, proba, err := a.classifier.Classify(vec)
	if err != nil {
		return domain.Decision{}, err
	}

	path, leaf, err := a.walker.walk(vec, a.tree.Structure())
	if err != nil {
		return domain.Decision{}, err
	}
	if err := a.checkLeaf(leaf, class); err != nil {
		return domain.Decision{}, err
	}

	decision := domain.Decision{
		ID:             uuid.NewString(),
		Accepted:       class == 1,
		PredictedClass: class,
		Probability:    proba,
		Confidence:     math.Abs(proba-0.5) * 2,
		Score:          adjusted.Score(),
		DecisionPath:   path,
		CreatedAt:      a.now(),
	}
	if decision.Accepted {
		decision.Explanation = explanationAccepted
	} else {
		decision.Explanation = fmt.Sprintf("offer rejected by model (score %d/10)", decision.Score)
		decision.RecommendedChanges = a.recommender.Suggest(path)
	}

	if err := a.memory.Remember(ctx, adjusted, decision); err != nil {
		return domain.Decision{}, fmt.Errorf("remember decision: %w", err)
	}

	if a.recorder != nil {
		record := domain.DecisionRecord{
			Decision:     decision,
			Preferences:  adjusted,
			FeatureNames: vec.Names,
			Vector:       vec.Float32(),
		}
		if err := a.recorder.Create(ctx, record); err != nil {
			a.logger.Warn("decision audit failed", zap.String("decision_id", decision.ID), zap.Error(err))
		}
	}

	a.logger.Info("offer evaluated",
		zap.String("decision_id", decision.ID),
		zap.Bool("accepted", decision.Accepted),
		zap.Float64("probability", decision.Probability),
		zap.Int("score", decision.Score),
		zap.Int("path_len", len(path)),
	)
	return decision, nil
}

// checkLeaf compara la hoja recorrida con la predicción del artefacto cuando
// éste sabe etiquetar hojas.
func (a *Agent) checkLeaf(leaf, class int) error {
	labeler, ok := a.tree.(model.LeafLabeler)
	if !ok {
		return nil
	}
	leafClass, err := labeler.LeafClass(leaf)
	if err != nil {
		return &domain.ModelInvocationError{Op: "leaf_class", Err: err}
	}
	if leafClass != class {
		return &domain.ModelInvocationError{
			Op:  "predict",
			Err: fmt.Errorf("walked leaf %d has class %d but model predicted %d", leaf, leafClass, class),
		}
	}
	return nil
}

// Insights resume la memoria actual.
func (a *Agent) Insights(ctx context.Context) (MemoryInsights, error) {
	history, err := a.memory.History(ctx)
	if err != nil {
		return MemoryInsights{}, fmt.Errorf("load history: %w", err)
	}
	return SummarizeMemory(history), nil
}
