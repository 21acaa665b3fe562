package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-agent/internal/domain"
	"travel-agent/internal/model"
	"travel-agent/internal/repository"
	"travel-agent/internal/service"
)

// DecisionHandler expone la evaluación de ofertas, la memoria y la auditoría.
type DecisionHandler struct {
	logger       *zap.Logger
	agent        *service.Agent
	tree         model.TreeModel
	alternatives *service.AlternativesService
	decisions    repository.DecisionRepository
}

// NewDecisionHandler crea el handler. alternatives y decisions pueden ser nil;
// sus endpoints responden 503 en ese caso.
func NewDecisionHandler(
	logger *zap.Logger,
	agent *service.Agent,
	tree model.TreeModel,
	alternatives *service.AlternativesService,
	decisions repository.DecisionRepository,
) *DecisionHandler {
	return &DecisionHandler{
		logger:       logger,
		agent:        agent,
		tree:         tree,
		alternatives: alternatives,
		decisions:    decisions,
	}
}

// Decide maneja POST /decisions.
func (h *DecisionHandler) Decide(c *gin.Context) {
	var raw domain.RawPreferences
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.logger.Warn("invalid decision request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	decision, err := h.agent.DecideRaw(c.Request.Context(), raw)
	if err != nil {
		h.writeDecisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"decision":  decision,
		"path_text": service.FormatPath(decision.DecisionPath),
	})
}

// History maneja GET /decisions/history.
func (h *DecisionHandler) History(c *gin.Context) {
	entries, err := h.agent.Memory().History(c.Request.Context())
	if err != nil {
		h.logger.Error("load history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	if entries == nil {
		entries = []domain.MemoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Insights maneja GET /decisions/insights.
func (h *DecisionHandler) Insights(c *gin.Context) {
	insights, err := h.agent.Insights(c.Request.Context())
	if err != nil {
		h.logger.Error("load insights failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load insights"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// ListRecent maneja GET /decisions?limit=N.
func (h *DecisionHandler) ListRecent(c *gin.Context) {
	if !h.requireAudit(c) {
		return
	}
	limit := queryInt(c, "limit", 20)
	records, err := h.decisions.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list decisions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list decisions"})
		return
	}
	if records == nil {
		records = []domain.DecisionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"decisions": records})
}

// Get maneja GET /decisions/:id.
func (h *DecisionHandler) Get(c *gin.Context) {
	if !h.requireAudit(c) {
		return
	}
	record, ok := h.loadRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"decision": record})
}

// Similar maneja GET /decisions/:id/similar?k=5.
func (h *DecisionHandler) Similar(c *gin.Context) {
	if !h.requireAudit(c) {
		return
	}
	record, ok := h.loadRecord(c)
	if !ok {
		return
	}
	k := queryInt(c, "k", 5)
	similar, err := h.decisions.Similar(c.Request.Context(), record.Vector, k, record.Decision.ID)
	if err != nil {
		h.logger.Error("similar decisions failed", zap.String("decision_id", record.Decision.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search decisions"})
		return
	}
	if similar == nil {
		similar = []repository.SimilarDecision{}
	}
	c.JSON(http.StatusOK, gin.H{"similar": similar})
}

// Alternatives maneja POST /alternatives.
func (h *DecisionHandler) Alternatives(c *gin.Context) {
	if h.alternatives == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "destination lookup not configured"})
		return
	}
	var req struct {
		Preferences domain.RawPreferences `json:"preferences" binding:"required"`
		Cities      []string              `json:"cities"`
		Limit       int                   `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid alternatives request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	prefs, err := domain.ParsePreferences(req.Preferences)
	if err != nil {
		h.writeDecisionError(c, err)
		return
	}
	current := prefs.Score()
	ranked, err := h.alternatives.Rank(c.Request.Context(), prefs, current, req.Cities, req.Limit)
	if err != nil {
		h.logger.Error("rank alternatives failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not rank alternatives"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_score": current, "alternatives": ranked})
}

// Model maneja GET /model.
func (h *DecisionHandler) Model(c *gin.Context) {
	structure := h.tree.Structure()
	c.JSON(http.StatusOK, gin.H{
		"feature_names": h.tree.FeatureNames(),
		"node_count":    structure.NodeCount(),
		"max_depth":     structure.MaxDepth(),
	})
}

func (h *DecisionHandler) writeDecisionError(c *gin.Context, err error) {
	kind := domain.ErrorKind(err)
	switch kind {
	case "schema_mismatch":
		body := gin.H{"error": err.Error(), "kind": kind}
		var mismatch *domain.SchemaMismatchError
		if errors.As(err, &mismatch) {
			body["field"] = mismatch.Field
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case "model_invocation", "tree_structure":
		h.logger.Error("decision failed", zap.String("kind", kind), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "model evaluation failed", "kind": kind})
	default:
		h.logger.Error("decision failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not evaluate offer", "kind": kind})
	}
}

func (h *DecisionHandler) requireAudit(c *gin.Context) bool {
	if h.decisions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "decision audit not configured"})
		return false
	}
	return true
}

func (h *DecisionHandler) loadRecord(c *gin.Context) (domain.DecisionRecord, bool) {
	id := c.Param("id")
	record, err := h.decisions.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrDecisionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "decision not found"})
		return domain.DecisionRecord{}, false
	}
	if err != nil {
		h.logger.Error("get decision failed", zap.String("decision_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load decision"})
		return domain.DecisionRecord{}, false
	}
	return record, true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > 100 {
		return 100
	}
	return n
}
