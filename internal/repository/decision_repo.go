package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"travel-agent/internal/domain"
)

var ErrDecisionNotFound = errors.New("decision not found")

// DecisionRepository persiste el registro de auditoría de cada evaluación.
type DecisionRepository interface {
	Create(ctx context.Context, record domain.DecisionRecord) error
	GetByID(ctx context.Context, id string) (domain.DecisionRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.DecisionRecord, error)
	Similar(ctx context.Context, vector []float32, k int, excludeID string) ([]SimilarDecision, error)
}

// SimilarDecision es un registro con su distancia coseno al vector consultado.
type SimilarDecision struct {
	Record   domain.DecisionRecord `json:"record"`
	Distance float64               `json:"distance"`
}

type PgDecisionRepository struct {
	pool *pgxpool.Pool
}

func NewPgDecisionRepository(pool *pgxpool.Pool) *PgDecisionRepository {
	return &PgDecisionRepository{pool: pool}
}

const decisionColumns = `id::text, accepted, predicted_class, probability, confidence, score, explanation,
	recommended_changes, decision_path, preferences, feature_names, feature_vector, created_at`

func (r *PgDecisionRepository) Create(ctx context.Context, record domain.DecisionRecord) error {
	d := record.Decision
	changes, err := json.Marshal(d.RecommendedChanges)
	if err != nil {
		return fmt.Errorf("marshal recommended changes: %w", err)
	}
	path, err := json.Marshal(d.DecisionPath)
	if err != nil {
		return fmt.Errorf("marshal decision path: %w", err)
	}
	prefs, err := json.Marshal(record.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	names, err := json.Marshal(nonNilStrings(record.FeatureNames))
	if err != nil {
		return fmt.Errorf("marshal feature names: %w", err)
	}

	const query = `
		INSERT INTO decisions (
			id, accepted, predicted_class, probability, confidence, score, explanation,
			recommended_changes, decision_path, preferences, feature_names, feature_vector, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.pool.Exec(ctx, query,
		d.ID,
		d.Accepted,
		d.PredictedClass,
		d.Probability,
		d.Confidence,
		d.Score,
		d.Explanation,
		changes,
		path,
		prefs,
		names,
		pgvector.NewVector(record.Vector),
		d.CreatedAt,
	)
	return err
}

func (r *PgDecisionRepository) GetByID(ctx context.Context, id string) (domain.DecisionRecord, error) {
	query := `SELECT ` + decisionColumns + ` FROM decisions WHERE id = $1`
	record, err := scanDecision(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DecisionRecord{}, ErrDecisionNotFound
	}
	return record, err
}

func (r *PgDecisionRepository) ListRecent(ctx context.Context, limit int) ([]domain.DecisionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + decisionColumns + ` FROM decisions ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDecisions(rows)
}

// Similar ordena por distancia coseno (<=>) sobre el vector de features.
func (r *PgDecisionRepository) Similar(ctx context.Context, vector []float32, k int, excludeID string) ([]SimilarDecision, error) {
	if k <= 0 {
		k = 5
	}
	query := `
		SELECT ` + decisionColumns + `, feature_vector <=> $1 AS distance
		FROM decisions
		WHERE id::text <> $2 AND vector_dims(feature_vector) = $3
		ORDER BY feature_vector <=> $1
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(vector), excludeID, len(vector), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SimilarDecision
	for rows.Next() {
		var distance float64
		record, err := scanDecision(rows, &distance)
		if err != nil {
			return nil, err
		}
		out = append(out, SimilarDecision{Record: record, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDecision(row rowScanner, extra ...interface{}) (domain.DecisionRecord, error) {
	var (
		rec                         domain.DecisionRecord
		changes, path, prefs, names []byte
		vector                      pgvector.Vector
	)
	d := &rec.Decision
	dest := []interface{}{
		&d.ID,
		&d.Accepted,
		&d.PredictedClass,
		&d.Probability,
		&d.Confidence,
		&d.Score,
		&d.Explanation,
		&changes,
		&path,
		&prefs,
		&names,
		&vector,
		&d.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.DecisionRecord{}, err
	}

	if err := unmarshalColumn(changes, &d.RecommendedChanges, "recommended_changes"); err != nil {
		return domain.DecisionRecord{}, err
	}
	if err := unmarshalColumn(path, &d.DecisionPath, "decision_path"); err != nil {
		return domain.DecisionRecord{}, err
	}
	if err := unmarshalColumn(prefs, &rec.Preferences, "preferences"); err != nil {
		return domain.DecisionRecord{}, err
	}
	if err := unmarshalColumn(names, &rec.FeatureNames, "feature_names"); err != nil {
		return domain.DecisionRecord{}, err
	}
	rec.Vector = vector.Slice()
	return rec, nil
}

func scanDecisions(rows pgxRows) ([]domain.DecisionRecord, error) {
	var out []domain.DecisionRecord
	for rows.Next() {
		rec, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func unmarshalColumn(raw []byte, dst interface{}, column string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
