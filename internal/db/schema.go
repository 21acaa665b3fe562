package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements crea la tabla de auditoría. feature_vector no fija dimensión:
// artefactos distintos pueden declarar distinta cantidad de features.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS decisions (
		id UUID PRIMARY KEY,
		accepted BOOLEAN NOT NULL,
		predicted_class SMALLINT NOT NULL,
		probability DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		score SMALLINT NOT NULL,
		explanation TEXT NOT NULL,
		recommended_changes JSONB NOT NULL DEFAULT '[]',
		decision_path JSONB NOT NULL DEFAULT '[]',
		preferences JSONB NOT NULL,
		feature_names JSONB NOT NULL DEFAULT '[]',
		feature_vector VECTOR NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS decisions_created_at_idx ON decisions (created_at DESC)`,
}

// EnsureSchema aplica el esquema de forma idempotente.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
