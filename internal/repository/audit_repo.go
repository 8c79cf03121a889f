package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AuditRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAuditRepository(db *pgxpool.Pool, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends one audit_logs row. System actions carry a NULL user_id.
func (r *AuditRepository) Insert(ctx context.Context, action, resource string, metadata any) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO audit_logs (user_id, action, resource, metadata)
        VALUES (NULL, $1, $2, $3)
    `
	_, err = r.db.Exec(ctx, query, action, resource, payload)
	return err
}
