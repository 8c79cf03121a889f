package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ssonotify/internal/model"
)

type ProfileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProfileRepository(db *pgxpool.Pool, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// ListUnenrolledConsented returns members who consented to data
// processing but have no section enrollment on file.
func (r *ProfileRepository) ListUnenrolledConsented(ctx context.Context) ([]model.Profile, error) {
	query := `
        SELECT id, COALESCE(phone, '')
        FROM profiles
        WHERE role = 'member'
          AND section_type IS NULL
          AND pdpa_consent = TRUE
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.MemberID, &p.Phone); err != nil {
			r.logger.Warn("Skipping malformed profile row", zap.Error(err))
			continue
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// LineUserIDs resolves LINE handles for the given members in one batched
// lookup. Members without a mapping are simply absent from the result.
func (r *ProfileRepository) LineUserIDs(ctx context.Context, memberIDs []string) (map[string]string, error) {
	if len(memberIDs) == 0 {
		return map[string]string{}, nil
	}

	query := `
        SELECT user_id, line_user_id
        FROM line_user_mappings
        WHERE user_id = ANY($1)
    `
	rows, err := r.db.Query(ctx, query, memberIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	handles := make(map[string]string)
	for rows.Next() {
		var memberID, lineUserID string
		if err := rows.Scan(&memberID, &lineUserID); err != nil {
			r.logger.Warn("Skipping malformed line mapping row", zap.Error(err))
			continue
		}
		handles[memberID] = lineUserID
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return handles, nil
}
