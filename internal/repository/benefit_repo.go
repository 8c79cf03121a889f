package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ssonotify/internal/model"
)

type BenefitRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBenefitRepository(db *pgxpool.Pool, logger *zap.Logger) *BenefitRepository {
	return &BenefitRepository{
		db:     db,
		logger: logger,
	}
}

// ListExpiring returns active benefits whose expiry date falls within the
// next `days` days, not already passed. Phone is joined from the profile.
func (r *BenefitRepository) ListExpiring(ctx context.Context, days int) ([]model.Benefit, error) {
	query := `
        SELECT b.member_id, b.benefit_type, b.expiry_date, COALESCE(p.phone, '')
        FROM benefits b
        JOIN profiles p ON p.id = b.member_id
        WHERE b.status = 'active'
          AND b.expiry_date IS NOT NULL
          AND b.expiry_date >= CURRENT_DATE
          AND b.expiry_date <= CURRENT_DATE + $1::int
    `
	rows, err := r.db.Query(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBenefits(rows, func(row pgx.Rows, b *model.Benefit) error {
		return row.Scan(&b.MemberID, &b.BenefitType, &b.ExpiryDate, &b.Phone)
	})
}

// ListUnused returns active benefits never claimed and eligible for at
// least `days` days.
func (r *BenefitRepository) ListUnused(ctx context.Context, days int) ([]model.Benefit, error) {
	query := `
        SELECT b.member_id, b.benefit_type, COALESCE(p.phone, '')
        FROM benefits b
        JOIN profiles p ON p.id = b.member_id
        WHERE b.status = 'active'
          AND b.claimed_at IS NULL
          AND b.eligible_date <= CURRENT_DATE - $1::int
    `
	rows, err := r.db.Query(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBenefits(rows, func(row pgx.Rows, b *model.Benefit) error {
		return row.Scan(&b.MemberID, &b.BenefitType, &b.Phone)
	})
}

// ListRecentlyDecided returns benefits whose status moved to active or
// expired since the given time and which carry a monetary amount.
func (r *BenefitRepository) ListRecentlyDecided(ctx context.Context, since time.Time) ([]model.Benefit, error) {
	query := `
        SELECT b.member_id, b.benefit_type, b.status, b.amount, COALESCE(p.phone, '')
        FROM benefits b
        JOIN profiles p ON p.id = b.member_id
        WHERE b.status IN ('active', 'expired')
          AND b.updated_at >= $1
          AND b.amount IS NOT NULL
    `
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBenefits(rows, func(row pgx.Rows, b *model.Benefit) error {
		return row.Scan(&b.MemberID, &b.BenefitType, &b.Status, &b.Amount, &b.Phone)
	})
}

// scanBenefits collects rows, logging and skipping any row that fails to
// scan rather than aborting the whole list.
func (r *BenefitRepository) scanBenefits(rows pgx.Rows, scan func(pgx.Rows, *model.Benefit) error) ([]model.Benefit, error) {
	var benefits []model.Benefit
	for rows.Next() {
		var b model.Benefit
		if err := scan(rows, &b); err != nil {
			r.logger.Warn("Skipping malformed benefit row", zap.Error(err))
			continue
		}
		benefits = append(benefits, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return benefits, nil
}
