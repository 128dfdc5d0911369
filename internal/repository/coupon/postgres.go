package coupon

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	const q = `
SELECT code, permyriad, active, created_at
FROM coupons
WHERE lower(code) = lower($1)
`
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, q, code).Scan(&c.Code, &c.Permyriad, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, coupon domain.Coupon) (*domain.Coupon, error) {
	if coupon.Permyriad < 0 || coupon.Permyriad > 10000 {
		return nil, fmt.Errorf("coupon repo: permyriad out of range for code=%s: %d", coupon.Code, coupon.Permyriad)
	}
	const q = `
INSERT INTO coupons (code, permyriad, active)
VALUES ($1, $2, $3)
ON CONFLICT (code) DO UPDATE SET
    permyriad = EXCLUDED.permyriad,
    active = EXCLUDED.active
RETURNING created_at
`
	out := coupon
	if err := r.pool.QueryRow(ctx, q, coupon.Code, coupon.Permyriad, coupon.Active).Scan(&out.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("coupon repo: %w: code=%s differs only in case", domain.ErrAlreadyExists, coupon.Code)
		}
		return nil, err
	}
	return &out, nil
}
