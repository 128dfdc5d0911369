package coupon

import (
	"context"
	"errors"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE coupons CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	repo := NewPostgres(pool)
	if _, err := repo.Upsert(ctx, domain.Coupon{Code: "SPRING", Permyriad: 1500, Active: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, domain.Coupon{Code: "SPRING", Permyriad: 2000, Active: false}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	got, err := repo.GetByCode(ctx, "spring")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.Permyriad != 2000 || got.Active {
		t.Fatalf("unexpected coupon %+v", got)
	}

	if _, err := repo.GetByCode(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.Upsert(ctx, domain.Coupon{Code: "BAD", Permyriad: 20000}); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestPostgres_UpsertCaseConflict(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE coupons CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	repo := NewPostgres(pool)
	if _, err := repo.Upsert(ctx, domain.Coupon{Code: "SUMMER", Permyriad: 500, Active: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, domain.Coupon{Code: "summer", Permyriad: 500, Active: true}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}
