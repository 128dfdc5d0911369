package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/sdk"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink stores published envelopes in analytics_events.
type Sink struct {
	pool *pgxpool.Pool
}

func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

func (s *Sink) Write(ctx context.Context, env sdk.Envelope) error {
	contextJSON, err := json.Marshal(env.Context)
	if err != nil {
		return fmt.Errorf("analytics: encode context: %w", err)
	}
	var customJSON []byte
	if env.Custom != nil {
		if customJSON, err = json.Marshal(env.Custom); err != nil {
			return fmt.Errorf("analytics: encode custom: %w", err)
		}
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO analytics_events (id, name, occurred_at, context, custom)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING
`, env.ID, env.Name, env.OccurredAt, contextJSON, customJSON)
	return err
}

// Count returns how many envelopes with the given name were stored since the given time.
func (s *Sink) Count(ctx context.Context, name string, since time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
SELECT count(*)
FROM analytics_events
WHERE name = $1 AND occurred_at >= $2
`, name, since).Scan(&n)
	return n, err
}
