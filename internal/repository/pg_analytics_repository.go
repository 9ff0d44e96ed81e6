package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cardsite/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgAnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewPgAnalyticsRepository returns a PostgreSQL-backed AnalyticsRepository.
// Rows are append-only and never read back by the site.
func NewPgAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &pgAnalyticsRepository{pool: pool}
}

func (r *pgAnalyticsRepository) Name() string { return "postgres" }

func (r *pgAnalyticsRepository) Insert(ctx context.Context, e *model.AnalyticsEvent) error {
	metadata, err := json.Marshal(e.Metadata())
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO analytics_events (action, occurred_at, user_agent, referer, client_ip, metadata)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)`,
		e.Action, e.Timestamp,
		e.String(model.EventKeyUserAgent), e.String(model.EventKeyReferer), e.String(model.EventKeyIP),
		metadata,
	)
	return err
}
