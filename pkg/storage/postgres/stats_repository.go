package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/issuefeed/backend/pkg/domain"
)

// StatsRepository answers the public /stats platform-counts query.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Platform returns the counts behind GET /stats (spec.md §6: "platform
// counts, cached >= 1h"; the cache TTL is enforced by the HTTP layer, not
// here).
func (r *StatsRepository) Platform(ctx context.Context) (domain.PlatformStats, error) {
	var stats domain.PlatformStats
	err := r.db.GetContext(ctx, &stats.TotalIssues, `SELECT count(*) FROM ingestion.issues`)
	if err != nil {
		return domain.PlatformStats{}, dbErr(err, "count issues")
	}
	err = r.db.GetContext(ctx, &stats.OpenIssues, `SELECT count(*) FROM ingestion.issues WHERE state = 'open'`)
	if err != nil {
		return domain.PlatformStats{}, dbErr(err, "count open issues")
	}
	err = r.db.GetContext(ctx, &stats.TotalRepositories, `SELECT count(*) FROM ingestion.repositories`)
	if err != nil {
		return domain.PlatformStats{}, dbErr(err, "count repositories")
	}
	return stats, nil
}
