package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/issuefeed/backend/pkg/domain"
)

// AnalyticsRepository persists the analytics.search_interactions and
// analytics.recommendation_events tables, per spec.md §3.
type AnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// RecordSearchInteraction inserts a search->click row.
func (r *AnalyticsRepository) RecordSearchInteraction(ctx context.Context, i domain.SearchInteraction) error {
	filters, err := marshalMetadata(i.Filters)
	if err != nil {
		return dbErr(err, "marshal search interaction filters")
	}
	_, execErr := r.db.ExecContext(ctx, `
		INSERT INTO analytics.search_interactions (
			search_id, query, filters, result_count, selected_node_id, position, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,now())`,
		i.SearchID, i.Query, filters, i.ResultCount, i.SelectedNode, i.Position,
	)
	return dbErr(execErr, "record search interaction %s", i.SearchID)
}

// InsertRecommendationEvents bulk-inserts a batch of recommendation events,
// relying on a unique constraint on event_id (and a composite partial
// index for impressions) so redelivery is idempotent, per spec.md §4.6.
// Returns the count of rows actually inserted (conflicts are skipped, not
// errors).
func (r *AnalyticsRepository) InsertRecommendationEvents(ctx context.Context, events []domain.RecommendationEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, dbErr(err, "begin recommendation event batch")
	}
	defer tx.Rollback()

	inserted := 0
	for _, e := range events {
		metadata, merr := marshalMetadata(e.Metadata)
		if merr != nil {
			return inserted, dbErr(merr, "marshal recommendation event metadata %s", e.EventID)
		}

		res, execErr := tx.ExecContext(ctx, `
			INSERT INTO analytics.recommendation_events (
				event_id, recommendation_batch_id, user_id, issue_node_id, position,
				surface, event_type, is_personalized, metadata, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
			ON CONFLICT DO NOTHING`,
			e.EventID, e.RecommendationBatchID, e.UserID, e.IssueNodeID, e.Position,
			string(e.Surface), string(e.EventType), e.IsPersonalized, metadata,
		)
		if execErr != nil {
			return inserted, dbErr(execErr, "insert recommendation event %s", e.EventID)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return inserted, dbErr(err, "commit recommendation event batch")
	}
	return inserted, nil
}
