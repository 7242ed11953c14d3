package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/issuefeed/backend/pkg/apperr"
	"github.com/issuefeed/backend/pkg/domain"
)

// RepositoryRepository persists the ingestion.repositories table: the
// Scout-discovered repositories issues are attached to.
type RepositoryRepository struct {
	db *sqlx.DB
}

func NewRepositoryRepository(db *sqlx.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

type repositoryRow struct {
	NodeID            string       `db:"node_id"`
	FullName          string       `db:"full_name"`
	PrimaryLanguage   string       `db:"primary_language"`
	Topics            pq.StringArray `db:"topics"`
	StargazerCount    int          `db:"stargazer_count"`
	IssueVelocityWeek float64      `db:"issue_velocity_week"`
	LastScrapedAt     sql.NullTime `db:"last_scraped_at"`
}

func (r repositoryRow) toDomain() domain.Repository {
	repo := domain.Repository{
		NodeID:            r.NodeID,
		FullName:          r.FullName,
		PrimaryLanguage:   r.PrimaryLanguage,
		Topics:            []string(r.Topics),
		StargazerCount:    r.StargazerCount,
		IssueVelocityWeek: r.IssueVelocityWeek,
	}
	if r.LastScrapedAt.Valid {
		repo.LastScrapedAt = r.LastScrapedAt.Time
	}
	return repo
}

// Upsert writes a repository discovered by Scout, per spec.md §3 "upserted
// by Scout on each discovery pass".
func (r *RepositoryRepository) Upsert(ctx context.Context, repo domain.Repository) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion.repositories (
			node_id, full_name, primary_language, topics, stargazer_count,
			issue_velocity_week, last_scraped_at
		) VALUES ($1,$2,$3,$4,$5,$6,now())
		ON CONFLICT (node_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			primary_language = EXCLUDED.primary_language,
			topics = EXCLUDED.topics,
			stargazer_count = EXCLUDED.stargazer_count,
			issue_velocity_week = EXCLUDED.issue_velocity_week,
			last_scraped_at = now()`,
		repo.NodeID, repo.FullName, repo.PrimaryLanguage, strArray(repo.Topics),
		repo.StargazerCount, repo.IssueVelocityWeek,
	)
	return dbErr(err, "upsert repository %s", repo.NodeID)
}

// AllForSharding returns every repository, used by the collector's
// CRC32(node_id) mod 24 hourly shard selection (spec.md §4.3).
func (r *RepositoryRepository) AllForSharding(ctx context.Context) ([]domain.Repository, error) {
	var rows []repositoryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT node_id, full_name, primary_language, topics, stargazer_count,
		       issue_velocity_week, last_scraped_at
		FROM ingestion.repositories`)
	if err != nil {
		return nil, dbErr(err, "list repositories for sharding")
	}
	out := make([]domain.Repository, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// escapeLike escapes the ILIKE metacharacters %, _, and \ so a substring
// search treats user input literally, per spec.md §6 "Repository search".
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SearchByFullName returns repositories whose full_name matches an ILIKE
// substring search against query, per spec.md §6.
func (r *RepositoryRepository) SearchByFullName(ctx context.Context, query string, limit int) ([]domain.Repository, error) {
	pattern := "%" + escapeLike(query) + "%"
	var rows []repositoryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT node_id, full_name, primary_language, topics, stargazer_count,
		       issue_velocity_week, last_scraped_at
		FROM ingestion.repositories
		WHERE full_name ILIKE $1 ESCAPE '\'
		ORDER BY stargazer_count DESC
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, dbErr(err, "search repositories by full_name")
	}
	out := make([]domain.Repository, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// GetByNodeID returns a single repository, or apperr.NotFound when absent.
func (r *RepositoryRepository) GetByNodeID(ctx context.Context, nodeID string) (domain.Repository, error) {
	var row repositoryRow
	err := r.db.GetContext(ctx, &row, `
		SELECT node_id, full_name, primary_language, topics, stargazer_count,
		       issue_velocity_week, last_scraped_at
		FROM ingestion.repositories WHERE node_id = $1`, nodeID)
	if err == sql.ErrNoRows {
		return domain.Repository{}, apperr.NotFound("repository not found: " + nodeID)
	}
	if err != nil {
		return domain.Repository{}, dbErr(err, "query repository %s", nodeID)
	}
	return row.toDomain(), nil
}
