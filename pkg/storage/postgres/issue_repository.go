package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/issuefeed/backend/pkg/apperr"
	"github.com/issuefeed/backend/pkg/domain"
)

// IssueRepository persists the ingestion.issues table: the promoted,
// scored, embedded issue rows that back search and the feed.
type IssueRepository struct {
	db *sqlx.DB
}

func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

type issueRow struct {
	NodeID             string          `db:"node_id"`
	RepoID             string          `db:"repo_id"`
	Title              string          `db:"title"`
	BodyText           string          `db:"body_text"`
	Labels             pq.StringArray  `db:"labels"`
	State              string          `db:"state"`
	GithubURL          string          `db:"github_url"`
	GithubCreatedAt    sql.NullTime    `db:"github_created_at"`
	IngestedAt         sql.NullTime    `db:"ingested_at"`
	HasCode            bool            `db:"has_code"`
	HasTemplateHeaders bool            `db:"has_template_headers"`
	TechStackWeight    float64         `db:"tech_stack_weight"`
	QScore             float64         `db:"q_score"`
	SurvivalScore      float64         `db:"survival_score"`
	ContentHash        string          `db:"content_hash"`
	Embedding          *pgvector       `db:"embedding"`
}

func (r issueRow) toDomain() domain.Issue {
	issue := domain.Issue{
		NodeID:    r.NodeID,
		RepoID:    r.RepoID,
		Title:     r.Title,
		BodyText:  r.BodyText,
		Labels:    []string(r.Labels),
		State:     domain.IssueState(r.State),
		GithubURL: r.GithubURL,
		QComponents: domain.QComponents{
			HasCode:            r.HasCode,
			HasTemplateHeaders: r.HasTemplateHeaders,
			TechStackWeight:    r.TechStackWeight,
		},
		QScore:        r.QScore,
		SurvivalScore: r.SurvivalScore,
		ContentHash:   r.ContentHash,
	}
	if r.GithubCreatedAt.Valid {
		issue.GithubCreatedAt = r.GithubCreatedAt.Time
	}
	if r.IngestedAt.Valid {
		issue.IngestedAt = r.IngestedAt.Time
	}
	if r.Embedding != nil {
		issue.Embedding = domain.Vector(*r.Embedding)
	}
	return issue
}

// GetByNodeID returns a single issue, or apperr.NotFound when absent.
func (r *IssueRepository) GetByNodeID(ctx context.Context, nodeID string) (domain.Issue, error) {
	var row issueRow
	err := r.db.GetContext(ctx, &row, `
		SELECT node_id, repo_id, title, body_text, labels, state, github_url,
		       github_created_at, ingested_at, has_code, has_template_headers,
		       tech_stack_weight, q_score, survival_score, content_hash, embedding
		FROM ingestion.issues WHERE node_id = $1`, nodeID)
	if err == sql.ErrNoRows {
		return domain.Issue{}, apperr.NotFound(fmt.Sprintf("issue %s not found", nodeID))
	}
	if err != nil {
		return domain.Issue{}, dbErr(err, "query issue %s", nodeID)
	}
	return row.toDomain(), nil
}

// ContentHashOf returns the previously-stored content hash and whether an
// embedding is present, used by the embedder worker's short-circuit check
// (spec.md §4.3: "if unchanged and embedding present, acks immediately").
func (r *IssueRepository) ContentHashOf(ctx context.Context, nodeID string) (hash string, hasEmbedding bool, err error) {
	var row struct {
		ContentHash string    `db:"content_hash"`
		Embedding   *pgvector `db:"embedding"`
	}
	queryErr := r.db.GetContext(ctx, &row, `SELECT content_hash, embedding FROM ingestion.issues WHERE node_id = $1`, nodeID)
	if queryErr == sql.ErrNoRows {
		return "", false, nil
	}
	if queryErr != nil {
		return "", false, dbErr(queryErr, "lookup content hash %s", nodeID)
	}
	return row.ContentHash, row.Embedding != nil, nil
}

// Upsert writes through an issue by node_id, per spec.md §4.3 step (d).
func (r *IssueRepository) Upsert(ctx context.Context, issue domain.Issue) error {
	var embedding any
	if issue.Embedding != nil {
		embedding = pgvector(issue.Embedding).String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion.issues (
			node_id, repo_id, title, body_text, labels, state, github_url,
			github_created_at, ingested_at, has_code, has_template_headers,
			tech_stack_weight, q_score, survival_score, content_hash, embedding
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now(),$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (node_id) DO UPDATE SET
			repo_id = EXCLUDED.repo_id,
			title = EXCLUDED.title,
			body_text = EXCLUDED.body_text,
			labels = EXCLUDED.labels,
			state = EXCLUDED.state,
			github_url = EXCLUDED.github_url,
			github_created_at = EXCLUDED.github_created_at,
			ingested_at = now(),
			has_code = EXCLUDED.has_code,
			has_template_headers = EXCLUDED.has_template_headers,
			tech_stack_weight = EXCLUDED.tech_stack_weight,
			q_score = EXCLUDED.q_score,
			survival_score = EXCLUDED.survival_score,
			content_hash = EXCLUDED.content_hash,
			embedding = EXCLUDED.embedding`,
		issue.NodeID, issue.RepoID, issue.Title, issue.BodyText, strArray(issue.Labels), issue.State,
		issue.GithubURL, issue.GithubCreatedAt,
		issue.QComponents.HasCode, issue.QComponents.HasTemplateHeaders, issue.QComponents.TechStackWeight,
		issue.QScore, issue.SurvivalScore, issue.ContentHash, embedding,
	)
	if err != nil {
		return dbErr(err, "upsert issue %s", issue.NodeID)
	}
	return nil
}

// DeleteBelowPercentile removes rows whose survival_score falls below the
// given percentile (0-100), provided the table holds at least minRows rows.
// Mirrors the janitor's single set-based DELETE from spec.md §4.3.
func (r *IssueRepository) DeleteBelowPercentile(ctx context.Context, percentile float64, minRows int) (deleted, remaining int, err error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM ingestion.issues`); err != nil {
		return 0, 0, dbErr(err, "count issues")
	}
	if total < minRows {
		return 0, total, nil
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM ingestion.issues
		WHERE survival_score < (
			SELECT percentile_cont($1) WITHIN GROUP (ORDER BY survival_score)
			FROM ingestion.issues
		)`, percentile/100.0)
	if err != nil {
		return 0, 0, dbErr(err, "delete low-survival issues")
	}
	n, _ := res.RowsAffected()

	var remain int
	if err := r.db.GetContext(ctx, &remain, `SELECT count(*) FROM ingestion.issues`); err != nil {
		return int(n), 0, dbErr(err, "recount issues")
	}
	return int(n), remain, nil
}

// LexicalCandidates returns up to limit node_ids ranked by ts_rank against
// the issues' generated tsvector column, per spec.md §4.4 Stage 1.
func (r *IssueRepository) LexicalCandidates(ctx context.Context, query string, limit int) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT node_id FROM ingestion.issues
		WHERE state = 'open' AND search_vector @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(search_vector, plainto_tsquery('english', $1)) DESC
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, dbErr(err, "lexical candidates")
	}
	return ids, nil
}

// VectorCandidates returns up to limit node_ids ranked by ascending cosine
// distance to queryVec, per spec.md §4.4 Stage 1 "vector rank".
func (r *IssueRepository) VectorCandidates(ctx context.Context, queryVec domain.Vector, limit int) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT node_id FROM ingestion.issues
		WHERE state = 'open' AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`, pgvector(queryVec).String(), limit)
	if err != nil {
		return nil, dbErr(err, "vector candidates")
	}
	return ids, nil
}

// GetManyByNodeID re-queries a page of node_ids from ingestion.issues alone
// (spec.md §4.4); it does not join the repository table, which
// EnrichForSearch does.
func (r *IssueRepository) GetManyByNodeID(ctx context.Context, nodeIDs []string) (map[string]domain.Issue, error) {
	if len(nodeIDs) == 0 {
		return map[string]domain.Issue{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT node_id, repo_id, title, body_text, labels, state, github_url,
		       github_created_at, ingested_at, has_code, has_template_headers,
		       tech_stack_weight, q_score, survival_score, content_hash, embedding
		FROM ingestion.issues WHERE node_id IN (?)`, nodeIDs)
	if err != nil {
		return nil, dbErr(err, "build IN query")
	}
	query = r.db.Rebind(query)

	var rows []issueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbErr(err, "enrich candidates")
	}

	out := make(map[string]domain.Issue, len(rows))
	for _, row := range rows {
		out[row.NodeID] = row.toDomain()
	}
	return out, nil
}

// EnrichedIssue is the Stage 2 search projection from spec.md §4.4: an
// issue joined to its repository's full_name, primary_language, and
// topics (the last needed by the feed engine's why-this repo-topics
// dimension, spec.md §4.5).
type EnrichedIssue struct {
	Issue           domain.Issue
	RepoName        string
	PrimaryLanguage string
	Topics          []string
}

type enrichedIssueRow struct {
	issueRow
	RepoName        string         `db:"repo_name"`
	PrimaryLanguage string         `db:"primary_language"`
	Topics          pq.StringArray `db:"topics"`
}

// EnrichForSearch re-queries nodeIDs joined to their repository, for
// search's Stage 2 enrichment (spec.md §4.4).
func (r *IssueRepository) EnrichForSearch(ctx context.Context, nodeIDs []string) (map[string]EnrichedIssue, error) {
	if len(nodeIDs) == 0 {
		return map[string]EnrichedIssue{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT i.node_id, i.repo_id, i.title, i.body_text, i.labels, i.state, i.github_url,
		       i.github_created_at, i.ingested_at, i.has_code, i.has_template_headers,
		       i.tech_stack_weight, i.q_score, i.survival_score, i.content_hash, i.embedding,
		       r.full_name AS repo_name, r.primary_language, r.topics
		FROM ingestion.issues i
		JOIN ingestion.repositories r ON r.node_id = i.repo_id
		WHERE i.node_id IN (?)`, nodeIDs)
	if err != nil {
		return nil, dbErr(err, "build search enrichment IN query")
	}
	query = r.db.Rebind(query)

	var rows []enrichedIssueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbErr(err, "enrich search candidates")
	}

	out := make(map[string]EnrichedIssue, len(rows))
	for _, row := range rows {
		out[row.NodeID] = EnrichedIssue{
			Issue:           row.issueRow.toDomain(),
			RepoName:        row.RepoName,
			PrimaryLanguage: row.PrimaryLanguage,
			Topics:          []string(row.Topics),
		}
	}
	return out, nil
}

// FeedCandidates returns open, embedded issues matching the profile
// preference filters from spec.md §4.5 step 1, joined to their
// repository's name/primary_language so the feed engine can rank and
// explain without a second round-trip.
func (r *IssueRepository) FeedCandidates(ctx context.Context, preferredLanguages, preferredTopics []string, minHeatThreshold float64) ([]EnrichedIssue, error) {
	clauses := []string{"i.state = 'open'", "i.embedding IS NOT NULL", "i.q_score >= $1"}
	args := []any{minHeatThreshold}
	argN := 2

	if len(preferredLanguages) > 0 {
		clauses = append(clauses, fmt.Sprintf(`r.primary_language = ANY($%d)`, argN))
		args = append(args, strArray(preferredLanguages))
		argN++
	}
	if len(preferredTopics) > 0 {
		clauses = append(clauses, fmt.Sprintf(`r.topics && $%d`, argN))
		args = append(args, strArray(preferredTopics))
		argN++
	}

	query := fmt.Sprintf(`
		SELECT i.node_id, i.repo_id, i.title, i.body_text, i.labels, i.state, i.github_url,
		       i.github_created_at, i.ingested_at, i.has_code, i.has_template_headers,
		       i.tech_stack_weight, i.q_score, i.survival_score, i.content_hash, i.embedding,
		       r.full_name AS repo_name, r.primary_language, r.topics
		FROM ingestion.issues i
		JOIN ingestion.repositories r ON r.node_id = i.repo_id
		WHERE %s`, strings.Join(clauses, " AND "))

	var rows []enrichedIssueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbErr(err, "feed candidates")
	}
	return enrichedRowsToSlice(rows), nil
}

// TrendingCandidates returns open issues above the trending floor, joined
// to repository metadata and filtered by the optional languages/labels/
// repos lists from spec.md §4.5 step 1 of the trending fallback, ordered
// by q_score desc, github_created_at desc.
func (r *IssueRepository) TrendingCandidates(ctx context.Context, minQScore float64, languages, labels, repos []string, limit int) ([]EnrichedIssue, error) {
	clauses := []string{"i.state = 'open'", "i.q_score >= $1"}
	args := []any{minQScore}
	argN := 2

	if len(languages) > 0 {
		clauses = append(clauses, fmt.Sprintf(`r.primary_language = ANY($%d)`, argN))
		args = append(args, strArray(languages))
		argN++
	}
	if len(labels) > 0 {
		clauses = append(clauses, fmt.Sprintf(`i.labels && $%d`, argN))
		args = append(args, strArray(labels))
		argN++
	}
	if len(repos) > 0 {
		clauses = append(clauses, fmt.Sprintf(`r.full_name = ANY($%d)`, argN))
		args = append(args, strArray(repos))
		argN++
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT i.node_id, i.repo_id, i.title, i.body_text, i.labels, i.state, i.github_url,
		       i.github_created_at, i.ingested_at, i.has_code, i.has_template_headers,
		       i.tech_stack_weight, i.q_score, i.survival_score, i.content_hash, i.embedding,
		       r.full_name AS repo_name, r.primary_language, r.topics
		FROM ingestion.issues i
		JOIN ingestion.repositories r ON r.node_id = i.repo_id
		WHERE %s
		ORDER BY i.q_score DESC, i.github_created_at DESC
		LIMIT $%d`, strings.Join(clauses, " AND "), argN)

	var rows []enrichedIssueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbErr(err, "trending candidates")
	}
	return enrichedRowsToSlice(rows), nil
}

func enrichedRowsToSlice(rows []enrichedIssueRow) []EnrichedIssue {
	out := make([]EnrichedIssue, len(rows))
	for i, row := range rows {
		out[i] = EnrichedIssue{
			Issue:           row.issueRow.toDomain(),
			RepoName:        row.RepoName,
			PrimaryLanguage: row.PrimaryLanguage,
			Topics:          []string(row.Topics),
		}
	}
	return out
}

// marshalMetadata is a small helper shared by the analytics repository.
func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
