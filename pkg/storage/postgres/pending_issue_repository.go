package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/issuefeed/backend/pkg/domain"
)

// PendingIssueRepository persists the staging.pending_issues table written
// by the collector and drained by the embedder worker, per spec.md §3.
type PendingIssueRepository struct {
	db *sqlx.DB
}

func NewPendingIssueRepository(db *sqlx.DB) *PendingIssueRepository {
	return &PendingIssueRepository{db: db}
}

type pendingIssueRow struct {
	NodeID          string  `db:"node_id"`
	RepoID          string  `db:"repo_id"`
	Title           string  `db:"title"`
	BodyText        string  `db:"body_text"`
	Labels          pq.StringArray `db:"labels"`
	HasCode         bool    `db:"has_code"`
	HasTemplate     bool    `db:"has_template_headers"`
	TechStackWeight float64 `db:"tech_stack_weight"`
	ContentHash     string  `db:"content_hash"`
	Status          string  `db:"status"`
	Attempts        int     `db:"attempts"`
}

func (r pendingIssueRow) toDomain() domain.PendingIssue {
	return domain.PendingIssue{
		NodeID:   r.NodeID,
		RepoID:   r.RepoID,
		Title:    r.Title,
		BodyText: r.BodyText,
		Labels:   []string(r.Labels),
		QComponents: domain.QComponents{
			HasCode:            r.HasCode,
			HasTemplateHeaders: r.HasTemplate,
			TechStackWeight:    r.TechStackWeight,
		},
		ContentHash: r.ContentHash,
		Status:      domain.PendingIssueStatus(r.Status),
		Attempts:    r.Attempts,
	}
}

// Enqueue inserts a staging row created by the collector, per spec.md
// §4.3 "created by the collector".
func (r *PendingIssueRepository) Enqueue(ctx context.Context, p domain.PendingIssue) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO staging.pending_issues (
			node_id, repo_id, title, body_text, labels, has_code,
			has_template_headers, tech_stack_weight, content_hash, status, attempts
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending',0)
		ON CONFLICT (node_id) DO UPDATE SET
			title = EXCLUDED.title,
			body_text = EXCLUDED.body_text,
			labels = EXCLUDED.labels,
			has_code = EXCLUDED.has_code,
			has_template_headers = EXCLUDED.has_template_headers,
			tech_stack_weight = EXCLUDED.tech_stack_weight,
			content_hash = EXCLUDED.content_hash,
			status = 'pending'`,
		p.NodeID, p.RepoID, p.Title, p.BodyText, strArray(p.Labels),
		p.QComponents.HasCode, p.QComponents.HasTemplateHeaders, p.QComponents.TechStackWeight,
		p.ContentHash,
	)
	return dbErr(err, "enqueue pending issue %s", p.NodeID)
}

// ClaimBatch atomically claims up to limit pending rows for the embedder
// worker, marking them processing so a concurrent worker does not also
// claim them.
func (r *PendingIssueRepository) ClaimBatch(ctx context.Context, limit int) ([]domain.PendingIssue, error) {
	var rows []pendingIssueRow
	err := r.db.SelectContext(ctx, &rows, `
		UPDATE staging.pending_issues
		SET status = 'processing', attempts = attempts + 1
		WHERE node_id IN (
			SELECT node_id FROM staging.pending_issues
			WHERE status = 'pending'
			ORDER BY node_id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING node_id, repo_id, title, body_text, labels, has_code,
		          has_template_headers, tech_stack_weight, content_hash, status, attempts`, limit)
	if err != nil {
		return nil, dbErr(err, "claim pending issue batch")
	}
	out := make([]domain.PendingIssue, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// MarkCompleted moves a claimed row to completed status after it has been
// promoted to the main Issue table.
func (r *PendingIssueRepository) MarkCompleted(ctx context.Context, nodeID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE staging.pending_issues SET status = 'completed' WHERE node_id = $1`, nodeID)
	return dbErr(err, "mark pending issue completed %s", nodeID)
}

// MarkFailed records a processing failure by setting the row's status to
// failed; the row is not returned to pending.
func (r *PendingIssueRepository) MarkFailed(ctx context.Context, nodeID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE staging.pending_issues SET status = 'failed' WHERE node_id = $1`, nodeID)
	return dbErr(err, "mark pending issue failed %s", nodeID)
}

// SweepCompleted deletes completed rows older than the staging retention
// window, per spec.md §3 "swept when completed and aged out".
func (r *PendingIssueRepository) SweepCompleted(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM staging.pending_issues
		WHERE status = 'completed' AND updated_at < now() - interval '1 day'`)
	if err != nil {
		return 0, dbErr(err, "sweep completed pending issues")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
