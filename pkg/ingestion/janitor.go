package ingestion

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/internal/logging"
	"github.com/issuefeed/backend/pkg/metrics"
)

// PrunePercentile is the bottom quantile of survival_score the janitor
// removes each run, per original_source's ingestion/janitor.py and
// spec.md §4.3. PruneStore.DeleteBelowPercentile takes a 0-100 scale, not
// a 0-1 fraction, so this is 20, not 0.2.
const PrunePercentile = 20

// PruneStore is the narrow surface Janitor needs from
// pkg/storage/postgres.IssueRepository.
type PruneStore interface {
	DeleteBelowPercentile(ctx context.Context, percentile float64, minRows int) (deleted, remaining int, err error)
}

// Janitor periodically removes the long tail of low-survival-score issues.
type Janitor struct {
	store     PruneStore
	minIssues int
	log       *logrus.Logger
}

func NewJanitor(store PruneStore, minIssues int, log *logrus.Logger) *Janitor {
	return &Janitor{store: store, minIssues: minIssues, log: log}
}

// Prune deletes issues below the 20th survival-score percentile, skipping
// the run entirely when the table has fewer than minIssues rows, per
// spec.md §4.3.
func (j *Janitor) Prune(ctx context.Context) (deleted, remaining int, err error) {
	deleted, remaining, err = j.store.DeleteBelowPercentile(ctx, PrunePercentile, j.minIssues)
	if err != nil {
		j.log.WithFields(logging.NewFields().Component("ingestion").Operation("janitor").Error(err).Logrus()).
			Error("janitor prune failed")
		return 0, 0, err
	}

	metrics.JanitorDeletedTotal.Add(float64(deleted))
	j.log.WithFields(logging.NewFields().Component("ingestion").Operation("janitor").
		Count(deleted).Logrus()).Info("janitor prune complete")
	return deleted, remaining, nil
}
