package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/pkg/domain"
)

func TestHandleStats_QueriesStoreOnFirstCall(t *testing.T) {
	stats := &fakeStatsStore{stats: domain.PlatformStats{OpenIssues: 3, TotalIssues: 10, TotalRepositories: 2}}
	h := NewHandler(&fakeSearchEngine{}, &fakeFeedEngine{}, &fakeProfileStore{}, &fakeIssueStore{},
		&fakeRepositoryStore{}, stats, &fakeRecoSubmitter{}, newFakeBatchStore(), logrus.New())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if stats.calls != 1 {
		t.Fatalf("calls = %d, want 1", stats.calls)
	}
}

func TestHandleStats_ServesFromCacheWithinTTL(t *testing.T) {
	stats := &fakeStatsStore{stats: domain.PlatformStats{OpenIssues: 3, TotalIssues: 10, TotalRepositories: 2}}
	h := NewHandler(&fakeSearchEngine{}, &fakeFeedEngine{}, &fakeProfileStore{}, &fakeIssueStore{},
		&fakeRepositoryStore{}, stats, &fakeRecoSubmitter{}, newFakeBatchStore(), logrus.New())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		rec := httptest.NewRecorder()
		h.HandleStats(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("iteration %d: status = %d", i, rec.Code)
		}
	}

	if stats.calls != 1 {
		t.Fatalf("calls = %d, want 1 (subsequent requests should hit the cache)", stats.calls)
	}
}

func TestHandleStats_RefreshesAfterTTLExpires(t *testing.T) {
	stats := &fakeStatsStore{stats: domain.PlatformStats{OpenIssues: 3, TotalIssues: 10, TotalRepositories: 2}}
	h := NewHandler(&fakeSearchEngine{}, &fakeFeedEngine{}, &fakeProfileStore{}, &fakeIssueStore{},
		&fakeRepositoryStore{}, stats, &fakeRecoSubmitter{}, newFakeBatchStore(), logrus.New())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	h.HandleStats(httptest.NewRecorder(), req)

	h.statsMu.Lock()
	h.statsCachedAt = time.Now().Add(-2 * statsCacheTTL)
	h.statsMu.Unlock()

	h.HandleStats(httptest.NewRecorder(), req)

	if stats.calls != 2 {
		t.Fatalf("calls = %d, want 2 (cache should have expired)", stats.calls)
	}
}
