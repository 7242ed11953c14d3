package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/pkg/domain"
)

func TestHandleRepositories_Success(t *testing.T) {
	repos := &fakeRepositoryStore{repos: []domain.Repository{{NodeID: "r1", FullName: "org/repo"}}}
	h := NewHandler(&fakeSearchEngine{}, &fakeFeedEngine{}, &fakeProfileStore{}, &fakeIssueStore{}, repos,
		&fakeStatsStore{}, &fakeRecoSubmitter{}, newFakeBatchStore(), logrus.New())

	req := httptest.NewRequest(http.MethodGet, "/repositories?q=org&limit=5", nil)
	rec := httptest.NewRecorder()

	h.HandleRepositories(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"full_name":"org/repo"`) {
		t.Errorf("body = %s, want full_name org/repo", rec.Body.String())
	}
}

func TestHandleRepositories_StoreErrorPropagates(t *testing.T) {
	repos := &fakeRepositoryStore{err: errBoom}
	h := NewHandler(&fakeSearchEngine{}, &fakeFeedEngine{}, &fakeProfileStore{}, &fakeIssueStore{}, repos,
		&fakeStatsStore{}, &fakeRecoSubmitter{}, newFakeBatchStore(), logrus.New())

	req := httptest.NewRequest(http.MethodGet, "/repositories", nil)
	rec := httptest.NewRecorder()

	h.HandleRepositories(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body=%s", rec.Code, rec.Body.String())
	}
}
