package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/issuefeed/backend/pkg/search"
)

func newSearchTestHandler(se *fakeSearchEngine) *Handler {
	return NewHandler(se, &fakeFeedEngine{}, &fakeProfileStore{}, &fakeIssueStore{}, &fakeRepositoryStore{},
		&fakeStatsStore{}, &fakeRecoSubmitter{}, newFakeBatchStore(), logrus.New())
}

func TestHandleSearch_RejectsMissingQuery(t *testing.T) {
	h := newSearchTestHandler(&fakeSearchEngine{})

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.HandleSearch(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleSearch_ReturnsResultsOnSuccess(t *testing.T) {
	se := &fakeSearchEngine{response: search.Response{SearchID: "s1", Results: []search.ResultItem{{NodeID: "n1"}}, Total: 1}}
	h := newSearchTestHandler(se)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"memory leak in http client"}`))
	rec := httptest.NewRecorder()

	h.HandleSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"search_id":"s1"`) {
		t.Errorf("body = %s, want search_id s1", rec.Body.String())
	}
}

func TestHandleSearchInteract_RequiresFields(t *testing.T) {
	h := newSearchTestHandler(&fakeSearchEngine{})

	req := httptest.NewRequest(http.MethodPost, "/search/interact", strings.NewReader(`{"search_id":"s1"}`))
	rec := httptest.NewRecorder()

	h.HandleSearchInteract(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleSearchInteract_Success(t *testing.T) {
	se := &fakeSearchEngine{}
	h := newSearchTestHandler(se)

	body := `{"search_id":"s1","position":1,"selected_node_id":"n1"}`
	req := httptest.NewRequest(http.MethodPost, "/search/interact", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleSearchInteract(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body=%s", rec.Code, rec.Body.String())
	}
	if se.interactedSearch != "s1" {
		t.Errorf("interactedSearch = %q, want s1", se.interactedSearch)
	}
}
