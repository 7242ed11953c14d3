package feed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/issuefeed/backend/pkg/feed/feedtest"
)

func TestComputeWhyThisScoresAndRanks(t *testing.T) {
	profile := feedtest.FakeProfile{
		Preferred:  []string{"go"},
		StackAreas: []string{"backend"},
	}

	items := ComputeWhyThis(
		profile,
		"goroutine leak under load",
		"panics happen in the worker pool",
		[]string{"go"},
		"go",
		[]string{"backend"},
		3,
	)

	require.NotEmpty(t, items)
	require.Equal(t, "go", items[0].Entity)
	// label(3.0) + primary_language(2.5) + tech keyword "goroutine"/"panic"(1.0) = 6.5
	require.InDelta(t, 6.5, items[0].Score, 1e-9)
}

func TestComputeWhyThisReturnsEmptyForNoEntities(t *testing.T) {
	profile := feedtest.FakeProfile{}
	items := ComputeWhyThis(profile, "title", "body", nil, "go", nil, 3)
	require.Empty(t, items)
}

func TestComputeWhyThisRespectsTopK(t *testing.T) {
	profile := feedtest.FakeProfile{
		Preferred:  []string{"go", "python"},
		StackAreas: []string{"backend", "devops"},
	}
	items := ComputeWhyThis(profile, "go and python backend devops issue", "", []string{"go", "python", "backend", "devops"}, "go", []string{"backend", "devops"}, 2)
	require.Len(t, items, 2)
}

func TestComputeWhyThisTieBreaksByEntityAscending(t *testing.T) {
	profile := feedtest.FakeProfile{StackAreas: []string{"backend", "devops"}}
	items := ComputeWhyThis(profile, "backend devops", "", nil, "", nil, 3)
	require.Len(t, items, 2)
	require.Equal(t, "backend", items[0].Entity)
	require.Equal(t, "devops", items[1].Entity)
}
