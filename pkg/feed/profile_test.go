package feed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/issuefeed/backend/pkg/domain"
)

func TestIntentTextFormat(t *testing.T) {
	got := IntentText([]string{"backend", "devops"}, "I want to fix concurrency bugs")
	require.Equal(t, "backend, devops. I want to fix concurrency bugs", got)
}

func TestComposeCombinedVectorAllThreeSources(t *testing.T) {
	intent := domain.Vector{1, 0}
	resume := domain.Vector{0, 1}
	github := domain.Vector{1, 1}

	combined := ComposeCombinedVector(intent, resume, github)
	require.NotNil(t, combined)
	require.InDelta(t, 1.0, combined.L2Norm(), 1e-6)
}

func TestComposeCombinedVectorSingleSourceIsIdentity(t *testing.T) {
	intent := domain.Vector{3, 4}
	combined := ComposeCombinedVector(intent, nil, nil)
	require.InDelta(t, 0.6, float64(combined[0]), 1e-6)
	require.InDelta(t, 0.8, float64(combined[1]), 1e-6)
}

func TestComposeCombinedVectorAllAbsentReturnsNil(t *testing.T) {
	require.Nil(t, ComposeCombinedVector(nil, nil, nil))
}

func TestComposeCombinedVectorTwoSourcePairs(t *testing.T) {
	a := domain.Vector{1, 0}
	b := domain.Vector{0, 1}

	require.NotNil(t, ComposeCombinedVector(a, b, nil))   // intent+resume
	require.NotNil(t, ComposeCombinedVector(a, nil, b))   // intent+github
	require.NotNil(t, ComposeCombinedVector(nil, a, b))   // resume+github
}
