package feed

import (
	"strings"

	"github.com/issuefeed/backend/pkg/domain"
)

// ProfileSource is the structural-polymorphism replacement for passing a
// concrete *domain.UserProfile everywhere the feed engine needs one of its
// facets; it lets callers (and tests) supply a profile-shaped value
// without depending on domain.UserProfile's full field set.
type ProfileSource interface {
	PreferredLanguages() []string
	GithubLanguages() []string
	IntentStackAreas() []string
	ResumeSkills() []string
	ResumeJobTitles() []string
	PreferredTopics() []string
	GithubTopics() []string
}

// UserProfileAdapter adapts a *domain.UserProfile to ProfileSource.
type UserProfileAdapter struct {
	Profile *domain.UserProfile
}

func (a UserProfileAdapter) PreferredLanguages() []string { return a.Profile.PreferredLanguages }
func (a UserProfileAdapter) GithubLanguages() []string    { return a.Profile.GithubLanguages }
func (a UserProfileAdapter) IntentStackAreas() []string   { return a.Profile.IntentStackAreas }
func (a UserProfileAdapter) ResumeSkills() []string       { return a.Profile.ResumeSkills }
func (a UserProfileAdapter) ResumeJobTitles() []string    { return a.Profile.ResumeJobTitles }
func (a UserProfileAdapter) PreferredTopics() []string    { return a.Profile.PreferredTopics }
func (a UserProfileAdapter) GithubTopics() []string       { return a.Profile.GithubTopics }

// IntentText builds the embedding input format from spec.md §4.5:
// "{comma-joined stack_areas}. {free text}". languages and
// experience_level are never embedded; they only feed filter predicates.
func IntentText(stackAreas []string, freeText string) string {
	return strings.Join(stackAreas, ", ") + ". " + strings.TrimSpace(freeText)
}

// ComposeCombinedVector fuses the intent/resume/github vectors per
// spec.md §4.5's weights table: each present source is L2-normalized, the
// weighted sum is computed, then the sum is L2-normalized again. A nil
// return means all three sources are absent.
func ComposeCombinedVector(intent, resume, github domain.Vector) domain.Vector {
	type weighted struct {
		vec    domain.Vector
		weight float64
	}

	present := func(v domain.Vector) bool { return len(v) > 0 }

	var sources []weighted
	switch {
	case present(intent) && present(resume) && present(github):
		sources = []weighted{{intent, 0.50}, {resume, 0.30}, {github, 0.20}}
	case present(intent) && present(resume):
		sources = []weighted{{intent, 0.60}, {resume, 0.40}}
	case present(intent) && present(github):
		sources = []weighted{{intent, 0.70}, {github, 0.30}}
	case present(resume) && present(github):
		sources = []weighted{{resume, 0.60}, {github, 0.40}}
	case present(intent):
		return intent.L2Normalize()
	case present(resume):
		return resume.L2Normalize()
	case present(github):
		return github.L2Normalize()
	default:
		return nil
	}

	vectors := make([]domain.Vector, len(sources))
	weights := make([]float64, len(sources))
	for i, s := range sources {
		vectors[i] = s.vec.L2Normalize()
		weights[i] = s.weight
	}
	return domain.WeightedSum(vectors, weights).L2Normalize()
}
