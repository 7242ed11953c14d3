package feed

import (
	"regexp"
	"sort"
	"strings"

	"github.com/issuefeed/backend/pkg/taxonomy"
)

// WhyThisItem is a single scored profile entity backing a personalized
// item's explanation, per spec.md §4.5.
type WhyThisItem struct {
	Entity string
	Score  float64
}

// DefaultWhyThisTopK is the default number of explanations returned.
const DefaultWhyThisTopK = 3

var tokenRE = regexp.MustCompile(`[a-z0-9\+\#\.]+`)

// extractProfileEntities whitelists the profile facets that can ever
// appear in a why-this explanation: known languages, known stack areas,
// and normalized topics/skills/titles.
func extractProfileEntities(profile ProfileSource) map[string]struct{} {
	entities := make(map[string]struct{})

	add := func(v string) {
		if v != "" {
			entities[v] = struct{}{}
		}
	}
	addWhitelisted := func(values []string, known func(string) bool) {
		for _, v := range values {
			if known(v) {
				add(v)
			}
		}
	}
	addNormalized := func(values []string) {
		for _, v := range values {
			add(taxonomy.NormalizeSkill(v))
		}
	}

	addWhitelisted(profile.PreferredLanguages(), taxonomy.IsKnownLanguage)
	addWhitelisted(profile.GithubLanguages(), taxonomy.IsKnownLanguage)
	addWhitelisted(profile.IntentStackAreas(), taxonomy.IsKnownStackArea)
	addNormalized(profile.PreferredTopics())
	addNormalized(profile.GithubTopics())
	addNormalized(profile.ResumeSkills())
	addNormalized(profile.ResumeJobTitles())

	delete(entities, "")
	return entities
}

// ComputeWhyThis scores each whitelisted profile entity against an
// issue/repository pair and returns the top topK by score descending,
// then entity ascending (case-insensitive), per spec.md §4.5.
func ComputeWhyThis(profile ProfileSource, issueTitle, issueBodyPreview string, issueLabels []string, repoPrimaryLanguage string, repoTopics []string, topK int) []WhyThisItem {
	entities := extractProfileEntities(profile)
	if len(entities) == 0 {
		return nil
	}

	labelNorms := make(map[string]struct{}, len(issueLabels))
	for _, l := range issueLabels {
		if l != "" {
			labelNorms[taxonomy.Norm(l)] = struct{}{}
		}
	}

	topicNorms := make(map[string]struct{}, len(repoTopics))
	for _, t := range repoTopics {
		if t == "" {
			continue
		}
		canon := taxonomy.NormalizeSkill(t)
		if canon == "" {
			canon = t
		}
		topicNorms[taxonomy.Norm(canon)] = struct{}{}
	}

	langNorm := ""
	if repoPrimaryLanguage != "" {
		langNorm = taxonomy.Norm(repoPrimaryLanguage)
	}

	text := strings.ToLower(issueTitle + "\n" + issueBodyPreview)
	tokenNorms := make(map[string]struct{})
	for _, tok := range tokenRE.FindAllString(text, -1) {
		tokenNorms[taxonomy.Norm(tok)] = struct{}{}
	}

	techKeywords := taxonomy.TechKeywordsFor(repoPrimaryLanguage)
	techNorms := make(map[string]struct{}, len(techKeywords))
	for kw := range techKeywords {
		techNorms[taxonomy.Norm(kw)] = struct{}{}
	}

	var ranked []WhyThisItem
	for ent := range entities {
		entNorm := taxonomy.Norm(ent)
		if entNorm == "" {
			continue
		}

		var score float64
		if _, ok := labelNorms[entNorm]; ok {
			score += 3.0
		}
		if langNorm != "" && entNorm == langNorm {
			score += 2.5
		}
		if _, ok := topicNorms[entNorm]; ok {
			score += 2.0
		}
		_, inTokens := tokenNorms[entNorm]
		_, inTech := techNorms[entNorm]
		if inTokens || inTech || strings.Contains(text, strings.ToLower(ent)) {
			score += 1.0
		}

		if score > 0 {
			ranked = append(ranked, WhyThisItem{Entity: ent, Score: score})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return strings.ToLower(ranked[i].Entity) < strings.ToLower(ranked[j].Entity)
	})

	if topK < 0 {
		topK = 0
	}
	if topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}
