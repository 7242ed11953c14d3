// Package scoring implements the pure quality-gate and scoring functions
// from spec.md §4.2: Q-score components, survival score, freshness decay,
// and the junk short-circuit.
package scoring

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/issuefeed/backend/pkg/taxonomy"
)

var (
	fencedCodeBlockRE = regexp.MustCompile("```")
	inlineCodeSpanRE  = regexp.MustCompile("`[^`\n]+`")

	// templateHeaderRE matches the markdown headers recognized across
	// common GitHub issue templates.
	templateHeaderRE = regexp.MustCompile(`(?im)^#{1,6}\s*(steps to reproduce|expected behaviou?r|actual behaviou?r|current behaviou?r|describe the bug|to reproduce|environment|additional context)\s*$`)

	tokenRE = regexp.MustCompile(`[a-z0-9+#.]+`)
)

// HasCode reports whether body contains a fenced code block or an inline
// code span.
func HasCode(body string) bool {
	if fencedCodeBlockRE.MatchString(body) {
		return true
	}
	return inlineCodeSpanRE.MatchString(body)
}

// HasTemplateHeaders reports whether body contains a recognized
// issue-template markdown header.
func HasTemplateHeaders(body string) bool {
	return templateHeaderRE.MatchString(body)
}

// Weights for the Q-score composition. Each component contributes its
// weight when true/its value, summed and clamped to [0,1].
const (
	weightHasCode      = 0.35
	weightHasTemplate  = 0.25
	weightTechStack    = 0.40
)

// TechStackWeight returns the weighted overlap, in [0,1], of normalized
// body/title tokens against the per-language (or default) technical
// keyword table.
func TechStackWeight(title, body, primaryLanguage string) float64 {
	table := taxonomy.TechKeywordsFor(primaryLanguage)
	if len(table) == 0 {
		return 0
	}

	text := strings.ToLower(title + " " + body)
	tokens := tokenRE.FindAllString(text, -1)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = struct{}{}
	}

	var matched, total float64
	for kw, weight := range table {
		total += weight
		if _, ok := tokenSet[kw]; ok {
			matched += weight
		}
	}
	if total == 0 {
		return 0
	}
	return clamp01(matched / total)
}

// QScore is the weighted sum of the three Q-components, clamped to [0,1].
func QScore(c QComponentsInput) float64 {
	score := 0.0
	if c.HasCode {
		score += weightHasCode
	}
	if c.HasTemplateHeaders {
		score += weightHasTemplate
	}
	score += weightTechStack * clamp01(c.TechStackWeight)
	return clamp01(score)
}

// QComponentsInput mirrors domain.QComponents without importing the domain
// package, keeping scoring dependency-free (pure functions over plain
// values only).
type QComponentsInput struct {
	HasCode            bool
	HasTemplateHeaders bool
	TechStackWeight    float64
}

// FreshnessDecay implements the half-life decay law from spec.md §4.2/§8:
// 1 for ageDays <= 0, else max(floor, 2^(-ageDays/halfLife)).
func FreshnessDecay(ageDays, halfLifeDays, floor float64) float64 {
	if ageDays <= 0 {
		return 1.0
	}
	decay := math.Pow(2, -ageDays/halfLifeDays)
	if decay < floor {
		return floor
	}
	return decay
}

// SurvivalScore combines qScore with freshness decay (half-life 7 days
// from ingestedAt), clamped to [0,1].
func SurvivalScore(qScore float64, ingestedAt, now time.Time) float64 {
	ageDays := now.Sub(ingestedAt).Hours() / 24
	decay := FreshnessDecay(ageDays, 7, 0.0)
	return clamp01(qScore * decay)
}

// IsJunk short-circuits issues whose body is empty, boilerplate, or
// dominated by non-English (non-ASCII-letter) characters.
func IsJunk(body string) bool {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return true
	}
	if isBoilerplate(trimmed) {
		return true
	}
	return isDominatedByNonEnglish(trimmed)
}

var boilerplatePhrases = []string{
	"no description provided",
	"n/a",
	"tbd",
	"todo",
	"placeholder",
	"...",
}

func isBoilerplate(body string) bool {
	lower := strings.ToLower(strings.TrimSpace(body))
	for _, phrase := range boilerplatePhrases {
		if lower == phrase {
			return true
		}
	}
	return len(lower) < 8
}

func isDominatedByNonEnglish(body string) bool {
	var letters, ascii int
	for _, r := range body {
		if unicode.IsLetter(r) {
			letters++
			if r <= unicode.MaxASCII {
				ascii++
			}
		}
	}
	if letters == 0 {
		return true
	}
	return float64(ascii)/float64(letters) < 0.5
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
