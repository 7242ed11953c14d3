// Package taxonomy holds the shared normalization tables used across
// scoring, search, and feed ranking: the whitelisted languages and stack
// areas, and per-language (or default) technical keyword weights.
//
// Grounded on the original Python implementation's gim_shared.constants
// module (PROFILE_LANGUAGES, STACK_AREAS, TECH_KEYWORDS_BY_LANGUAGE,
// DEFAULT_TECH_KEYWORDS, normalize_skill) referenced throughout
// original_source/apps/backend/gim_backend/services/why_this_service.py.
package taxonomy

import "strings"

// Languages is the whitelist surfaced at GET /taxonomy/languages.
var Languages = []string{
	"go", "python", "javascript", "typescript", "java", "c", "c++", "c#",
	"rust", "ruby", "php", "swift", "kotlin", "scala", "elixir", "haskell",
	"shell", "html", "css", "dart", "lua",
}

// StackAreas is the whitelist surfaced at GET /taxonomy/stack-areas.
var StackAreas = []string{
	"frontend", "backend", "mobile", "devops", "data-engineering",
	"machine-learning", "embedded", "security", "testing", "infrastructure",
	"databases", "distributed-systems", "game-development", "cli-tooling",
}

// DefaultTechKeywords is the language-agnostic fallback table used when an
// issue's repository has no (or an unrecognized) primary_language
// (spec.md §4.2 tech_stack_weight).
var DefaultTechKeywords = []string{
	"api", "bug", "crash", "performance", "memory", "test", "build",
	"deploy", "config", "error", "exception", "regression",
}

// TechKeywordsByLanguage maps a primary_language to a weighted keyword set.
// Weights are in [0,1] and represent each keyword's contribution toward
// TechStackWeight.
var TechKeywordsByLanguage = map[string]map[string]float64{
	"go": {
		"goroutine": 1.0, "channel": 0.9, "interface": 0.7, "panic": 0.9,
		"defer": 0.7, "struct": 0.6, "package": 0.5, "mod": 0.5, "slice": 0.6,
	},
	"python": {
		"asyncio": 0.9, "pip": 0.7, "django": 0.8, "flask": 0.8,
		"traceback": 0.9, "decorator": 0.6, "venv": 0.5, "pytest": 0.7,
	},
	"javascript": {
		"npm": 0.7, "node": 0.7, "promise": 0.8, "async": 0.7, "webpack": 0.6,
		"react": 0.8, "dom": 0.6, "typescript": 0.5,
	},
	"typescript": {
		"tsconfig": 0.8, "generics": 0.7, "interface": 0.6, "npm": 0.6,
		"type": 0.5, "enum": 0.5,
	},
	"rust": {
		"cargo": 0.8, "borrow": 0.9, "lifetime": 0.9, "trait": 0.7,
		"unsafe": 0.7, "panic": 0.8, "crate": 0.6,
	},
	"java": {
		"maven": 0.7, "gradle": 0.7, "spring": 0.8, "jvm": 0.7, "nullpointer": 0.9,
		"annotation": 0.5, "thread": 0.6,
	},
}

// Norm strips everything but lowercase ASCII letters and digits,
// matching the original's `re.sub(r"[^a-z0-9]+", "", s.lower())`.
func Norm(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// skillAliases maps common free-text variants to a canonical skill/topic
// name, the Go translation of normalize_skill().
var skillAliases = map[string]string{
	"reactjs":    "react",
	"react.js":   "react",
	"nodejs":     "node",
	"node.js":    "node",
	"golang":     "go",
	"k8s":        "kubernetes",
	"postgres":   "postgresql",
	"js":         "javascript",
	"ts":         "typescript",
	"py":         "python",
}

// NormalizeSkill canonicalizes a free-text skill/topic/job-title token. It
// returns "" for blank input, matching normalize_skill()'s behavior of
// contributing nothing to the entity set.
func NormalizeSkill(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if canon, ok := skillAliases[lower]; ok {
		return canon
	}
	return lower
}

func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}

// IsKnownLanguage reports whether lang is in the Languages whitelist
// (case-insensitive).
func IsKnownLanguage(lang string) bool {
	return containsFold(Languages, lang)
}

// IsKnownStackArea reports whether area is in the StackAreas whitelist
// (case-insensitive).
func IsKnownStackArea(area string) bool {
	return containsFold(StackAreas, area)
}

// TechKeywordsFor returns the weighted keyword table for language, falling
// back to DefaultTechKeywords (each entry weighted 1.0) when language is
// empty or unrecognized.
func TechKeywordsFor(language string) map[string]float64 {
	if table, ok := TechKeywordsByLanguage[strings.ToLower(language)]; ok {
		return table
	}
	out := make(map[string]float64, len(DefaultTechKeywords))
	for _, kw := range DefaultTechKeywords {
		out[kw] = 1.0
	}
	return out
}
