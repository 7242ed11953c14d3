package taxonomy

import "testing"

func TestNorm(t *testing.T) {
	cases := map[string]string{
		"React.js!":   "reactjs",
		"  Go  ":       "go",
		"C++":          "c",
		"already-norm": "alreadynorm",
	}
	for in, want := range cases {
		if got := Norm(in); got != want {
			t.Errorf("Norm(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeSkill(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"  ":       "",
		"ReactJS":  "react",
		"Node.js":  "node",
		"golang":   "go",
		"Unlisted": "unlisted",
	}
	for in, want := range cases {
		if got := NormalizeSkill(in); got != want {
			t.Errorf("NormalizeSkill(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsKnownLanguage(t *testing.T) {
	if !IsKnownLanguage("Go") {
		t.Error("expected Go to be a known language")
	}
	if IsKnownLanguage("cobol-9000") {
		t.Error("expected unknown language to report false")
	}
}

func TestTechKeywordsForFallsBackToDefault(t *testing.T) {
	table := TechKeywordsFor("cobol-9000")
	if len(table) != len(DefaultTechKeywords) {
		t.Fatalf("expected fallback table to have %d entries, got %d", len(DefaultTechKeywords), len(table))
	}
	for _, kw := range DefaultTechKeywords {
		if table[kw] != 1.0 {
			t.Errorf("expected default weight 1.0 for %q, got %v", kw, table[kw])
		}
	}
}

func TestTechKeywordsForKnownLanguage(t *testing.T) {
	table := TechKeywordsFor("go")
	if table["goroutine"] != 1.0 {
		t.Errorf("expected goroutine weight 1.0, got %v", table["goroutine"])
	}
}
