package library

import (
	"testing"

	"interview-coach/internal/domain"
)

func TestDefaultLibrary(t *testing.T) {
	lib, err := Default()
	if err != nil {
		t.Fatalf("default library: %v", err)
	}
	again, _ := Default()
	if lib != again {
		t.Fatalf("expected process singleton")
	}

	qs := lib.Questions(domain.CategoryTechnical, "python.fundamental")
	if len(qs) != 2 || qs[0] != "Explain list comprehensions in Python." {
		t.Fatalf("unexpected python questions: %v", qs)
	}
	if got := lib.Questions(domain.CategoryConsciousness, "innovation"); len(got) != 2 {
		t.Fatalf("expected 2 innovation questions, got %v", got)
	}
	qs[0] = "mutated"
	if lib.Questions(domain.CategoryTechnical, "python.fundamental")[0] == "mutated" {
		t.Fatalf("library must return copies")
	}

	for _, label := range []string{"problem_solving", "learning", "leadership"} {
		ex, ok := lib.StarExample(label)
		if !ok || ex.Situation == "" || ex.Result == "" {
			t.Fatalf("missing star example %s", label)
		}
	}
	if lib.BaseMinutes("technical") != 180 {
		t.Fatalf("unexpected technical minutes %d", lib.BaseMinutes("technical"))
	}
	subs := lib.Subcategories(domain.CategorySystemDesign)
	if len(subs) != 3 || subs[0] != "performance" {
		t.Fatalf("unexpected system design subcategories %v", subs)
	}
}

func TestParseRejectsBadNodes(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"non string question", "questions:\n  technical:\n    x:\n      - 1\n"},
		{"negative minutes", "base_minutes:\n  technical: -5\n"},
		{"invalid yaml", "questions: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
