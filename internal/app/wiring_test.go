package app

import (
	"os"
	"path/filepath"
	"testing"

	"review_insights/internal/shared"
)

func TestNewEngine_FromConfig(t *testing.T) {
	cfg := shared.Defaults()
	cfg.MinMentions = 2
	eng, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if eng.MinMentions() != 2 {
		t.Fatalf("min mentions: %d", eng.MinMentions())
	}
	if got := len(eng.Taxonomy().Drivers); got != 5 {
		t.Fatalf("default taxonomy drivers: %d", got)
	}
}

func TestNewEngine_TaxonomyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.yaml")
	doc := "drivers:\n  - id: fees\n    keywords: [free, cheap]\npain_points:\n  - id: ads\n    keywords: [ads]\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := shared.Defaults()
	cfg.TaxonomyPath = path
	eng, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tax := eng.Taxonomy()
	if len(tax.Drivers) != 1 || tax.Drivers[0].ID != "fees" {
		t.Fatalf("unexpected taxonomy %+v", tax)
	}

	cfg.TaxonomyPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for missing taxonomy file")
	}
}

func TestNewConfiguredNormalizer(t *testing.T) {
	cfg := shared.Defaults()
	cfg.FieldAliases = map[string][]string{"text": {"body"}}
	rs, st := NewConfiguredNormalizer(cfg).Normalize([]map[string]any{{"bank": "CBE", "body": "works"}})
	if st.Kept != 1 || rs[0].Text != "works" {
		t.Fatalf("alias not applied: %+v %+v", rs, st)
	}
}
