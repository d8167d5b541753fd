package achievements

import "testing"

func TestCatalogUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range catalog {
		if a.ID == "" {
			t.Errorf("achievement %q has empty id", a.Name)
		}
		if seen[a.ID] {
			t.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestCatalogRuleCoverage(t *testing.T) {
	for _, a := range catalog {
		req, ok := rules[a.ID]
		if !ok {
			t.Errorf("%s: no requirement registered", a.ID)
			continue
		}
		if len(req.Conditions) == 0 {
			t.Errorf("%s: requirement has no conditions", a.ID)
		}
	}
	for id := range rules {
		if _, ok := CatalogEntry(id); !ok {
			t.Errorf("rule %q has no catalog entry", id)
		}
	}
}

func TestSecretFlagsMatchCategory(t *testing.T) {
	for _, a := range catalog {
		if a.Secret != (a.Category == CategorySecret) {
			t.Errorf("%s: secret=%v but category=%s", a.ID, a.Secret, a.Category)
		}
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	first := Catalog()
	first[0].ID = "mutated"
	if Catalog()[0].ID == "mutated" {
		t.Fatal("Catalog exposed the internal slice")
	}
}
