package features

import "testing"

func TestRegistryCoversAllModules(t *testing.T) {
	all := All()
	if len(all) != 10 {
		t.Fatalf("expected 10 features, got %d", len(all))
	}
	modes := map[Mode]int{}
	for _, f := range all {
		if f.ID == "" || f.Title == "" || f.ActionLabel == "" {
			t.Fatalf("incomplete feature: %+v", f)
		}
		modes[f.Mode]++
	}
	if modes[ModeGallery] != 3 || modes[ModeAnalytics] != 3 || modes[ModeTable] != 4 {
		t.Fatalf("unexpected mode distribution: %v", modes)
	}
}

func TestLookup(t *testing.T) {
	f, ok := Lookup("manual")
	if !ok {
		t.Fatal("manual must exist")
	}
	if f.Mode != ModeGallery || f.Title != "招商手册设计" || f.ModeName != "gallery" {
		t.Fatalf("unexpected feature: %+v", f)
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatal("unknown id must not resolve")
	}
}
