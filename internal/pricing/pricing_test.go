package pricing

import "testing"

func TestFind(t *testing.T) {
	p, ok := Find("popular")
	if !ok || p.Credits != 12 || p.Price != 800 || !p.Popular {
		t.Fatalf("Find(popular) = %+v, %v", p, ok)
	}
	if _, ok := Find("doesnotexist"); ok {
		t.Error("Find(doesnotexist) succeeded")
	}
}

func TestCatalogHasFourTiers(t *testing.T) {
	if len(Packages) != 4 {
		t.Fatalf("got %d packages", len(Packages))
	}
	popular := 0
	for _, p := range Packages {
		if p.Popular {
			popular++
		}
	}
	if popular != 1 {
		t.Errorf("popular packages = %d, want 1", popular)
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		id       string
		price    string
		perPost  string
		lineItem string
	}{
		{"starter", "$4.00", "$0.80 per post", "Starter Pack - 5 Credits"},
		{"popular", "$8.00", "$0.67 per post", "Popular Pack - 12 Credits"},
		{"premium", "$15.00", "$0.60 per post", "Premium Pack - 25 Credits"},
		{"ultimate", "$25.00", "$0.50 per post", "Ultimate Pack - 50 Credits"},
	}
	for _, tt := range tests {
		p, _ := Find(tt.id)
		if got := FormatPrice(p.Price); got != tt.price {
			t.Errorf("%s FormatPrice = %q, want %q", tt.id, got, tt.price)
		}
		if got := PerPostLabel(p); got != tt.perPost {
			t.Errorf("%s PerPostLabel = %q, want %q", tt.id, got, tt.perPost)
		}
		if got := LineItemName(p); got != tt.lineItem {
			t.Errorf("%s LineItemName = %q, want %q", tt.id, got, tt.lineItem)
		}
	}
}
