package pricing

import "fmt"

const Currency = "usd"

// CreditPackage is a fixed purchasable bundle. Price is in cents.
type CreditPackage struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Price   int64  `json:"price"`
	Popular bool   `json:"popular,omitempty"`
}

var Packages = []CreditPackage{
	{ID: "starter", Name: "Starter Pack", Credits: 5, Price: 400},
	{ID: "popular", Name: "Popular Pack", Credits: 12, Price: 800, Popular: true},
	{ID: "premium", Name: "Premium Pack", Credits: 25, Price: 1500},
	{ID: "ultimate", Name: "Ultimate Pack", Credits: 50, Price: 2500},
}

// Find returns the package with id from the static catalog.
func Find(id string) (CreditPackage, bool) {
	for _, p := range Packages {
		if p.ID == id {
			return p, true
		}
	}
	return CreditPackage{}, false
}

// FormatPrice renders cents as dollars, e.g. 800 -> "$8.00".
func FormatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// PerPostLabel renders the per-credit value, e.g. "$0.67 per post".
func PerPostLabel(p CreditPackage) string {
	if p.Credits <= 0 {
		return ""
	}
	perCredit := float64(p.Price) / float64(p.Credits) / 100
	return fmt.Sprintf("$%.2f per post", perCredit)
}

// LineItemName is the product name shown on the gateway checkout page.
func LineItemName(p CreditPackage) string {
	return fmt.Sprintf("%s - %d Credits", p.Name, p.Credits)
}

func LineItemDescription(p CreditPackage) string {
	return fmt.Sprintf("%d credits for RantBox posts", p.Credits)
}
