package dto

import "github.com/ahmetcoskunkizilkaya/rantbox/internal/pricing"

type CreditsResponse struct {
	Credits int `json:"credits"`
}

type SetCreditsRequest struct {
	Credits *int `json:"credits"`
}

type ModerationRequest struct {
	Hidden *bool `json:"hidden"`
}

// CreditPackageResponse adds display labels to a catalog entry.
type CreditPackageResponse struct {
	pricing.CreditPackage
	FormattedPrice string `json:"formattedPrice"`
	PerPost        string `json:"perPost"`
}

func NewCreditPackageList(pkgs []pricing.CreditPackage) []CreditPackageResponse {
	out := make([]CreditPackageResponse, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, CreditPackageResponse{
			CreditPackage:  p,
			FormattedPrice: pricing.FormatPrice(p.Price),
			PerPost:        pricing.PerPostLabel(p),
		})
	}
	return out
}
