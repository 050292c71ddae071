package dto

type CheckoutRequest struct {
	PackageID string `json:"packageId"`
	UserID    string `json:"userId"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}
