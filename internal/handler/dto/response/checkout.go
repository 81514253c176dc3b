package response

type CheckoutResponse struct {
	URL string `json:"url"`
}

type WebhookAckResponse struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}
