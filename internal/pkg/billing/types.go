package billing

// CheckoutSession is the provider-agnostic view of a hosted checkout page.
// ProjectUUID carries the client reference back through webhooks and the
// post-payment redirect.
type CheckoutSession struct {
	ID          string
	URL         string
	ProjectUUID string
	Paid        bool
	Expired     bool
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
