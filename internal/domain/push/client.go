package push

import "context"

// Notification is the payload handed to the delivery provider.
type Notification struct {
	Title    string
	Body     string
	Sound    string
	Priority string // provider priority: "high" or "default"
	Data     map[string]any
}

// Result is the provider's verdict on a single send. A non-accepted result is
// a delivery failure to be logged, never retried within the same run.
type Result struct {
	Accepted      bool
	ProviderError string
}

// Client defines an interface for delivering a push notification to a device
// token. This decouples the orchestration logic from the concrete provider.
type Client interface {
	Send(ctx context.Context, deviceToken string, n Notification) (Result, error)
}
