// internal/infra/push/expo_client.go
package push

import (
	"context"
	"fmt"
	"time"

	domainpush "recur_notification_service/internal/domain/push"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// ExpoClient implements the push.Client interface against the Expo push API.
type ExpoClient struct {
	client *resty.Client
	url    string
	logger *logrus.Logger
}

func NewExpoClient(url string, timeout time.Duration, logger *logrus.Logger) *ExpoClient {
	return &ExpoClient{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		logger: logger,
	}
}

type expoPushMessage struct {
	To       string         `json:"to"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Sound    string         `json:"sound,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Priority string         `json:"priority,omitempty"`
}

type expoPushReceipt struct {
	Status  string `json:"status"` // "ok" or "error"
	Message string `json:"message"`
}

type expoPushResponse struct {
	Data   *expoPushReceipt `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send delivers one notification to a device token. A non-accepted result
// carries the provider's error text; the caller decides what to do with it
// (the orchestrator logs and never retries within a run).
func (c *ExpoClient) Send(ctx context.Context, deviceToken string, n domainpush.Notification) (domainpush.Result, error) {
	msg := expoPushMessage{
		To:       deviceToken,
		Title:    n.Title,
		Body:     n.Body,
		Sound:    n.Sound,
		Data:     n.Data,
		Priority: n.Priority,
	}

	var out expoPushResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(msg).
		SetResult(&out).
		SetError(&out).
		Post(c.url)
	if err != nil {
		return domainpush.Result{}, fmt.Errorf("expo push request failed: %w", err)
	}

	if !resp.IsSuccess() {
		return domainpush.Result{Accepted: false, ProviderError: fmt.Sprintf("expo push returned %s", resp.Status())}, nil
	}
	if len(out.Errors) > 0 {
		return domainpush.Result{Accepted: false, ProviderError: fmt.Sprintf("%s: %s", out.Errors[0].Code, out.Errors[0].Message)}, nil
	}
	if out.Data == nil || out.Data.Status != "ok" {
		providerErr := "no ticket in expo push response"
		if out.Data != nil {
			providerErr = out.Data.Message
		}
		return domainpush.Result{Accepted: false, ProviderError: providerErr}, nil
	}

	c.logger.WithField("status", out.Data.Status).Debug("Expo push accepted")
	return domainpush.Result{Accepted: true}, nil
}
