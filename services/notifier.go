package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"bug-bounty-system/utils"
)

// Notifier is a thin client for the notification service. Every call is
// time-bounded by the caller's context plus the shared HTTP client timeout;
// callers treat failures as log-and-continue.
type Notifier struct {
	BaseURL      string
	ServiceToken string
	HTTPClient   *http.Client
}

// NewNotifierFromEnv returns nil when NOTIFY_SERVICE_URL is unset, which
// disables notifications entirely (useful in dev).
func NewNotifierFromEnv() *Notifier {
	baseURL := os.Getenv("NOTIFY_SERVICE_URL")
	if baseURL == "" {
		log.Println("⚠️  NOTIFY_SERVICE_URL not set — submitter notifications disabled")
		return nil
	}
	return &Notifier{
		BaseURL:      baseURL,
		ServiceToken: os.Getenv("BOUNTY_SERVICE_TOKEN"),
		HTTPClient:   utils.HTTPClient,
	}
}

type notifyPayload struct {
	Kind          string  `json:"kind"`
	Recipient     string  `json:"recipient"`
	RecipientName string  `json:"recipient_name"`
	BugTitle      string  `json:"bug_title"`
	BountyAmount  float64 `json:"bounty_amount,omitempty"`
}

// NotifyApproval tells the submitter their solution was accepted and the
// bounty amount it earned.
func (n *Notifier) NotifyApproval(ctx context.Context, recipient, bugTitle string, bountyAmount float64, recipientName string) error {
	return n.send(ctx, notifyPayload{
		Kind:          "submission_approved",
		Recipient:     recipient,
		RecipientName: recipientName,
		BugTitle:      bugTitle,
		BountyAmount:  bountyAmount,
	})
}

// NotifyRejection tells the submitter their solution was declined.
func (n *Notifier) NotifyRejection(ctx context.Context, recipient, bugTitle, recipientName string) error {
	return n.send(ctx, notifyPayload{
		Kind:          "submission_rejected",
		Recipient:     recipient,
		RecipientName: recipientName,
		BugTitle:      bugTitle,
	})
}

func (n *Notifier) send(ctx context.Context, payload notifyPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	url := n.BaseURL + "/api/v1/notify"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", n.ServiceToken)

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notification service returned %d: %s", resp.StatusCode, string(msg))
	}

	log.Printf("[NOTIFIER] ✅ Sent %s notification to %s", payload.Kind, payload.Recipient)
	return nil
}
