package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/yanun0323/errors"
)

// Notifier is the delivery side channel for operator-facing alerts. Pulse
// logic never calls it directly; the scheduler forwards errors through it.
type Notifier interface {
	Alert(title, message string) error
}

// Nop swallows every alert. The default when no webhook is configured.
type Nop struct{}

func (Nop) Alert(title, message string) error { return nil }

// Discord delivers alerts to a Discord webhook as embeds.
type Discord struct {
	webhookURL string
	client     *http.Client
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *Discord) Alert(title, message string) error {
	payload := map[string]any{
		"embeds": []map[string]any{
			{
				"title":       title,
				"description": message,
				"color":       0xE74C3C,
				"timestamp":   time.Now().UTC().Format(time.RFC3339),
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal alert")
	}

	resp, err := d.client.Post(d.webhookURL, "application/json", bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "post alert")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errors.Errorf("discord returned status %d", resp.StatusCode)
	}
	return nil
}
