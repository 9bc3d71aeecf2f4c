package checkr

import (
	"encoding/json"
	"fmt"
)

// WebhookEvent é o envelope JSON dos webhooks do Checkr. O objeto dentro de
// data varia com o tipo; aqui interessa o report dos eventos report.*.
type WebhookEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	Data      struct {
		Object Report `json:"object"`
	} `json:"data"`
}

// ParseWebhook decodifica o corpo JSON de um webhook.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("webhook checkr inválido: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("webhook checkr sem campo 'type'")
	}
	return &ev, nil
}
