package mailchimp

import (
	"fmt"
	"net/url"
)

// WebhookEvent é o payload form-encoded que o MailChimp envia nos webhooks.
// Os campos aninhados chegam como "data[email]", "data[merges][FNAME]" etc.
type WebhookEvent struct {
	Type      string // subscribe, unsubscribe, profile, cleaned, upemail, campaign
	FiredAt   string
	ListID    string
	Email     string
	FirstName string
	LastName  string
	NewEmail  string // preenchido em eventos upemail
	Reason    string // preenchido em unsubscribe/cleaned
}

// ParseWebhook decodifica o corpo form-encoded de um webhook.
func ParseWebhook(form url.Values) (*WebhookEvent, error) {
	eventType := form.Get("type")
	if eventType == "" {
		return nil, fmt.Errorf("webhook mailchimp sem campo 'type'")
	}

	ev := &WebhookEvent{
		Type:      eventType,
		FiredAt:   form.Get("fired_at"),
		ListID:    form.Get("data[list_id]"),
		Email:     form.Get("data[email]"),
		FirstName: form.Get("data[merges][FNAME]"),
		LastName:  form.Get("data[merges][LNAME]"),
		NewEmail:  form.Get("data[new_email]"),
		Reason:    form.Get("data[reason]"),
	}

	if ev.Email == "" && eventType != "campaign" {
		return nil, fmt.Errorf("webhook %s sem data[email]", eventType)
	}
	return ev, nil
}
