package channel

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Ufymau/newsdigest/pkg/httpclient"
)

// telegramChannel sends messages through the Telegram Bot API. The
// subscriber id is the chat id.
type telegramChannel struct {
	client httpclient.Client
	token  string
}

// NewTelegram builds a Channel backed by the Telegram Bot API.
func NewTelegram(client httpclient.Client, token string) (Channel, error) {
	if client == nil {
		return nil, fmt.Errorf("telegram channel needs an http client")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	return &telegramChannel{client: client, token: token}, nil
}

// Send posts one Markdown message to the subscriber's chat.
func (t *telegramChannel) Send(ctx context.Context, subscriberID int64, text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	payload := map[string]any{
		"chat_id":                  subscriberID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}

	resp, err := t.client.PostJSON(ctx, url, nil, payload)
	if err != nil {
		return fmt.Errorf("send to chat %d: %w", subscriberID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("send to chat %d: telegram status %d", subscriberID, resp.StatusCode())
	}
	return nil
}
