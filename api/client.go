package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wildbutton/button"
	"wildbutton/utils"
)

// Client is the outbound Slack messenger. It owns token decryption so the
// rest of the system only ever sees encrypted tokens.
type Client struct {
	httpClient *http.Client
}

var _ button.Messenger = (*Client)(nil)

func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) token(inst *button.Installation) string {
	token, err := utils.Decrypt(inst.AccessToken)
	if err != nil {
		return inst.AccessToken
	}
	return token
}

// PostButtonMessage posts the interactive button to the installation's
// configured channel and returns the Slack message ts as the message id.
func (c *Client) PostButtonMessage(ctx context.Context, inst *button.Installation) (string, error) {
	payload := map[string]any{
		"channel": inst.ChannelID,
		"text":    buttonMessageText,
		"blocks": []Block{
			{
				Type: "section",
				Text: &TextObject{Type: "mrkdwn", Text: buttonMessageText},
			},
			{
				Type:    "actions",
				BlockID: "wildbutton",
				Elements: []ButtonAction{
					{
						Type:     "button",
						ActionID: wildButtonActionID,
						Text:     &TextObject{Type: "plain_text", Text: buttonLabel, Emoji: true},
						Value:    time.Now().UTC().Format(time.RFC3339),
					},
				},
			},
		},
	}

	var resp MessageResponse
	if err := c.call(ctx, slackPostMessageURL, c.token(inst), payload, &resp); err != nil {
		return "", &button.DeliveryError{Op: "chat.postMessage", Err: err}
	}
	if !resp.Ok {
		return "", &button.DeliveryError{Op: "chat.postMessage", Err: fmt.Errorf("slack error: %s", resp.Error)}
	}
	return resp.Ts, nil
}

// UpdateMessage replaces a posted message, dropping its blocks, used to swap
// the button for the winner announcement.
func (c *Client) UpdateMessage(ctx context.Context, inst *button.Installation, messageID, text string) error {
	payload := map[string]any{
		"channel": inst.ChannelID,
		"ts":      messageID,
		"text":    text,
		"blocks":  []Block{},
	}

	var resp MessageResponse
	if err := c.call(ctx, slackUpdateMessageURL, c.token(inst), payload, &resp); err != nil {
		return &button.DeliveryError{Op: "chat.update", Err: err}
	}
	if !resp.Ok {
		return &button.DeliveryError{Op: "chat.update", Err: fmt.Errorf("slack error: %s", resp.Error)}
	}
	return nil
}

// Respond delivers an ephemeral reply through a Slack response URL.
func (c *Client) Respond(ctx context.Context, responseURL, text string) error {
	payload := map[string]any{
		"response_type":    "ephemeral",
		"replace_original": false,
		"text":             text,
	}

	if err := c.call(ctx, responseURL, "", payload, nil); err != nil {
		return &button.DeliveryError{Op: "response_url", Err: err}
	}
	return nil
}

func (c *Client) call(ctx context.Context, url, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack responded with status %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
