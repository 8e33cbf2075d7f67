// Package line adapts the LINE Messaging API: webhook parsing in, replies out.
package line

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/kailas-cloud/atango/internal/domain/message"
)

// ClientConfig configures the reply client.
type ClientConfig struct {
	ChannelToken string
	// Endpoint overrides the API base URL (tests).
	Endpoint   string
	HTTPClient *http.Client
}

// Client sends replies through the Messaging API.
type Client struct {
	token    string
	endpoint string
	hc       *http.Client
}

// NewClient creates a reply client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.ChannelToken == "" {
		return nil, fmt.Errorf("channel token is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{token: cfg.ChannelToken, endpoint: cfg.Endpoint, hc: hc}, nil
}

// Reply answers one reply token with one message.
func (c *Client) Reply(ctx context.Context, replyToken string, m message.Outbound) error {
	msg, err := toSDKMessage(m)
	if err != nil {
		return err
	}

	api, err := c.api()
	if err != nil {
		return err
	}

	// WithContext mutates the API value, so each call owns its own.
	_, err = api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{msg},
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

func (c *Client) api() (*messaging_api.MessagingApiAPI, error) {
	opts := []messaging_api.MessagingApiAPIOption{messaging_api.WithHTTPClient(c.hc)}
	if c.endpoint != "" {
		opts = append(opts, messaging_api.WithEndpoint(c.endpoint))
	}
	api, err := messaging_api.NewMessagingApiAPI(c.token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging api: %w", err)
	}
	return api, nil
}

func toSDKMessage(m message.Outbound) (messaging_api.MessageInterface, error) {
	switch m.Kind() {
	case message.KindText:
		return &messaging_api.TextMessage{Text: m.Body()}, nil
	case message.KindImage:
		return &messaging_api.ImageMessage{
			OriginalContentUrl: m.URL(),
			PreviewImageUrl:    m.PreviewURL(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported message kind %q", m.Kind())
	}
}
