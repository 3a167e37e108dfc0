package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"vigia/internal/config"
)

// FCMClient talks to the FCM legacy HTTP endpoint plus the instance-id API
// for topic membership. One POST per call, no retries: the caller decides
// what a failure means.
type FCMClient struct {
	logger *slog.Logger
	cfg    config.FCMConfig
	http   *http.Client
}

func NewFCMClient(logger *slog.Logger, cfg config.FCMConfig) *FCMClient {
	return &FCMClient{
		logger: logger,
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmNotification struct {
	Title            string `json:"title,omitempty"`
	Body             string `json:"body,omitempty"`
	Image            string `json:"image,omitempty"`
	Color            string `json:"color,omitempty"`
	AndroidChannelID string `json:"android_channel_id,omitempty"`
}

type fcmRequest struct {
	To              string            `json:"to,omitempty"`
	RegistrationIDs []string          `json:"registration_ids,omitempty"`
	Priority        string            `json:"priority"`
	TimeToLive      int               `json:"time_to_live"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmResponse struct {
	Success   int   `json:"success"`
	Failure   int   `json:"failure"`
	MessageID int64 `json:"message_id"` // topic sends
	Results   []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (c *FCMClient) SendToToken(ctx context.Context, token string, p Payload, ttlSeconds int) SendResult {
	if c.cfg.Disabled {
		return SendResult{OK: false, Err: ErrTransportDisabled}
	}

	req := fcmRequest{
		To:           token,
		Priority:     "high",
		TimeToLive:   ttlSeconds,
		Notification: toFCMNotification(p),
		Data:         p.Data,
	}

	resp, err := c.post(ctx, c.cfg.SendURL, req)
	if err != nil {
		return SendResult{OK: false, Err: err}
	}
	if resp.Success < 1 {
		reason := "unknown"
		if len(resp.Results) > 0 && resp.Results[0].Error != "" {
			reason = resp.Results[0].Error
		}
		return SendResult{OK: false, Err: fmt.Errorf("fcm send rejected: %s", reason)}
	}

	var msgID string
	if len(resp.Results) > 0 {
		msgID = resp.Results[0].MessageID
	}
	return SendResult{OK: true, MessageID: msgID}
}

func (c *FCMClient) SendMulticast(ctx context.Context, tokens []string, p Payload, ttlSeconds int) (MulticastResult, error) {
	if c.cfg.Disabled {
		return MulticastResult{FailureCount: len(tokens)}, ErrTransportDisabled
	}
	if len(tokens) > MaxBatchSize {
		return MulticastResult{}, fmt.Errorf("multicast limited to %d tokens, got %d", MaxBatchSize, len(tokens))
	}

	req := fcmRequest{
		RegistrationIDs: tokens,
		Priority:        "high",
		TimeToLive:      ttlSeconds,
		Notification:    toFCMNotification(p),
		Data:            p.Data,
	}

	resp, err := c.post(ctx, c.cfg.SendURL, req)
	if err != nil {
		return MulticastResult{FailureCount: len(tokens)}, err
	}
	return MulticastResult{SuccessCount: resp.Success, FailureCount: resp.Failure}, nil
}

func (c *FCMClient) SendToTopic(ctx context.Context, topic string, p Payload, ttlSeconds int) SendResult {
	if c.cfg.Disabled {
		return SendResult{OK: false, Err: ErrTransportDisabled}
	}

	req := fcmRequest{
		To:           "/topics/" + topic,
		Priority:     "high",
		TimeToLive:   ttlSeconds,
		Notification: toFCMNotification(p),
		Data:         p.Data,
	}

	resp, err := c.post(ctx, c.cfg.SendURL, req)
	if err != nil {
		return SendResult{OK: false, Err: err}
	}
	if resp.MessageID == 0 {
		return SendResult{OK: false, Err: fmt.Errorf("fcm topic send rejected")}
	}
	return SendResult{OK: true, MessageID: fmt.Sprintf("%d", resp.MessageID)}
}

func (c *FCMClient) SubscribeToTopic(ctx context.Context, token, topic string) error {
	if c.cfg.Disabled {
		return ErrTransportDisabled
	}

	u := fmt.Sprintf("%s/%s/rel/topics/%s",
		c.cfg.SubscribeURL, url.PathEscape(token), url.PathEscape(topic))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "key="+c.cfg.ServerKey)
	httpReq.Header.Set("Content-Length", "0")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("topic subscribe failed: %s", resp.Status)
	}
	return nil
}

func (c *FCMClient) UnsubscribeFromTopic(ctx context.Context, token, topic string) error {
	if c.cfg.Disabled {
		return ErrTransportDisabled
	}

	body := map[string]any{
		"to":                  "/topics/" + topic,
		"registration_tokens": []string{token},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	u := c.cfg.SubscribeURL + ":batchRemove"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "key="+c.cfg.ServerKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("topic unsubscribe failed: %s", resp.Status)
	}
	return nil
}

func (c *FCMClient) post(ctx context.Context, u string, req fcmRequest) (*fcmResponse, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "key="+c.cfg.ServerKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain for connection reuse
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fcm returned %s", resp.Status)
	}

	var out fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode fcm response: %w", err)
	}
	return &out, nil
}

func toFCMNotification(p Payload) fcmNotification {
	return fcmNotification{
		Title:            p.Title,
		Body:             p.Body,
		Image:            p.Image,
		Color:            p.Color,
		AndroidChannelID: p.ChannelID,
	}
}
