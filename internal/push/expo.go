package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"vigia/internal/config"
)

// ExpoClient sends batches to the Expo push endpoint. Batches are split into
// chunks of at most MaxBatchSize; a transport error on a chunk counts every
// message of that chunk as failed, with no partial attribution.
type ExpoClient struct {
	logger *slog.Logger
	cfg    config.ExpoConfig
	http   *http.Client
}

func NewExpoClient(logger *slog.Logger, cfg config.ExpoConfig) *ExpoClient {
	return &ExpoClient{
		logger: logger,
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type expoTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type expoResponse struct {
	Data []expoTicket `json:"data"`
}

func (c *ExpoClient) SendBatch(ctx context.Context, messages []ExpoMessage) ExpoBatchResult {
	res := ExpoBatchResult{Requested: len(messages)}
	if len(messages) == 0 {
		return res
	}
	if c.cfg.Disabled {
		res.KO = len(messages)
		return res
	}

	for start := 0; start < len(messages); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[start:end]

		tickets, err := c.sendChunk(ctx, chunk)
		if err != nil {
			c.logger.Warn("expo chunk failed",
				slog.Int("size", len(chunk)),
				slog.String("error", err.Error()),
			)
			res.KO += len(chunk)
			continue
		}

		for _, t := range tickets {
			if t.Status == "ok" {
				res.OK++
			} else {
				res.KO++
			}
		}
		// transport returned fewer tickets than messages: count the gap as failed
		if len(tickets) < len(chunk) {
			res.KO += len(chunk) - len(tickets)
		}
	}

	return res
}

func (c *ExpoClient) sendChunk(ctx context.Context, chunk []ExpoMessage) ([]expoTicket, error) {
	b, err := json.Marshal(chunk)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SendURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("expo returned %s", resp.Status)
	}

	var out expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode expo response: %w", err)
	}
	return out.Data, nil
}
