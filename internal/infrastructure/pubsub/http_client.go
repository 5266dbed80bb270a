package pubsub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseSize caps how much of an endpoint's response is kept for error
// reporting.
const maxResponseSize = 512

type webhookClient struct {
	client *http.Client
}

func newWebhookClient(requestTimeout time.Duration) *webhookClient {
	return &webhookClient{&http.Client{Timeout: requestTimeout}}
}

// notify POSTs the JSON payload to the endpoint, with the token as bearer
// if not empty. Any non-2xx status is an error.
func (c *webhookClient) notify(
	ctx context.Context, endpoint, payload, token string,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewBufferString(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf(
			"endpoint %s returned status %d: %s",
			endpoint, resp.StatusCode, bytes.TrimSpace(body),
		)
	}
	return nil
}
