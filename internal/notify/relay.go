// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Relay forwards events to an HTTP form relay as JSON.
type Relay struct {
	url    string
	client *http.Client
}

// NewRelay creates a Relay posting to url.
func NewRelay(url string) *Relay {
	return &Relay{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Publish posts ev to the relay. Any non-2xx answer is an error.
func (r *Relay) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay %s: %w", ev.Type, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay %s: unexpected status %d", ev.Type, resp.StatusCode)
	}
	return nil
}
