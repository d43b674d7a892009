package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Event is a single conversation turn persisted by the remote memory
// service.
type Event struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	ActorID   string `json:"actorId"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Client talks to the remote session memory service. The service owns
// storage and retrieval; this client only marshals requests. Region is
// forwarded as a routing hint.
type Client struct {
	endpoint   string
	region     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a memory service client.
func NewClient(endpoint, region string, logger zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		region:   region,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Health checks whether the memory service is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}
	req.Header.Set("X-Region", c.region)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("memory service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("memory service health check returned %d", resp.StatusCode)
	}
	return nil
}

// ListEvents returns the most recent events for a session, oldest
// first. limit <= 0 uses the service default.
func (c *Client) ListEvents(ctx context.Context, memoryID, sessionID, actorID string, limit int) ([]Event, error) {
	u := c.eventsURL(memoryID, sessionID)
	q := url.Values{}
	q.Set("actorId", actorID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u += "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}
	req.Header.Set("X-Region", c.region)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list memory events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("memory service returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var payload struct {
		Events []Event `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode memory events: %w", err)
	}
	return payload.Events, nil
}

// AppendEvent persists one conversation turn.
func (c *Client) AppendEvent(ctx context.Context, memoryID, sessionID string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal memory event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.eventsURL(memoryID, sessionID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build append request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Region", c.region)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to append memory event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("memory service returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

func (c *Client) eventsURL(memoryID, sessionID string) string {
	return fmt.Sprintf("%s/memories/%s/sessions/%s/events",
		c.endpoint, url.PathEscape(memoryID), url.PathEscape(sessionID))
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return string(data)
}
