package client

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

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
)

// Client is a Go SDK for the challenge backend API. Identity travels in the
// gateway headers the server trusts, so the SDK is meant for services sitting
// behind the same gateway boundary.
type Client struct {
	baseURL    string
	userID     string
	admin      bool
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// AsAdmin marks every request from this client as coming from an admin
func AsAdmin() Option {
	return func(c *Client) {
		c.admin = true
	}
}

// NewClient creates a new challenge backend client acting as the given user
func NewClient(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// apiEnvelope is the standard response wrapper of every endpoint
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParticipationStatus reports whether the acting user joined a challenge
type ParticipationStatus struct {
	Joined bool `json:"joined"`
}

// CreateChallenge creates a new challenge (admin only)
func (c *Client) CreateChallenge(ctx context.Context, req models.CreateChallengeRequest) (*models.Challenge, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var challenge models.Challenge
	if err := c.call(ctx, http.MethodPost, "/api/v1/challenges", bytes.NewReader(body), &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// GetChallenge retrieves a challenge by ID
func (c *Client) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := c.call(ctx, http.MethodGet, "/api/v1/challenges/"+id, nil, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ListChallenges retrieves one page of challenges, optionally filtered by
// status
func (c *Client) ListChallenges(ctx context.Context, page, limit int, status models.ChallengeStatus) (*models.PaginatedChallenges, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if status != "" {
		q.Set("status", string(status))
	}

	path := "/api/v1/challenges"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result models.PaginatedChallenges
	if err := c.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateChallenge applies a partial update to a challenge (admin only)
func (c *Client) UpdateChallenge(ctx context.Context, id string, req models.UpdateChallengeRequest) (*models.Challenge, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var challenge models.Challenge
	if err := c.call(ctx, http.MethodPatch, "/api/v1/challenges/"+id, bytes.NewReader(body), &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// DeleteChallenge removes a challenge (admin only)
func (c *Client) DeleteChallenge(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/challenges/"+id, nil, nil)
}

// JoinChallenge registers the acting user as a participant
func (c *Client) JoinChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := c.call(ctx, http.MethodPost, "/api/v1/challenges/"+id+"/join", nil, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// CheckParticipation reports whether the acting user already joined
func (c *Client) CheckParticipation(ctx context.Context, id string) (bool, error) {
	var status ParticipationStatus
	if err := c.call(ctx, http.MethodGet, "/api/v1/challenges/"+id+"/participation", nil, &status); err != nil {
		return false, err
	}
	return status.Joined, nil
}

// ListParticipants retrieves one page of a challenge's participants
func (c *Client) ListParticipants(ctx context.Context, id string, page, limit int) (*models.ParticipantPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/v1/challenges/" + id + "/participants"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result models.ParticipantPage
	if err := c.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AdminStats retrieves period-over-period challenge statistics (admin only).
// Supported filters are this_week and last_30_days; empty means this_week.
func (c *Client) AdminStats(ctx context.Context, filter string) (*models.StatsComparison, error) {
	path := "/api/v1/admin/stats"
	if filter != "" {
		path += "?filter=" + url.QueryEscape(filter)
	}

	var result models.StatsComparison
	if err := c.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TalentStats retrieves challenge availability counts for the acting user
func (c *Client) TalentStats(ctx context.Context) (*models.TalentStats, error) {
	var result models.TalentStats
	if err := c.call(ctx, http.MethodGet, "/api/v1/talent/stats", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}

// call performs a request and decodes the envelope data into out. A nil out
// discards the payload after checking the envelope.
func (c *Client) call(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !envelope.Success {
		if envelope.Error != nil {
			return fmt.Errorf("API error: %s - %s", envelope.Error.Code, envelope.Error.Message)
		}
		return fmt.Errorf("API error: request failed")
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}
	if c.admin {
		req.Header.Set("X-Admin", "true")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
