// Package contact provides a client for the portfolio contact API.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultURL is the local development server.
const DefaultURL = "http://localhost:3001"

// Client is a contact API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new contact API client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("contact api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// doRequest performs an HTTP request and decodes a JSON response into out.
func (c *Client) doRequest(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// Message is a stored contact message.
type Message struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	Status     string `json:"status"`
	Read       bool   `json:"read"`
	Date       string `json:"date"`
	ArchivedAt string `json:"archivedAt,omitempty"`
}

// SubmitRequest is the contact form payload.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SubmitResponse is the response from the contact endpoint.
type SubmitResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// Submit sends a contact form submission.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/contact", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns the active inbox.
func (c *Client) List(ctx context.Context) ([]Message, error) {
	var msgs []Message
	if err := c.doRequest(ctx, http.MethodGet, "/api/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListArchived returns archived messages.
func (c *Client) ListArchived(ctx context.Context) ([]Message, error) {
	var msgs []Message
	if err := c.doRequest(ctx, http.MethodGet, "/api/messages/archived", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// StatusUpdate carries the optional fields of a PATCH.
type StatusUpdate struct {
	Status *string `json:"status,omitempty"`
	Read   *bool   `json:"read,omitempty"`
}

// ActionResponse acknowledges an admin action.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UpdateStatus changes status and/or read on a message.
func (c *Client) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*ActionResponse, error) {
	var resp ActionResponse
	if err := c.doRequest(ctx, http.MethodPatch, "/api/messages/"+url.PathEscape(id), update, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkRead sets the read flag on a message.
func (c *Client) MarkRead(ctx context.Context, id string) (*ActionResponse, error) {
	read := true
	return c.UpdateStatus(ctx, id, StatusUpdate{Read: &read})
}

// Archive moves a message to the archive.
func (c *Client) Archive(ctx context.Context, id string) (*ActionResponse, error) {
	var resp ActionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/messages/"+url.PathEscape(id)+"/archive", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Store     string                 `json:"store"`
	Checks    map[string]interface{} `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
