// Package quotedesksdk is a Go client for the QuoteDesk HTTP API.
package quotedesksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal QuoteDesk HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration

	// Tokens is optional. When set, Login and Logout persist the bearer
	// token through it and New picks up a previously stored token.
	Tokens TokenStore
}

// New creates a client with sane defaults. If store is non-nil, a previously
// persisted token is loaded from it.
func New(baseURL string, store TokenStore) *Client {
	c := &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
		Tokens:  store,
	}
	if store != nil {
		if token, err := store.Token(); err == nil && token != "" {
			c.BearerToken = token
		}
	}
	return c
}

// Item represents one item within a submission.
type Item struct {
	ID               int64    `json:"id"`
	Position         int      `json:"position"`
	ItemName         string   `json:"itemName"`
	Description      string   `json:"description"`
	Condition        string   `json:"condition"`
	EstimatedValue   *float64 `json:"estimatedValue,omitempty"`
	AdminQuotedPrice *float64 `json:"adminQuotedPrice,omitempty"`
	Status           string   `json:"status"`
}

// Submission represents a seller submission.
type Submission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Items       []Item `json:"items"`
	SellerNotes string `json:"sellerNotes"`
	AdminNotes  string `json:"adminNotes"`
	Signature   string `json:"signature"`
	CreatedAt   string `json:"createdAt"`
}

// ItemInput is one item of a new submission.
type ItemInput struct {
	ItemName       string   `json:"itemName"`
	Description    string   `json:"description"`
	Condition      string   `json:"condition"`
	EstimatedValue *float64 `json:"estimatedValue,omitempty"`
}

// SubmissionInput is the payload for submitting a seller form.
type SubmissionInput struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	Items       []ItemInput `json:"items"`
	SellerNotes string      `json:"sellerNotes"`
	Signature   string      `json:"signature"`
}

// Admin represents an admin account.
type Admin struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// APIError wraps non-2xx responses. For validation failures the server's
// per-field messages are available in Fields.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// Submit sends a seller form. No authentication required.
func (c *Client) Submit(ctx context.Context, input SubmissionInput) (Submission, error) {
	var resp Submission
	err := c.do(ctx, http.MethodPost, "api/sellers/submit", input, &resp)
	return resp, err
}

// GetSellerSubmission fetches a submission by its identifier. No
// authentication required, the identifier itself is the capability.
func (c *Client) GetSellerSubmission(ctx context.Context, id string) (Submission, error) {
	var resp Submission
	err := c.do(ctx, http.MethodGet, "api/sellers/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// Login authenticates an admin and stores the bearer token on the client
// (and in the token store, if one is configured).
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "api/admin/login", body, &resp); err != nil {
		return err
	}
	c.BearerToken = resp.Token
	if c.Tokens != nil {
		return c.Tokens.SetToken(resp.Token)
	}
	return nil
}

// Register creates a new admin account. Requires authentication.
func (c *Client) Register(ctx context.Context, username, password string) (Admin, error) {
	body := map[string]string{"username": username, "password": password}
	var resp Admin
	err := c.do(ctx, http.MethodPost, "api/admin/register", body, &resp)
	return resp, err
}

// Logout revokes the current token and clears it from the client and the
// token store.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "api/admin/logout", nil, nil); err != nil {
		return err
	}
	c.BearerToken = ""
	if c.Tokens != nil {
		return c.Tokens.Clear()
	}
	return nil
}

// ListSubmissions returns all submissions, newest first. Requires
// authentication.
func (c *Client) ListSubmissions(ctx context.Context) ([]Submission, error) {
	var resp []Submission
	err := c.do(ctx, http.MethodGet, "api/admin/submissions", nil, &resp)
	return resp, err
}

// GetSubmission fetches a single submission. Requires authentication.
func (c *Client) GetSubmission(ctx context.Context, id string) (Submission, error) {
	var resp Submission
	err := c.do(ctx, http.MethodGet, "api/admin/submissions/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// UpdateItemPrice sets the quoted price of the item at the given position.
// The server forces the item's status to Quoted. Returns the updated item.
func (c *Client) UpdateItemPrice(ctx context.Context, id string, position int, price float64) (Item, error) {
	body := map[string]any{"adminQuotedPrice": price}
	var resp Item
	endpoint := fmt.Sprintf("api/admin/submissions/%s/items/%d", url.PathEscape(id), position)
	err := c.do(ctx, http.MethodPut, endpoint, body, &resp)
	return resp, err
}

// UpdateItemStatus sets the status of the item at the given position without
// touching its quoted price. Returns the updated item.
func (c *Client) UpdateItemStatus(ctx context.Context, id string, position int, status string) (Item, error) {
	body := map[string]any{"status": status}
	var resp Item
	endpoint := fmt.Sprintf("api/admin/submissions/%s/items/%d", url.PathEscape(id), position)
	err := c.do(ctx, http.MethodPut, endpoint, body, &resp)
	return resp, err
}

// UpdateNotes replaces the admin notes of a submission. Returns the updated
// submission.
func (c *Client) UpdateNotes(ctx context.Context, id, notes string) (Submission, error) {
	body := map[string]string{"adminNotes": notes}
	var resp Submission
	endpoint := "api/admin/submissions/" + url.PathEscape(id) + "/notes"
	err := c.do(ctx, http.MethodPut, endpoint, body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return parseAPIError(resp.StatusCode, b)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: string(body)}
	var wire struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		apiErr.Message = wire.Error
		apiErr.Fields = wire.Fields
	}
	return apiErr
}
