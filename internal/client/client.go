// Package client is the caller side of the card API: contact submission,
// analytics beacons and the vCard download.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/cardsite/backend/internal/model"
)

// Analytics actions sent by the card UI.
const (
	ActionSaveContact = "save_contact"
	ActionShareCard   = "share_card"
)

// Contact sources.
const (
	SourceSelfieExchange   = "selfie_exchange"
	SourceConferenceBanner = "conference_banner"
)

const maxErrorBody = 4 << 10

// ResponseError is a non-200 answer from the API. Message is the server's
// error text when it sent one.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("card api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("card api: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API rooted at baseURL, e.g.
// "https://nickjanes.com". A nil httpClient gets a 60s timeout client.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// SubmitContact posts sub as is; all validation happens on the server. It
// returns true only when the server answered 200, which is the only signal
// that a record exists.
func (c *Client) SubmitContact(ctx context.Context, sub model.ContactSubmission) (bool, error) {
	resp, err := c.postJSON(ctx, "/api/contact", sub)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, readError(resp)
	}
	var ack struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return false, fmt.Errorf("decode contact response: %w", err)
	}
	return ack.Success, nil
}

// Track sends an analytics beacon. Failures are logged at DEBUG and never
// reported to the caller.
func (c *Client) Track(ctx context.Context, action string, metadata map[string]any) {
	body := map[string]any{"action": action}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	resp, err := c.postJSON(ctx, "/api/analytics", body)
	if err != nil {
		slog.DebugContext(ctx, "analytics beacon failed", "action", action, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.DebugContext(ctx, "analytics beacon rejected", "action", action, "error", readError(resp))
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
}

// FetchVCard downloads the profile card and the filename the server
// suggested.
func (c *Client) FetchVCard(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/vcard", nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", readError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	filename := "contact.vcf"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return data, filename, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func readError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &ResponseError{StatusCode: resp.StatusCode, Message: msg}
}
