// Package notion provides a small Notion API client covering the calls the
// card site needs: creating database pages and single-part file uploads.
// Uses raw HTTP calls against the published request shapes.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// APIVersion is sent as the Notion-Version header on every request.
const APIVersion = "2022-06-28"

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.notion.com/v1"

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// ErrNotConfigured is returned when no integration token is set.
var ErrNotConfigured = errors.New("notion: not configured")

// APIError is a non-2xx response from the API.
type APIError struct {
	Op         string
	StatusCode int
	Status     string
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("notion %s: %s (%s): %s", e.Op, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion %s: %s - %s", e.Op, e.Status, e.Body)
}

// Page is the subset of a created page the caller needs.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// FileUpload is a declared upload session.
type FileUpload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client is the Notion API surface used by the card site.
type Client interface {
	// CreatePage creates a row in the given database.
	CreatePage(ctx context.Context, databaseID string, props Properties) (Page, error)
	// CreateFileUpload declares a single-part upload of size bytes.
	CreateFileUpload(ctx context.Context, filename string, size int64) (FileUpload, error)
	// SendFileUpload transfers the file contents for a declared upload.
	SendFileUpload(ctx context.Context, uploadID, filename, contentType string, data io.Reader) error
}

// RealClient talks to the Notion REST API over HTTP.
type RealClient struct {
	baseURL    string
	configured bool
	httpClient *http.Client
}

// NewClient returns a RealClient authenticating with token. An empty token
// yields a client whose calls all fail with ErrNotConfigured.
func NewClient(token, baseURL string) *RealClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = 30 * time.Second
	return &RealClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		configured: token != "",
		httpClient: hc,
	}
}

// Configured reports whether a token was supplied.
func (c *RealClient) Configured() bool { return c.configured }

var _ Client = (*RealClient)(nil)

// CreatePage calls POST /pages with a database parent.
func (c *RealClient) CreatePage(ctx context.Context, databaseID string, props Properties) (Page, error) {
	if !c.configured {
		return Page{}, ErrNotConfigured
	}
	body := map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": props,
	}
	var page Page
	if err := c.postJSON(ctx, "create page", "/pages", body, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// CreateFileUpload calls POST /file_uploads.
func (c *RealClient) CreateFileUpload(ctx context.Context, filename string, size int64) (FileUpload, error) {
	if !c.configured {
		return FileUpload{}, ErrNotConfigured
	}
	body := map[string]any{
		"filename":  filename,
		"file_size": size,
	}
	var upload FileUpload
	if err := c.postJSON(ctx, "create file upload", "/file_uploads", body, &upload); err != nil {
		return FileUpload{}, err
	}
	if upload.ID == "" {
		return FileUpload{}, errors.New("notion create file upload: empty id in response")
	}
	return upload, nil
}

// SendFileUpload calls POST /file_uploads/{id}/send with a multipart body
// holding a single "file" part.
func (c *RealClient) SendFileUpload(ctx context.Context, uploadID, filename, contentType string, data io.Reader) error {
	if !c.configured {
		return ErrNotConfigured
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/file_uploads/"+uploadID+"/send", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Notion-Version", APIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError("send file upload", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *RealClient) postJSON(ctx context.Context, op, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", APIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("notion %s: decode response: %w", op, err)
	}
	return nil
}

func readAPIError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(raw),
	}
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}
	return apiErr
}
