// Package siyuan adapts the SiYuan kernel HTTP API to the driven
// document store and asset upload ports. Every kernel endpoint speaks
// the same envelope: {code, msg, data}, with code zero on success.
package siyuan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL = "http://127.0.0.1:6806"
	DefaultTimeout = 30 * time.Second
)

// Config holds the kernel connection settings.
type Config struct {
	// BaseURL is the kernel address (default: http://127.0.0.1:6806).
	BaseURL string

	// Token is the kernel API token. Empty when auth is disabled.
	Token string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Client is a thin kernel API client shared by the adapters in this
// package.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// envelope is the kernel's uniform response wrapper.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// NewClient creates a kernel API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
	}
}

// post sends a JSON request to a kernel endpoint and unmarshals the
// envelope's data field into out when non-nil.
func (c *Client) post(ctx context.Context, apiPath string, payload, out any) error {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	return c.do(req, apiPath, out)
}

// postMultipart sends a multipart form to a kernel endpoint, used by
// the file and asset upload calls.
func (c *Client) postMultipart(ctx context.Context, apiPath string, fields map[string]string, fileField, filename string, data []byte, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	part, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write file data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPath, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	return c.do(req, apiPath, out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
}

func (c *Client) do(req *http.Request, apiPath string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", apiPath, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%s: decode response: %w", apiPath, err)
	}
	if env.Code != 0 {
		return fmt.Errorf("%s: %s (code %d)", apiPath, env.Msg, env.Code)
	}
	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", apiPath, err)
		}
	}
	return nil
}

// timestampLikeRe matches identifiers that are a bare timestamp. The
// kernel occasionally returns one of these from path lookups instead
// of a real document ID.
var timestampLikeRe = regexp.MustCompile(`^\d{13,14}$`)

// ValidDocID reports whether an identifier can be trusted as a document
// ID. A timestamp-shaped value is the known kernel quirk and is treated
// as not found by callers rather than risking a write to a bogus target.
func ValidDocID(id string) bool {
	if id == "" {
		return false
	}
	return !timestampLikeRe.MatchString(id)
}
