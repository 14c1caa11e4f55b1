// Package remote is the backend for a hosted record service. Each entity maps
// to a named table whose fields carry a _c suffix; reads answer
// {success, data} and writes answer {success, results:[...]} per record.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/satheeshds/invoicer/store"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Config configures the record service client.
type Config struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	// RequestsPerSecond caps outbound calls. Zero means unlimited.
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// Client performs record service calls.
type Client struct {
	base    string
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid remote base URL: %w", err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("remote project ID is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/") + "/records/",
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

// FetchRecords queries table and returns the data array.
func (c *Client) FetchRecords(ctx context.Context, table string, params FetchParams) ([]gjson.Result, error) {
	res, err := c.call(ctx, "fetch "+table, http.MethodPost, table+"/fetch", params)
	if err != nil {
		return nil, err
	}
	return res.Get("data").Array(), nil
}

// GetRecordByID returns the record with id. ok is false when the service has
// no such record.
func (c *Client) GetRecordByID(ctx context.Context, table string, id int, fields []Field) (gjson.Result, bool, error) {
	body := map[string]any{"id": id, "fields": fields}
	res, err := c.call(ctx, "get "+table, http.MethodPost, table+"/get", body)
	if err != nil {
		return gjson.Result{}, false, err
	}
	data := res.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return gjson.Result{}, false, nil
	}
	return data, true, nil
}

// CreateRecord creates one record and returns the stored representation.
func (c *Client) CreateRecord(ctx context.Context, table string, record map[string]any) (gjson.Result, error) {
	return c.write(ctx, "create "+table, http.MethodPost, table, map[string]any{"records": []any{record}})
}

// UpdateRecord updates one record (record must carry Id).
func (c *Client) UpdateRecord(ctx context.Context, table string, record map[string]any) (gjson.Result, error) {
	return c.write(ctx, "update "+table, http.MethodPut, table, map[string]any{"records": []any{record}})
}

// DeleteRecord deletes the record with id.
func (c *Client) DeleteRecord(ctx context.Context, table string, id int) error {
	_, err := c.write(ctx, "delete "+table, http.MethodDelete, table, map[string]any{"RecordIds": []int{id}})
	return err
}

// write sends a single-record batch and unwraps its per-record result.
func (c *Client) write(ctx context.Context, op, method, path string, body any) (gjson.Result, error) {
	res, err := c.call(ctx, op, method, path, body)
	if err != nil {
		return gjson.Result{}, err
	}
	results := res.Get("results").Array()
	if len(results) == 0 {
		return gjson.Result{}, &store.BackendError{Op: op, Message: "no results returned"}
	}
	r := results[0]
	if !r.Get("success").Bool() {
		return gjson.Result{}, &store.BackendError{Op: op, Message: recordFailure(r)}
	}
	return r.Get("data"), nil
}

// recordFailure flattens a failed record result into one message.
func recordFailure(r gjson.Result) string {
	var parts []string
	for _, e := range r.Get("errors").Array() {
		label := e.Get("fieldLabel").String()
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.String()
		}
		if label != "" {
			msg = label + ": " + msg
		}
		parts = append(parts, msg)
	}
	if m := r.Get("message").String(); m != "" {
		parts = append(parts, m)
	}
	if len(parts) == 0 {
		return "record rejected"
	}
	return strings.Join(parts, "; ")
}

// call performs one request and checks the success flag of the envelope.
func (c *Client) call(ctx context.Context, op, method, path string, body any) (gjson.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("encoding %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Project-Id", c.cfg.ProjectID)
	if c.cfg.PublicKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.PublicKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return gjson.Result{}, err
		}
		return gjson.Result{}, &store.BackendError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &store.BackendError{Op: op, Err: err}
	}
	slog.Debug("remote call", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &store.BackendError{Op: op, Message: fmt.Sprintf("unexpected response (HTTP %d)", resp.StatusCode)}
	}
	res := gjson.ParseBytes(raw)
	if resp.StatusCode >= 300 || !res.Get("success").Bool() {
		msg := res.Get("message").String()
		if msg == "" {
			msg = fmt.Sprintf("request failed (HTTP %d)", resp.StatusCode)
		}
		return gjson.Result{}, &store.BackendError{Op: op, Message: msg}
	}
	return res, nil
}
