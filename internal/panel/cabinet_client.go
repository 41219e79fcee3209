package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luisceladatrigo/hw-mockup/internal/cabinet"
)

var (
	// ErrTransport marks network-level failures: timeout, refused
	// connection, DNS. Retryable by the caller, never retried here.
	ErrTransport = errors.New("panel: transport failure")
	// ErrNodeRejected marks a non-success response from the node itself,
	// carrying the node's own error detail when available.
	ErrNodeRejected = errors.New("panel: node rejected request")
)

// CabinetClient speaks the cabinet node API over HTTP JSON with bounded
// timeouts. One instance is shared by the registry probe and the reconciler.
type CabinetClient struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewCabinetClient builds a client with one bounded per-call timeout.
// A non-positive timeout falls back to 5s.
func NewCabinetClient(timeout time.Duration) *CabinetClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CabinetClient{
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// FetchState reads the node's state report: self-assigned identity, grid
// dimensions, and the current mark snapshot. Used as the discovery probe.
func (c *CabinetClient) FetchState(ctx context.Context, baseURL string) (cabinet.StateReport, error) {
	var report cabinet.StateReport
	if err := c.getJSON(ctx, baseURL, "/api/state", &report); err != nil {
		return cabinet.StateReport{}, err
	}
	return report, nil
}

// PushMarks issues one full-replace call and returns the count of marks the
// node reports as installed.
func (c *CabinetClient) PushMarks(ctx context.Context, baseURL string, marks []cabinet.MarkPayload) (int, error) {
	if marks == nil {
		marks = []cabinet.MarkPayload{}
	}
	var resp struct {
		OK        bool `json:"ok"`
		Installed int  `json:"installed"`
	}
	if err := c.postJSON(ctx, baseURL, "/api/marks", cabinet.BatchPayload{Marks: marks}, &resp); err != nil {
		return 0, err
	}
	return resp.Installed, nil
}

// SendMark issues one single-mark upsert/delete directly to a node.
func (c *CabinetClient) SendMark(ctx context.Context, baseURL string, payload cabinet.MarkPayload) error {
	return c.postJSON(ctx, baseURL, "/api/mark", payload, nil)
}

func (c *CabinetClient) getJSON(ctx context.Context, baseURL, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, baseURL, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *CabinetClient) postJSON(ctx context.Context, baseURL, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, baseURL, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *CabinetClient) newRequest(ctx context.Context, method, baseURL, path string, body io.Reader) (*http.Request, error) {
	url := strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return req, nil
}

func (c *CabinetClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status=%d detail=%s", ErrNodeRejected, resp.StatusCode, nodeErrorDetail(raw))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNodeRejected, err)
	}
	return nil
}

// nodeErrorDetail extracts the node's {"error": ...} message when present.
func nodeErrorDetail(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
