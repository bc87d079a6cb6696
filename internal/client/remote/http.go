package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/docstore"
)

// HTTPClient speaks the JSON document API mounted under /api/v1.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
	creds       Credentials
}

func NewHTTPClient(baseURL string, creds Credentials) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + common.APIPathPrefix + "/v1",
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
	}
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func collectionPath(kind models.Kind, parts ...string) string {
	p := "/collections/" + url.PathEscape(string(kind))
	for _, s := range parts {
		p += "/" + url.PathEscape(s)
	}
	return p
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// do sends the request, logging in again once on 401, and decodes a JSON
// reply into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.mu.RLock()
		creds := c.creds
		c.mu.RUnlock()
		if creds.AccessKey == "" {
			return ErrUnauthorized
		}
		if err := c.Login(ctx, creds); err != nil {
			return err
		}
		resp, err = c.send(ctx, method, path, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return ErrUnavailable
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("request failed: %s; body: %s", resp.Status, strings.TrimSpace(string(b)))
	}
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/login", docstore.LoginRequest{Device: creds.Device, AccessKey: creds.AccessKey})
	if err != nil {
		return err
	}
	req.Header.Del("Authorization")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return err
	}

	var out docstore.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = out.AccessToken
	c.creds = creds
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out docstore.PingResponse
	if err := c.do(ctx, http.MethodGet, "/ping", nil, &out); err != nil {
		return err
	}
	if out.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Create(ctx context.Context, kind models.Kind, originID string, p models.Payload) (string, error) {
	var out docstore.CreateResponse
	in := docstore.CreateRequest{OriginID: originID, Payload: map[string]any(p)}
	if err := c.do(ctx, http.MethodPost, collectionPath(kind), in, &out); err != nil {
		return "", err
	}
	return out.RemoteID, nil
}

func (c *HTTPClient) Update(ctx context.Context, kind models.Kind, remoteID string, p models.Payload) error {
	in := docstore.UpdateRequest{Payload: map[string]any(p)}
	return c.do(ctx, http.MethodPatch, collectionPath(kind, remoteID), in, nil)
}

func (c *HTTPClient) List(ctx context.Context, kind models.Kind, f Filter) ([]Document, error) {
	path := collectionPath(kind)
	if !f.IsZero() {
		q := url.Values{}
		q.Set("field", f.Field)
		q.Set("value", f.Value)
		path += "?" + q.Encode()
	}

	var out docstore.ListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return fromWire(out.Documents), nil
}

func (c *HTTPClient) Delete(ctx context.Context, kind models.Kind, remoteID string) error {
	return c.do(ctx, http.MethodDelete, collectionPath(kind, remoteID), nil, nil)
}

func (c *HTTPClient) Export(ctx context.Context, kind models.Kind) (string, int, error) {
	var out docstore.ExportResponse
	if err := c.do(ctx, http.MethodPost, collectionPath(kind, "export"), struct{}{}, &out); err != nil {
		return "", 0, err
	}
	return out.Key, out.Count, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
