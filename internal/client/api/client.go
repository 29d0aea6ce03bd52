// Package api is the FileVault server client: challenge–response login,
// ledger operations, blob transfer and the principal key directory over the
// JSON HTTP API. Idempotent reads are retried with fibonacci backoff when
// the server is unreachable.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/sentinelchain/filevault/internal/server/auth"
)

// Client is the server API surface the coordinators and CLI depend on.
type Client interface {
	Login(ctx context.Context, address string, publicKey []byte, sign func(ctx context.Context, message []byte) ([]byte, error)) error
	Ping(ctx context.Context) error

	Upload(ctx context.Context, req UploadRequest) (*File, *Receipt, error)
	GetFile(ctx context.Context, id int64) (*File, error)
	ListMine(ctx context.Context) ([]int64, error)
	Share(ctx context.Context, id int64, grantee string, wrappedKey []byte) (*Receipt, error)
	Revoke(ctx context.Context, id int64, grantee string) (*Receipt, error)
	Delete(ctx context.Context, id int64) (*Receipt, error)
	ListGrants(ctx context.Context, id int64) ([]Grant, error)

	RegisterKey(ctx context.Context, wrapPublicKey []byte) error
	GetKey(ctx context.Context, address string) ([]byte, error)

	PutBlob(ctx context.Context, data []byte) (string, error)
	GetBlob(ctx context.Context, handle string) ([]byte, error)
}

// HTTPClient implements Client against a FileVault server base URL.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string

	maxRetries    uint64
	retryBaseWait time.Duration
}

var _ Client = (*HTTPClient)(nil)

type HTTPOption func(*HTTPClient)

func WithHTTPClient(h *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.http = h }
}

func WithRetries(max uint64, baseWait time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.maxRetries = max
		c.retryBaseWait = baseWait
	}
}

func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:       baseURL,
		http:          &http.Client{Timeout: 30 * time.Second},
		maxRetries:    3,
		retryBaseWait: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs a previously obtained bearer token.
func (c *HTTPClient) SetToken(token string) { c.token = token }

func (c *HTTPClient) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// call performs one JSON request/response cycle. A non-2xx status is decoded
// into the matching sentinel; transport failures map to ErrUnavailable.
func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// getJSON is call for idempotent reads: unavailability is retried with
// fibonacci backoff before giving up.
func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.retryBaseWait))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.call(ctx, http.MethodGet, path, nil, out)
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Login runs the challenge–response flow: fetch a nonce, sign it, exchange
// the signature for a bearer token. The token is retained for later calls.
func (c *HTTPClient) Login(ctx context.Context, address string, publicKey []byte, sign func(ctx context.Context, message []byte) ([]byte, error)) error {
	var ch struct {
		Nonce string `json:"nonce"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/auth/challenge", map[string]string{"address": address}, &ch); err != nil {
		return err
	}

	sig, err := sign(ctx, auth.ChallengeMessage(ch.Nonce))
	if err != nil {
		return err
	}

	var lr struct {
		Token string `json:"token"`
	}
	req := map[string]any{
		"address":    address,
		"nonce":      ch.Nonce,
		"public_key": publicKey,
		"signature":  sig,
	}
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", req, &lr); err != nil {
		return err
	}

	c.token = lr.Token
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *HTTPClient) Upload(ctx context.Context, req UploadRequest) (*File, *Receipt, error) {
	var resp struct {
		File    File    `json:"file"`
		Receipt Receipt `json:"receipt"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/files", req, &resp); err != nil {
		return nil, nil, err
	}
	return &resp.File, &resp.Receipt, nil
}

func (c *HTTPClient) GetFile(ctx context.Context, id int64) (*File, error) {
	var f File
	if err := c.getJSON(ctx, fmt.Sprintf("/api/files/%d", id), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *HTTPClient) ListMine(ctx context.Context) ([]int64, error) {
	var resp struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.getJSON(ctx, "/api/files", &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

func (c *HTTPClient) Share(ctx context.Context, id int64, grantee string, wrappedKey []byte) (*Receipt, error) {
	var rcp Receipt
	req := map[string]any{"grantee": grantee, "wrapped_key": wrappedKey}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/files/%d/share", id), req, &rcp); err != nil {
		return nil, err
	}
	return &rcp, nil
}

func (c *HTTPClient) Revoke(ctx context.Context, id int64, grantee string) (*Receipt, error) {
	var rcp Receipt
	req := map[string]any{"grantee": grantee}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/files/%d/revoke", id), req, &rcp); err != nil {
		return nil, err
	}
	return &rcp, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id int64) (*Receipt, error) {
	var rcp Receipt
	if err := c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/files/%d", id), nil, &rcp); err != nil {
		return nil, err
	}
	return &rcp, nil
}

func (c *HTTPClient) ListGrants(ctx context.Context, id int64) ([]Grant, error) {
	var resp struct {
		Grants []Grant `json:"grants"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/files/%d/grants", id), &resp); err != nil {
		return nil, err
	}
	return resp.Grants, nil
}

func (c *HTTPClient) RegisterKey(ctx context.Context, wrapPublicKey []byte) error {
	req := map[string]any{"wrap_public_key": wrapPublicKey}
	return c.call(ctx, http.MethodPost, "/api/keys", req, nil)
}

func (c *HTTPClient) GetKey(ctx context.Context, address string) ([]byte, error) {
	var resp struct {
		Address       string `json:"address"`
		WrapPublicKey []byte `json:"wrap_public_key"`
	}
	if err := c.getJSON(ctx, "/api/keys/"+address, &resp); err != nil {
		return nil, err
	}
	return resp.WrapPublicKey, nil
}

func (c *HTTPClient) PutBlob(ctx context.Context, data []byte) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/blobs", "application/octet-stream", bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", decodeAPIError(resp)
	}

	var br struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return br.Handle, nil
}

func (c *HTTPClient) GetBlob(ctx context.Context, handle string) ([]byte, error) {
	var data []byte

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.retryBaseWait))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodGet, "/api/blobs/"+handle, "", nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			apiErr := decodeAPIError(resp)
			if isTransient(apiErr) {
				return retry.RetryableError(apiErr)
			}
			return apiErr
		}

		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
