// Package api is the client side of the diagnostic HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"apdiag/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	patternByte    = 0xAA
)

// TransferResult is the outcome of one download or upload.
type TransferResult struct {
	Bytes   int64
	Elapsed time.Duration
}

// Client talks to a running diagnostic service.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g. http://192.168.4.1).
// The server answers one request per connection, so keep-alives are off.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		http: &http.Client{
			Transport: &http.Transport{DisableKeepAlives: true},
		},
	}
}

// Status fetches the health snapshot.
func (c *Client) Status(ctx context.Context) (model.StatusSnapshot, error) {
	var resp model.StatusSnapshot
	err := c.getJSON(ctx, "/api/status", &resp)
	return resp, err
}

// Scan triggers a survey and returns the visible networks.
func (c *Client) Scan(ctx context.Context) ([]model.NetworkRecord, error) {
	var resp []model.NetworkRecord
	err := c.getJSON(ctx, "/api/scan", &resp)
	return resp, err
}

// Clients lists the stations associated with the access point.
func (c *Client) Clients(ctx context.Context) ([]model.ClientRecord, error) {
	var resp []model.ClientRecord
	err := c.getJSON(ctx, "/api/clients", &resp)
	return resp, err
}

// Uplink fetches the STUN view of the station uplink.
func (c *Client) Uplink(ctx context.Context) (model.UplinkReport, error) {
	var resp model.UplinkReport
	err := c.getJSON(ctx, "/api/uplink", &resp)
	return resp, err
}

// Ping measures one round trip to the latency probe and returns it with
// the server uptime it reported.
func (c *Client) Ping(ctx context.Context) (time.Duration, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/ping", nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	rtt := time.Since(start)
	if err != nil {
		return 0, 0, err
	}
	if err := checkStatus(res, body); err != nil {
		return 0, 0, err
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return rtt, 0, fmt.Errorf("parse ping body %q: %w", body, err)
	}
	return rtt, ms, nil
}

// Download fetches size bytes and discards them. The result is an error
// if fewer bytes than declared arrive.
func (c *Client) Download(ctx context.Context, size int64) (TransferResult, error) {
	url := c.baseURL + "/api/download?size=" + strconv.FormatInt(size, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return TransferResult{}, err
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return TransferResult{}, err
	}
	defer res.Body.Close()

	if err := checkStatus(res, nil); err != nil {
		return TransferResult{}, err
	}

	n, err := io.Copy(io.Discard, res.Body)
	result := TransferResult{Bytes: n, Elapsed: time.Since(start)}
	if err != nil {
		return result, fmt.Errorf("download after %d bytes: %w", n, err)
	}
	if res.ContentLength >= 0 && n != res.ContentLength {
		return result, fmt.Errorf("short download: %d of %d bytes", n, res.ContentLength)
	}
	return result, nil
}

// Upload posts size bytes as the multipart field "file".
func (c *Client) Upload(ctx context.Context, size int64) (TransferResult, error) {
	body, contentType, err := uploadBody(size)
	if err != nil {
		return TransferResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", bytes.NewReader(body))
	if err != nil {
		return TransferResult{}, err
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return TransferResult{}, err
	}
	defer res.Body.Close()

	reply, _ := io.ReadAll(res.Body)
	result := TransferResult{Bytes: size, Elapsed: time.Since(start)}
	if err := checkStatus(res, reply); err != nil {
		return TransferResult{}, err
	}
	return result, nil
}

func uploadBody(size int64) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "test.bin")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(bytes.Repeat([]byte{patternByte}, int(size))); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := checkStatus(res, nil); err != nil {
		return err
	}

	decoder := json.NewDecoder(res.Body)
	return decoder.Decode(out)
}

// checkStatus turns a non-2xx response into an error carrying the body.
// body may be nil, in which case it is read from res.
func checkStatus(res *http.Response, body []byte) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	if body == nil {
		body, _ = io.ReadAll(res.Body)
	}
	msg := strings.TrimSpace(string(body))
	if msg != "" {
		return fmt.Errorf("request failed: %s: %s", res.Status, msg)
	}
	return fmt.Errorf("request failed: %s", res.Status)
}
