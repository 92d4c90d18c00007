// Package sidecar talks to a Substrate API sidecar over plain HTTP.
package sidecar

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

// DefaultURL is where a locally started sidecar listens.
const DefaultURL = "http://127.0.0.1:8080"

// noChain is what /node/version reports when the sidecar has no chain.
const noChain = "None"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL. A zero timeout leaves the
// http.Client default (no deadline).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: timeout}, baseURL)
}

// NewClientWithHTTP builds a client around an existing http.Client.
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// NodeVersion is the /node/version document.
type NodeVersion struct {
	ClientVersion  string `json:"clientVersion"`
	ClientImplName string `json:"clientImplName"`
	Chain          string `json:"chain"`
}

// Probe checks the sidecar root answers 200, then reads the chain identity
// from /node/version. The second call is only made when the first succeeds.
func (c *Client) Probe(ctx context.Context) (string, error) {
	version, err := c.ProbeVersion(ctx)
	if err != nil {
		return "", err
	}
	return version.Chain, nil
}

// ProbeVersion is Probe returning the full node version document.
func (c *Client) ProbeVersion(ctx context.Context) (*NodeVersion, error) {
	if err := c.ping(ctx); err != nil {
		return nil, err
	}

	version, err := c.NodeVersion(ctx)
	if err != nil {
		return nil, err
	}

	if version.Chain == noChain {
		return nil, &RequestError{Kind: ErrNoChainAttached, URL: c.baseURL + "/node/version"}
	}
	return version, nil
}

func (c *Client) ping(ctx context.Context) error {
	rootURL := c.baseURL + "/"
	resp, err := c.get(ctx, rootURL)
	if err != nil {
		return &RequestError{Kind: ErrUnreachable, URL: rootURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Kind: ErrUnreachable, URL: rootURL, StatusCode: resp.StatusCode}
	}
	return nil
}

// NodeVersion fetches /node/version. The body is parsed whatever the HTTP
// status; only a body that is not JSON is malformed. A chain field that is
// missing or not a string is kept as its JSON text ("null", "5") for
// display and never matches the "None" sentinel.
func (c *Client) NodeVersion(ctx context.Context) (*NodeVersion, error) {
	versionURL := c.baseURL + "/node/version"
	resp, err := c.get(ctx, versionURL)
	if err != nil {
		return nil, &RequestError{Kind: ErrUnreachable, URL: versionURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Kind: ErrUnreachable, URL: versionURL, Err: err}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &RequestError{Kind: ErrMalformedResponse, URL: versionURL, StatusCode: statusIfNotOK(resp), Err: err}
	}

	return &NodeVersion{
		ClientVersion:  textField(doc["clientVersion"], ""),
		ClientImplName: textField(doc["clientImplName"], ""),
		Chain:          textField(doc["chain"], "null"),
	}, nil
}

// textField returns a JSON string's value, or the compact JSON text of any
// other value. A missing field reads as missing.
func textField(raw json.RawMessage, missing string) string {
	if len(raw) == 0 {
		return missing
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func statusIfNotOK(resp *http.Response) int {
	if resp.StatusCode == http.StatusOK {
		return 0
	}
	return resp.StatusCode
}

// PayoutsURL is the staking-payouts query for accountID. The depth sent
// upstream is one past the requested depth.
func (c *Client) PayoutsURL(accountID string, depth uint) string {
	return fmt.Sprintf("%s/accounts/%s/staking-payouts?depth=%d&unclaimedOnly=true",
		c.baseURL, url.PathEscape(accountID), uint64(depth)+1)
}

// FetchPayouts runs the staking-payouts query once and returns the body
// unparsed.
func (c *Client) FetchPayouts(ctx context.Context, accountID string, depth uint) (string, error) {
	payoutsURL := c.PayoutsURL(accountID, depth)

	resp, err := c.get(ctx, payoutsURL)
	if err != nil {
		return "", &RequestError{Kind: ErrQueryFailed, URL: payoutsURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &RequestError{Kind: ErrQueryFailed, URL: payoutsURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RequestError{Kind: ErrQueryFailed, URL: payoutsURL, Err: err}
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}
