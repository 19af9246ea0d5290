// Package api is the HTTP/JSON client for the remote deployment service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/watchfire-io/launchpad/internal/buildinfo"
	"github.com/watchfire-io/launchpad/internal/models"
)

// ClientIDHeader identifies this installation to the service.
const ClientIDHeader = "X-Launchpad-Client"

// ErrMissingCommandID is returned when a deploy succeeds without a command id.
var ErrMissingCommandID = errors.New("server did not return a command id")

// ServerError is a failure reported by the service, either through
// success=false or a non-2xx status.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	ClientID string
	Timeout  time.Duration
}

// Client talks to the deployment service over a fixed base origin. All
// requests share one cookie jar.
type Client struct {
	baseURL  *url.URL
	clientID string
	http     *http.Client
}

// New creates a client for the given base URL.
func New(cfg Config) (*Client, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  base,
		clientID: cfg.ClientID,
		http:     &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// ParseBaseURL validates a server origin such as http://localhost:3001.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", raw)
	}
	return u, nil
}

// BaseURL returns the service origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar returns the cookie jar shared by every request.
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

// Header returns the headers sent with every request.
func (c *Client) Header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "launchpad/"+buildinfo.Version)
	if c.clientID != "" {
		h.Set(ClientIDHeader, c.clientID)
	}
	return h
}

type deployRequest struct {
	GitURL string `json:"gitUrl"`
	Branch string `json:"branch"`
}

type stopRequest struct {
	CommandID string `json:"commandId"`
}

type response struct {
	Success   bool                `json:"success"`
	CommandID string              `json:"commandId,omitempty"`
	Error     string              `json:"error,omitempty"`
	Repos     []models.RepoRecord `json:"repos,omitempty"`
}

// Deploy asks the service to deploy gitURL at branch and returns the command id.
func (c *Client) Deploy(ctx context.Context, gitURL, branch string) (string, error) {
	var resp response
	if err := c.do(ctx, "deploy", http.MethodPost, "/api/deploy", deployRequest{GitURL: gitURL, Branch: branch}, &resp); err != nil {
		return "", err
	}
	if resp.CommandID == "" {
		return "", ErrMissingCommandID
	}
	return resp.CommandID, nil
}

// Stop asks the service to stop a running command.
func (c *Client) Stop(ctx context.Context, commandID string) error {
	var resp response
	return c.do(ctx, "stop", http.MethodPost, "/api/stop", stopRequest{CommandID: commandID}, &resp)
}

// Repos lists previously deployed repositories.
func (c *Client) Repos(ctx context.Context) ([]models.RepoRecord, error) {
	var resp response
	if err := c.do(ctx, "list repos", http.MethodGet, "/api/repos", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Repos == nil {
		return []models.RepoRecord{}, nil
	}
	return resp.Repos, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}, out *response) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header = c.Header()
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{Op: op, Status: resp.StatusCode, Message: out.Error}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, decodeErr)
	}
	if !out.Success {
		return &ServerError{Op: op, Status: resp.StatusCode, Message: out.Error}
	}
	return nil
}
