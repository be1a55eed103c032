package client

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/parnurzeal/gorequest"
	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/logger"
)

const (
	DefaultBaseURL = "http://localhost:5000"

	// DefaultTimeout bounds a whole request. The backend has no documented
	// latency, so this is a generous upper limit; 0 disables it.
	DefaultTimeout = 30 * time.Second
)

type option func(*Client)

func WithBaseURL(u *url.URL) option {
	return func(c *Client) { c.baseURL = u }
}

func WithTimeout(d time.Duration) option {
	return func(c *Client) { c.timeout = d }
}

// Client talks to the vulnerability search backend. It never retries; a failed
// request is reported to the caller, which decides whether to issue it again.
type Client struct {
	baseURL *url.URL
	timeout time.Duration
}

func New(opts ...option) *Client {
	c := &Client{
		baseURL: lo.Must(url.Parse(DefaultBaseURL)),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get returns the body of a successful response after checking it is JSON.
// The returned error is always a *NetworkError, *HTTPError or *ParseError.
func (c *Client) Get(path string, params url.Values) ([]byte, error) {
	u := c.baseURL.JoinPath(path)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	target := u.String()

	req := gorequest.New().Get(target).Set("Accept", "application/json")
	if c.timeout > 0 {
		req = req.Timeout(c.timeout)
	}

	start := time.Now()
	resp, body, errs := req.EndBytes()
	if len(errs) > 0 {
		logger.Logger.Debugw("Request failed", "url", target, "error", errs[0])
		return nil, &NetworkError{URL: target, Err: errs[0]}
	}
	if resp == nil {
		return nil, &NetworkError{URL: target, Err: xerrors.New("no response")}
	}
	logger.Logger.Debugw("GET", "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: target, StatusCode: resp.StatusCode, Body: body}
	}
	if !json.Valid(body) {
		return nil, &ParseError{URL: target, Err: xerrors.New("body is not valid JSON")}
	}
	return body, nil
}

// GetJSON decodes a successful response into v.
func (c *Client) GetJSON(path string, params url.Values, v interface{}) error {
	body, err := c.Get(path, params)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, v); err != nil {
		return &ParseError{URL: c.baseURL.JoinPath(path).String(), Err: err}
	}
	return nil
}
