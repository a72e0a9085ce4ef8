// Package reddit collects the comments of discussion threads through the
// OAuth API using the application-only client-credentials grant.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/okian/gamepulse/internal/platform/retry"
	"github.com/okian/gamepulse/pkg/logger"
	"github.com/okian/gamepulse/pkg/metrics"
)

const (
	// AuthURL issues access tokens.
	AuthURL = "https://www.reddit.com/api/v1/access_token"
	// APIURL serves authenticated requests.
	APIURL = "https://oauth.reddit.com"

	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "gamepulse/0.1"
	maxErrorBody     = 512
)

// Client talks to the comment API.
type Client struct {
	httpClient   *http.Client
	authURL      string
	apiURL       string
	clientID     string
	clientSecret string
	userAgent    string
	timeout      time.Duration
	policy       retry.Policy
	log          logger.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client. Credentials are required before Authenticate.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		authURL:    AuthURL,
		apiURL:     APIURL,
		userAgent:  defaultUserAgent,
		timeout:    defaultTimeout,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   500 * time.Millisecond,
			RateLimitBackoff: 5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("reddit")
	}
	if c.policy.OnRetry == nil {
		c.policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
			c.log.Warn(context.Background(), "request failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoff),
				logger.Error(err),
			)
		}
	}
	return c
}

// Authenticate fetches an application-only access token.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{"grant_type": {"client_credentials"}}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, "token", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.clientID, c.clientSecret)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, &resp)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("authenticate: %w: empty access token", ErrMalformedResponse)
	}
	c.mu.Lock()
	c.token = resp.AccessToken
	c.mu.Unlock()
	return nil
}

// Post returns the top-level comment listing of a thread.
func (c *Client) Post(ctx context.Context, postID string) ([]Thing, error) {
	var resp []listing
	endpoint := fmt.Sprintf("%s/comments/%s", c.apiURL, url.PathEscape(postID))
	if err := c.get(ctx, "comments", endpoint, &resp); err != nil {
		return nil, fmt.Errorf("post %s: %w", postID, err)
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("post %s: %w: want post and comment listings", postID, ErrMalformedResponse)
	}
	return resp[1].Data.Children, nil
}

// MoreChildren expands the given comment IDs of a thread one level deep.
func (c *Client) MoreChildren(ctx context.Context, postID string, ids []string) ([]Thing, error) {
	q := url.Values{
		"link_id":  {"t3_" + postID},
		"children": {strings.Join(ids, ",")},
		"api_type": {"json"},
		"depth":    {"1"},
	}
	var resp struct {
		JSON struct {
			Data struct {
				Things []Thing `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := c.get(ctx, "morechildren", c.apiURL+"/api/morechildren?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("more children of %s: %w", postID, err)
	}
	return resp.JSON.Data.Things, nil
}

func (c *Client) get(ctx context.Context, name, endpoint string, out any) error {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" {
		return ErrUnauthenticated
	}
	return c.do(ctx, name, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "bearer "+token)
		return req, nil
	}, out)
}

// do sends the request built by build under the retry policy, each attempt
// bounded by the client timeout, and decodes a 200 response into out.
func (c *Client) do(ctx context.Context, name string, build func(context.Context) (*http.Request, error), out any) error {
	_, err := retry.Do(ctx, c.policy, classify, func(ctx context.Context) (struct{}, error) {
		started := time.Now()
		err := c.attempt(ctx, build, out)
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.RecordFetch(name, result, float64(time.Since(started).Milliseconds()))
		return struct{}{}, err
	})
	return err
}

func (c *Client) attempt(ctx context.Context, build func(context.Context) (*http.Request, error), out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := build(ctx)
	if err != nil {
		return &retry.PermanentError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: fmt.Sprintf("status=%d, body=%s", resp.StatusCode, body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrMalformedResponse, err)
	}
	return nil
}

// classify retries throttling with the long backoff, server errors and
// network failures with the normal one, and gives up on everything else.
func classify(err error) retry.Action {
	var perm *retry.PermanentError
	if errors.As(err, &perm) {
		return retry.Stop
	}
	var status *StatusError
	if errors.As(err, &status) {
		switch {
		case status.Code == http.StatusTooManyRequests:
			return retry.After
		case status.Code >= http.StatusInternalServerError:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	if errors.Is(err, ErrMalformedResponse) {
		return retry.Stop
	}
	return retry.Retry
}
