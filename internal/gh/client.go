// Package gh provides a GraphQL client for the GitHub Projects v2 API:
// typed listing and mutation methods, rate-limit retry, and pagination.
package gh

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"
)

// DefaultEndpoint is the GitHub GraphQL API endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// MaxPageSize is the pagination ceiling applied to every listing operation.
// GitHub caps connection page sizes at 100 nodes.
const MaxPageSize = 100

// Options configures a Client. Token is required; everything else has a
// usable zero-value default.
type Options struct {
	Token      string
	MaxRetries int           // retry attempts after the first, on rate limit only
	RetryDelay time.Duration // fixed pause between attempts
	Endpoint   string        // override for tests
	HTTPClient *http.Client  // override for tests
	Logger     zerolog.Logger
}

// Client is a GitHub GraphQL API client for Projects v2. It is constructed
// once at process start and reused; it holds no mutable state after
// construction and is safe for concurrent use.
type Client struct {
	gql        *graphql.Client
	token      string
	maxRetries int
	retryDelay time.Duration
	log        zerolog.Logger
}

// New creates a new GitHub GraphQL client from the given options.
func New(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("github token is required")
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	var gqlOpts []graphql.ClientOption
	if opts.HTTPClient != nil {
		gqlOpts = append(gqlOpts, graphql.WithHTTPClient(opts.HTTPClient))
	}

	return &Client{
		gql:        graphql.NewClient(endpoint, gqlOpts...),
		token:      opts.Token,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		log:        opts.Logger,
	}, nil
}

// execute runs a GraphQL request with authentication and retry handling.
// Rate-limited attempts are retried up to maxRetries times with a fixed
// delay between attempts; a persistent rate limit surfaces as
// *RateLimitError. Any other failure returns *APIError immediately.
// The inter-attempt wait is cancellable through ctx.
func (c *Client) execute(ctx context.Context, req *graphql.Request, resp interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.gql.Run(ctx, req, resp)
		if err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return classify(err)
		}

		lastErr = err
		if attempt == c.maxRetries {
			break
		}

		c.log.Warn().
			Int("attempt", attempt+1).
			Dur("delay", c.retryDelay).
			Msg("rate limit hit, backing off before retry")
		if err := sleep(ctx, c.retryDelay); err != nil {
			return err
		}
	}

	return &RateLimitError{Message: lastErr.Error()}
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// clampPageSize bounds a requested page size to [1, MaxPageSize].
func clampPageSize(first int) int {
	if first > MaxPageSize {
		return MaxPageSize
	}
	if first < 1 {
		return 1
	}
	return first
}

// ClampPageSize is the exported form of the pagination bound, used by the
// tool layer to normalize caller-supplied page sizes before delegation.
func ClampPageSize(first int) int {
	return clampPageSize(first)
}
