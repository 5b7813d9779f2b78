package gh

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphQLError writes a 200 response carrying a GraphQL error message.
func graphQLError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	})
}

// graphQLData writes a 200 response with the given data payload.
func graphQLData(w http.ResponseWriter, data map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

// gqlRequest is the wire shape machinebox sends.
type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func decodeRequest(t *testing.T, r *http.Request) gqlRequest {
	t.Helper()
	var req gqlRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

// newTestClient wires a client against an httptest server with fast retries.
func newTestClient(t *testing.T, maxRetries int, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := New(Options{
		Token:      "test-token",
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
		Endpoint:   ts.URL,
		HTTPClient: ts.Client(),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func projectData() map[string]interface{} {
	return map[string]interface{}{
		"node": map[string]interface{}{
			"id":     "PVT_1",
			"title":  "Roadmap",
			"number": 7,
			"public": true,
		},
	}
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestExecute_RateLimitExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		graphQLError(w, "API rate limit exceeded for user")
	})

	_, err := client.GetProject(context.Background(), "PVT_1")

	var rateLimitErr *RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Contains(t, rateLimitErr.Error(), "rate limit")
	// max_retries + 1 attempts in total
	assert.EqualValues(t, 4, attempts.Load())
}

func TestExecute_NonRateLimitFailsImmediately(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		graphQLError(w, "Could not resolve to a node with the global id")
	})

	_, err := client.GetProject(context.Background(), "PVT_missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "Could not resolve")
	assert.EqualValues(t, 1, attempts.Load())
}

func TestExecute_RecoversAfterRateLimit(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			graphQLError(w, "you have exceeded a secondary rate limit")
			return
		}
		graphQLData(w, projectData())
	})

	project, err := client.GetProject(context.Background(), "PVT_1")

	require.NoError(t, err)
	assert.Equal(t, "Roadmap", project.Title)
	assert.EqualValues(t, 2, attempts.Load())
}

func TestExecute_RetryWaitIsCancellable(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		graphQLError(w, "API rate limit exceeded")
	})
	client.retryDelay = 5 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.GetProject(ctx, "PVT_1")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.EqualValues(t, 1, attempts.Load())
}

func TestExecute_AuthorizationHeader(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		graphQLData(w, projectData())
	})

	_, err := client.GetProject(context.Background(), "PVT_1")
	require.NoError(t, err)
}

func TestPagination_ClampsRequestedPageSize(t *testing.T) {
	var sentFirst float64
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		sentFirst = req.Variables["first"].(float64)
		graphQLData(w, map[string]interface{}{
			"viewer": map[string]interface{}{
				"projectsV2": map[string]interface{}{
					"pageInfo": map[string]interface{}{"hasNextPage": false, "endCursor": ""},
					"nodes":    []interface{}{},
				},
			},
		})
	})

	_, err := client.GetViewerProjects(context.Background(), 1000, "")
	require.NoError(t, err)
	assert.EqualValues(t, 100, sentFirst)

	_, err = client.GetViewerProjects(context.Background(), -3, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, sentFirst)
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, MaxPageSize, ClampPageSize(101))
	assert.Equal(t, MaxPageSize, ClampPageSize(100000))
	assert.Equal(t, MaxPageSize, ClampPageSize(100))
	assert.Equal(t, 1, ClampPageSize(1))
	assert.Equal(t, 1, ClampPageSize(0))
	assert.Equal(t, 1, ClampPageSize(-50))
	assert.Equal(t, 42, ClampPageSize(42))
}

func TestClassify_ExtractsStatusCode(t *testing.T) {
	err := classify(assert.AnError)
	assert.Equal(t, 0, err.StatusCode)

	err = classify(errStatus("graphql: server returned a non-200 status code: 502"))
	assert.Equal(t, 502, err.StatusCode)
	assert.Contains(t, err.Error(), "status 502")
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(errStatus("graphql: API RATE LIMIT exceeded")))
	assert.False(t, isRateLimited(errStatus("graphql: something else")))
}

type errStatus string

func (e errStatus) Error() string { return string(e) }
