package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL:    server.URL,
		Headers:    map[string]string{"X-Cybozu-API-Token": "test-token"},
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Logger:     hclog.NewNullLogger(),
	})
	require.NoError(t, err)
	return client
}

func TestClient_Get(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/k/v1/records.json", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Cybozu-API-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("app"))
		assert.Equal(t, "$id", q.Get("fields[0]"))
		assert.Equal(t, "title", q.Get("fields[1]"))
		assert.Equal(t, `status = "open"`, q.Get("query"))
		assert.Equal(t, "true", q.Get("totalCount"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[{"title":{"value":"a"}}],"totalCount":"1"}`))
	})

	params := struct {
		App        string   `json:"app"`
		Fields     []string `json:"fields,omitempty"`
		Query      string   `json:"query,omitempty"`
		TotalCount bool     `json:"totalCount,omitempty"`
	}{App: "1", Fields: []string{"$id", "title"}, Query: `status = "open"`, TotalCount: true}

	var result struct {
		Records    []map[string]any `json:"records"`
		TotalCount string           `json:"totalCount"`
	}
	err := client.Get(context.Background(), "/k/v1/records.json", params, &result)

	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
	assert.Equal(t, "1", result.TotalCount)
}

func TestClient_JSONBodyVerbs(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, method, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Empty(t, r.URL.RawQuery)

				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.JSONEq(t, `{"app":"1","ids":["4","5"]}`, string(body))

				w.Write([]byte(`{}`))
			})

			params := map[string]any{"app": "1", "ids": []string{"4", "5"}}
			var err error
			switch method {
			case http.MethodPost:
				err = client.Post(context.Background(), "/k/v1/records.json", params, nil)
			case http.MethodPut:
				err = client.Put(context.Background(), "/k/v1/records.json", params, nil)
			case http.MethodDelete:
				err = client.Delete(context.Background(), "/k/v1/records.json", params, nil)
			}
			require.NoError(t, err)
		})
	}
}

func TestClient_LongGetUsesMethodOverride(t *testing.T) {
	longQuery := "title like \"" + strings.Repeat("x", maxURLLength) + "\""

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, http.MethodGet, r.Header.Get("X-HTTP-Method-Override"))
		assert.Empty(t, r.URL.RawQuery)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, longQuery, body["query"])

		w.Write([]byte(`{"records":[]}`))
	})

	params := map[string]any{"app": "1", "query": longQuery}
	err := client.Get(context.Background(), "/k/v1/records.json", params, nil)
	require.NoError(t, err)
}

func TestClient_APIError(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{
			"code": "CB_VA01",
			"id": "1505999166-897850006",
			"message": "Missing or invalid input.",
			"errors": {"app": {"messages": ["Required field."]}}
		}`))
	})

	err := client.Get(context.Background(), "/k/v1/record.json", map[string]any{"id": "1"}, nil)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "CB_VA01", apiErr.Code)
	assert.Equal(t, "1505999166-897850006", apiErr.ID)
	assert.Equal(t, []string{"Required field."}, apiErr.Errors["app"].Messages)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "client errors are not retried")
}

func TestClient_RetriesUnavailable(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":"1","revision":"1"}`))
	})

	var result struct {
		ID string `json:"id"`
	}
	err := client.Post(context.Background(), "/k/v1/record.json", map[string]any{"app": "1"}, &result)

	require.NoError(t, err)
	assert.Equal(t, "1", result.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_RetriesExhausted(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := client.Get(context.Background(), "/k/v1/record.json", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "one attempt plus MaxRetries")
}

func TestClient_ServerErrorNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal failure"))
	})

	err := client.Get(context.Background(), "/k/v1/records/cursor.json", map[string]any{"id": "c1"}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "internal failure", apiErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_DecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	var result map[string]any
	err := client.Get(context.Background(), "/k/v1/record.json", nil, &result)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
	assert.NotErrorIs(t, err, ErrRequestFailed)
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Get(ctx, "/k/v1/record.json", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestClient_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient(&Config{BaseURL: baseURL, Timeout: time.Second})
	require.NoError(t, err)

	err = client.Delete(context.Background(), "/k/v1/records/cursor.json", map[string]any{"id": "c1"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "request failed")
}
