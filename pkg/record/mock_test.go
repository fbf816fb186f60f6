package record

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHTTPClient mocks the HTTPClient interface.
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Get(ctx context.Context, path string, params, result any) error {
	args := m.Called(ctx, path, params, result)
	return args.Error(0)
}

func (m *MockHTTPClient) Post(ctx context.Context, path string, params, result any) error {
	args := m.Called(ctx, path, params, result)
	return args.Error(0)
}

func (m *MockHTTPClient) Put(ctx context.Context, path string, params, result any) error {
	args := m.Called(ctx, path, params, result)
	return args.Error(0)
}

func (m *MockHTTPClient) Delete(ctx context.Context, path string, params, result any) error {
	args := m.Called(ctx, path, params, result)
	return args.Error(0)
}

// respond decodes body into the result argument of a mocked call, the way the
// transport decodes a response.
func respond(t *testing.T, body string) func(mock.Arguments) {
	t.Helper()
	return func(args mock.Arguments) {
		require.NoError(t, json.Unmarshal([]byte(body), args.Get(3)))
	}
}

func newTestClient(t *testing.T) (*Client, *MockHTTPClient) {
	t.Helper()
	httpClient := new(MockHTTPClient)
	t.Cleanup(func() { httpClient.AssertExpectations(t) })
	return NewClient(httpClient, ClientConfig{}), httpClient
}
