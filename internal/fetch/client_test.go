package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(Config{
		UserAgent:      "mediadex-test",
		RequestTimeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "mediadex-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>listing</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t)
	body, err := client.Get(context.Background(), srv.URL+"/media/")
	require.NoError(t, err)
	require.Equal(t, "<html>listing</html>", string(body))
}

func TestClientGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t)
	_, err := client.Get(context.Background(), srv.URL+"/missing/")
	require.Error(t, err)
}

func TestClientGetInvalidURL(t *testing.T) {
	client := newTestClient(t)
	_, err := client.Get(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestClientSequentialFetchesAreIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	client := newTestClient(t)
	first, err := client.Get(context.Background(), srv.URL+"/one/")
	require.NoError(t, err)
	second, err := client.Get(context.Background(), srv.URL+"/two/")
	require.NoError(t, err)
	require.Equal(t, "/one/", string(first))
	require.Equal(t, "/two/", string(second))
}

type fakeNetError struct{ timeout bool }

func (e fakeNetError) Error() string   { return "fake net error" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return false }

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "wrapped deadline", err: errors.Join(errors.New("fetch"), context.DeadlineExceeded), want: true},
		{name: "net timeout", err: fakeNetError{timeout: true}, want: true},
		{name: "net non-timeout", err: fakeNetError{timeout: false}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeout(tt.err); got != tt.want {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
		})
	}
}

var _ net.Error = fakeNetError{}
