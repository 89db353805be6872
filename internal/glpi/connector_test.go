package glpi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/config"
)

func newTestServer(t *testing.T, killCalls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/initSession":
			assert.Equal(t, "app-token", r.Header.Get("App-Token"))
			assert.Equal(t, "user_token user-token", r.Header.Get("Authorization"))
			w.Write([]byte(`{"session_token":"sess-1"}`))
		case "/Ticket/101":
			assert.Equal(t, "sess-1", r.Header.Get("Session-Token"))
			w.Write([]byte(`{"id":101,"name":"printer down","content":"<p>broken</p>","status":1,"date":"2024-03-05 09:00:00"}`))
		case "/Ticket/404":
			w.WriteHeader(http.StatusNotFound)
		case "/killSession":
			if killCalls != nil {
				*killCalls++
			}
			w.Write([]byte(`true`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

func newTestClient(url string) *Client {
	return NewClient(config.GLPIConfig{
		URL:            url,
		AppToken:       "app-token",
		UserToken:      "user-token",
		TimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestAcquireAndFetch(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	session, err := newTestClient(server.URL).Acquire(context.Background())
	require.NoError(t, err)

	ticket, err := session.Fetch(context.Background(), 101)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, 101, ticket.ID)
	assert.Equal(t, "printer down", ticket.Name)
	assert.Equal(t, "<p>broken</p>", ticket.Content)
}

func TestFetchAbsentTicketReturnsNil(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	session, err := newTestClient(server.URL).Acquire(context.Background())
	require.NoError(t, err)

	ticket, err := session.Fetch(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestReleaseIsIdempotent(t *testing.T) {
	var killCalls int
	server := newTestServer(t, &killCalls)
	defer server.Close()

	session, err := newTestClient(server.URL).Acquire(context.Background())
	require.NoError(t, err)

	session.Release(context.Background())
	session.Release(context.Background())
	assert.Equal(t, 1, killCalls, "repeated release must not re-issue the kill request")
}

func TestAcquireFailsWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Acquire(context.Background())
	assert.Error(t, err)
}
