package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/platform/cache"
)

func dial(t *testing.T, srv *httptest.Server, origin string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubBroadcastsBumps(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(nil, "http://localhost:5173")
	require.NoError(t, hub.Run(ctx, c))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "http://localhost:5173")
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	ver, err := c.Bump(ctx)
	require.NoError(t, err)

	var evt Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "update", evt.Event)
	assert.Equal(t, ver, evt.Version)
	assert.NotEmpty(t, evt.At)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := NewHub(nil, "http://localhost:5173")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.Count())
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(nil, "")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	_ = conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(7)
	hub.Close()
}
