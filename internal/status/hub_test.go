package status

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/sonos-remote-go/internal/remote"
)

type fixedSource struct {
	status remote.Status
}

func (s fixedSource) Status() remote.Status {
	return s.status
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) remote.Status {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var snapshot remote.Status
	require.NoError(t, conn.ReadJSON(&snapshot))
	return snapshot
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.Subscribers() == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubSendsCurrentSnapshotOnConnect(t *testing.T) {
	source := fixedSource{status: remote.Status{Object: "remote_status", Connected: true, Volume: 40}}
	hub := NewHub(source, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	snapshot := readSnapshot(t, conn)
	require.True(t, snapshot.Connected)
	require.Equal(t, 40, snapshot.Volume)
}

func TestHubPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub(nil, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	first := dial(t, srv)
	second := dial(t, srv)
	waitForSubscribers(t, hub, 2)

	hub.Publish(remote.Status{Object: "remote_status", Playing: true, Volume: 15})

	for _, conn := range []*websocket.Conn{first, second} {
		snapshot := readSnapshot(t, conn)
		require.True(t, snapshot.Playing)
		require.Equal(t, 15, snapshot.Volume)
	}
}

func TestHubDropsClosedSubscribers(t *testing.T) {
	hub := NewHub(nil, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	waitForSubscribers(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForSubscribers(t, hub, 0)
}

func TestHubClose(t *testing.T) {
	hub := NewHub(nil, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	dial(t, srv)
	waitForSubscribers(t, hub, 1)

	hub.Close()
	require.Zero(t, hub.Subscribers())
}
