package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stonecluster/internal/testutil"
)

// echoServer echoes frames back. The first connection is dropped after its
// first echo when dropFirst is set; connections after the first are refused
// when refuseRedial is set.
func echoServer(t *testing.T, dropFirst, refuseRedial bool) *httptest.Server {
	t.Helper()
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		if n > 1 && refuseRedial {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			mt, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(mt, data); err != nil {
				return
			}
			if n == 1 && dropFirst {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func testChannelConfig(url string) ChannelConfig {
	cfg := DefaultChannelConfig(url)
	cfg.MaxRetries = 2
	cfg.RetryInterval = 10 * time.Millisecond
	return cfg
}

func receive(t *testing.T, ch NetworkChannel) (Incoming, bool) {
	t.Helper()
	select {
	case in, ok := <-ch.Inbound():
		return in, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbound")
		return Incoming{}, false
	}
}

func TestWebsocketChannelRoundTrip(t *testing.T) {
	srv := echoServer(t, false, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := DialWebsocket(ctx, testChannelConfig(wsURL(srv)), testutil.NopLogger())
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.Send(ctx, []byte("first")))
	require.NoError(t, ch.Send(ctx, []byte("second")))

	in, ok := receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, "first", string(in.Data))
	in, ok = receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, "second", string(in.Data))
}

func TestWebsocketChannelReconnects(t *testing.T) {
	srv := echoServer(t, true, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := DialWebsocket(ctx, testChannelConfig(wsURL(srv)), testutil.NopLogger())
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.Send(ctx, []byte("hello")))
	in, ok := receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, "hello", string(in.Data))

	in, ok = receive(t, ch)
	require.True(t, ok)
	assert.True(t, in.Reconnected)

	require.NoError(t, ch.Send(ctx, []byte("again")))
	in, ok = receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, "again", string(in.Data))
}

func TestWebsocketChannelGivesUpAfterRetries(t *testing.T) {
	srv := echoServer(t, true, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := DialWebsocket(ctx, testChannelConfig(wsURL(srv)), testutil.NopLogger())
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.Send(ctx, []byte("hello")))
	in, ok := receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, "hello", string(in.Data))

	_, ok = receive(t, ch)
	assert.False(t, ok)
	assert.ErrorIs(t, ch.Err(), ErrConnectionLost)
}

func TestDialWebsocketFailsWhenUnreachable(t *testing.T) {
	srv := echoServer(t, false, false)
	url := wsURL(srv)
	srv.Close()

	_, err := DialWebsocket(context.Background(), testChannelConfig(url), testutil.NopLogger())
	assert.ErrorIs(t, err, ErrConnectionLost)
}

func TestWebsocketChannelClose(t *testing.T) {
	srv := echoServer(t, false, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := DialWebsocket(ctx, testChannelConfig(wsURL(srv)), testutil.NopLogger())
	require.NoError(t, err)

	require.NoError(t, ch.Close())

	_, ok := receive(t, ch)
	assert.False(t, ok)
	assert.NoError(t, ch.Err())
	assert.ErrorIs(t, ch.Send(ctx, []byte("late")), ErrChannelClosed)
}
