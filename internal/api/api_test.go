package api_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stonecluster/internal/api"
	"github.com/mcoot/stonecluster/internal/api/apierr"
	"github.com/mcoot/stonecluster/internal/api/response"
	"github.com/mcoot/stonecluster/internal/factory"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/protocol"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
	cancel  context.CancelFunc
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go app.Hub.Run(ctx)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		RoomController: app.RoomController,
		Hub:            app.Hub,
		Rules:          app.Rules,
	})

	return &testServer{
		handler: router,
		app:     app,
		cancel:  cancel,
	}
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createRoom(t *testing.T, code, host string) {
	t.Helper()
	ts.app.MockRandom.QueueString(code)
	_, err := ts.app.RoomController.CreateRoom(context.Background(), model.ConnectionID("conn-"+host), host)
	require.NoError(t, err)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Connections)
}

func TestHealthCheckWhenRelayStopped(t *testing.T) {
	ts := newTestServer(t)
	ts.cancel()

	assert.Eventually(t, func() bool {
		return ts.request(http.MethodGet, "/api/v1/health").Code == http.StatusServiceUnavailable
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetRules(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rules")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Rules
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, model.DefaultRuleset(), resp.ToModel())
	assert.Equal(t, model.StonesPerPlayer, resp.StonesPerPlayer)
}

func TestListRooms(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"rooms":[]}`, rr.Body.String())

	ts.createRoom(t, "BBBBBB", "Bob")
	ts.createRoom(t, "AAAAAA", "Ann")

	rr = ts.request(http.MethodGet, "/api/v1/rooms")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.RoomList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Rooms, 2)
	assert.Equal(t, "AAAAAA", resp.Rooms[0].Code)
	assert.Equal(t, "BBBBBB", resp.Rooms[1].Code)
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ABC234", "Ann")

	rr := ts.request(http.MethodGet, "/api/v1/rooms/ABC234")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "token")

	var resp response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ABC234", resp.Code)
	assert.Equal(t, "waiting", resp.State)
	require.Len(t, resp.Members, 1)
	assert.Equal(t, "Ann", resp.Members[0].Name)
	assert.True(t, resp.Members[0].Connected)
	assert.Equal(t, []int{12, 12}, resp.StonesLeft)
	assert.Nil(t, resp.WinnerID)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/ZZZZZZ")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeRoomNotFound, decodeError(t, rr).Code)
}

func TestGetRoomBadCode(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestWebsocketRouteUpgrades(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	ts.app.MockRandom.QueueString("WSROOM")
	msg, err := protocol.Encode(protocol.TypeCreateRoom, protocol.CreateRoom{Name: "Ann"})
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, msg))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	env, err := protocol.DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeRoomCreated, env.T)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/WSROOM")
	assert.Equal(t, http.StatusOK, rr.Code)
}
