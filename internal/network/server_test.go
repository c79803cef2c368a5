package network

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/memquery/internal/engine"
	"github.com/leengari/memquery/internal/storage"
)

type response struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"count"`
	Error   *ErrorBody       `json:"error"`
}

type client struct {
	conn    net.Conn
	reader  *bufio.Reader
	encoder *json.Encoder
}

func (c *client) send(t *testing.T, query string) response {
	t.Helper()
	require.NoError(t, c.encoder.Encode(Request{Query: query}))
	return c.read(t)
}

func (c *client) read(t *testing.T) response {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	line, err := c.reader.ReadBytes('\n')
	require.NoError(t, err)
	var resp response
	require.NoError(t, json.Unmarshal(line, &resp))
	return resp
}

func startServer(t *testing.T, cfg Config) string {
	t.Helper()

	eng := engine.New(storage.SourceFunc(func(context.Context) (storage.Dataset, error) {
		return storage.Dataset{
			Headers: []string{"FirstName", "Age"},
			Rows: [][]string{
				{"Pam", "25"},
				{"Gina", "30"},
				{"Sam", "32"},
			},
		}, nil
	}))
	require.NoError(t, eng.Initialize(context.Background()))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := New(eng, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return listener.Addr().String()
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &client{conn: conn, reader: bufio.NewReader(conn), encoder: json.NewEncoder(conn)}
}

func TestServer_Query(t *testing.T) {
	c := dial(t, startServer(t, Config{}))

	resp := c.send(t, "PROJECT FirstName,Age FILTER Age > 26")
	require.Nil(t, resp.Error)
	assert.Equal(t, []string{"FirstName", "Age"}, resp.Columns)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []map[string]any{
		{"FirstName": "Gina", "Age": 30.0},
		{"FirstName": "Sam", "Age": 32.0},
	}, resp.Rows)
}

func TestServer_EmptyResultHasRows(t *testing.T) {
	c := dial(t, startServer(t, Config{}))

	require.NoError(t, c.encoder.Encode(Request{Query: "PROJECT FirstName FILTER Age > 100"}))
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	line, err := c.reader.ReadBytes('\n')
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["FirstName"],"rows":[],"count":0}`, string(line))
}

func TestServer_QueryErrors(t *testing.T) {
	c := dial(t, startServer(t, Config{}))

	resp := c.send(t, "PROJECT Missing")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_COLUMN", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)

	resp = c.send(t, "PROJECT Age FILTER Age = abc")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TYPE_MISMATCH", resp.Error.Code)

	// connection stays usable after errors
	resp = c.send(t, "PROJECT Age")
	require.Nil(t, resp.Error)
	assert.Equal(t, 3, resp.Count)
}

func TestServer_MalformedRequest(t *testing.T) {
	c := dial(t, startServer(t, Config{}))

	_, err := c.conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	resp := c.read(t)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_QUERY", resp.Error.Code)
}

func TestServer_ExitClosesConnection(t *testing.T) {
	c := dial(t, startServer(t, Config{}))

	require.NoError(t, c.encoder.Encode(Request{Query: `\q`}))
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err := c.reader.ReadBytes('\n')
	assert.ErrorIs(t, err, io.EOF)
}

func TestServer_RateLimited(t *testing.T) {
	c := dial(t, startServer(t, Config{RateLimitQPS: 0.001, RateLimitBurst: 2}))

	for i := 0; i < 2; i++ {
		resp := c.send(t, "PROJECT Age")
		require.Nil(t, resp.Error)
	}

	resp := c.send(t, "PROJECT Age")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)
}

func TestServer_LimiterIsPerConnection(t *testing.T) {
	addr := startServer(t, Config{RateLimitQPS: 0.001, RateLimitBurst: 1})
	first := dial(t, addr)
	second := dial(t, addr)

	require.Nil(t, first.send(t, "PROJECT Age").Error)
	require.NotNil(t, first.send(t, "PROJECT Age").Error)
	assert.Nil(t, second.send(t, "PROJECT Age").Error)
}

func TestServer_SharedEngineAcrossConnections(t *testing.T) {
	addr := startServer(t, Config{})
	clients := []*client{dial(t, addr), dial(t, addr), dial(t, addr)}

	for _, c := range clients {
		resp := c.send(t, "PROJECT FirstName FILTER FirstName = Pam")
		require.Nil(t, resp.Error)
		assert.Equal(t, []map[string]any{{"FirstName": "Pam"}}, resp.Rows)
	}
}

func TestServer_ZeroQPSDisablesThrottling(t *testing.T) {
	c := dial(t, startServer(t, Config{RateLimitQPS: 0, RateLimitBurst: 1}))

	for i := 0; i < 20; i++ {
		require.Nil(t, c.send(t, "PROJECT Age").Error, "request %d throttled", i)
	}
}
