package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct {
	status int
	msg    string
}

func (e statusErr) Error() string   { return e.msg }
func (e statusErr) StatusCode() int { return e.status }

type fakeHandler struct {
	mu        sync.Mutex
	calls     []ToolCall
	requestID string
	result    interface{}
	err       error
	health    HealthStatus
}

func (f *fakeHandler) CallTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ToolCall{Name: name, Arguments: args})
	f.requestID = RequestID(ctx)
	return f.result, f.err
}

func (f *fakeHandler) Health(context.Context) HealthStatus {
	return f.health
}

func newTestServer(t *testing.T, h *fakeHandler) *httptest.Server {
	t.Helper()
	reg := NewServer()
	require.NoError(t, reg.RegisterTool(Tool{
		Name:        "content.find",
		Description: "Query content entries with filters",
		Parameters: []ToolParameter{
			{Name: "contentType", Type: "string", Description: "The content type to query", Required: true},
		},
	}))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewHTTPServer(reg, h, ServerInfo{Name: "test", Version: "0"}, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	connected := true
	srv := newTestServer(t, &fakeHandler{health: HealthStatus{Status: StatusHealthy, StrapiConnected: &connected}})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"status": "healthy", "strapi_connected": true}, decodeBody(t, resp))

	srv = newTestServer(t, &fakeHandler{health: HealthStatus{Status: StatusUnhealthy, Error: "connection refused"}})
	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"status": "unhealthy", "error": "connection refused"}, decodeBody(t, resp))
}

func TestListToolsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeHandler{})

	resp, err := http.Get(srv.URL + "/tools/list")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	tools := body["tools"].([]interface{})
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]interface{})
	assert.Equal(t, "content.find", tool["name"])
	params := tool["parameters"].([]interface{})
	assert.Equal(t, map[string]interface{}{
		"name":        "contentType",
		"type":        "string",
		"description": "The content type to query",
		"required":    true,
	}, params[0])
}

func TestResourcesEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeHandler{})

	resp, err := http.Get(srv.URL + "/resources/list")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"resources": []interface{}{}}, decodeBody(t, resp))
}

func TestToolCallEndpoint(t *testing.T) {
	h := &fakeHandler{result: map[string]interface{}{"data": []interface{}{}}}
	srv := newTestServer(t, h)

	resp, err := http.Post(srv.URL+"/tools/call?name=content.find", "application/json", strings.NewReader(`{"contentType":"posts"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, map[string]interface{}{"data": []interface{}{}}, decodeBody(t, resp))

	require.Len(t, h.calls, 1)
	assert.Equal(t, "content.find", h.calls[0].Name)
	assert.Equal(t, map[string]interface{}{"contentType": "posts"}, h.calls[0].Arguments)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), h.requestID)
}

func TestToolCallEndpointEmptyBody(t *testing.T) {
	h := &fakeHandler{result: map[string]interface{}{}}
	srv := newTestServer(t, h)

	resp, err := http.Post(srv.URL+"/tools/call?name=content.list", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, h.calls, 1)
	assert.Equal(t, map[string]interface{}{}, h.calls[0].Arguments)
}

func TestToolCallEndpointErrors(t *testing.T) {
	h := &fakeHandler{err: statusErr{status: http.StatusNotFound, msg: "Failed to fetch posts/1"}}
	srv := newTestServer(t, h)

	resp, err := http.Post(srv.URL+"/tools/call?name=content.findOne", "application/json", strings.NewReader(`{"contentType":"posts","id":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"detail": "Failed to fetch posts/1"}, decodeBody(t, resp))

	resp, err = http.Post(srv.URL+"/tools/call", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/tools/call?name=content.find", "application/json", strings.NewReader(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/tools/call?name=content.find")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()

	assert.Len(t, h.calls, 1)

	for _, upstream := range []int{http.StatusNoContent, http.StatusCreated, http.StatusNotModified} {
		noBody := newTestServer(t, &fakeHandler{err: statusErr{status: upstream, msg: "Failed to delete posts/1"}})
		resp, err = http.Post(noBody.URL+"/tools/call?name=content.delete", "application/json", strings.NewReader(`{"contentType":"posts","id":"1"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode, "upstream %d", upstream)
		assert.Equal(t, map[string]interface{}{
			"detail":          "Failed to delete posts/1",
			"upstream_status": float64(upstream),
		}, decodeBody(t, resp))
	}
}

func TestToolCallBodyTooLarge(t *testing.T) {
	h := &fakeHandler{result: map[string]interface{}{}}
	srv := newTestServer(t, h)

	big := `{"contentType":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	resp, err := http.Post(srv.URL+"/tools/call?name=content.find", "application/json", strings.NewReader(big))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"detail": "Request body too large"}, decodeBody(t, resp))

	resp, err = http.Post(srv.URL+"/message", "application/json", strings.NewReader(big))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	assert.Empty(t, h.calls)
}

func TestToolCallKeepsLargeIntegers(t *testing.T) {
	h := &fakeHandler{result: map[string]interface{}{
		"data": map[string]interface{}{"id": json.Number("9007199254740993")},
	}}
	srv := newTestServer(t, h)

	resp, err := http.Post(srv.URL+"/tools/call?name=content.delete", "application/json",
		strings.NewReader(`{"contentType":"posts","id":9007199254740993}`))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":{"id":9007199254740993}}`, string(raw))
	assert.Contains(t, string(raw), "9007199254740993")
	require.Len(t, h.calls, 1)
	assert.Equal(t, json.Number("9007199254740993"), h.calls[0].Arguments["id"])
}

func TestToolCallPlainErrorIs500(t *testing.T) {
	h := &fakeHandler{err: io.ErrUnexpectedEOF}
	srv := newTestServer(t, h)

	resp, err := http.Post(srv.URL+"/tools/call?name=content.find", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"detail": "unexpected EOF"}, decodeBody(t, resp))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeHandler{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/tools/call", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMessageEndpoint(t *testing.T) {
	h := &fakeHandler{result: map[string]interface{}{"ok": true}}
	srv := newTestServer(t, h)

	resp, err := http.Post(srv.URL+"/message", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"content.find","arguments":{"contentType":"posts"}}}`))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["id"])
	result := body["result"].(map[string]interface{})
	content := result["content"].([]interface{})
	assert.Contains(t, content[0].(map[string]interface{})["text"], `"ok": true`)

	resp, err = http.Post(srv.URL+"/message", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestSSEAnnouncesEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeHandler{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: endpoint\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: /message\n", line)
}
