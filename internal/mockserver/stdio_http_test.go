package mockserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpconform/internal/protocol"
	"mcpconform/internal/transport"
)

func TestServeStdio_RoundTripsOneLinePerMessage(t *testing.T) {
	e := NewEngine(protocol.Version20241105, VariantCompliant, nil)
	in := strings.NewReader(`{"jsonrpc":"2.0","id":"1","method":"ping"}` + "\n" + `{"jsonrpc":"2.0","method":"exit"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, ServeStdio(e, in, &out))

	var resp transport.Message
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp))
	assert.Equal(t, "1", resp.ID)
}

func TestServeStdio_SkipsNonJSONLines(t *testing.T) {
	e := NewEngine(protocol.Version20241105, VariantCompliant, nil)
	in := strings.NewReader("not json at all\n" + `{"jsonrpc":"2.0","id":"1","method":"ping"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, ServeStdio(e, in, &out))
	assert.Contains(t, out.String(), `"id":"1"`)
}

func TestNewHTTPHandler_IssuesAndEchoesSessionID(t *testing.T) {
	e := NewEngine(protocol.Version20241105, VariantCompliant, nil)
	srv := httptest.NewServer(NewHTTPHandler(e))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/", "application/json", strings.NewReader(`{"jsonrpc":"2.0","id":"1","method":"ping"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	sessionID := resp.Header.Get("Mcp-Session-Id")
	assert.NotEmpty(t, sessionID)

	second, err := http.NewRequest(http.MethodPost, srv.URL+"/", strings.NewReader(`{"jsonrpc":"2.0","id":"2","method":"ping"}`))
	require.NoError(t, err)
	second.Header.Set("Content-Type", "application/json")
	second.Header.Set("Mcp-Session-Id", sessionID)
	resp2, err := http.DefaultClient.Do(second)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, sessionID, resp2.Header.Get("Mcp-Session-Id"))
}

func TestNewHTTPHandler_RejectsBatchOn20250618(t *testing.T) {
	e := NewEngine(protocol.Version20250618, VariantCompliant, nil)
	srv := httptest.NewServer(NewHTTPHandler(e))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/", "application/json", strings.NewReader(`[{"jsonrpc":"2.0","id":"1","method":"ping"}]`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewHTTPHandler_AcceptsBatchOn20241105(t *testing.T) {
	e := NewEngine(protocol.Version20241105, VariantCompliant, nil)
	srv := httptest.NewServer(NewHTTPHandler(e))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/", "application/json", strings.NewReader(`[{"jsonrpc":"2.0","id":"1","method":"ping"},{"jsonrpc":"2.0","id":"2","method":"ping"}]`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out []transport.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out, 2)
}

func TestNewHTTPHandler_NotificationGets202WithEmptyBody(t *testing.T) {
	e := NewEngine(protocol.Version20241105, VariantCompliant, nil)
	srv := httptest.NewServer(NewHTTPHandler(e))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/", "application/json", strings.NewReader(`{"jsonrpc":"2.0","method":"initialized"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestIsBatch_DetectsLeadingArrayIgnoringWhitespace(t *testing.T) {
	assert.True(t, isBatch(json.RawMessage("  \n[1,2]")))
	assert.False(t, isBatch(json.RawMessage("  {\"a\":1}")))
}
