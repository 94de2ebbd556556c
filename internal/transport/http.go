package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sessionHeader = "Mcp-Session-Id"

// HTTP point-to-point POSTs a single JSON-RPC body per request. The
// server's first response may carry a session token in the Mcp-Session-Id
// header; once observed, the transport echoes it on every subsequent
// request. The session id is opaque and transport-private — it is never
// exposed to the protocol adapter or to test bodies.
type HTTP struct {
	url             string
	client          *http.Client
	protocolVersion string // conveyed via the Mcp-Protocol-Version header (2025-06-18+)
	rejectBatches   bool

	mu         sync.Mutex
	sessionID  string
	lastStatus int
	sseCancel  context.CancelFunc
}

// NewHTTP builds an HTTP transport targeting url. protocolVersion, when
// non-empty, is sent as the Mcp-Protocol-Version header on every request —
// the abstract "protocol version header" 2025-06-18 requires.
func NewHTTP(url string, protocolVersion string) *HTTP {
	return &HTTP{
		url:             url,
		protocolVersion: protocolVersion,
		client:          &http.Client{Timeout: 30 * time.Second},
	}
}

// Start probes that the URL is reachable. The MCP wire protocol has no
// dedicated handshake at the transport level, so Start issues a cheap
// probe (a POST of an empty JSON object) and treats any response (including an HTTP
// error status) as "reachable" — only a connection-level failure counts
// as unreachable.
func (h *HTTP) Start(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodPost, h.url, bytes.NewReader([]byte(`{}`)))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// Stop cancels any SSE reader goroutine. Idempotent; HTTP holds no other
// OS resource worth releasing.
func (h *HTTP) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sseCancel != nil {
		h.sseCancel()
		h.sseCancel = nil
	}
}

// LastStatusCode returns the HTTP status of the most recent request, used
// by the authorization conformance test to distinguish a 401 challenge
// from a plain 200.
func (h *HTTP) LastStatusCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastStatus
}

// SessionID returns the session token captured from the server's first
// Mcp-Session-Id response header, or "" if none has been observed yet.
// Exposed only for the session-preservation conformance test; protocol
// adapters never read it.
func (h *HTTP) SessionID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessionID
}

func (h *HTTP) do(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(body))
	if h.protocolVersion != "" {
		req.Header.Set("Mcp-Protocol-Version", h.protocolVersion)
	}

	h.mu.Lock()
	sid := h.sessionID
	h.mu.Unlock()
	if sid != "" {
		req.Header.Set(sessionHeader, sid)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.lastStatus = resp.StatusCode
	if newSID := resp.Header.Get(sessionHeader); newSID != "" {
		h.sessionID = newSID
	}
	h.mu.Unlock()

	return resp, nil
}

// SendRequest POSTs req and parses the body as the correlated response.
// Responses are matched by id, not position, since HTTP has no inherent
// ordering guarantee across a reused connection.
func (h *HTTP) SendRequest(ctx context.Context, req *Message) (*Message, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, NewError("send_request", err)
	}

	resp, err := h.do(ctx, body)
	if err != nil {
		return nil, NewError("send_request", err)
	}
	defer resp.Body.Close()

	var msg Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, NewError("send_request", fmt.Errorf("invalid JSON response (status %d): %w", resp.StatusCode, err))
	}

	if req.ID != nil && msg.ID != nil && !idsEqual(req.ID, msg.ID) {
		return nil, NewError("send_request", fmt.Errorf("response id %v does not correlate with request id %v", msg.ID, req.ID))
	}

	return &msg, nil
}

// SendNotification POSTs notif without expecting a meaningful body.
func (h *HTTP) SendNotification(ctx context.Context, notif *Message) error {
	body, err := json.Marshal(notif)
	if err != nil {
		return nil // fire-and-forget: swallow per contract
	}
	resp, err := h.do(ctx, body)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	return nil
}

// SendBatch is present so transports that can prove batch rejection (the
// 2025-06-18 conformance check) have something to call through on variants
// that do support it. The HTTP transport itself will send the array; it is
// the 2025-06-18 protocol adapter's job never to invoke this method at all
// and instead fail synchronously with ErrBatchingUnsupported.
func (h *HTTP) SendBatch(ctx context.Context, batch []*Message) ([]*Message, error) {
	if h.rejectBatches {
		return nil, ErrBatchingUnsupported
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, NewError("send_batch", err)
	}
	resp, err := h.do(ctx, body)
	if err != nil {
		return nil, NewError("send_batch", err)
	}
	defer resp.Body.Close()

	var out []*Message
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, NewError("send_batch", fmt.Errorf("invalid batch response: %w", err))
	}
	return out, nil
}

// StartSSE best-effort attaches to an SSE endpoint for server-initiated
// notifications. Absence of the endpoint or a stream error never fails a
// request; notifications observed are handed to onEvent and are purely
// informational (the adapter ignores unsolicited notifications for
// correctness purposes).
func (h *HTTP) StartSSE(ctx context.Context, sseURL string, onEvent func(event string, data []byte)) {
	sseCtx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.sseCancel = cancel
	h.mu.Unlock()

	go func() {
		req, err := http.NewRequestWithContext(sseCtx, http.MethodGet, sseURL, nil)
		if err != nil {
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := h.client.Do(req)
		if err != nil {
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		var eventName string
		var dataLines []string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			case line == "":
				if len(dataLines) > 0 && onEvent != nil {
					onEvent(eventName, []byte(strings.Join(dataLines, "\n")))
				}
				eventName, dataLines = "", nil
			}
		}
	}()
}
