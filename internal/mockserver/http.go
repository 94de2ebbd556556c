package mockserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mcpconform/internal/transport"
)

// NewHTTPHandler builds the chi router the HTTP/SSE mock server listens
// with. It answers single JSON-RPC requests at "/" exactly the way
// transport.HTTP expects: issuing an Mcp-Session-Id on the first
// response and echoing it back on every later one, rejecting arrays
// outright when the engine's revision must not support batching, and
// serving a no-op "/sse" stream so StartSSE has something to attach to.
func NewHTTPHandler(e *Engine) http.Handler {
	r := chi.NewRouter()
	sessionID := uuid.NewString()

	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()

		var raw json.RawMessage
		if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Mcp-Session-Id", sessionID)

		if isBatch(raw) {
			if e.RejectsBatches() {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "batching unsupported on this revision"})
				return
			}
			var batch []*transport.Message
			if err := json.Unmarshal(raw, &batch); err != nil {
				http.Error(w, "invalid batch body", http.StatusBadRequest)
				return
			}
			responses := make([]*transport.Message, 0, len(batch))
			for _, m := range batch {
				if resp := e.Handle(m); resp != nil {
					responses = append(responses, resp)
				}
			}
			_ = json.NewEncoder(w).Encode(responses)
			return
		}

		var msg transport.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			http.Error(w, "invalid JSON-RPC message", http.StatusBadRequest)
			return
		}
		resp := e.Handle(&msg)
		if resp == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	r.Get("/sse", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		flusher, ok := w.(http.Flusher)
		if !ok {
			return
		}
		flusher.Flush()
		<-req.Context().Done()
	})

	return r
}

func isBatch(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
