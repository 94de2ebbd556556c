package mockserver

import (
	"bufio"
	"encoding/json"
	"io"

	"mcpconform/internal/transport"
)

// ServeStdio reads newline-delimited JSON-RPC messages from r and writes
// responses to w until r is exhausted, mirroring the exact framing
// transport.Stdio expects of a real server: one JSON value per line, no
// embedded newlines, non-JSON lines tolerated and skipped.
func ServeStdio(e *Engine, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		var msg transport.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		if msg.Method == "exit" {
			return nil
		}
		resp := e.Handle(&msg)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
