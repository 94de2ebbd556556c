package mockserver

import (
	"context"
	"net"
	"net/http"
	"os"
)

// Server wraps an Engine with the process-level concerns of actually
// serving it: stdio over the process's own standard streams, or HTTP+SSE
// bound to a listener.
type Server struct {
	engine *Engine
}

// NewServer builds a Server for revision, optionally misbehaving per
// variant, using the bundled default fixture catalog.
func NewServer(revision string, variant Variant) *Server {
	return &Server{engine: NewEngine(revision, variant, DefaultFixtures())}
}

// NewServerWithFixtures builds a Server from a caller-supplied fixture
// catalog instead of the bundled default.
func NewServerWithFixtures(revision string, variant Variant, tools []ToolConfig) *Server {
	return &Server{engine: NewEngine(revision, variant, tools)}
}

// ServeStdio runs the server against os.Stdin/os.Stdout until stdin
// closes or the peer sends "exit".
func (s *Server) ServeStdio() error {
	return ServeStdio(s.engine, os.Stdin, os.Stdout)
}

// ListenHTTP binds addr and serves HTTP+SSE until ctx is canceled.
// Returns the actual listening address (useful when addr's port is 0).
func (s *Server) ListenHTTP(ctx context.Context, addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}

	srv := &http.Server{Handler: NewHTTPHandler(s.engine)}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		_ = srv.Serve(ln)
	}()

	return ln.Addr().String(), nil
}
