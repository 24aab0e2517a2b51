package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// LoopbackAddr binds an ephemeral port on the IPv4 loopback interface.
const LoopbackAddr = "127.0.0.1:0"

// CallbackServer serves a handler on a local listener for the lifetime of one flow.
type CallbackServer struct {
	listener net.Listener
	srv      *http.Server
	errs     chan error
}

// Listen opens the listener on addr. Nothing is served until [CallbackServer.Start].
func Listen(addr string, handler http.Handler) (*CallbackServer, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open redirect listener: %w", err)
	}

	return &CallbackServer{
		listener: l,
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		errs:     make(chan error, 1),
	}, nil
}

// URL returns the absolute URL of path on this server.
func (s *CallbackServer) URL(path string) string {
	return "http://" + s.listener.Addr().String() + path
}

// Start serves in the background. Serve failures are reported on [CallbackServer.Errors].
func (s *CallbackServer) Start() {
	go func() {
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
}

// Errors returns the channel receiving a fatal serve error.
func (s *CallbackServer) Errors() <-chan error {
	return s.errs
}

// Shutdown stops the server, waiting for in-flight requests until ctx expires.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
