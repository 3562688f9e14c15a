// Package server accepts TCP connections and serves wally requests on them,
// one goroutine per connection. Requests on a connection are answered in
// order until the client asks to close, the stream ends, or I/O fails.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/sagarc03/wally"
)

// Responder produces the response for one request. *wally.Service
// implements it.
type Responder interface {
	Respond(ctx context.Context, req *wally.Request) *wally.Response
}

// Config configures a Server.
type Config struct {
	// IdleTimeout bounds how long a connection may wait for the next
	// request and how long a response write may take. Zero disables it.
	IdleTimeout time.Duration
}

// Server serves requests on accepted connections.
type Server struct {
	responder Responder
	config    Config

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// New creates a Server answering with responder.
func New(responder Responder, config Config) *Server {
	return &Server{
		responder: responder,
		config:    config,
		conns:     make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections on ln until ctx is canceled or ln is closed.
// Other accept errors are retried with backoff. Cancellation closes the
// listener and every open connection; Serve then waits for the connection
// goroutines and returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.responder == nil {
		return fmt.Errorf("serve: %w: nil responder", wally.ErrInvalidInput)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
		s.closeConns()
	})
	defer stop()

	slog.Info("accepting connections", "addr", ln.Addr().String())

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}

			if errors.Is(err, net.ErrClosed) {
				s.closeConns()
				s.wg.Wait()
				return fmt.Errorf("serve: accept: %w", err)
			}

			// EMFILE, ECONNABORTED and friends fail one accept, not the server
			backoff = nextBackoff(backoff)
			slog.Warn("accept error, retrying", "err", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
			continue
		}
		backoff = 0

		if !s.track(conn) {
			_ = conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			newConn(s, conn).serve(ctx)
		}()
	}
}

// ActiveConns reports the number of open connections.
func (s *Server) ActiveConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

// closeConns closes every open connection and refuses new ones.
func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.conns {
		_ = c.Close()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	return min(d, time.Second)
}
