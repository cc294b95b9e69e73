// Package server accepts TCP connections and hands each one to the router
// on its own goroutine.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/congo-pay/teller/internal/router"
)

// Server owns the TCP listener. Connections are mutually isolated: a failure
// or panic while serving one never affects the accept loop or other
// connections.
type Server struct {
	addr   string
	router *router.Router
	logger *slog.Logger
	lis    net.Listener
}

// New instantiates the connection listener.
func New(addr string, rt *router.Router, logger *slog.Logger) *Server {
	return &Server{addr: addr, router: rt, logger: logger}
}

// Listen binds the address and runs the accept loop until Shutdown closes
// the listener.
func (s *Server) Listen() error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.Serve()
}

// Start binds the listen address without accepting yet.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.lis = lis
	s.logger.Info("server started", "addr", lis.Addr().String())
	return nil
}

// Serve runs the accept loop. Each accepted connection is served on its own
// goroutine and closed unconditionally after one request/response exchange.
func (s *Server) Serve() error {
	for {
		conn, err := s.lis.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handle(conn)
	}
}

// Addr returns the bound listener address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Shutdown closes the listener. In-flight connections finish their single
// exchange on their own goroutines.
func (s *Server) Shutdown(_ context.Context) error {
	if s.lis == nil {
		return nil
	}
	return s.lis.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while serving connection", "remote", conn.RemoteAddr().String(), "panic", r)
		}
	}()

	s.router.Handle(conn)
}
