// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/transport/websocket.go
// Summary: Line editing sessions served over websocket connections.
// Usage: A browser terminal (e.g. xterm.js) sends keystrokes as messages and
//        renders the binary messages it gets back.

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	wsBufferSize    = 1024
	wsWriteWait     = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// WSConn presents a websocket connection as a byte stream. Each read drains
// incoming messages in order and each write becomes one binary message.
type WSConn struct {
	conn *websocket.Conn
	cur  io.Reader

	writeMu sync.Mutex
}

// NewWSConn wraps conn.
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

// Read returns io.EOF once the peer closes normally.
func (c *WSConn) Read(p []byte) (int, error) {
	for {
		if c.cur == nil {
			_, r, err := c.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					return 0, io.EOF
				}
				return 0, err
			}
			c.cur = r
		}
		n, err := c.cur.Read(p)
		if errors.Is(err, io.EOF) {
			c.cur = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (c *WSConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a close frame and closes the connection.
func (c *WSConn) Close() error {
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// Session runs one connected terminal until it ends.
type Session func(ctx context.Context, conn *WSConn) error

// Server upgrades every request to a websocket and runs a Session on it.
type Server struct {
	upgrader websocket.Upgrader
	session  Session
	logger   *log.Logger
	wg       sync.WaitGroup
}

// NewServer returns a handler running session per connection.
func NewServer(session Session, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsBufferSize,
			WriteBufferSize: wsBufferSize,
		},
		session: session,
		logger:  logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()

	c := NewWSConn(conn)
	defer c.Close()

	s.logger.Info("client connected", "remote", conn.RemoteAddr())
	if err := s.session(r.Context(), c); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("session ended with error", "remote", conn.RemoteAddr(), "err", err)
	}
	s.logger.Info("client disconnected", "remote", conn.RemoteAddr())
}

// Wait blocks until every running session has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	// Requests inherit ctx so running sessions see the shutdown too;
	// Shutdown itself does not touch hijacked connections.
	srv := &http.Server{
		Addr:        addr,
		Handler:     h,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
