// Package network serves the command surface over WebSocket: one JSON request
// per command, one JSON response per request.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/leengari/primdb/internal/executor"
	"github.com/leengari/primdb/internal/gate"
)

const RateLimitedMessage = "Error: rate limit exceeded, slow down"

// Request is one command. Confirm answers the confirmation prompt of
// destructive commands in advance.
type Request struct {
	Command string `json:"command"`
	Confirm bool   `json:"confirm,omitempty"`
	ReqID   int    `json:"req_id,omitempty"`
}

// Response echoes the request's ReqID next to the command result.
type Response struct {
	gate.Result
	ReqID int `json:"req_id,omitempty"`
}

var declineAll = gate.ConfirmFunc(func(string) bool { return false })

type Server struct {
	exec       *executor.Executor
	ratePerSec float64
	upgrader   websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer creates a server running commands on exec. ratePerSec limits
// commands per connection; zero or less disables the limit.
func NewServer(exec *executor.Executor, ratePerSec float64) *Server {
	return &Server{
		exec:       exec,
		ratePerSec: ratePerSec,
		upgrader: websocket.Upgrader{
			WriteBufferSize: 1024 * 10,
			ReadBufferSize:  1024 * 10,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.handleConn)
	return mux
}

// Serve listens on addr until ctx is done, then shuts down and closes every
// open connection.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	slog.Info("server listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	slog.Info("server stopped")
	return err
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
}

func (s *Server) newLimiter() *rate.Limiter {
	if s.ratePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(s.ratePerSec), max(1, int(s.ratePerSec)))
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	s.track(conn)
	defer func() {
		s.untrack(conn)
		conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	slog.Info("connection established", slog.String("remote", remote))
	limiter := s.newLimiter()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Error("unexpected close", slog.String("remote", remote), slog.String("error", err.Error()))
			} else {
				slog.Debug("connection closed", slog.String("remote", remote))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			if !s.write(conn, Response{Result: gate.Result{Message: "Error: invalid request: " + err.Error()}}) {
				return
			}
			continue
		}

		if !limiter.Allow() {
			slog.Warn("rate limited", slog.String("remote", remote))
			if !s.write(conn, Response{Result: gate.Result{Message: RateLimitedMessage}, ReqID: req.ReqID}) {
				return
			}
			continue
		}

		var confirmer gate.Confirmer = declineAll
		if req.Confirm {
			confirmer = gate.AlwaysConfirm
		}

		res, exit := s.exec.ExecuteLine(r.Context(), req.Command, confirmer)
		if !s.write(conn, Response{Result: res, ReqID: req.ReqID}) {
			return
		}
		if exit {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, res Response) bool {
	if err := conn.WriteJSON(res); err != nil {
		slog.Error("writing response", slog.String("error", err.Error()))
		return false
	}
	return true
}
