// Package server exposes a transport.Transport (normally the backend
// resolver) over HTTP and WebSocket.
//
//	POST /{command}   body {query, variables}; 200 with the response document
//	GET  /ws          frames {id, command, body} answered by {id, response|errors}
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/felixge/httpsnoop"
	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/tada/internal/transport"
)

// maxBody bounds a single request document.
const maxBody = 1 << 20

type Server struct {
	t     transport.Transport
	log   *slog.Logger
	token string

	upgrader websocket.Upgrader
}

type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = strings.TrimSpace(token)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func New(t transport.Transport, opts ...Option) *Server {
	s := &Server{
		t:   t,
		log: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler is the routed, logged and (when a token is set) authenticated handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.accessLog)
	r.Use(s.requireToken)
	r.Methods(http.MethodGet).Path("/ws").HandlerFunc(s.serveWS)
	r.Methods(http.MethodPost).Path("/{command}").HandlerFunc(s.invoke)
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.log.Info("handled", "method", r.Method, "url", r.URL, "duration", m.Duration, "status", m.Code)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				writeErrors(w, http.StatusUnauthorized, []transport.ErrorEntry{{Message: "unauthorized"}})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeErrors(w http.ResponseWriter, status int, entries []transport.ErrorEntry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": entries})
}

// errorEntries splits a failed invocation into its GraphQL errors and an
// HTTP status: 400 for errors the host reported, 500 for anything else.
func errorEntries(err error) (int, []transport.ErrorEntry) {
	var re *transport.RemoteError
	if errors.As(err, &re) {
		return http.StatusBadRequest, re.Errors
	}
	return http.StatusInternalServerError, []transport.ErrorEntry{{Message: err.Error()}}
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	command := mux.Vars(r)["command"]
	var req transport.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, []transport.ErrorEntry{{Message: "invalid request body: " + err.Error()}})
		return
	}
	out, err := s.t.Invoke(r.Context(), command, req)
	if err != nil {
		status, entries := errorEntries(err)
		s.log.Debug("invoke failed", "command", command, "err", err)
		writeErrors(w, status, entries)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(out); err != nil {
		s.log.Error("failed to write out", "err", err)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("failed to upgrade", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	var writeMu sync.Mutex
	reply := func(f transport.Frame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(f)
	}

	for {
		var f transport.Frame
		if err := conn.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("ws read ended", "err", err)
			}
			break
		}
		g.Go(func() error {
			return reply(s.handleFrame(gctx, f))
		})
	}
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Debug("ws writer stopped", "err", err)
	}
}

func (s *Server) handleFrame(ctx context.Context, f transport.Frame) transport.Frame {
	out := transport.Frame{ID: f.ID}
	if f.Body == nil {
		out.Errors = []transport.ErrorEntry{{Message: "missing body"}}
		return out
	}
	resp, err := s.t.Invoke(ctx, f.Command, *f.Body)
	if err != nil {
		_, out.Errors = errorEntries(err)
		return out
	}
	out.Response = resp
	return out
}
