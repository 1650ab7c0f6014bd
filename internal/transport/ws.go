package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

// WS multiplexes invocations over one WebSocket. Calls may overlap; each
// reply is matched to its caller by frame id.
type WS struct {
	conn *websocket.Conn
	log  *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Frame
	closed  bool
	done    chan struct{}
}

// DialWS connects to a host's /ws endpoint (ws:// or wss:// URL).
func DialWS(ctx context.Context, endpoint, token string, log *slog.Logger) (*WS, error) {
	if log == nil {
		log = slog.Default()
	}
	hdr := http.Header{}
	if t := strings.TrimSpace(token); t != "" {
		hdr.Set("Authorization", "Bearer "+t)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, hdr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}
	w := &WS{
		conn:    conn,
		log:     log,
		pending: map[string]chan Frame{},
		done:    make(chan struct{}),
	}
	go w.readLoop()
	return w, nil
}

func (w *WS) readLoop() {
	defer w.shutdown()
	for {
		var f Frame
		if err := w.conn.ReadJSON(&f); err != nil {
			w.mu.Lock()
			closed := w.closed
			w.mu.Unlock()
			if !closed {
				w.log.Error("ws read failed", "err", err)
			}
			return
		}
		w.mu.Lock()
		ch, ok := w.pending[f.ID]
		delete(w.pending, f.ID)
		w.mu.Unlock()
		if !ok {
			w.log.Warn("ws reply for unknown request", "id", f.ID)
			continue
		}
		ch <- f
	}
}

// shutdown fails every pending call and marks the socket closed.
func (w *WS) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
	}
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	for id, ch := range w.pending {
		close(ch)
		delete(w.pending, id)
	}
}

func (w *WS) Invoke(ctx context.Context, command string, req Request) ([]byte, error) {
	id := ulid.Make().String()
	ch := make(chan Frame, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	w.pending[id] = ch
	w.mu.Unlock()

	w.writeMu.Lock()
	err := w.conn.WriteJSON(Frame{ID: id, Command: command, Body: &req})
	w.writeMu.Unlock()
	if err != nil {
		w.forget(id)
		return nil, fmt.Errorf("failed to write message: %w", err)
	}

	select {
	case f, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if len(f.Errors) > 0 {
			return nil, &RemoteError{Errors: f.Errors}
		}
		return f.Response, nil
	case <-ctx.Done():
		w.forget(id)
		return nil, ctx.Err()
	}
}

func (w *WS) forget(id string) {
	w.mu.Lock()
	delete(w.pending, id)
	w.mu.Unlock()
}

// Close sends a close frame and tears the socket down.
func (w *WS) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.writeMu.Lock()
	_ = w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	w.writeMu.Unlock()
	err := w.conn.Close()
	<-w.done
	return err
}
