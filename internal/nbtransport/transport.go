// Package nbtransport carries the inbound assertion stream and the
// outbound fired-action stream over a WebSocket as newline-delimited
// JSON (spec §6, supplemented): not a reimplementation of any
// network-protocol module, just the generic wire the narrow Engine API
// is defined against.
//
// Grounded on internal/network/websocket.go and websocket_server.go's
// WebSocketConn/WebSocketServer shape (a gorilla/websocket upgrader, a
// per-connection read goroutine, a Clients map guarded by a RWMutex) —
// generalized from that module's raw byte-message send/receive pair to
// a single JSON record type per direction, and from many independent
// per-connection goroutines freely reentering shared state to every
// inbound record being serialized through one listener-wide mutex
// before it ever reaches the Engine (SPEC_FULL.md §5: "every inbound
// message is handed to Engine.AssertAndReact synchronously... preserving
// the serialize entry into the engine rule").
package nbtransport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbengine"
	"nodebrain/internal/nberrors"
	"nodebrain/internal/nbstore"
)

// AssertionRecord is one inbound `{term, expr}` line: expr is read with
// nbstore.ParseLiteral, the same literal grammar the log replay path
// uses, since no tokenizer/parser component is in scope anywhere in
// this codebase.
type AssertionRecord struct {
	Term string `json:"term"`
	Expr string `json:"expr"`
}

// ActionRecord is one outbound fired-rule line, mirroring
// nbcondition.Action's context/command pair.
type ActionRecord struct {
	Context string `json:"context"`
	Command string `json:"command"`
}

// Conn is one upgraded WebSocket connection, readable as a stream of
// AssertionRecord lines and writable as a stream of ActionRecord lines.
type Conn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// WriteActions sends every action fired by the React call that
// produced them back down the connection, one JSON object per line.
func (c *Conn) WriteActions(actions []ActionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range actions {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(w).Encode(a); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// Listener accepts WebSocket connections on one HTTP address and feeds
// every inbound AssertionRecord line to an Engine via
// Engine.AssertAndReact, serialized by engineMu across every connection
// it ever accepts.
type Listener struct {
	engine   *nbengine.Engine
	context  *nbcell.Term
	store    *nbstore.Store
	upgrader websocket.Upgrader
	server   *http.Server

	engineMu sync.Mutex

	mu    sync.RWMutex
	conns map[string]*Conn
	next  int
}

// NewListener builds a Listener bound to engine, rooting every
// replayed/asserted term at context. store is optional: when non-nil,
// every accepted assertion is appended to it before being applied, so a
// process crash between accept and the next restart still has a
// replayable log (SPEC_FULL.md §6's nbstore/nbtransport pairing).
func NewListener(engine *nbengine.Engine, context_ *nbcell.Term, store *nbstore.Store) *Listener {
	return &Listener{
		engine:  engine,
		context: context_,
		store:   store,
		conns:   make(map[string]*Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ListenAndServe starts the HTTP upgrade endpoint at addr and blocks
// until ctx is canceled or the server errors. A single handler path
// (serveHTTP) upgrades every request; there is no routing beyond it,
// since the transport is a single narrow assertion feed, not a general
// web server.
func (l *Listener) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", l.serveHTTP)
	l.server = &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- l.server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return l.server.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (l *Listener) serveHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	l.mu.Lock()
	l.next++
	id := fmt.Sprintf("conn-%d", l.next)
	c := &Conn{id: id, conn: wsConn}
	l.conns[id] = c
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.conns, id)
		l.mu.Unlock()
		wsConn.Close()
	}()

	l.readLoop(c)
}

// readLoop decodes one AssertionRecord per text message and applies it
// to the Engine, writing back any actions the resulting React fired.
// It runs on the accepting goroutine (one per connection, as in
// websocket.go's readMessages), but every call into the Engine itself
// is taken under engineMu, so two connections asserting concurrently
// still serialize into one request at a time.
func (l *Listener) readLoop(c *Conn) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var rec AssertionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			l.engine.Log.Err(nberrors.Userf("nbtransport: malformed assertion record: %v", err))
			continue
		}
		if err := l.apply(rec); err != nil {
			l.engine.Log.Err(err)
		}
	}
}

// apply parses rec's literal, appends it to the store (if configured),
// asserts it via Engine.AssertAndReact, and broadcasts any fired
// actions to every open connection.
func (l *Listener) apply(rec AssertionRecord) error {
	l.engineMu.Lock()
	defer l.engineMu.Unlock()

	value, err := nbstore.ParseLiteral(l.engine, rec.Expr)
	if err != nil {
		return err
	}
	if l.store != nil {
		if _, err := l.store.Append(context.Background(), rec.Term, rec.Expr); err != nil {
			return err
		}
	}
	_, actions, _, err := l.engine.AssertAndReact(l.context, rec.Term, value)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		return nil
	}
	out := make([]ActionRecord, len(actions))
	for i, a := range actions {
		out[i] = ActionRecord{Context: a.Context, Command: a.Command}
	}
	l.mu.RLock()
	conns := make([]*Conn, 0, len(l.conns))
	for _, c := range l.conns {
		conns = append(conns, c)
	}
	l.mu.RUnlock()
	for _, c := range conns {
		if err := c.WriteActions(out); err != nil {
			l.engine.Log.Err(nberrors.Userf("nbtransport: broadcast to %s failed: %v", c.id, err))
		}
	}
	return nil
}

// Dial connects to a Listener's endpoint as a client, for feeding an
// assertion stream in and reading fired-action records back (used by
// this package's tests).
func Dial(url string) (*ClientConn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, nberrors.Fatalf("nbtransport: dial %s: %v", url, err)
	}
	return &ClientConn{conn: conn}, nil
}

// ClientConn is the dialer-side counterpart of Conn.
type ClientConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Assert sends one assertion record.
func (c *ClientConn) Assert(term, expr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(AssertionRecord{Term: term, Expr: expr})
}

// ReadAction blocks for the next fired-action record.
func (c *ClientConn) ReadAction() (ActionRecord, error) {
	var rec ActionRecord
	err := c.conn.ReadJSON(&rec)
	return rec, err
}

// Close closes the client connection.
func (c *ClientConn) Close() error { return c.conn.Close() }
