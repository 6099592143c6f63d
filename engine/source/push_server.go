package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/gorilla/websocket"
)

// Defaults for a PushServer.
const (
	DefaultPushPath  = "/scene"
	DefaultReadLimit = 8 << 20
)

// Ack is the reply written after every pushed message.
type Ack struct {
	OK      bool   `json:"ok"`
	Title   string `json:"title,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PushServer accepts descriptions pushed by an external producer over websocket. Each text or
// binary message is one JSON or YAML description and is answered with an Ack.
type PushServer interface {
	// Handler returns the websocket endpoint, for mounting on an existing mux.
	Handler() http.Handler

	// ListenAndServe serves the endpoint on the configured address until ctx is done.
	//
	// Parameters:
	//   - ctx: shuts the server down when done
	//
	// Returns:
	//   - error: a listen error, or nil after shutdown
	ListenAndServe(ctx context.Context) error

	// Addr returns the bound address once listening, otherwise the configured one.
	Addr() string
}

type pushServer struct {
	sink      Sink
	logger    *slog.Logger
	addr      string
	path      string
	readLimit int64
	upgrader  websocket.Upgrader

	mu    sync.Mutex
	bound string
}

var _ PushServer = &pushServer{}

// NewPushServer creates a PushServer delivering to sink.
//
// Parameters:
//   - sink: receives each decoded description
//   - options: functional options to configure the server
//
// Returns:
//   - PushServer: the server, not yet listening
func NewPushServer(sink Sink, options ...PushServerBuilderOption) PushServer {
	if sink == nil {
		panic("source: NewPushServer requires a sink")
	}
	ps := &pushServer{
		sink:      sink,
		logger:    slog.Default(),
		addr:      "127.0.0.1:7777",
		path:      DefaultPushPath,
		readLimit: DefaultReadLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range options {
		opt(ps)
	}
	return ps
}

func (ps *pushServer) Handler() http.Handler {
	return http.HandlerFunc(ps.serveWS)
}

func (ps *pushServer) Addr() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.bound != "" {
		return ps.bound
	}
	return ps.addr
}

func (ps *pushServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", ps.addr)
	if err != nil {
		return fmt.Errorf("source: listen %s: %w", ps.addr, err)
	}
	ps.mu.Lock()
	ps.bound = ln.Addr().String()
	ps.mu.Unlock()

	mux := http.NewServeMux()
	mux.Handle(ps.path, ps.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	ps.logger.Info("[Source] accepting pushed descriptions", "addr", ps.Addr(), "path", ps.path)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ps *pushServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := ps.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ps.logger.Warn("[Source] websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(ps.readLimit)

	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ps.logger.Debug("[Source] producer disconnected", "remote", r.RemoteAddr, "error", err)
			}
			return
		}
		if typ != websocket.TextMessage && typ != websocket.BinaryMessage {
			continue
		}
		if err := conn.WriteJSON(ps.deliver(msg)); err != nil {
			return
		}
	}
}

// deliver decodes one pushed message and hands it to the sink.
func (ps *pushServer) deliver(msg []byte) Ack {
	desc, err := description.Decode(msg, description.FormatAuto)
	if err != nil {
		ps.logger.Warn("[Source] rejected pushed description", "error", err)
		return Ack{Error: err.Error()}
	}
	err = ps.sink.OnSceneChanged(desc)
	switch {
	case err == nil:
		ps.logger.Info("[Source] pushed description applied", "title", desc.Title)
		return Ack{OK: true, Title: desc.Title}
	case IsWarning(err):
		ps.logger.Warn("[Source] pushed description applied with warnings", "title", desc.Title, "error", err)
		return Ack{OK: true, Title: desc.Title, Warning: err.Error()}
	default:
		ps.logger.Error("[Source] pushed description failed", "title", desc.Title, "error", err)
		return Ack{Title: desc.Title, Error: err.Error()}
	}
}
