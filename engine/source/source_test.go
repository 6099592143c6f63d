package source

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-dream/common"
	"github.com/Carmen-Shannon/oxy-dream/engine/batch"
	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps the titles of the descriptions it receives.
type recordingSink struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (s *recordingSink) OnSceneChanged(desc *description.Description) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, desc.Title)
	return s.err
}

func (s *recordingSink) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.titles...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileWatcherLoadsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	writeFile(t, path, "title: first\n")

	sink := &recordingSink{}
	fw := NewFileWatcher(path, sink, WithDebounce(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))
	defer fw.Close()
	assert.Equal(t, []string{"first"}, sink.seen())

	writeFile(t, path, "title: second\n")
	require.Eventually(t, func() bool {
		s := sink.seen()
		return s[len(s)-1] == "second"
	}, 5*time.Second, 10*time.Millisecond)

	// a broken file is ignored and the sink keeps its last scene
	time.Sleep(50 * time.Millisecond)
	n := len(sink.seen())
	writeFile(t, path, "title: [unterminated\n")
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, sink.seen(), n)

	// other files in the directory are not ours
	writeFile(t, filepath.Join(filepath.Dir(path), "other.yaml"), "title: other\n")
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, sink.seen(), "other")
}

func TestFileWatcherStartFailsOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	writeFile(t, path, "{broken")

	fw := NewFileWatcher(path, &recordingSink{})
	err := fw.Start(context.Background())
	assert.ErrorIs(t, err, description.ErrDecode)
	assert.ErrorIs(t, fw.Start(context.Background()), ErrClosed)
	assert.NoError(t, fw.Close())
}

func TestFileWatcherStopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	writeFile(t, path, "title: a\n")
	sink := &recordingSink{}
	fw := NewFileWatcher(path, sink, WithDebounce(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, fw.Start(ctx))
	cancel()
	require.Eventually(t, func() bool { return fw.Reload() == ErrClosed }, time.Second, 5*time.Millisecond)

	writeFile(t, path, "title: b\n")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"a"}, sink.seen())
}

func dial(t *testing.T, ps PushServer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(ps.Handler())
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func push(t *testing.T, conn *websocket.Conn, msg string) Ack {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	var ack Ack
	require.NoError(t, conn.ReadJSON(&ack))
	return ack
}

func TestPushServerDeliversDescriptions(t *testing.T) {
	sink := &recordingSink{}
	conn := dial(t, NewPushServer(sink))

	assert.Equal(t, Ack{OK: true, Title: "json"}, push(t, conn, `{"title":"json"}`))
	assert.Equal(t, Ack{OK: true, Title: "yaml"}, push(t, conn, "title: yaml\nobjects:\n  - primitive: box\n"))
	// a wrong-typed field falls back to its default instead of rejecting the scene
	assert.Equal(t, Ack{OK: true, Title: "lake"}, push(t, conn, `{"title":"lake","ground":{"size":"big"},"fog":{"near":"ten"}}`))
	assert.Equal(t, []string{"json", "yaml", "lake"}, sink.seen())
}

func TestPushServerRejectsMalformedPayload(t *testing.T) {
	sink := &recordingSink{}
	conn := dial(t, NewPushServer(sink))

	ack := push(t, conn, `{"title":`)
	assert.False(t, ack.OK)
	assert.Contains(t, ack.Error, "decode")
	assert.Empty(t, sink.seen())

	// the connection survives a bad message
	assert.True(t, push(t, conn, `{"title":"ok"}`).OK)
}

func TestPushServerReportsWarningsAndFailures(t *testing.T) {
	overflow := &batch.OverflowError{Kind: common.PrimitiveCone, Capacity: 1024, Dropped: 1}
	sink := &recordingSink{err: overflow}
	conn := dial(t, NewPushServer(sink))

	ack := push(t, conn, `{"title":"forest"}`)
	assert.True(t, ack.OK)
	assert.Equal(t, overflow.Error(), ack.Warning)

	sink.mu.Lock()
	sink.err = fmt.Errorf("mesh: out of memory")
	sink.mu.Unlock()
	ack = push(t, conn, `{"title":"forest"}`)
	assert.False(t, ack.OK)
	assert.Equal(t, "mesh: out of memory", ack.Error)
}

func TestPushServerListenAndServe(t *testing.T) {
	sink := &recordingSink{}
	ps := NewPushServer(sink, WithAddr("127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- ps.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool { return !strings.HasSuffix(ps.Addr(), ":0") }, 2*time.Second, 5*time.Millisecond)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ps.Addr()+DefaultPushPath, nil)
	require.NoError(t, err)
	assert.True(t, push(t, conn, `{"title":"live"}`).OK)
	conn.Close()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
