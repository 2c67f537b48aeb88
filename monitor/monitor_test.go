package monitor

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gogpu/vmap"
)

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func waitViewers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.Len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("viewers = %d, want %d", h.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testSnapshot() *vmap.Snapshot {
	m := vmap.NewMapper(640, 480)
	m.AddQuad(100, 100, 3).SetName("floor")
	return m.Snapshot()
}

func TestHubSendsHelloAndBroadcasts(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv, nil)
	hello := readMessage(t, conn)
	if hello.Type != "hello" {
		t.Fatalf("first message type = %q, want hello", hello.Type)
	}
	if _, err := uuid.Parse(hello.Client); err != nil {
		t.Errorf("client id %q is not a uuid: %v", hello.Client, err)
	}
	waitViewers(t, h, 1)

	if err := h.Broadcast(7, testSnapshot()); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "snapshot" || msg.Version != 7 {
		t.Fatalf("message = %+v", msg)
	}
	if len(msg.Snapshot.Surfaces) != 1 || msg.Snapshot.Surfaces[0].Name != "floor" {
		t.Errorf("snapshot surfaces = %+v", msg.Snapshot.Surfaces)
	}
	if msg.Snapshot.ModeName != "calibrate" {
		t.Errorf("mode = %q, want calibrate", msg.Snapshot.ModeName)
	}
}

func TestLateViewerGetsLastSnapshot(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	if err := h.Broadcast(3, testSnapshot()); err != nil {
		t.Fatal(err)
	}

	conn := dial(t, srv, nil)
	readMessage(t, conn)
	if msg := readMessage(t, conn); msg.Version != 3 {
		t.Errorf("version = %d, want 3", msg.Version)
	}
}

func TestViewerDisconnectUnregisters(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv, nil)
	readMessage(t, conn)
	waitViewers(t, h, 1)

	_ = conn.Close()
	waitViewers(t, h, 0)
}

func TestOriginCheck(t *testing.T) {
	h := NewHub([]string{"http://stage.local"})
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("dial from foreign origin succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}

	conn := dial(t, srv, http.Header{"Origin": {"http://stage.local"}})
	if msg := readMessage(t, conn); msg.Type != "hello" {
		t.Errorf("message type = %q, want hello", msg.Type)
	}
}

type fakeSource struct {
	version atomic.Uint64
	snap    atomic.Pointer[vmap.Snapshot]
}

func newFakeSource(snap *vmap.Snapshot) *fakeSource {
	f := &fakeSource{}
	f.snap.Store(snap)
	return f
}

func (f *fakeSource) Snapshot() *vmap.Snapshot { return f.snap.Load() }
func (f *fakeSource) Version() uint64          { return f.version.Load() }

func TestWatchBroadcastsOnVersionChange(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv, nil)
	readMessage(t, conn)
	waitViewers(t, h, 1)

	src := newFakeSource(testSnapshot())
	src.version.Store(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx, src, time.Millisecond) }()

	if msg := readMessage(t, conn); msg.Version != 1 {
		t.Fatalf("first version = %d, want 1", msg.Version)
	}
	src.version.Store(2)
	if msg := readMessage(t, conn); msg.Version != 2 {
		t.Fatalf("second version = %d, want 2", msg.Version)
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Watch() = %v, want context.Canceled", err)
	}
}

func TestWatchSkipsUnencodableSnapshot(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv, nil)
	readMessage(t, conn)
	waitViewers(t, h, 1)

	bad := testSnapshot()
	bad.Pointer = vmap.Pt(math.NaN(), 0)
	src := newFakeSource(bad)
	src.version.Store(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx, src, time.Millisecond) }()

	time.Sleep(20 * time.Millisecond)
	src.snap.Store(testSnapshot())
	src.version.Store(2)
	if msg := readMessage(t, conn); msg.Version != 2 {
		t.Fatalf("version = %d, want 2", msg.Version)
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Watch() = %v, want context.Canceled", err)
	}
}
