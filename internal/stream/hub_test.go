package stream

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightdrive/showcase/pkg/core"
	"github.com/nightdrive/showcase/pkg/streaming"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func connect(t *testing.T, h *Hub) *ws.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	before := h.ClientCount()
	conn, _, err := ws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return h.ClientCount() == before+1 }, time.Second, 5*time.Millisecond)
	return conn
}

func read(t *testing.T, conn *ws.Conn) streaming.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env streaming.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHello_CarriesSessionAndLatestFrame(t *testing.T) {
	h := NewHub(1, quiet())
	h.SetSession(&core.Session{ID: 3, Name: "night"})
	h.PublishFrame(core.FrameState{Frame: 41, Scene: "test"})

	conn := connect(t, h)
	env := read(t, conn)
	assert.Equal(t, streaming.TypeHello, env.Type)

	var hello streaming.HelloPayload
	require.NoError(t, json.Unmarshal(env.Payload, &hello))
	require.NotNil(t, hello.Session)
	require.NotNil(t, hello.Frame)
	assert.Equal(t, "night", hello.Session.Name)
	assert.Equal(t, uint64(41), hello.Frame.Frame)
}

func TestPublishFrame_EveryNth(t *testing.T) {
	h := NewHub(2, quiet())
	conn := connect(t, h)
	require.Equal(t, streaming.TypeHello, read(t, conn).Type)

	for i := uint64(1); i <= 4; i++ {
		h.PublishFrame(core.FrameState{Frame: i})
	}

	var got []uint64
	for range 2 {
		env := read(t, conn)
		require.Equal(t, streaming.TypeFrame, env.Type)
		var f core.FrameState
		require.NoError(t, json.Unmarshal(env.Payload, &f))
		got = append(got, f.Frame)
	}
	assert.Equal(t, []uint64{1, 3}, got)
}

func TestPublishEvent_NoticeAndEvent(t *testing.T) {
	h := NewHub(1, quiet())
	conn := connect(t, h)
	read(t, conn)

	h.PublishEvent(core.Event{Kind: core.EventNotice, Detail: "Loading 2. Bridge"})
	h.PublishEvent(core.Event{Kind: core.EventCut, Detail: "BR_Low"})

	env := read(t, conn)
	assert.Equal(t, streaming.TypeNotice, env.Type)
	var notice streaming.NoticePayload
	require.NoError(t, json.Unmarshal(env.Payload, &notice))
	assert.Equal(t, "Loading 2. Bridge", notice.Message)

	env = read(t, conn)
	assert.Equal(t, streaming.TypeEvent, env.Type)
	var ev core.Event
	require.NoError(t, json.Unmarshal(env.Payload, &ev))
	assert.Equal(t, core.EventCut, ev.Kind)
}

func TestBroadcast_NoClientsIsCheap(t *testing.T) {
	h := NewHub(1, quiet())
	h.PublishFrame(core.FrameState{Frame: 1})
	assert.Zero(t, h.Dropped())
	f := h.latest.Load()
	require.NotNil(t, f)
	assert.Equal(t, uint64(1), f.Frame)
}

func TestClientOffer_DropsWhenFull(t *testing.T) {
	c := newClient(nil, "test")
	for range sendBufferSize {
		require.True(t, c.offer([]byte("x")))
	}
	assert.False(t, c.offer([]byte("x")))
}

func TestDisconnect_RemovesClient(t *testing.T) {
	h := NewHub(1, quiet())
	conn := connect(t, h)
	read(t, conn)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClose_DisconnectsViewers(t *testing.T) {
	h := NewHub(1, quiet())
	conn := connect(t, h)
	read(t, conn)

	h.Close()
	assert.Zero(t, h.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestHub_TagsComponentOnce(t *testing.T) {
	var out lockedBuffer
	h := NewHub(1, slog.New(slog.NewTextHandler(&out, nil)))
	conn := connect(t, h)
	read(t, conn)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "viewer connected")
	}, time.Second, 5*time.Millisecond)

	var line string
	for _, l := range strings.Split(out.String(), "\n") {
		if strings.Contains(l, "viewer connected") {
			line = l
		}
	}
	assert.Equal(t, 1, strings.Count(line, "component="), line)
	assert.Contains(t, line, "component=stream")
}
