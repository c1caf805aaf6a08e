package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RequestSync/pkg/logger"
)

const waitTimeout = 2 * time.Second

type inboundFrame struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Ref     string `json:"ref"`
	JoinRef string `json:"join_ref"`
}

// wsServer тестовый сервер канала: отдает соединения и принятые кадры
type wsServer struct {
	srv    *httptest.Server
	conns  chan *websocket.Conn
	frames chan inboundFrame
	auth   chan string
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()

	s := &wsServer{
		conns:  make(chan *websocket.Conn, 4),
		frames: make(chan inboundFrame, 100),
		auth:   make(chan string, 4),
	}
	upgrader := websocket.Upgrader{}

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.auth <- r.Header.Get("Authorization")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.conns <- conn

		go func() {
			for {
				var f inboundFrame
				if err := conn.ReadJSON(&f); err != nil {
					return
				}
				if f.Event == eventHeartbeat {
					continue
				}
				s.frames <- f
			}
		}()
	}))
	t.Cleanup(s.srv.Close)

	return s
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *wsServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-s.conns:
		return conn
	case <-time.After(waitTimeout):
		t.Fatal("no connection")
		return nil
	}
}

func (s *wsServer) nextFrame(t *testing.T) inboundFrame {
	t.Helper()
	select {
	case f := <-s.frames:
		return f
	case <-time.After(waitTimeout):
		t.Fatal("no frame")
		return inboundFrame{}
	}
}

func push(t *testing.T, conn *websocket.Conn, topic, event string, payload interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"topic":   topic,
		"event":   event,
		"payload": payload,
		"ref":     nil,
	}))
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c := NewClient(Options{
		URL:               url,
		HeartbeatInterval: time.Hour,
		ReconnectRate:     50,
		ReconnectBurst:    1,
	}, nil, logger.NewNop())
	t.Cleanup(func() { _ = c.Disconnect() })
	return c
}

func TestClient_ConnectSendsBearerToken(t *testing.T) {
	s := newWSServer(t)
	c := newTestClient(t, s.url())

	require.NoError(t, c.Connect(context.Background(), "secret"))
	assert.Equal(t, "Bearer secret", <-s.auth)
	assert.True(t, c.Connected())

	// повторный Connect не открывает второе соединение
	require.NoError(t, c.Connect(context.Background(), "secret"))
	s.nextConn(t)
	select {
	case <-s.conns:
		t.Fatal("unexpected second connection")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClient_JoinAndLeave(t *testing.T) {
	s := newWSServer(t)
	c := newTestClient(t, s.url())

	require.ErrorIs(t, c.Join(context.Background(), "user:u1"), ErrNotConnected)

	require.NoError(t, c.Connect(context.Background(), "t"))
	require.NoError(t, c.Join(context.Background(), "user:u1"))
	require.NoError(t, c.Join(context.Background(), "user:u1"))

	join := s.nextFrame(t)
	assert.Equal(t, "user:u1", join.Topic)
	assert.Equal(t, eventJoin, join.Event)
	assert.Equal(t, join.Ref, join.JoinRef)
	assert.Equal(t, []string{"user:u1"}, c.Topics())

	require.NoError(t, c.Leave(context.Background(), "user:u1"))
	require.NoError(t, c.Leave(context.Background(), "user:u1"))

	leave := s.nextFrame(t)
	assert.Equal(t, eventLeave, leave.Event)
	assert.Equal(t, join.JoinRef, leave.JoinRef)
	assert.Empty(t, c.Topics())
}

func TestClient_DispatchPreservesOrder(t *testing.T) {
	s := newWSServer(t)
	c := newTestClient(t, s.url())

	const total = 100
	var (
		mu       sync.Mutex
		received []int
	)
	finished := make(chan struct{})

	c.On("service-request-updated", func(msg Message) {
		var payload struct {
			Seq int `json:"seq"`
		}
		assert.NoError(t, json.Unmarshal(msg.Payload, &payload))

		mu.Lock()
		received = append(received, payload.Seq)
		if len(received) == total {
			close(finished)
		}
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background(), "t"))
	conn := s.nextConn(t)

	for i := 0; i < total; i++ {
		push(t, conn, "user:u1", "service-request-updated", map[string]int{"seq": i})
	}

	select {
	case <-finished:
	case <-time.After(waitTimeout):
		t.Fatal("events not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, seq := range received {
		assert.Equal(t, i, seq)
	}
}

func TestClient_OffAndUnhandled(t *testing.T) {
	s := newWSServer(t)
	c := newTestClient(t, s.url())

	handled := make(chan string, 10)
	unhandled := make(chan string, 10)

	sub := c.On("service-request-created", func(msg Message) { handled <- msg.Event })
	c.On(EventUnhandled, func(msg Message) { unhandled <- msg.Event })

	require.NoError(t, c.Connect(context.Background(), "t"))
	conn := s.nextConn(t)

	push(t, conn, "user:u1", "service-request-created", map[string]string{})
	assert.Equal(t, "service-request-created", <-handled)

	c.Off(sub)
	push(t, conn, "user:u1", "service-request-created", map[string]string{})
	assert.Equal(t, "service-request-created", <-unhandled)

	// служебные кадры до обработчиков не доходят
	push(t, conn, "user:u1", eventReply, map[string]string{"status": "ok"})
	push(t, conn, "user:u1", "mystery", nil)
	assert.Equal(t, "mystery", <-unhandled)
	assert.Empty(t, handled)
}

func TestClient_MalformedFrameIsDropped(t *testing.T) {
	s := newWSServer(t)
	c := newTestClient(t, s.url())

	got := make(chan Message, 1)
	c.On("service-request-expired", func(msg Message) { got <- msg })

	require.NoError(t, c.Connect(context.Background(), "t"))
	conn := s.nextConn(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	push(t, conn, "user:u1", "service-request-expired", map[string]string{"requestId": "r1"})

	select {
	case msg := <-got:
		assert.Equal(t, "user:u1", msg.Topic)
		assert.JSONEq(t, `{"requestId":"r1"}`, string(msg.Payload))
	case <-time.After(waitTimeout):
		t.Fatal("event after malformed frame not delivered")
	}
}

func TestClient_HandlerPanicDoesNotStopReading(t *testing.T) {
	s := newWSServer(t)
	c := newTestClient(t, s.url())

	got := make(chan int, 2)
	c.On("tick", func(msg Message) {
		var p struct{ N int }
		_ = json.Unmarshal(msg.Payload, &p)
		if p.N == 1 {
			panic("boom")
		}
		got <- p.N
	})

	require.NoError(t, c.Connect(context.Background(), "t"))
	conn := s.nextConn(t)

	push(t, conn, "user:u1", "tick", map[string]int{"N": 1})
	push(t, conn, "user:u1", "tick", map[string]int{"N": 2})

	select {
	case n := <-got:
		assert.Equal(t, 2, n)
	case <-time.After(waitTimeout):
		t.Fatal("reader stopped after panic")
	}
}

func TestClient_ReconnectRejoinsTopics(t *testing.T) {
	s := newWSServer(t)
	c := newTestClient(t, s.url())

	require.NoError(t, c.Connect(context.Background(), "t"))
	first := s.nextConn(t)
	<-s.auth

	for i := 1; i <= 2; i++ {
		require.NoError(t, c.Join(context.Background(), fmt.Sprintf("provider:p%d", i)))
		s.nextFrame(t)
	}

	require.NoError(t, first.Close())

	second := s.nextConn(t)
	assert.Equal(t, "Bearer t", <-s.auth)

	rejoined := map[string]bool{}
	for i := 0; i < 2; i++ {
		f := s.nextFrame(t)
		assert.Equal(t, eventJoin, f.Event)
		rejoined[f.Topic] = true
	}
	assert.Equal(t, map[string]bool{"provider:p1": true, "provider:p2": true}, rejoined)

	got := make(chan string, 1)
	c.On("new-service-request-match", func(msg Message) { got <- msg.Topic })
	push(t, second, "provider:p1", "new-service-request-match", map[string]string{})

	select {
	case topic := <-got:
		assert.Equal(t, "provider:p1", topic)
	case <-time.After(waitTimeout):
		t.Fatal("no event after reconnect")
	}
}

func TestClient_DisconnectIsIdempotent(t *testing.T) {
	s := newWSServer(t)
	c := newTestClient(t, s.url())

	require.NoError(t, c.Disconnect())

	require.NoError(t, c.Connect(context.Background(), "t"))
	require.NoError(t, c.Join(context.Background(), "user:u1"))
	require.NoError(t, c.Disconnect())
	require.NoError(t, c.Disconnect())

	assert.False(t, c.Connected())
	assert.Empty(t, c.Topics())
	assert.NoError(t, c.Leave(context.Background(), "user:u1"))
}

func TestClient_DialFailure(t *testing.T) {
	c := newTestClient(t, "ws://127.0.0.1:1/socket")

	err := c.Connect(context.Background(), "t")
	assert.ErrorIs(t, err, ErrDial)
	assert.False(t, c.Connected())
}

func TestClient_DisconnectDoesNotWaitForReconnectDial(t *testing.T) {
	const handshakeTimeout = 3 * time.Second

	upgrader := websocket.Upgrader{}
	conns := make(chan *websocket.Conn, 1)
	stalled := make(chan struct{}, 1)
	release := make(chan struct{})

	var mu sync.Mutex
	handshakes := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		handshakes++
		n := handshakes
		mu.Unlock()

		if n > 1 {
			// повторное рукопожатие зависает, пока клиент не оборвет его
			stalled <- struct{}{}
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(Options{
		URL:               "ws" + strings.TrimPrefix(srv.URL, "http"),
		HandshakeTimeout:  handshakeTimeout,
		HeartbeatInterval: time.Hour,
		ReconnectRate:     50,
		ReconnectBurst:    1,
	}, nil, logger.NewNop())

	require.NoError(t, c.Connect(context.Background(), "t"))

	var first *websocket.Conn
	select {
	case first = <-conns:
	case <-time.After(waitTimeout):
		t.Fatal("no connection")
	}
	require.NoError(t, first.Close())

	select {
	case <-stalled:
	case <-time.After(waitTimeout):
		t.Fatal("no reconnect attempt")
	}

	started := time.Now()
	require.NoError(t, c.Disconnect())
	assert.Less(t, time.Since(started), handshakeTimeout/3)

	assert.False(t, c.Connected())
	assert.Empty(t, c.Topics())
}
