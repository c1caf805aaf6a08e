package realtime

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Client клиент websocket-канала push-событий.
// Кадры имеют вид {"topic","event","payload","ref"}.
// Обработчики вызываются синхронно в горутине чтения, поэтому порядок событий сохраняется.
type Client struct {
	opts    Options
	log     Logger
	metrics MetricsRecorder
	dialer  *websocket.Dialer
	limiter *rate.Limiter

	// mu защищает соединение и список каналов; запись в соединение тоже под mu
	mu     sync.Mutex
	conn   *websocket.Conn
	token  string
	topics map[string]string // topic -> join_ref
	done   chan struct{}

	ref atomic.Uint64

	handlersMu sync.RWMutex
	handlers   map[string][]registeredHandler
	nextSubID  uint64
}

type registeredHandler struct {
	id      uint64
	handler Handler
}

// NewClient создает новый экземпляр клиента
func NewClient(opts Options, metrics MetricsRecorder, log Logger) *Client {
	opts = opts.withDefaults()

	return &Client{
		opts:    opts,
		log:     log,
		metrics: metrics,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(opts.ReconnectRate), opts.ReconnectBurst),
		topics:   make(map[string]string),
		handlers: make(map[string][]registeredHandler),
	}
}

// Connect устанавливает соединение с bearer-токеном и запускает циклы чтения и heartbeat.
// Повторный вызов при активном соединении ничего не делает.
func (c *Client) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return nil
	}

	c.token = token
	conn, err := c.dial(ctx, token)
	if err != nil {
		return err
	}

	c.conn = conn
	c.done = make(chan struct{})

	go c.run(conn, c.done)
	go c.heartbeat(c.done)

	c.log.Info("Realtime: connected to %s", c.opts.URL)
	return nil
}

// Disconnect закрывает соединение и забывает все каналы
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done == nil {
		return nil
	}

	close(c.done)
	c.done = nil
	c.topics = make(map[string]string)
	c.token = ""

	if c.conn == nil {
		return nil
	}

	conn := c.conn
	c.conn = nil

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	conn.Close()

	if err != nil {
		return fmt.Errorf("%w: close message: %v", ErrSend, err)
	}

	c.log.Info("Realtime: disconnected")
	return nil
}

// Connected возвращает true, пока клиент не отключен явно
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}

// Join подключается к каналу. Повторный вход в тот же канал ничего не делает.
func (c *Client) Join(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if _, ok := c.topics[topic]; ok {
		return nil
	}

	ref := c.nextRef()
	if err := c.writeLocked(frame{Topic: topic, Event: eventJoin, Payload: struct{}{}, Ref: ref, JoinRef: ref}); err != nil {
		return err
	}

	c.topics[topic] = ref
	c.log.Info("Realtime: joined %s", topic)
	return nil
}

// Leave покидает канал. Выход из канала, в котором клиент не состоит, ничего не делает.
func (c *Client) Leave(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	joinRef, ok := c.topics[topic]
	if !ok {
		return nil
	}
	delete(c.topics, topic)

	if c.conn == nil {
		return nil
	}

	if err := c.writeLocked(frame{Topic: topic, Event: eventLeave, Payload: struct{}{}, Ref: c.nextRef(), JoinRef: joinRef}); err != nil {
		return err
	}

	c.log.Info("Realtime: left %s", topic)
	return nil
}

// Topics возвращает каналы, в которых состоит клиент
func (c *Client) Topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	topics := make([]string, 0, len(c.topics))
	for topic := range c.topics {
		topics = append(topics, topic)
	}
	return topics
}

// On регистрирует обработчик события. EventUnhandled получает события без своего обработчика.
func (c *Client) On(event string, handler Handler) Subscription {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	c.nextSubID++
	sub := Subscription{id: c.nextSubID, event: event}
	c.handlers[event] = append(c.handlers[event], registeredHandler{id: sub.id, handler: handler})
	return sub
}

// Off снимает обработчик
func (c *Client) Off(sub Subscription) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	list := c.handlers[sub.event]
	for i, h := range list {
		if h.id == sub.id {
			c.handlers[sub.event] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(c.handlers[sub.event]) == 0 {
		delete(c.handlers, sub.event)
	}
}

func (c *Client) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.opts.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: %s: status %d: %v", ErrDial, c.opts.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDial, c.opts.URL, err)
	}
	return conn, nil
}

// run читает соединение, а при его потере переподключается, пока клиент не отключен
func (c *Client) run(conn *websocket.Conn, done chan struct{}) {
	for {
		err := c.readLoop(conn)

		select {
		case <-done:
			return
		default:
		}

		c.log.Warn("Realtime: connection lost: %v", err)
		conn.Close()

		conn = c.reconnect(conn, done)
		if conn == nil {
			return
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(raw)
	}
}

// reconnect восстанавливает соединение с ограничением частоты попыток и заново входит во все каналы
func (c *Client) reconnect(lost *websocket.Conn, done chan struct{}) *websocket.Conn {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()

	c.mu.Lock()
	if c.conn == lost {
		c.conn = nil
	}
	c.mu.Unlock()

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil
		}

		if c.metrics != nil {
			c.metrics.IncRealtimeReconnect()
		}

		// Dial идет без mu: Disconnect закрывает done и тем самым отменяет ctx
		c.mu.Lock()
		token := c.token
		c.mu.Unlock()

		conn, err := c.dial(ctx, token)
		if err != nil {
			c.log.Warn("Realtime: reconnect failed: %v", err)
			continue
		}

		c.mu.Lock()
		select {
		case <-done:
			c.mu.Unlock()
			conn.Close()
			return nil
		default:
		}

		c.conn = conn
		for topic := range c.topics {
			ref := c.nextRef()
			if err := c.writeLocked(frame{Topic: topic, Event: eventJoin, Payload: struct{}{}, Ref: ref, JoinRef: ref}); err != nil {
				c.log.Error("Realtime: failed to rejoin %s: %v", topic, err)
				continue
			}
			c.topics[topic] = ref
		}
		c.mu.Unlock()

		c.log.Info("Realtime: reconnected to %s", c.opts.URL)
		return conn
	}
}

func (c *Client) heartbeat(done chan struct{}) {
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.conn != nil {
				if err := c.writeLocked(frame{Topic: heartbeatTopic, Event: eventHeartbeat, Payload: struct{}{}, Ref: c.nextRef()}); err != nil {
					c.log.Warn("Realtime: heartbeat failed: %v", err)
				}
			}
			c.mu.Unlock()
		}
	}
}

// dispatch разбирает кадр и синхронно вызывает обработчики
func (c *Client) dispatch(raw []byte) {
	if !gjson.ValidBytes(raw) {
		c.log.Warn("Realtime: dropped malformed frame: %.200s", raw)
		return
	}

	parsed := gjson.ParseBytes(raw)
	msg := Message{
		Topic: parsed.Get("topic").String(),
		Event: parsed.Get("event").String(),
		Ref:   parsed.Get("ref").String(),
	}
	if payload := parsed.Get("payload"); payload.Exists() {
		msg.Payload = []byte(payload.Raw)
	}

	switch msg.Event {
	case "":
		c.log.Warn("Realtime: dropped frame without event on topic %s", msg.Topic)
		return
	case eventReply, eventHeartbeat:
		c.log.Debug("Realtime: %s on %s ref=%s", msg.Event, msg.Topic, msg.Ref)
		return
	case eventError, eventClose:
		c.log.Warn("Realtime: %s on %s", msg.Event, msg.Topic)
		return
	}

	c.handlersMu.RLock()
	handlers := c.handlers[msg.Event]
	if len(handlers) == 0 {
		handlers = c.handlers[EventUnhandled]
	}
	handlers = append([]registeredHandler(nil), handlers...)
	c.handlersMu.RUnlock()

	for _, h := range handlers {
		c.invoke(h.handler, msg)
	}
}

func (c *Client) invoke(handler Handler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Realtime: handler for %s panicked: %v", msg.Event, r)
		}
	}()
	handler(msg)
}

func (c *Client) writeLocked(f frame) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrSend, f.Event, f.Topic, err)
	}
	return nil
}

func (c *Client) nextRef() string {
	return strconv.FormatUint(c.ref.Add(1), 10)
}
