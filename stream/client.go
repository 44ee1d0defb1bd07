// Package stream maintains the push connection to the backend's WebSocket
// endpoint and fans decoded events out to subscribers.
package stream

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/internal/broadcast"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrDisconnected is returned by Connect when Disconnect ran while the dial
// was in flight.
var ErrDisconnected = errors.New("stream: disconnected while connecting")

const (
	DefaultReconnectDelay       = 5 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultMaxReconnectDelay    = 30 * time.Second
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultHeartbeatTimeout     = 10 * time.Second
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultAuthHeader           = "x-auth-token"
	DefaultClientIDHeader       = "x-client-id"
)

// Options configures a Client. Zero values take the defaults above.
type Options struct {
	// URL is the ws:// or wss:// endpoint. See EndpointFromAPI.
	URL string

	Tokens         api.TokenSource
	AuthHeader     string
	ClientIDHeader string
	ClientID       string

	// ReconnectDelay is the wait before the first reconnect attempt. With
	// BackoffMultiplier <= 1 every attempt waits exactly this long.
	ReconnectDelay       time.Duration
	BackoffMultiplier    float64
	MaxReconnectDelay    time.Duration
	MaxReconnectAttempts int

	// HeartbeatInterval is how often a WebSocket ping is sent. Negative
	// disables heartbeats.
	HeartbeatInterval time.Duration
	// HeartbeatTimeout is how long past a missed pong the connection may
	// stay silent before it is considered lost.
	HeartbeatTimeout time.Duration

	HandshakeTimeout   time.Duration
	InsecureSkipVerify bool

	// Buffer is the per-subscriber event queue length.
	Buffer int
}

func (o Options) withDefaults() Options {
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.MaxReconnectAttempts <= 0 {
		o.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if o.MaxReconnectDelay < o.ReconnectDelay {
		o.MaxReconnectDelay = max(DefaultMaxReconnectDelay, o.ReconnectDelay)
	}
	if o.HeartbeatInterval == 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.HeartbeatTimeout == 0 {
		o.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.AuthHeader == "" {
		o.AuthHeader = DefaultAuthHeader
	}
	if o.ClientIDHeader == "" {
		o.ClientIDHeader = DefaultClientIDHeader
	}
	if o.ClientID == "" {
		o.ClientID = uuid.NewString()
	}
	return o
}

// newPolicy returns the reconnect delay policy. A multiplier of 1 or less
// yields a fixed delay.
func newPolicy(o Options) backoff.BackOff {
	if o.BackoffMultiplier <= 1 {
		return backoff.NewConstantBackOff(o.ReconnectDelay)
	}
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(o.ReconnectDelay),
		backoff.WithMultiplier(o.BackoffMultiplier),
		backoff.WithMaxInterval(o.MaxReconnectDelay),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
}

// EndpointFromAPI derives the push endpoint from the REST base URL: http
// becomes ws, https becomes wss, and a trailing /api segment is replaced by
// /ws. A base URL without /api gets /ws appended.
func EndpointFromAPI(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parsing api url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("api url %q: unsupported scheme %q", apiURL, u.Scheme)
	}
	p := strings.TrimRight(u.Path, "/")
	if strings.HasSuffix(p, "/api") {
		p = strings.TrimSuffix(p, "/api")
	}
	u.Path = p + "/ws"
	return u.String(), nil
}

// connection is one live socket. Writes are serialised by mu.
type connection struct {
	ws   *websocket.Conn
	gen  uint64
	done chan struct{}
	once sync.Once
	mu   sync.Mutex
}

func (cn *connection) write(data []byte) error {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	return cn.ws.WriteMessage(websocket.TextMessage, data)
}

func (cn *connection) ping(timeout time.Duration) error {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	return cn.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeout))
}

func (cn *connection) close(graceful bool) {
	cn.once.Do(func() {
		close(cn.done)
		if graceful {
			cn.mu.Lock()
			_ = cn.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"),
				time.Now().Add(time.Second))
			cn.mu.Unlock()
		}
		_ = cn.ws.Close()
	})
}

// Client is a single best-effort push connection with bounded automatic
// reconnection.
type Client struct {
	opts   Options
	dialer *websocket.Dialer
	log    *zap.SugaredLogger

	events *broadcast.Hub[Event]
	states broadcast.Cell[ConnectionState]

	mu       sync.Mutex
	state    ConnectionState
	cur      *connection
	gen      uint64
	attempts int
	policy   backoff.BackOff
	timer    *time.Timer
	closed   bool

	wg sync.WaitGroup
}

// New creates a Client. It does not connect.
func New(opts Options) *Client {
	opts = opts.withDefaults()
	c := &Client{
		opts: opts,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		log:    zap.S().Named("stream"),
		events: broadcast.NewHub[Event](opts.Buffer),
		policy: newPolicy(opts),
	}
	if opts.InsecureSkipVerify {
		c.dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in per server profile
	}
	c.events.OnDrop = func(missed int) {
		c.log.Warnw("subscriber queue full, event dropped", "subscribers", missed)
	}
	c.states.Set(Disconnected)
	return c
}

// ClientID is the id sent in the client id header.
func (c *Client) ClientID() string {
	return c.opts.ClientID
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// States streams connection state changes, starting with the current one.
func (c *Client) States() *broadcast.Subscription[ConnectionState] {
	return c.states.Subscribe()
}

// Attempts returns the number of reconnects scheduled since the last
// successful open.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Client) setStateLocked(s ConnectionState) {
	if c.state == s {
		return
	}
	c.state = s
	c.states.Set(s)
	c.log.Debugw("connection state", "state", s)
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set(c.opts.ClientIDHeader, c.opts.ClientID)
	if c.opts.Tokens != nil {
		if tok := c.opts.Tokens.Token(); tok != "" {
			if strings.EqualFold(c.opts.AuthHeader, "Authorization") {
				tok = "Bearer " + tok
			}
			h.Set(c.opts.AuthHeader, tok)
		}
	}
	return h
}

// Connect opens the connection. It is a no-op while a connection is open
// or being opened. A failed dial is returned and also schedules an
// automatic retry if attempts remain.
func (c *Client) Connect(ctx context.Context) error {
	return c.open(ctx, false, 0)
}

func (c *Client) open(ctx context.Context, retry bool, from uint64) error {
	c.mu.Lock()
	if c.closed || (retry && from != c.gen) {
		c.mu.Unlock()
		return nil
	}
	if c.state == Connecting || c.state == Connected {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.stopTimerLocked()
	c.setStateLocked(Connecting)
	c.mu.Unlock()

	ws, resp, err := c.dialer.DialContext(ctx, c.opts.URL, c.header())
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		if ws != nil {
			_ = ws.Close()
		}
		return ErrDisconnected
	}
	if err != nil {
		c.log.Warnw("connect failed", "url", c.opts.URL, "error", err)
		c.setStateLocked(Errored)
		c.scheduleReconnectLocked()
		return fmt.Errorf("connecting to %s: %w", c.opts.URL, err)
	}

	cn := &connection{ws: ws, gen: gen, done: make(chan struct{})}
	c.cur = cn
	c.attempts = 0
	c.policy.Reset()
	c.setStateLocked(Connected)
	c.log.Infow("connected", "url", c.opts.URL)

	if c.opts.HeartbeatInterval > 0 {
		ws.SetPongHandler(func(string) error {
			c.extendDeadline(cn)
			return nil
		})
		c.extendDeadline(cn)
	}
	c.wg.Add(1)
	go c.readLoop(cn)
	if c.opts.HeartbeatInterval > 0 {
		c.wg.Add(1)
		go c.heartbeat(cn)
	}
	return nil
}

func (c *Client) extendDeadline(cn *connection) {
	if c.opts.HeartbeatInterval <= 0 || c.opts.HeartbeatTimeout <= 0 {
		return
	}
	_ = cn.ws.SetReadDeadline(time.Now().Add(c.opts.HeartbeatInterval + c.opts.HeartbeatTimeout))
}

func (c *Client) readLoop(cn *connection) {
	defer c.wg.Done()
	for {
		_, msg, err := cn.ws.ReadMessage()
		if err != nil {
			c.dropped(cn, err)
			return
		}
		c.extendDeadline(cn)

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil || ev.Type == "" {
			c.log.Warnw("dropping malformed frame", "frame", truncate(msg, 120), "error", err)
			continue
		}
		if ev.Type == EventPing {
			c.reply(cn, Event{Type: EventPong})
		}
		c.events.Publish(ev)
	}
}

// heartbeat sends a WebSocket ping every interval. Any inbound frame or
// pong pushes the read deadline out, so a quiet but healthy peer keeps the
// connection while a dead one trips the deadline in readLoop.
func (c *Client) heartbeat(cn *connection) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-cn.done:
			return
		case <-ticker.C:
			if err := cn.ping(c.opts.HeartbeatTimeout); err != nil {
				c.log.Debugw("heartbeat ping failed", "error", err)
			}
		}
	}
}

func (c *Client) reply(cn *connection, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := cn.write(data); err != nil {
		c.log.Debugw("control write failed", "type", ev.Type, "error", err)
	}
}

// dropped handles the end of a read loop. Drops from a connection that was
// already replaced or deliberately closed are ignored.
func (c *Client) dropped(cn *connection, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cur != cn || cn.gen != c.gen {
		return
	}
	c.cur = nil
	cn.close(false)

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		c.log.Infow("connection closed", "code", ce.Code, "reason", ce.Text)
		c.setStateLocked(Disconnected)
	} else {
		c.log.Warnw("connection lost", "error", err)
		c.setStateLocked(Errored)
	}
	c.scheduleReconnectLocked()
}

func (c *Client) scheduleReconnectLocked() {
	if c.closed {
		return
	}
	if c.attempts >= c.opts.MaxReconnectAttempts {
		c.log.Warnw("giving up reconnecting", "attempts", c.attempts)
		return
	}
	delay := c.policy.NextBackOff()
	if delay == backoff.Stop {
		return
	}
	c.attempts++
	gen := c.gen
	c.log.Infow("scheduling reconnect", "attempt", c.attempts, "max", c.opts.MaxReconnectAttempts, "delay", delay)

	c.wg.Add(1)
	c.timer = time.AfterFunc(delay, func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.HandshakeTimeout)
		defer cancel()
		_ = c.open(ctx, true, gen)
	})
}

func (c *Client) stopTimerLocked() {
	if c.timer == nil {
		return
	}
	if c.timer.Stop() {
		c.wg.Done()
	}
	c.timer = nil
}

// Disconnect closes the connection deliberately and suppresses automatic
// reconnection until Connect is called again.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	c.attempts = c.opts.MaxReconnectAttempts
	c.stopTimerLocked()
	cn := c.cur
	c.cur = nil
	c.setStateLocked(Disconnected)
	c.mu.Unlock()

	if cn != nil {
		cn.close(true)
		c.log.Infow("disconnected")
	}
}

// Close disconnects, waits for background work and closes every
// subscription. The client cannot be reused.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.Disconnect()
	c.wg.Wait()
	c.events.Close()
}

// Send JSON-encodes v and writes it as a text frame. Messages are only
// sent while connected; otherwise the message is dropped, logged, and Send
// reports false.
func (c *Client) Send(v any) bool {
	c.mu.Lock()
	cn := c.cur
	state := c.state
	c.mu.Unlock()

	if cn == nil || state != Connected {
		c.log.Warnw("not connected, message dropped", "state", state)
		return false
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warnw("message not encodable, dropped", "error", err)
		return false
	}
	if err := cn.write(data); err != nil {
		c.log.Warnw("send failed, message dropped", "error", err)
		return false
	}
	return true
}

// Subscribe returns every event received after the call.
func (c *Client) Subscribe() *broadcast.Subscription[Event] {
	return c.events.Subscribe()
}

// DashboardEvents returns dashboard_update, machine_status_update and
// maintenance_update events in typed form. Events whose data cannot be
// decoded are logged and skipped.
func (c *Client) DashboardEvents() *broadcast.Subscription[DashboardEvent] {
	return broadcast.Map(c.Subscribe(), func(ev Event) (DashboardEvent, bool) {
		de, ok, err := DecodeDashboardEvent(ev)
		if err != nil {
			c.log.Warnw("dropping malformed dashboard event", "type", ev.Type, "error", err)
			return de, false
		}
		return de, ok
	})
}

// MaintenanceAlerts returns the alert lists carried by
// upcoming_maintenance_alerts events.
func (c *Client) MaintenanceAlerts() *broadcast.Subscription[[]api.MaintenanceAlert] {
	return broadcast.Map(c.Subscribe(), func(ev Event) ([]api.MaintenanceAlert, bool) {
		alerts, ok, err := DecodeAlerts(ev)
		if err != nil {
			c.log.Warnw("dropping malformed alerts event", "error", err)
			return nil, false
		}
		return alerts, ok
	})
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
