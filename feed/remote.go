package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Remote is a Feed reading Events from a websocket, typically the BFF's
// /admin/feed/ws stream.
type Remote struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	log    *zap.Logger

	connected atomic.Bool
	subs      subscribers

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

type RemoteOption func(*Remote)

func WithRemoteLogger(log *zap.Logger) RemoteOption {
	return func(r *Remote) { r.log = log }
}

func WithDialer(d *websocket.Dialer) RemoteOption {
	return func(r *Remote) { r.dialer = d }
}

// NewRemote prepares a client for url. header is sent with the handshake,
// e.g. the admin API key.
func NewRemote(url string, header http.Header, opts ...RemoteOption) *Remote {
	r := &Remote{
		url:    url,
		header: header,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start dials the stream and reads it until ctx is cancelled, Stop is
// called or the server closes the connection.
func (r *Remote) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrAlreadyStarted
	}

	conn, resp, err := r.dialer.DialContext(ctx, r.url, r.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("feed: dial %s: %w", r.url, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	r.conn = conn
	r.cancel = cancel
	r.done = make(chan struct{})
	r.connected.Store(true)
	r.log.Info("feed connected", zap.String("url", r.url))

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()
	go r.read(conn, cancel, r.done)
	return nil
}

func (r *Remote) read(conn *websocket.Conn, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()
	defer r.connected.Store(false)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, net.ErrClosed) {
				r.log.Warn("feed read failed", zap.Error(err))
			}
			return
		}

		// A frame may carry several newline separated events.
		dec := json.NewDecoder(bytes.NewReader(msg))
		for {
			var e Event
			if err := dec.Decode(&e); err != nil {
				if err != io.EOF {
					r.log.Warn("feed event dropped", zap.Error(err))
				}
				break
			}
			for _, h := range r.subs.handlers(e.Category) {
				h(e)
			}
		}
	}
}

// Stop closes the connection and waits for the reader to exit.
func (r *Remote) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
	r.conn = nil
}

func (r *Remote) IsConnected() bool {
	return r.connected.Load()
}

func (r *Remote) Subscribe(c Category, h Handler) func() {
	return r.subs.add(c, h)
}
