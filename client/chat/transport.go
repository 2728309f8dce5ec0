// Package chat holds the real-time chat path: the per-room STOMP transport,
// the room list with search and creation, and the single room view.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"incubator/portal/client/stomp"
	"incubator/portal/logger"
)

// State is the lifecycle of one room subscription.
type State int32

const (
	Idle State = iota
	Connecting
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

var (
	ErrNotConnected       = errors.New("chat: not connected")
	ErrEmptyMessage       = errors.New("chat: message is empty")
	ErrMissingCredentials = errors.New("chat: room id and token are required")
	ErrAlreadyStarted     = errors.New("chat: transport already started")
)

const (
	defaultReconnectDelay   = 5 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
)

// Sender identifies the author of a message.
type Sender struct {
	Username string `json:"username"`
	ID       *int   `json:"id,omitempty"`
}

// Message is one chat line delivered on a room topic.
type Message struct {
	Sender    Sender     `json:"sender"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Notification is a tenant-wide "new message in room X" event.
type Notification struct {
	RoomID   int    `json:"roomId"`
	ChatName string `json:"chatName,omitempty"`
	Sender   Sender `json:"sender"`
	Content  string `json:"content"`
}

// RoomTopic, NotifyTopic and SendDestination are the STOMP destinations of the backend.
func RoomTopic(roomID int) string       { return "/topic/chat/" + strconv.Itoa(roomID) }
func NotifyTopic(tenantID int) string   { return "/topic/chat-notify/" + strconv.Itoa(tenantID) }
func SendDestination(roomID int) string { return "/app/chat.sendMessage/" + strconv.Itoa(roomID) }

// DecodeMessage parses a frame body. A body that is not a JSON object becomes
// the content of the message so nothing is dropped.
func DecodeMessage(body []byte) Message {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{Content: string(body)}
	}
	return msg
}

// DecodeNotification parses a notification body with the same fallback as DecodeMessage.
func DecodeNotification(body []byte) Notification {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Notification{Content: string(body)}
	}
	return n
}

// TransportConfig configures one room subscription.
type TransportConfig struct {
	URL      string
	RoomID   int
	Token    string
	TenantID *int
	// OnNotify enables the tenant notification subscription when TenantID is set.
	OnNotify         func(Notification)
	ReconnectDelay   time.Duration
	HandshakeTimeout time.Duration
	Dialer           *websocket.Dialer
	Log              logger.Logger
}

// Transport owns one STOMP connection for one room. Inbound room messages are
// written to the sink channel given to NewTransport.
type Transport struct {
	cfg  TransportConfig
	sink chan<- Message
	log  logger.Logger

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}

	writeMu sync.Mutex
	roomSub string
	noteSub string
}

func NewTransport(cfg TransportConfig, sink chan<- Message) *Transport {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	log := cfg.Log
	if log == nil {
		log = logger.Discard
	}
	return &Transport{
		cfg:     cfg,
		sink:    sink,
		log:     log,
		roomSub: "sub-" + uuid.NewString(),
		noteSub: "sub-" + uuid.NewString(),
	}
}

func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// setState never leaves Disconnected; teardown is final.
func (t *Transport) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Disconnected {
		return
	}
	t.state = s
}

// Start moves Idle to Connecting and runs the connection in the background.
// It returns ErrMissingCredentials and stays Idle without a room id or token.
func (t *Transport) Start(ctx context.Context) error {
	if t.cfg.RoomID == 0 || t.cfg.Token == "" {
		return ErrMissingCredentials
	}

	t.mu.Lock()
	if t.state != Idle {
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.state = Connecting
	t.mu.Unlock()

	go t.run(ctx)
	return nil
}

func (t *Transport) run(ctx context.Context) {
	defer close(t.done)
	for {
		err := t.connectAndServe(ctx)
		if ctx.Err() != nil {
			return
		}
		t.log.Error("chat connection lost", map[string]interface{}{"roomId": t.cfg.RoomID, "retryIn": t.cfg.ReconnectDelay.String()}, err)
		t.setState(Connecting)

		timer := time.NewTimer(t.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (t *Transport) connectAndServe(ctx context.Context) error {
	conn, _, err := t.cfg.Dialer.DialContext(ctx, t.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", t.cfg.URL, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := t.handshake(conn); err != nil {
		return err
	}

	subscribe := frame.New(frame.SUBSCRIBE, frame.Id, t.roomSub, frame.Destination, RoomTopic(t.cfg.RoomID))
	if err := t.write(conn, subscribe); err != nil {
		return fmt.Errorf("subscribing to room: %w", err)
	}
	if t.cfg.TenantID != nil && t.cfg.OnNotify != nil {
		notify := frame.New(frame.SUBSCRIBE, frame.Id, t.noteSub, frame.Destination, NotifyTopic(*t.cfg.TenantID))
		if err := t.write(conn, notify); err != nil {
			return fmt.Errorf("subscribing to notifications: %w", err)
		}
	}

	t.mu.Lock()
	if t.state == Disconnected {
		t.mu.Unlock()
		return context.Canceled
	}
	t.conn = conn
	t.state = Connected
	t.mu.Unlock()
	t.log.Info("chat connected", map[string]interface{}{"roomId": t.cfg.RoomID})

	defer func() {
		t.mu.Lock()
		t.conn = nil
		t.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		frames, err := stomp.Decode(data)
		if err != nil {
			t.log.Warn("skipping malformed frame", err)
		}
		for _, f := range frames {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.handle(ctx, f)
		}
	}
}

func (t *Transport) handshake(conn *websocket.Conn) error {
	connect := frame.New(frame.CONNECT,
		frame.AcceptVersion, "1.2,1.1,1.0",
		frame.HeartBeat, "0,0",
		stomp.Authorization, "Bearer "+t.cfg.Token,
	)
	if err := t.write(conn, connect); err != nil {
		return fmt.Errorf("sending CONNECT: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(t.cfg.HandshakeTimeout)); err != nil {
		return err
	}
	defer conn.SetReadDeadline(time.Time{})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("awaiting CONNECTED: %w", err)
		}
		frames, err := stomp.Decode(data)
		if err != nil {
			return fmt.Errorf("awaiting CONNECTED: %w", err)
		}
		for _, f := range frames {
			switch f.Command {
			case frame.CONNECTED:
				return nil
			case frame.ERROR:
				return fmt.Errorf("broker refused connection: %s", errorText(f))
			}
		}
	}
}

func (t *Transport) handle(ctx context.Context, f *frame.Frame) {
	switch f.Command {
	case frame.MESSAGE:
		switch f.Header.Get(frame.Subscription) {
		case t.roomSub:
			msg := DecodeMessage(f.Body)
			select {
			case t.sink <- msg:
			case <-ctx.Done():
			}
		case t.noteSub:
			if t.cfg.OnNotify != nil {
				t.cfg.OnNotify(DecodeNotification(f.Body))
			}
		}
	case frame.ERROR:
		t.log.Error("broker error frame", map[string]interface{}{"roomId": t.cfg.RoomID, "message": errorText(f)})
	}
}

func errorText(f *frame.Frame) string {
	msg := f.Header.Get(frame.Message)
	if body := strings.TrimSpace(string(f.Body)); body != "" {
		if msg != "" {
			return msg + ": " + body
		}
		return body
	}
	return msg
}

func (t *Transport) write(conn *websocket.Conn, f *frame.Frame) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	p, err := stomp.Encode(f)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, p)
}

// Send publishes content to the room. It does nothing unless the transport is
// Connected and the trimmed content is non-empty.
func (t *Transport) Send(content string) error {
	t.mu.Lock()
	conn, state := t.conn, t.state
	t.mu.Unlock()

	if state != Connected || conn == nil {
		t.log.Error("cannot send message: not connected", map[string]interface{}{"roomId": t.cfg.RoomID, "state": state.String()})
		return ErrNotConnected
	}
	content = strings.TrimSpace(content)
	if content == "" {
		t.log.Error("cannot send message: empty content", map[string]interface{}{"roomId": t.cfg.RoomID})
		return ErrEmptyMessage
	}

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	f := frame.New(frame.SEND,
		frame.Destination, SendDestination(t.cfg.RoomID),
		frame.ContentType, "application/json",
	)
	f.Body = body
	if err := t.write(conn, f); err != nil {
		return fmt.Errorf("publishing message: %w", err)
	}
	return nil
}

// Close tears the connection down and waits for the reader to stop. After
// Close returns no further frames reach the sink.
func (t *Transport) Close() error {
	t.mu.Lock()
	prev := t.state
	conn, cancel, done := t.conn, t.cancel, t.done
	t.state = Disconnected
	t.mu.Unlock()

	if prev == Idle || prev == Disconnected {
		return nil
	}
	if conn != nil {
		if err := t.write(conn, frame.New(frame.DISCONNECT)); err != nil {
			t.log.Debug("DISCONNECT not delivered", err)
		}
	}
	cancel()
	<-done
	return nil
}
