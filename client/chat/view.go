package chat

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"incubator/portal/client/api"
	"incubator/portal/client/session"
	"incubator/portal/logger"
)

// SessionSource is satisfied by *session.Manager.
type SessionSource interface {
	Current() (session.Session, error)
}

// Config is shared by every room view opened through a Client.
type Config struct {
	WSURL          string
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer
	Log            logger.Logger
}

// Client opens room views. At most one view is open at a time; opening a
// room tears the previous connection down first.
type Client struct {
	cfg      Config
	sessions SessionSource

	mu   sync.Mutex
	open *RoomView
}

func NewClient(cfg Config, sessions SessionSource) *Client {
	if cfg.Log == nil {
		cfg.Log = logger.Discard
	}
	return &Client{cfg: cfg, sessions: sessions}
}

// ViewOptions are the optional callbacks of a room view.
type ViewOptions struct {
	OnMessage func(Message)
	OnNotify  func(Notification)
}

// Open closes the current view, if any, and opens room with the current session.
func (c *Client) Open(ctx context.Context, room api.ChatRoom, opts ViewOptions) (*RoomView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open != nil {
		c.open.Close()
		c.open = nil
	}

	sess, err := c.sessions.Current()
	if err != nil {
		return nil, err
	}

	view := &RoomView{
		Room:      room,
		user:      sess.User,
		inbox:     make(chan Message, 16),
		done:      make(chan struct{}),
		onMessage: opts.OnMessage,
	}
	view.transport = NewTransport(TransportConfig{
		URL:            c.cfg.WSURL,
		RoomID:         room.ID,
		Token:          sess.Token,
		TenantID:       sess.User.TenantID,
		OnNotify:       opts.OnNotify,
		ReconnectDelay: c.cfg.ReconnectDelay,
		Dialer:         c.cfg.Dialer,
		Log:            c.cfg.Log,
	}, view.inbox)

	if err := view.transport.Start(ctx); err != nil {
		return nil, err
	}
	go view.pump()

	c.open = view
	return view, nil
}

// Close closes the open view, if any.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open != nil {
		c.open.Close()
		c.open = nil
	}
}

// RoomView is one open room: its transport and the messages received since it opened.
type RoomView struct {
	Room api.ChatRoom

	user      session.User
	transport *Transport
	inbox     chan Message
	onMessage func(Message)

	mu       sync.RWMutex
	messages []Message

	done      chan struct{}
	closeOnce sync.Once
}

func (v *RoomView) pump() {
	for {
		select {
		case msg := <-v.inbox:
			v.mu.Lock()
			v.messages = append(v.messages, msg)
			v.mu.Unlock()
			if v.onMessage != nil {
				v.onMessage(msg)
			}
		case <-v.done:
			return
		}
	}
}

// Messages returns the received messages in arrival order.
func (v *RoomView) Messages() []Message {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Message(nil), v.messages...)
}

func (v *RoomView) State() State {
	return v.transport.State()
}

// Send publishes text through the room transport.
func (v *RoomView) Send(text string) error {
	return v.transport.Send(text)
}

// IsOwn reports whether msg was written by the authenticated user.
func (v *RoomView) IsOwn(msg Message) bool {
	return IsOwnMessage(v.user, msg)
}

// IsOwnMessage compares the sender with the user's id, then email.
func IsOwnMessage(user session.User, msg Message) bool {
	if msg.Sender.ID != nil {
		return *msg.Sender.ID == user.UserID
	}
	name := strings.TrimSpace(msg.Sender.Username)
	if name == "" {
		return false
	}
	return strings.EqualFold(name, user.Email) || name == strconv.Itoa(user.UserID)
}

// Close tears the transport down; no message is appended afterwards.
func (v *RoomView) Close() {
	v.closeOnce.Do(func() {
		v.transport.Close()
		close(v.done)
	})
}
