package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incubator/portal/client/api"
	"incubator/portal/client/session"
	"incubator/portal/client/stomp"
	"incubator/portal/handlers/auth"
	chatserver "incubator/portal/handlers/chat"
)

func TestDecodeMessage(t *testing.T) {
	msg := DecodeMessage([]byte(`{"sender":{"username":"ada@x.io","id":4},"content":"hi","timestamp":"2024-05-01T10:00:00Z"}`))
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "ada@x.io", msg.Sender.Username)
	require.NotNil(t, msg.Sender.ID)
	assert.Equal(t, 4, *msg.Sender.ID)
	require.NotNil(t, msg.Timestamp)

	raw := DecodeMessage([]byte("plain text"))
	assert.Equal(t, "plain text", raw.Content)
	assert.Empty(t, raw.Sender.Username)
	assert.Nil(t, raw.Timestamp)
}

func TestDestinations(t *testing.T) {
	assert.Equal(t, "/topic/chat/5", RoomTopic(5))
	assert.Equal(t, "/topic/chat-notify/2", NotifyTopic(2))
	assert.Equal(t, "/app/chat.sendMessage/5", SendDestination(5))
}

func TestTransport_StartRequiresCredentials(t *testing.T) {
	tr := NewTransport(TransportConfig{URL: "ws://127.0.0.1:1"}, make(chan Message))
	assert.ErrorIs(t, tr.Start(context.Background()), ErrMissingCredentials)
	assert.Equal(t, Idle, tr.State())
}

func TestTransport_SendWhileNotConnected(t *testing.T) {
	tr := NewTransport(TransportConfig{URL: "ws://127.0.0.1:1", RoomID: 1, Token: "t"}, make(chan Message))
	assert.ErrorIs(t, tr.Send("hello"), ErrNotConnected)
	assert.ErrorIs(t, tr.Send("   "), ErrNotConnected)
}

func TestIsOwnMessage(t *testing.T) {
	user := session.User{UserID: 4, Email: "ada@x.io"}
	id4, id5 := 4, 5

	assert.True(t, IsOwnMessage(user, Message{Sender: Sender{ID: &id4}}))
	assert.False(t, IsOwnMessage(user, Message{Sender: Sender{ID: &id5, Username: "ada@x.io"}}))
	assert.True(t, IsOwnMessage(user, Message{Sender: Sender{Username: "ADA@x.io"}}))
	assert.True(t, IsOwnMessage(user, Message{Sender: Sender{Username: "4"}}))
	assert.False(t, IsOwnMessage(user, Message{Sender: Sender{Username: "bob@x.io"}}))
	assert.False(t, IsOwnMessage(user, Message{}))
}

type memStore struct {
	mu       sync.Mutex
	members  map[int][]int
	tenantID *int
	saved    []string
}

func (s *memStore) IsMember(ctx context.Context, roomID, userID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.members[roomID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Room(ctx context.Context, roomID int) (string, *int, error) {
	return "Room", s.tenantID, nil
}

func (s *memStore) SaveMessage(ctx context.Context, roomID, senderID int, content string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, content)
	return nil
}

type staticSessions struct {
	sess session.Session
}

func (s staticSessions) Current() (session.Session, error) {
	return s.sess, nil
}

func TestRoomView_EndToEnd(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	tenant := 3
	store := &memStore{members: map[int][]int{7: {4, 5}}, tenantID: &tenant}
	srv := httptest.NewServer(chatserver.NewBroker(store))
	defer srv.Close()

	token, err := auth.GenerateToken(auth.User{ID: 4, Email: "ada@x.io", Role: "STARTUP", TenantID: &tenant})
	require.NoError(t, err)

	sessions := staticSessions{sess: session.Session{
		Token: token,
		User:  session.User{UserID: 4, Email: "ada@x.io", Role: session.RoleStartup, TenantID: &tenant},
	}}
	client := NewClient(Config{
		WSURL:          "ws" + strings.TrimPrefix(srv.URL, "http"),
		ReconnectDelay: 50 * time.Millisecond,
	}, sessions)
	defer client.Close()

	received := make(chan Message, 4)
	notified := make(chan Notification, 4)
	view, err := client.Open(context.Background(), api.ChatRoom{ID: 7, ChatName: "Room"}, ViewOptions{
		OnMessage: func(m Message) { received <- m },
		OnNotify:  func(n Notification) { notified <- n },
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return view.State() == Connected }, 5*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, view.Send("  \n "), ErrEmptyMessage)
	require.NoError(t, view.Send("  hello  "))

	select {
	case msg := <-received:
		assert.Equal(t, "hello", msg.Content)
		assert.True(t, view.IsOwn(msg))
		require.NotNil(t, msg.Timestamp)
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered")
	}

	select {
	case n := <-notified:
		assert.Equal(t, 7, n.RoomID)
		assert.Equal(t, "hello", n.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification delivered")
	}

	assert.Len(t, view.Messages(), 1)
	store.mu.Lock()
	assert.Equal(t, []string{"hello"}, store.saved)
	store.mu.Unlock()

	// Opening another room closes the first view.
	second, err := client.Open(context.Background(), api.ChatRoom{ID: 7}, ViewOptions{})
	require.NoError(t, err)
	assert.Equal(t, Disconnected, view.State())
	assert.ErrorIs(t, view.Send("late"), ErrNotConnected)

	client.Close()
	assert.Equal(t, Disconnected, second.State())
}

type recordingLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLog) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg)
}

func (l *recordingLog) Debug(msg string, args ...interface{}) { l.add("DEBUG", msg) }
func (l *recordingLog) Info(msg string, args ...interface{})  { l.add("INFO", msg) }
func (l *recordingLog) Warn(msg string, args ...interface{})  { l.add("WARN", msg) }
func (l *recordingLog) Error(msg string, args ...interface{}) { l.add("ERROR", msg) }

func (l *recordingLog) has(entry string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e == entry {
			return true
		}
	}
	return false
}

type subscription struct {
	conn *websocket.Conn
	seq  int
	id   string
	dest string
}

// scriptedBroker accepts any CONNECT and reports every SUBSCRIBE, leaving the
// test in charge of what is sent back and when the socket drops.
type scriptedBroker struct {
	upgrader websocket.Upgrader
	subs     chan subscription

	mu     sync.Mutex
	conns  int
	counts map[int]int
}

func newScriptedBroker() *scriptedBroker {
	return &scriptedBroker{subs: make(chan subscription, 8), counts: map[int]int{}}
}

func (b *scriptedBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	b.mu.Lock()
	b.conns++
	seq := b.conns
	b.mu.Unlock()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frames, err := stomp.Decode(p)
		if err != nil {
			return
		}
		for _, f := range frames {
			switch f.Command {
			case frame.CONNECT:
				out, _ := stomp.Encode(frame.New(frame.CONNECTED, frame.Version, "1.2"))
				if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
					return
				}
			case frame.SUBSCRIBE:
				b.mu.Lock()
				b.counts[seq]++
				b.mu.Unlock()
				b.subs <- subscription{conn: conn, seq: seq, id: f.Header.Get(frame.Id), dest: f.Header.Get(frame.Destination)}
			}
		}
	}
}

func (b *scriptedBroker) subscriptions() map[int]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int]int, len(b.counts))
	for k, v := range b.counts {
		out[k] = v
	}
	return out
}

func (b *scriptedBroker) next(t *testing.T) subscription {
	t.Helper()
	select {
	case s := <-b.subs:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("no SUBSCRIBE received")
		return subscription{}
	}
}

func push(t *testing.T, conn *websocket.Conn, f *frame.Frame) {
	t.Helper()
	p, err := stomp.Encode(f)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, p))
}

func startTransport(t *testing.T, b *scriptedBroker, delay time.Duration, log *recordingLog) (*Transport, chan Message) {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	sink := make(chan Message, 4)
	tr := NewTransport(TransportConfig{
		URL:            "ws" + strings.TrimPrefix(srv.URL, "http"),
		RoomID:         7,
		Token:          "token",
		ReconnectDelay: delay,
		Log:            log,
	}, sink)
	require.NoError(t, tr.Start(context.Background()))
	t.Cleanup(func() { tr.Close() })
	return tr, sink
}

func TestTransport_ReconnectsAfterDrop(t *testing.T) {
	const delay = 200 * time.Millisecond
	b := newScriptedBroker()
	log := &recordingLog{}
	tr, _ := startTransport(t, b, delay, log)

	first := b.next(t)
	assert.Equal(t, RoomTopic(7), first.dest)
	require.Eventually(t, func() bool { return tr.State() == Connected }, 5*time.Second, time.Millisecond)

	dropped := time.Now()
	require.NoError(t, first.conn.Close())
	require.Eventually(t, func() bool { return tr.State() == Connecting }, delay, time.Millisecond)

	second := b.next(t)
	elapsed := time.Since(dropped)
	assert.GreaterOrEqual(t, elapsed, delay)
	assert.Less(t, elapsed, delay+3*time.Second)
	require.Eventually(t, func() bool { return tr.State() == Connected }, 5*time.Second, time.Millisecond)

	assert.Equal(t, 2, second.seq)
	assert.Equal(t, first.id, second.id)
	assert.Equal(t, RoomTopic(7), second.dest)
	assert.True(t, log.has("ERROR chat connection lost"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, map[int]int{1: 1, 2: 1}, b.subscriptions())
}

func TestTransport_DeliversRawBodiesAndLogsBrokerErrors(t *testing.T) {
	b := newScriptedBroker()
	log := &recordingLog{}
	tr, sink := startTransport(t, b, time.Second, log)

	sub := b.next(t)
	require.Eventually(t, func() bool { return tr.State() == Connected }, 5*time.Second, time.Millisecond)

	msg := frame.New(frame.MESSAGE,
		frame.Destination, sub.dest,
		frame.Subscription, sub.id,
		frame.MessageId, "m-1",
	)
	msg.Body = []byte("server restarting, hang on")
	push(t, sub.conn, msg)

	select {
	case got := <-sink:
		assert.Equal(t, "server restarting, hang on", got.Content)
		assert.Empty(t, got.Sender.Username)
		assert.Nil(t, got.Timestamp)
	case <-time.After(5 * time.Second):
		t.Fatal("raw message not delivered")
	}

	require.NoError(t, sub.conn.WriteMessage(websocket.TextMessage, []byte("not a frame")))
	push(t, sub.conn, frame.New(frame.ERROR, frame.Message, "room closed"))

	require.Eventually(t, func() bool { return log.has("ERROR broker error frame") }, 5*time.Second, 5*time.Millisecond)
	assert.True(t, log.has("WARN skipping malformed frame"))
	assert.Equal(t, Connected, tr.State())
}
