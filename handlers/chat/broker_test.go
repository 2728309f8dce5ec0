package chat

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"incubator/portal/client/stomp"
	"incubator/portal/handlers/auth"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	members map[int][]int
	tenant  *int
	saved   []string
}

func (s *fakeStore) IsMember(ctx context.Context, roomID, userID int) (bool, error) {
	for _, id := range s.members[roomID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Room(ctx context.Context, roomID int) (string, *int, error) {
	return "Founders", s.tenant, nil
}

func (s *fakeStore) SaveMessage(ctx context.Context, roomID, senderID int, content string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, content)
	return nil
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, f *frame.Frame) {
	t.Helper()
	p, err := stomp.Encode(f)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, p))
}

func readFrame(t *testing.T, conn *websocket.Conn) *frame.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err)
	frames, err := stomp.Decode(p)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	return frames[0]
}

func token(t *testing.T, id int, tenant *int) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.User{ID: id, Email: "u@hub.io", Role: "STARTUP", TenantID: tenant})
	require.NoError(t, err)
	return tok
}

func TestBrokerRejectsBadToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "broker-secret")
	srv := httptest.NewServer(NewBroker(&fakeStore{}))
	defer srv.Close()

	conn := dial(t, srv)
	writeFrame(t, conn, frame.New(frame.CONNECT, frame.AcceptVersion, "1.2", stomp.Authorization, "Bearer nope"))

	f := readFrame(t, conn)
	assert.Equal(t, frame.ERROR, f.Command)
	assert.Equal(t, "Unauthorized", f.Header.Get(frame.Message))
}

func TestBrokerRequiresConnectFirst(t *testing.T) {
	srv := httptest.NewServer(NewBroker(&fakeStore{}))
	defer srv.Close()

	conn := dial(t, srv)
	writeFrame(t, conn, frame.New(frame.SUBSCRIBE, frame.Id, "sub-0", frame.Destination, "/topic/chat/1"))

	f := readFrame(t, conn)
	assert.Equal(t, frame.ERROR, f.Command)
	assert.Equal(t, "not connected", f.Header.Get(frame.Message))
}

func TestBrokerRejectsForeignRoom(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "broker-secret")
	srv := httptest.NewServer(NewBroker(&fakeStore{members: map[int][]int{1: {2}}}))
	defer srv.Close()

	conn := dial(t, srv)
	writeFrame(t, conn, frame.New(frame.CONNECT, frame.AcceptVersion, "1.2", stomp.Authorization, "Bearer "+token(t, 9, nil)))
	assert.Equal(t, frame.CONNECTED, readFrame(t, conn).Command)

	writeFrame(t, conn, frame.New(frame.SUBSCRIBE, frame.Id, "sub-0", frame.Destination, "/topic/chat/1"))
	f := readFrame(t, conn)
	assert.Equal(t, frame.ERROR, f.Command)
	assert.Contains(t, f.Header.Get(frame.Message), "not a member")
}

func TestBrokerBroadcastsToRoomAndTenant(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "broker-secret")
	tenant := 6
	store := &fakeStore{members: map[int][]int{3: {1, 2}}, tenant: &tenant}
	broker := NewBroker(store)
	broker.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	srv := httptest.NewServer(broker)
	defer srv.Close()

	conn := dial(t, srv)
	writeFrame(t, conn, frame.New(frame.CONNECT, frame.AcceptVersion, "1.2", stomp.Authorization, "Bearer "+token(t, 1, &tenant)))
	assert.Equal(t, frame.CONNECTED, readFrame(t, conn).Command)

	writeFrame(t, conn, frame.New(frame.SUBSCRIBE, frame.Id, "room", frame.Destination, "/topic/chat/3", frame.Receipt, "r1"))
	assert.Equal(t, "r1", readFrame(t, conn).Header.Get(frame.ReceiptId))
	writeFrame(t, conn, frame.New(frame.SUBSCRIBE, frame.Id, "notify", frame.Destination, "/topic/chat-notify/6", frame.Receipt, "r2"))
	assert.Equal(t, "r2", readFrame(t, conn).Header.Get(frame.ReceiptId))

	send := frame.New(frame.SEND, frame.Destination, "/app/chat.sendMessage/3", frame.ContentType, "application/json")
	send.Body = []byte(`{"content":"  hello  "}`)
	writeFrame(t, conn, send)

	msg := readFrame(t, conn)
	assert.Equal(t, frame.MESSAGE, msg.Command)
	assert.Equal(t, "room", msg.Header.Get(frame.Subscription))
	var cm ChatMessage
	require.NoError(t, json.Unmarshal(msg.Body, &cm))
	assert.Equal(t, "hello", cm.Content)
	assert.Equal(t, 1, cm.Sender.ID)

	note := readFrame(t, conn)
	assert.Equal(t, "notify", note.Header.Get(frame.Subscription))
	var n ChatNotification
	require.NoError(t, json.Unmarshal(note.Body, &n))
	assert.Equal(t, 3, n.RoomID)
	assert.Equal(t, "Founders", n.ChatName)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []string{"hello"}, store.saved)
}
