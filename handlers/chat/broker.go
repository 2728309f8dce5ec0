package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"incubator/portal/client/stomp"
	"incubator/portal/handlers/auth"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	roomTopicPrefix   = "/topic/chat/"
	notifyTopicPrefix = "/topic/chat-notify/"
	sendPrefix        = "/app/chat.sendMessage/"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{"v12.stomp", "v11.stomp", "v10.stomp"},
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broker is a minimal STOMP 1.2 broker for the chat destinations. Each
// WebSocket message carries exactly one frame.
type Broker struct {
	store Store
	now   func() time.Time

	connLock sync.Mutex
	// destination -> session -> subscription id
	subscriptions map[string]map[*stompSession]string
}

type stompSession struct {
	conn    *websocket.Conn
	claims  *auth.Claims
	writeMu sync.Mutex
	// subscription id -> destination
	subs map[string]string
}

func NewBroker(store Store) *Broker {
	return &Broker{
		store:         store,
		now:           time.Now,
		subscriptions: make(map[string]map[*stompSession]string),
	}
}

func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	s := &stompSession{conn: conn, subs: make(map[string]string)}
	defer b.drop(s)

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frames, err := stomp.Decode(p)
		if err != nil {
			s.sendError("malformed frame", err.Error())
			return
		}
		for _, f := range frames {
			if !b.handle(r.Context(), s, f) {
				return
			}
		}
	}
}

// handle processes one client frame and reports whether the session stays open.
func (b *Broker) handle(ctx context.Context, s *stompSession, f *frame.Frame) bool {
	if f.Command == frame.CONNECT || f.Command == frame.STOMP {
		return b.connect(s, f)
	}
	if s.claims == nil {
		s.sendError("not connected", "CONNECT must be the first frame")
		return false
	}

	var err error
	switch f.Command {
	case frame.SUBSCRIBE:
		err = b.subscribe(ctx, s, f)
	case frame.UNSUBSCRIBE:
		b.unsubscribe(s, f.Header.Get(frame.Id))
	case frame.SEND:
		err = b.send(ctx, s, f)
	case frame.DISCONNECT:
		s.receipt(f)
		return false
	default:
		err = fmt.Errorf("unsupported command %q", f.Command)
	}
	if err != nil {
		log.Printf("STOMP %s from user %d rejected: %v", f.Command, s.claims.UserID, err)
		s.sendError(err.Error(), "")
		return false
	}
	s.receipt(f)
	return true
}

func (b *Broker) connect(s *stompSession, f *frame.Frame) bool {
	token := f.Header.Get(stomp.Authorization)
	if token == "" {
		token = f.Header.Get("passcode")
	}
	claims, err := auth.ParseToken(token)
	if err != nil {
		log.Printf("Invalid token in STOMP connect: %v", err)
		s.sendError("Unauthorized", err.Error())
		return false
	}
	s.claims = claims
	return s.write(frame.New(frame.CONNECTED,
		frame.Version, "1.2",
		frame.HeartBeat, "0,0",
		"user-name", claims.Email,
	)) == nil
}

func (b *Broker) subscribe(ctx context.Context, s *stompSession, f *frame.Frame) error {
	id := f.Header.Get(frame.Id)
	dest := f.Header.Get(frame.Destination)
	if id == "" || dest == "" {
		return errors.New("SUBSCRIBE requires id and destination")
	}

	switch {
	case strings.HasPrefix(dest, roomTopicPrefix):
		roomID, err := strconv.Atoi(strings.TrimPrefix(dest, roomTopicPrefix))
		if err != nil {
			return fmt.Errorf("invalid room destination %q", dest)
		}
		ok, err := b.store.IsMember(ctx, roomID, s.claims.UserID)
		if err != nil {
			return fmt.Errorf("membership check: %w", err)
		}
		if !ok {
			return fmt.Errorf("not a member of room %d", roomID)
		}
	case strings.HasPrefix(dest, notifyTopicPrefix):
		tenantID, err := strconv.Atoi(strings.TrimPrefix(dest, notifyTopicPrefix))
		if err != nil {
			return fmt.Errorf("invalid notification destination %q", dest)
		}
		if s.claims.TenantID == nil || *s.claims.TenantID != tenantID {
			return fmt.Errorf("not a member of tenant %d", tenantID)
		}
	default:
		return fmt.Errorf("unknown destination %q", dest)
	}

	b.connLock.Lock()
	defer b.connLock.Unlock()
	if b.subscriptions[dest] == nil {
		b.subscriptions[dest] = make(map[*stompSession]string)
	}
	b.subscriptions[dest][s] = id
	s.subs[id] = dest
	return nil
}

func (b *Broker) unsubscribe(s *stompSession, id string) {
	b.connLock.Lock()
	defer b.connLock.Unlock()
	b.removeLocked(s, id)
}

func (b *Broker) removeLocked(s *stompSession, id string) {
	dest, ok := s.subs[id]
	if !ok {
		return
	}
	delete(s.subs, id)
	delete(b.subscriptions[dest], s)
	if len(b.subscriptions[dest]) == 0 {
		delete(b.subscriptions, dest)
	}
}

func (b *Broker) drop(s *stompSession) {
	b.connLock.Lock()
	defer b.connLock.Unlock()
	for id := range s.subs {
		b.removeLocked(s, id)
	}
}

func (b *Broker) send(ctx context.Context, s *stompSession, f *frame.Frame) error {
	dest := f.Header.Get(frame.Destination)
	if !strings.HasPrefix(dest, sendPrefix) {
		return fmt.Errorf("unknown destination %q", dest)
	}
	roomID, err := strconv.Atoi(strings.TrimPrefix(dest, sendPrefix))
	if err != nil {
		return fmt.Errorf("invalid room destination %q", dest)
	}

	var in struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(f.Body, &in); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return errors.New("message content is empty")
	}

	ok, err := b.store.IsMember(ctx, roomID, s.claims.UserID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return fmt.Errorf("not a member of room %d", roomID)
	}

	now := b.now().UTC()
	if err := b.store.SaveMessage(ctx, roomID, s.claims.UserID, content, now); err != nil {
		return fmt.Errorf("save message: %w", err)
	}

	sender := Sender{Username: s.claims.Email, ID: s.claims.UserID}
	b.broadcast(roomTopicPrefix+strconv.Itoa(roomID), ChatMessage{
		Sender:    sender,
		Content:   content,
		Timestamp: now,
	})

	name, tenantID, err := b.store.Room(ctx, roomID)
	if err != nil {
		log.Printf("Error loading room %d for notification: %v", roomID, err)
		return nil
	}
	if tenantID != nil {
		b.broadcast(notifyTopicPrefix+strconv.Itoa(*tenantID), ChatNotification{
			RoomID:   roomID,
			ChatName: name,
			Sender:   sender,
			Content:  content,
		})
	}
	return nil
}

func (b *Broker) broadcast(dest string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error encoding broadcast for %s: %v", dest, err)
		return
	}

	b.connLock.Lock()
	targets := make(map[*stompSession]string, len(b.subscriptions[dest]))
	for s, id := range b.subscriptions[dest] {
		targets[s] = id
	}
	b.connLock.Unlock()

	for s, id := range targets {
		f := frame.New(frame.MESSAGE,
			frame.Destination, dest,
			frame.Subscription, id,
			frame.MessageId, uuid.NewString(),
			frame.ContentType, "application/json",
		)
		f.Body = body
		if err := s.write(f); err != nil {
			s.conn.Close()
		}
	}
}

func (s *stompSession) write(f *frame.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	p, err := stomp.Encode(f)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, p)
}

func (s *stompSession) receipt(f *frame.Frame) {
	if id := f.Header.Get(frame.Receipt); id != "" {
		s.write(frame.New(frame.RECEIPT, frame.ReceiptId, id))
	}
}

func (s *stompSession) sendError(msg, detail string) {
	f := frame.New(frame.ERROR, frame.Message, msg, frame.ContentType, "text/plain")
	f.Body = []byte(detail)
	s.write(f)
}
