package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"incubator/portal/client/api"
	"incubator/portal/client/validate"
	"incubator/portal/logger"
)

// FilterAll disables the room type filter.
const FilterAll = "all"

// RoomAPI is the slice of the REST client used by the room list.
type RoomAPI interface {
	ListRooms(ctx context.Context) ([]api.ChatRoom, error)
	QuickContacts(ctx context.Context) ([]api.Participant, error)
	CreateGroupRoom(ctx context.Context, req api.CreateRoomRequest) (api.ChatRoom, error)
	IndividualRoom(ctx context.Context, email string) (api.ChatRoom, error)
}

var _ RoomAPI = (*api.Client)(nil)

// RoomList is the chat overview state: the caller's rooms and quick contacts.
type RoomList struct {
	api RoomAPI
	log logger.Logger

	mu       sync.RWMutex
	rooms    []api.ChatRoom
	contacts []api.Participant
	openRoom int
}

func NewRoomList(roomAPI RoomAPI, log logger.Logger) *RoomList {
	if log == nil {
		log = logger.Discard
	}
	return &RoomList{api: roomAPI, log: log}
}

// Load fetches rooms and quick contacts concurrently. A failed fetch leaves its
// slice empty without affecting the other; the joined errors are returned.
func (l *RoomList) Load(ctx context.Context) error {
	var (
		rooms    []api.ChatRoom
		contacts []api.Participant
		roomErr  error
		contErr  error
	)

	var g errgroup.Group
	g.Go(func() error {
		rooms, roomErr = l.api.ListRooms(ctx)
		return nil
	})
	g.Go(func() error {
		contacts, contErr = l.api.QuickContacts(ctx)
		return nil
	})
	_ = g.Wait()

	if roomErr != nil {
		l.log.Error("loading chat rooms", roomErr)
		rooms = nil
	}
	if contErr != nil {
		l.log.Error("loading quick contacts", contErr)
		contacts = nil
	}

	l.mu.Lock()
	l.rooms = rooms
	l.contacts = contacts
	l.mu.Unlock()

	return errors.Join(roomErr, contErr)
}

// Rooms returns a copy of the room list.
func (l *RoomList) Rooms() []api.ChatRoom {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]api.ChatRoom(nil), l.rooms...)
}

func (l *RoomList) Contacts() []api.Participant {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]api.Participant(nil), l.contacts...)
}

// Filter applies FilterRooms to the current list.
func (l *RoomList) Filter(term, typeFilter string) []api.ChatRoom {
	return FilterRooms(l.Rooms(), term, typeFilter)
}

// FilterRooms keeps rooms whose name or any participant name/email contains term
// (case-insensitive) and whose type equals typeFilter ("all" or "" match every type).
func FilterRooms(rooms []api.ChatRoom, term, typeFilter string) []api.ChatRoom {
	term = strings.ToLower(strings.TrimSpace(term))
	typeFilter = strings.TrimSpace(typeFilter)

	out := make([]api.ChatRoom, 0, len(rooms))
	for _, room := range rooms {
		if typeFilter != "" && !strings.EqualFold(typeFilter, FilterAll) && !strings.EqualFold(typeFilter, string(room.ChatType)) {
			continue
		}
		if term != "" && !roomMatches(room, term) {
			continue
		}
		out = append(out, room)
	}
	return out
}

func roomMatches(room api.ChatRoom, term string) bool {
	if strings.Contains(strings.ToLower(room.ChatName), term) {
		return true
	}
	for _, u := range room.Users {
		if strings.Contains(strings.ToLower(u.FullName), term) || strings.Contains(strings.ToLower(u.Email), term) {
			return true
		}
	}
	return false
}

// CreateGroup validates locally, creates the room and prepends it to the list.
func (l *RoomList) CreateGroup(ctx context.Context, name string, participantIDs []int) (api.ChatRoom, error) {
	req := api.CreateRoomRequest{
		ChatName:       strings.TrimSpace(name),
		ChatType:       api.ChatGroup,
		ParticipantIDs: participantIDs,
	}
	if err := validate.Struct(req); err != nil {
		return api.ChatRoom{}, err
	}

	room, err := l.api.CreateGroupRoom(ctx, req)
	if err != nil {
		l.log.Error("creating group chat", err)
		return api.ChatRoom{}, err
	}
	l.prepend(room)
	return room, nil
}

// CreateIndividual looks up or creates the one-to-one room with email and
// prepends it, replacing any existing entry with the same id.
func (l *RoomList) CreateIndividual(ctx context.Context, email string) (api.ChatRoom, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return api.ChatRoom{}, validate.New("email", "email is required")
	}

	room, err := l.api.IndividualRoom(ctx, email)
	if err != nil {
		l.log.Error("creating individual chat", err)
		return api.ChatRoom{}, err
	}
	l.prepend(room)
	return room, nil
}

func (l *RoomList) prepend(room api.ChatRoom) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]api.ChatRoom, 0, len(l.rooms)+1)
	out = append(out, room)
	for _, r := range l.rooms {
		if r.ID != room.ID {
			out = append(out, r)
		}
	}
	l.rooms = out
}

// SetOpenRoom marks the room currently shown so its notifications do not count as unread.
func (l *RoomList) SetOpenRoom(roomID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.openRoom = roomID
	for i := range l.rooms {
		if l.rooms[i].ID == roomID {
			l.rooms[i].UnreadCount = nil
		}
	}
}

// ApplyNotification updates the preview of the room named in n.
// Unknown rooms are ignored until the next Load.
func (l *RoomList) ApplyNotification(n Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.rooms {
		room := &l.rooms[i]
		if room.ID != n.RoomID {
			continue
		}
		content, now := n.Content, time.Now()
		room.LastMessage = &content
		room.LastMessageTime = &now
		if room.ID != l.openRoom {
			unread := 1
			if room.UnreadCount != nil {
				unread += *room.UnreadCount
			}
			room.UnreadCount = &unread
		}
		return
	}
}
