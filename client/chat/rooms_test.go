package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incubator/portal/client/api"
	"incubator/portal/client/validate"
)

type fakeRoomAPI struct {
	rooms       []api.ChatRoom
	contacts    []api.Participant
	roomsErr    error
	contactsErr error
	created     api.ChatRoom
	individual  api.ChatRoom
	calls       int
}

func (f *fakeRoomAPI) ListRooms(ctx context.Context) ([]api.ChatRoom, error) {
	return f.rooms, f.roomsErr
}

func (f *fakeRoomAPI) QuickContacts(ctx context.Context) ([]api.Participant, error) {
	return f.contacts, f.contactsErr
}

func (f *fakeRoomAPI) CreateGroupRoom(ctx context.Context, req api.CreateRoomRequest) (api.ChatRoom, error) {
	f.calls++
	return f.created, nil
}

func (f *fakeRoomAPI) IndividualRoom(ctx context.Context, email string) (api.ChatRoom, error) {
	f.calls++
	return f.individual, nil
}

func sampleRooms() []api.ChatRoom {
	return []api.ChatRoom{
		{ID: 1, ChatName: "Founders", ChatType: api.ChatGroup, Users: []api.Participant{{ID: 1, FullName: "Ada Lovelace", Email: "ada@x.io"}}},
		{ID: 2, ChatName: "Bob", ChatType: api.ChatIndividual, Users: []api.Participant{{ID: 2, FullName: "Bob Stone", Email: "bob@x.io"}}},
		{ID: 3, ChatName: "Mentors", ChatType: api.ChatGroup, Users: []api.Participant{{ID: 3, FullName: "Cy", Email: "cy@ada.org"}}},
	}
}

func roomIDs(rooms []api.ChatRoom) []int {
	ids := make([]int, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	return ids
}

func TestFilterRooms(t *testing.T) {
	rooms := sampleRooms()

	tests := []struct {
		name       string
		term       string
		typeFilter string
		want       []int
	}{
		{"empty term keeps all", "", FilterAll, []int{1, 2, 3}},
		{"room name", "found", "", []int{1}},
		{"participant name case-insensitive", "BOB", FilterAll, []int{2}},
		{"participant email", "ada", FilterAll, []int{1, 3}},
		{"type filter", "", "GROUP", []int{1, 3}},
		{"term and type", "ada", "INDIVIDUAL", []int{}},
		{"no match", "zzz", FilterAll, []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterRooms(rooms, tc.term, tc.typeFilter)
			assert.Equal(t, tc.want, roomIDs(got))
		})
	}
}

func TestRoomList_Load(t *testing.T) {
	t.Run("both succeed", func(t *testing.T) {
		fake := &fakeRoomAPI{rooms: sampleRooms(), contacts: []api.Participant{{ID: 9}}}
		list := NewRoomList(fake, nil)
		require.NoError(t, list.Load(context.Background()))
		assert.Len(t, list.Rooms(), 3)
		assert.Len(t, list.Contacts(), 1)
	})

	t.Run("one failure leaves the other intact", func(t *testing.T) {
		fake := &fakeRoomAPI{roomsErr: errors.New("boom"), contacts: []api.Participant{{ID: 9}}}
		list := NewRoomList(fake, nil)
		err := list.Load(context.Background())
		require.Error(t, err)
		assert.Empty(t, list.Rooms())
		assert.Len(t, list.Contacts(), 1)
	})
}

func TestRoomList_CreateGroupValidation(t *testing.T) {
	tests := []struct {
		name         string
		chatName     string
		participants []int
	}{
		{"blank name", "   ", []int{1, 2}},
		{"one participant", "Team", []int{1}},
		{"no participants", "Team", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeRoomAPI{}
			list := NewRoomList(fake, nil)

			_, err := list.CreateGroup(context.Background(), tc.chatName, tc.participants)
			require.Error(t, err)
			assert.True(t, validate.IsValidationError(err))
			assert.Zero(t, fake.calls)
			assert.Empty(t, list.Rooms())
		})
	}
}

func TestRoomList_CreateGroupPrepends(t *testing.T) {
	fake := &fakeRoomAPI{rooms: sampleRooms(), created: api.ChatRoom{ID: 10, ChatName: "New", ChatType: api.ChatGroup}}
	list := NewRoomList(fake, nil)
	require.NoError(t, list.Load(context.Background()))

	room, err := list.CreateGroup(context.Background(), " New ", []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 10, room.ID)
	assert.Equal(t, []int{10, 1, 2, 3}, roomIDs(list.Rooms()))
}

func TestRoomList_CreateIndividualDedupes(t *testing.T) {
	fake := &fakeRoomAPI{rooms: sampleRooms(), individual: api.ChatRoom{ID: 2, ChatName: "Bob", ChatType: api.ChatIndividual}}
	list := NewRoomList(fake, nil)
	require.NoError(t, list.Load(context.Background()))

	_, err := list.CreateIndividual(context.Background(), "bob@x.io")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3}, roomIDs(list.Rooms()))

	_, err = list.CreateIndividual(context.Background(), "  ")
	assert.True(t, validate.IsValidationError(err))
	assert.Equal(t, 1, fake.calls)
}

func TestRoomList_ApplyNotification(t *testing.T) {
	list := NewRoomList(&fakeRoomAPI{rooms: sampleRooms()}, nil)
	require.NoError(t, list.Load(context.Background()))
	list.SetOpenRoom(1)

	list.ApplyNotification(Notification{RoomID: 3, Content: "hi"})
	list.ApplyNotification(Notification{RoomID: 3, Content: "again"})
	list.ApplyNotification(Notification{RoomID: 1, Content: "seen"})
	list.ApplyNotification(Notification{RoomID: 99, Content: "unknown"})

	rooms := list.Rooms()
	require.NotNil(t, rooms[2].UnreadCount)
	assert.Equal(t, 2, *rooms[2].UnreadCount)
	assert.Equal(t, "again", *rooms[2].LastMessage)
	assert.Nil(t, rooms[0].UnreadCount)
	assert.Equal(t, "seen", *rooms[0].LastMessage)
}
