package api

import (
	"context"
	"net/http"
)

const chatRoomsPath = "/api/chat-rooms"

// ListRooms returns every room the caller belongs to.
func (c *Client) ListRooms(ctx context.Context) ([]ChatRoom, error) {
	var rooms []ChatRoom
	if err := c.do(ctx, http.MethodGet, chatRoomsPath, nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// QuickContacts returns the short contact list shown next to the room list.
func (c *Client) QuickContacts(ctx context.Context) ([]Participant, error) {
	var contacts []Participant
	if err := c.do(ctx, http.MethodGet, chatRoomsPath+"/contacts", nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CreateGroupRoom creates a group room. Callers validate the request first.
func (c *Client) CreateGroupRoom(ctx context.Context, req CreateRoomRequest) (ChatRoom, error) {
	req.ChatType = ChatGroup
	var room ChatRoom
	err := c.do(ctx, http.MethodPost, chatRoomsPath, req, &room)
	return room, err
}

// IndividualRoom looks up or creates the one-to-one room with the given email.
func (c *Client) IndividualRoom(ctx context.Context, email string) (ChatRoom, error) {
	var room ChatRoom
	err := c.do(ctx, http.MethodPost, chatRoomsPath+"/individual", map[string]string{"email": email}, &room)
	return room, err
}
