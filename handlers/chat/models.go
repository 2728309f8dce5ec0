package chat

import "time"

type Participant struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type ChatRoom struct {
	ID              int           `json:"id"`
	ChatName        string        `json:"chatName"`
	ChatType        string        `json:"chatType"`
	Users           []Participant `json:"users"`
	LastMessage     *string       `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time    `json:"lastMessageTime,omitempty"`
	UnreadCount     *int          `json:"unreadCount,omitempty"`
}

type CreateRoomRequest struct {
	ChatName       string `json:"chatName"`
	ChatType       string `json:"chatType"`
	ParticipantIDs []int  `json:"participantIds"`
}

type Sender struct {
	Username string `json:"username"`
	ID       int    `json:"id"`
}

// ChatMessage is the body of a MESSAGE frame on /topic/chat/{roomId}.
type ChatMessage struct {
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatNotification is the body of a MESSAGE frame on /topic/chat-notify/{tenantId}.
type ChatNotification struct {
	RoomID   int    `json:"roomId"`
	ChatName string `json:"chatName"`
	Sender   Sender `json:"sender"`
	Content  string `json:"content"`
}
