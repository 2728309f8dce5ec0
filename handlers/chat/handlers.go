package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"incubator/portal/handlers/auth"

	"github.com/lib/pq"
)

const (
	ChatIndividual = "INDIVIDUAL"
	ChatGroup      = "GROUP"
)

// GetRoomsHandler lists the caller's rooms, most recent activity first
// Used by: /api/chat-rooms
// Response: []ChatRoom
func GetRoomsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		rows, err := db.QueryContext(r.Context(), SelectRoomsQuery, userID)
		if err != nil {
			log.Printf("Error listing rooms for user %d: %v", userID, err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		rooms := []ChatRoom{}
		for rows.Next() {
			var (
				room     ChatRoom
				lastMsg  sql.NullString
				lastTime sql.NullTime
			)
			if err := rows.Scan(&room.ID, &room.ChatName, &room.ChatType, &lastMsg, &lastTime); err != nil {
				log.Printf("Error scanning room: %v", err)
				auth.WriteError(w, http.StatusInternalServerError, "Database error")
				return
			}
			if lastMsg.Valid {
				room.LastMessage = &lastMsg.String
			}
			if lastTime.Valid {
				room.LastMessageTime = &lastTime.Time
			}
			rooms = append(rooms, room)
		}
		if err := rows.Err(); err != nil {
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}

		if err := attachUsers(r.Context(), db, rooms); err != nil {
			log.Printf("Error loading room members: %v", err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		auth.WriteJSON(w, http.StatusOK, rooms)
	}
}

// GetContactsHandler returns quick contacts from the caller's tenant
// Used by: /api/chat-rooms/contacts
func GetContactsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		rows, err := db.QueryContext(r.Context(), SelectContactsQuery, claims.UserID, claims.TenantID)
		if err != nil {
			log.Printf("Error listing contacts: %v", err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		contacts := []Participant{}
		for rows.Next() {
			var p Participant
			if err := rows.Scan(&p.ID, &p.FullName, &p.Email); err != nil {
				auth.WriteError(w, http.StatusInternalServerError, "Database error")
				return
			}
			contacts = append(contacts, p)
		}
		auth.WriteJSON(w, http.StatusOK, contacts)
	}
}

// CreateRoomHandler creates a group room; the caller is always a member
// Used by: POST /api/chat-rooms
func CreateRoomHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CreateRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.ChatName = strings.TrimSpace(req.ChatName)
		if req.ChatName == "" {
			auth.WriteError(w, http.StatusBadRequest, "Chat name is required")
			return
		}
		if len(req.ParticipantIDs) < 2 {
			auth.WriteError(w, http.StatusBadRequest, "A group needs at least two participants")
			return
		}

		members := append([]int{claims.UserID}, req.ParticipantIDs...)
		roomID, err := createRoom(r.Context(), db, req.ChatName, ChatGroup, claims.TenantID, members)
		if err != nil {
			log.Printf("Error creating room: %v", err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}

		room, err := loadRoom(r.Context(), db, roomID)
		if err != nil {
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		auth.WriteJSON(w, http.StatusCreated, room)
	}
}

// IndividualRoomHandler returns the one-to-one room with the user owning the
// given email, creating it on first use
// Used by: POST /api/chat-rooms/individual
func IndividualRoomHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.GetClaimsFromToken(r)
		if err != nil {
			auth.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
			auth.WriteError(w, http.StatusBadRequest, "Email is required")
			return
		}

		var other Participant
		err = db.QueryRowContext(r.Context(),
			`SELECT id, full_name, email FROM users WHERE lower(email) = lower($1)`,
			strings.TrimSpace(req.Email)).Scan(&other.ID, &other.FullName, &other.Email)
		if err == sql.ErrNoRows {
			auth.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if other.ID == claims.UserID {
			auth.WriteError(w, http.StatusBadRequest, "Cannot start a chat with yourself")
			return
		}

		var roomID int
		err = db.QueryRowContext(r.Context(), SelectIndividualRoomQuery, claims.UserID, other.ID).Scan(&roomID)
		if err == sql.ErrNoRows {
			roomID, err = createRoom(r.Context(), db, other.FullName, ChatIndividual, claims.TenantID, []int{claims.UserID, other.ID})
		}
		if err != nil {
			log.Printf("Error resolving individual room: %v", err)
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}

		room, err := loadRoom(r.Context(), db, roomID)
		if err != nil {
			auth.WriteError(w, http.StatusInternalServerError, "Database error")
			return
		}
		auth.WriteJSON(w, http.StatusOK, room)
	}
}

func createRoom(ctx context.Context, db *sql.DB, name, chatType string, tenantID *int, members []int) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var roomID int
	if err := tx.QueryRowContext(ctx, InsertRoomQuery, name, chatType, tenantID).Scan(&roomID); err != nil {
		return 0, err
	}
	ids := make([]int64, len(members))
	for i, id := range members {
		ids[i] = int64(id)
	}
	if _, err := tx.ExecContext(ctx, InsertRoomUsersQuery, roomID, pq.Array(ids)); err != nil {
		return 0, err
	}
	return roomID, tx.Commit()
}

func loadRoom(ctx context.Context, db *sql.DB, roomID int) (ChatRoom, error) {
	var (
		room     ChatRoom
		tenantID sql.NullInt64
	)
	err := db.QueryRowContext(ctx, SelectRoomQuery, roomID).Scan(&room.ID, &room.ChatName, &room.ChatType, &tenantID)
	if err != nil {
		return room, err
	}
	rooms := []ChatRoom{room}
	if err := attachUsers(ctx, db, rooms); err != nil {
		return room, err
	}
	return rooms[0], nil
}

func attachUsers(ctx context.Context, db *sql.DB, rooms []ChatRoom) error {
	if len(rooms) == 0 {
		return nil
	}
	ids := make([]int64, len(rooms))
	index := make(map[int]int, len(rooms))
	for i, room := range rooms {
		ids[i] = int64(room.ID)
		index[room.ID] = i
		rooms[i].Users = []Participant{}
	}

	rows, err := db.QueryContext(ctx, SelectRoomUsersQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			roomID int
			p      Participant
		)
		if err := rows.Scan(&roomID, &p.ID, &p.FullName, &p.Email); err != nil {
			return err
		}
		if i, ok := index[roomID]; ok {
			rooms[i].Users = append(rooms[i].Users, p)
		}
	}
	return rows.Err()
}
