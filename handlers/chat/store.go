package chat

import (
	"context"
	"database/sql"
	"time"
)

// Store is what the broker needs from persistence.
type Store interface {
	IsMember(ctx context.Context, roomID, userID int) (bool, error)
	Room(ctx context.Context, roomID int) (name string, tenantID *int, err error)
	SaveMessage(ctx context.Context, roomID, senderID int, content string, at time.Time) error
}

// SQLStore implements Store on the portal database.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) IsMember(ctx context.Context, roomID, userID int) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, SelectMembershipQuery, roomID, userID).Scan(&ok)
	return ok, err
}

func (s *SQLStore) Room(ctx context.Context, roomID int) (string, *int, error) {
	var (
		id       int
		name     string
		chatType string
		tenantID sql.NullInt64
	)
	if err := s.db.QueryRowContext(ctx, SelectRoomQuery, roomID).Scan(&id, &name, &chatType, &tenantID); err != nil {
		return "", nil, err
	}
	if !tenantID.Valid {
		return name, nil, nil
	}
	tid := int(tenantID.Int64)
	return name, &tid, nil
}

func (s *SQLStore) SaveMessage(ctx context.Context, roomID, senderID int, content string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, InsertMessageQuery, roomID, senderID, content, at)
	return err
}
