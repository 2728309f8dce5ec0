package chat

const (
	// SelectRoomsQuery lists the rooms of a user with their latest message
	SelectRoomsQuery = `
		SELECT r.id, r.chat_name, r.chat_type, lm.content, lm.timestamp
		FROM chat_rooms r
		JOIN chat_room_users ru ON ru.room_id = r.id AND ru.user_id = $1
		LEFT JOIN LATERAL (
			SELECT content, timestamp
			FROM chat_messages
			WHERE room_id = r.id
			ORDER BY timestamp DESC
			LIMIT 1
		) lm ON true
		ORDER BY COALESCE(lm.timestamp, r.created_at) DESC
	`

	// SelectRoomQuery loads a single room
	SelectRoomQuery = `
		SELECT id, chat_name, chat_type, tenant_id
		FROM chat_rooms
		WHERE id = $1
	`

	// SelectRoomUsersQuery loads the members of several rooms
	SelectRoomUsersQuery = `
		SELECT ru.room_id, u.id, u.full_name, u.email
		FROM chat_room_users ru
		JOIN users u ON u.id = ru.user_id
		WHERE ru.room_id = ANY($1)
		ORDER BY u.full_name
	`

	// SelectContactsQuery returns a short list of people in the caller's tenant
	SelectContactsQuery = `
		SELECT id, full_name, email
		FROM users
		WHERE id != $1 AND tenant_id IS NOT DISTINCT FROM $2
		ORDER BY full_name
		LIMIT 8
	`

	InsertRoomQuery = `
		INSERT INTO chat_rooms (chat_name, chat_type, tenant_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	InsertRoomUsersQuery = `
		INSERT INTO chat_room_users (room_id, user_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT DO NOTHING
	`

	// SelectIndividualRoomQuery finds the one-to-one room shared by two users
	SelectIndividualRoomQuery = `
		SELECT r.id
		FROM chat_rooms r
		JOIN chat_room_users a ON a.room_id = r.id AND a.user_id = $1
		JOIN chat_room_users b ON b.room_id = r.id AND b.user_id = $2
		WHERE r.chat_type = 'INDIVIDUAL'
		LIMIT 1
	`

	SelectMembershipQuery = `
		SELECT EXISTS (
			SELECT 1 FROM chat_room_users WHERE room_id = $1 AND user_id = $2
		)
	`

	InsertMessageQuery = `
		INSERT INTO chat_messages (room_id, sender_id, content, timestamp)
		VALUES ($1, $2, $3, $4)
	`
)
