package store

import (
	"database/sql"
	"fmt"

	"habitd/internal/model"
)

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

const messageCols = `id, sender_id, team_id, body, sent_at`

func scanMessage(scanner interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	err := scanner.Scan(&m.ID, &m.SenderID, &m.TeamID, &m.Body, &m.SentAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Append adds a message to a team's feed.
func (s *MessageStore) Append(m *model.Message) (*model.Message, error) {
	result, err := s.db.Exec(
		`INSERT INTO messages (sender_id, team_id, body, sent_at) VALUES (?, ?, ?, ?)`,
		m.SenderID, m.TeamID, m.Body, m.SentAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+messageCols+` FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

func (s *MessageStore) ListByTeam(teamID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT `+messageCols+` FROM messages WHERE team_id = ? ORDER BY sent_at DESC, id DESC LIMIT ?`,
		teamID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}
