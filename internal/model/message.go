package model

import "time"

// SystemSenderID is the fixed actor that authors server-generated feed
// messages such as sabotage reports.
const SystemSenderID = "system"

type Message struct {
	ID       int64     `json:"id"`
	SenderID string    `json:"sender_id"`
	TeamID   string    `json:"team_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}
