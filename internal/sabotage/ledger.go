// Package sabotage applies bounded reputation penalties and publishes
// shaming reports to a team's feed when a deadline is missed.
package sabotage

import (
	"fmt"
	"log/slog"
	"time"

	"habitd/internal/model"
	"habitd/internal/websocket"
)

// UserSaver persists point totals.
type UserSaver interface {
	SavePoints(id string, points int) error
}

// MessageAppender writes to a team's feed.
type MessageAppender interface {
	Append(m *model.Message) (*model.Message, error)
}

// Ledger adjusts a user's sabotage points by one in either direction,
// keeping the counter inside [0, 9], and reports misses to the team feed.
type Ledger struct {
	users    UserSaver
	messages MessageAppender
	hub      *websocket.Hub
	logger   *slog.Logger
	now      func() time.Time
}

func NewLedger(users UserSaver, messages MessageAppender, hub *websocket.Hub, logger *slog.Logger) *Ledger {
	return &Ledger{
		users:    users,
		messages: messages,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}
}

// Report applies the point delta for one judged status. missed=true
// increments (capped), missed=false decrements (floored). Only a failed
// point save is returned as an error; the feed message is best effort and
// never blocks the update.
func (l *Ledger) Report(user *model.User, teamID string, task *model.Task, missed bool) error {
	current := user.SabotagePoints
	var next int
	if missed {
		next = model.ClampSabotage(current + 1)
	} else {
		next = model.ClampSabotage(current - 1)
	}

	if err := l.users.SavePoints(user.ID, next); err != nil {
		return fmt.Errorf("save sabotage points for %s: %w", user.ID, err)
	}
	user.SabotagePoints = next

	l.logger.Info("sabotage points updated",
		"user", user.ID, "from", current, "to", next, "missed", missed)

	if missed {
		l.notifyMiss(user, teamID, task)
	}
	return nil
}

func (l *Ledger) notifyMiss(user *model.User, teamID string, task *model.Task) {
	body := fmt.Sprintf("%s skipped yesterday's task %q.", user.Name, task.Name)
	msg := &model.Message{
		SenderID: model.SystemSenderID,
		TeamID:   teamID,
		Body:     body,
		SentAt:   l.now(),
	}

	if _, err := l.messages.Append(msg); err != nil {
		l.logger.Error("append sabotage report",
			"team", teamID, "user", user.ID, "task", task.ID, "error", err)
		return
	}

	if l.hub != nil {
		l.hub.Broadcast(websocket.Event{
			Type:   websocket.EventSabotageReported,
			TeamID: teamID,
			Body:   body,
			SentAt: msg.SentAt,
		})
	}

	l.logger.Info("sabotage report sent", "team", teamID, "user", user.ID, "task", task.ID)
}
