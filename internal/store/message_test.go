package store

import (
	"testing"
	"time"

	"habitd/internal/database"
	"habitd/internal/model"
)

func setupMessageTestDB(t *testing.T) *MessageStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMessageStore(db)
}

func TestMessageAppend(t *testing.T) {
	ms := setupMessageTestDB(t)

	msg, err := ms.Append(&model.Message{
		SenderID: model.SystemSenderID,
		TeamID:   "t1",
		Body:     "Alice skipped yesterday's task \"Dishes\".",
		SentAt:   time.Date(2025, 6, 2, 0, 5, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("append message: %v", err)
	}
	if msg.ID == 0 {
		t.Error("expected assigned id")
	}
	if msg.SenderID != model.SystemSenderID {
		t.Errorf("sender = %q, want system", msg.SenderID)
	}
}

func TestMessageListByTeam(t *testing.T) {
	ms := setupMessageTestDB(t)

	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := ms.Append(&model.Message{
			SenderID: "u1",
			TeamID:   "t1",
			Body:     "hello",
			SentAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append message: %v", err)
		}
	}
	if _, err := ms.Append(&model.Message{SenderID: "u1", TeamID: "t2", Body: "other", SentAt: base}); err != nil {
		t.Fatalf("append message: %v", err)
	}

	msgs, err := ms.ListByTeam("t1", 0)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	// Newest first
	if msgs[0].SentAt.Before(msgs[1].SentAt) {
		t.Error("feed not ordered newest first")
	}

	limited, err := ms.ListByTeam("t1", 2)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2 with limit", len(limited))
	}
}
