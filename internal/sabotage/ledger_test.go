package sabotage

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"habitd/internal/model"
	"habitd/internal/websocket"
)

type fakeUsers struct {
	saved map[string]int
	err   error
}

func (f *fakeUsers) SavePoints(id string, points int) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string]int)
	}
	f.saved[id] = points
	return nil
}

type fakeMessages struct {
	appended []model.Message
	err      error
}

func (f *fakeMessages) Append(m *model.Message) (*model.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.appended = append(f.appended, *m)
	return m, nil
}

func newTestLedger(users *fakeUsers, messages *fakeMessages) *Ledger {
	l := NewLedger(users, messages, nil, slog.Default())
	l.now = func() time.Time { return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) }
	return l
}

func TestReportMissIncrements(t *testing.T) {
	users := &fakeUsers{}
	messages := &fakeMessages{}
	ledger := newTestLedger(users, messages)

	user := &model.User{ID: "u1", Name: "Alice", SabotagePoints: 3}
	task := &model.Task{ID: "t1", Name: "Dishes", TeamID: "team-1"}

	if err := ledger.Report(user, "team-1", task, true); err != nil {
		t.Fatalf("report: %v", err)
	}

	if users.saved["u1"] != 4 {
		t.Errorf("saved points = %d, want 4", users.saved["u1"])
	}
	if user.SabotagePoints != 4 {
		t.Errorf("user points = %d, want 4", user.SabotagePoints)
	}
	if len(messages.appended) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages.appended))
	}
	msg := messages.appended[0]
	if msg.SenderID != model.SystemSenderID {
		t.Errorf("sender = %q, want %q", msg.SenderID, model.SystemSenderID)
	}
	if msg.TeamID != "team-1" {
		t.Errorf("team = %q, want team-1", msg.TeamID)
	}
	if want := `Alice skipped yesterday's task "Dishes".`; msg.Body != want {
		t.Errorf("body = %q, want %q", msg.Body, want)
	}
}

func TestReportCompletionDecrements(t *testing.T) {
	users := &fakeUsers{}
	messages := &fakeMessages{}
	ledger := newTestLedger(users, messages)

	user := &model.User{ID: "u1", Name: "Alice", SabotagePoints: 3}
	task := &model.Task{ID: "t1", Name: "Dishes"}

	if err := ledger.Report(user, "team-1", task, false); err != nil {
		t.Fatalf("report: %v", err)
	}

	if users.saved["u1"] != 2 {
		t.Errorf("saved points = %d, want 2", users.saved["u1"])
	}
	if len(messages.appended) != 0 {
		t.Errorf("expected no messages on completion, got %d", len(messages.appended))
	}
}

func TestReportBounds(t *testing.T) {
	users := &fakeUsers{}
	messages := &fakeMessages{}
	ledger := newTestLedger(users, messages)

	atMax := &model.User{ID: "max", Name: "Max", SabotagePoints: model.SabotageMax}
	task := &model.Task{ID: "t1", Name: "Dishes"}

	if err := ledger.Report(atMax, "team-1", task, true); err != nil {
		t.Fatalf("report: %v", err)
	}
	if atMax.SabotagePoints != model.SabotageMax {
		t.Errorf("points above cap: %d", atMax.SabotagePoints)
	}

	atMin := &model.User{ID: "min", Name: "Min", SabotagePoints: model.SabotageMin}
	if err := ledger.Report(atMin, "team-1", task, false); err != nil {
		t.Fatalf("report: %v", err)
	}
	if atMin.SabotagePoints != model.SabotageMin {
		t.Errorf("points below floor: %d", atMin.SabotagePoints)
	}
}

func TestReportMessageFailureDoesNotBlockPoints(t *testing.T) {
	users := &fakeUsers{}
	messages := &fakeMessages{err: errors.New("feed unavailable")}
	ledger := newTestLedger(users, messages)

	user := &model.User{ID: "u1", Name: "Alice", SabotagePoints: 0}
	task := &model.Task{ID: "t1", Name: "Dishes"}

	if err := ledger.Report(user, "team-1", task, true); err != nil {
		t.Fatalf("report should not fail on message error: %v", err)
	}
	if users.saved["u1"] != 1 {
		t.Errorf("saved points = %d, want 1", users.saved["u1"])
	}
}

func TestReportPointSaveFailure(t *testing.T) {
	users := &fakeUsers{err: errors.New("db down")}
	messages := &fakeMessages{}
	ledger := newTestLedger(users, messages)

	user := &model.User{ID: "u1", Name: "Alice", SabotagePoints: 2}
	task := &model.Task{ID: "t1", Name: "Dishes"}

	if err := ledger.Report(user, "team-1", task, true); err == nil {
		t.Fatal("expected error from point save failure")
	}
	if user.SabotagePoints != 2 {
		t.Errorf("points mutated on failed save: %d", user.SabotagePoints)
	}
	if len(messages.appended) != 0 {
		t.Errorf("message sent despite failed save: %d", len(messages.appended))
	}
}

func TestReportBroadcastsToHub(t *testing.T) {
	users := &fakeUsers{}
	messages := &fakeMessages{}
	hub := websocket.NewHub(slog.Default())
	ledger := NewLedger(users, messages, hub, slog.Default())

	user := &model.User{ID: "u1", Name: "Alice", SabotagePoints: 0}
	task := &model.Task{ID: "t1", Name: "Dishes"}

	// No clients connected; broadcast must still be safe
	if err := ledger.Report(user, "team-1", task, true); err != nil {
		t.Fatalf("report: %v", err)
	}
}
