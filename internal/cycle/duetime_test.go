package cycle

import (
	"errors"
	"testing"
	"time"
)

func TestDeadlineDefaultsToEndOfDay(t *testing.T) {
	d := date(2025, 6, 1)
	got := Deadline(d, "")
	want := date(2025, 6, 2)
	if !got.Equal(want) {
		t.Errorf("deadline = %v, want %v", got, want)
	}
}

func TestDeadlineWithDueTime(t *testing.T) {
	d := date(2025, 6, 1)
	got := Deadline(d, "18:30")
	want := time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("deadline = %v, want %v", got, want)
	}
}

func TestDeadlineInvalidTimeFallsBack(t *testing.T) {
	d := date(2025, 6, 1)
	got := Deadline(d, "not-a-time")
	want := date(2025, 6, 2)
	if !got.Equal(want) {
		t.Errorf("deadline = %v, want %v", got, want)
	}
}

func TestAdjustDueTimeFutureTargetKeepsOriginal(t *testing.T) {
	now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	got, err := AdjustDueTime("09:00", date(2025, 6, 2), now)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got != "09:00" {
		t.Errorf("due time = %q, want 09:00", got)
	}
}

func TestAdjustDueTimeTodayStillAhead(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	got, err := AdjustDueTime("09:00", date(2025, 6, 1), now)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got != "09:00" {
		t.Errorf("due time = %q, want 09:00", got)
	}
}

func TestAdjustDueTimeTodayAlreadyPast(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	got, err := AdjustDueTime("09:00", date(2025, 6, 1), now)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got != "11:00" {
		t.Errorf("due time = %q, want 11:00 (pushed 2h)", got)
	}
}

func TestAdjustDueTimeCrossesMidnight(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 45, 0, 0, time.UTC)
	_, err := AdjustDueTime("23:30", date(2025, 6, 1), now)
	if !errors.Is(err, ErrNoTimeToday) {
		t.Errorf("err = %v, want ErrNoTimeToday", err)
	}
}

func TestAdjustDueTimeEmptyOriginal(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 45, 0, 0, time.UTC)
	got, err := AdjustDueTime("", date(2025, 6, 1), now)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got != "" {
		t.Errorf("due time = %q, want empty", got)
	}
}

func TestNextDueSlotRollsToTomorrow(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 45, 0, 0, time.UTC)
	gotDate, gotTime := NextDueSlot("23:30", date(2025, 6, 1), now)
	if !gotDate.Equal(date(2025, 6, 2)) {
		t.Errorf("date = %v, want 2025-06-02", gotDate)
	}
	if gotTime != "23:30" {
		t.Errorf("time = %q, want original 23:30", gotTime)
	}
}

func TestNextDueSlotSameDay(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	gotDate, gotTime := NextDueSlot("09:00", date(2025, 6, 1), now)
	if !gotDate.Equal(date(2025, 6, 1)) {
		t.Errorf("date = %v, want 2025-06-01", gotDate)
	}
	if gotTime != "11:00" {
		t.Errorf("time = %q, want 11:00", gotTime)
	}
}
