package cycle

import (
	"errors"
	"time"
)

// fallbackDueTime is used when a due slot must roll to the next day and
// the task never had a due time of its own.
const fallbackDueTime = "23:59"

// overduePush is how far a same-day due time is pushed forward when the
// original time has already passed.
const overduePush = 2 * time.Hour

// ErrNoTimeToday reports that pushing the due time forward would cross the
// end of the current day; the caller rolls the target date instead.
var ErrNoTimeToday = errors.New("no time remains today")

// Deadline returns the instant a status dated on the given day must be
// completed by. An empty due time means the whole day is available, so the
// deadline is the midnight ending it.
func Deadline(date time.Time, dueTime string) time.Time {
	day := startOfDay(date)
	t, err := time.Parse("15:04", dueTime)
	if dueTime == "" || err != nil {
		return day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

// AdjustDueTime picks the due time for a regenerated instance targeted at
// the given date, so that the new deadline is never already in the past at
// creation time:
//   - target date in the future: the original time is reused unchanged;
//   - target date today, current time past the original: the time is pushed
//     forward by two hours, or ErrNoTimeToday when that crosses midnight;
//   - target date today, original time still ahead: reused unchanged.
func AdjustDueTime(orig string, targetDate, now time.Time) (string, error) {
	if startOfDay(targetDate).After(startOfDay(now)) {
		return orig, nil
	}
	if orig == "" {
		// No due time means due by end of day, which is still ahead.
		return "", nil
	}

	t, err := time.Parse("15:04", orig)
	if err != nil {
		return "", nil
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if now.Before(due) {
		return orig, nil
	}

	pushed := due.Add(overduePush)
	if pushed.Day() != due.Day() {
		return "", ErrNoTimeToday
	}
	return pushed.Format("15:04"), nil
}

// NextDueSlot resolves the (date, time) slot for an immediately regenerated
// instance. When no time remains today the date rolls forward one day,
// keeping the original due time or substituting 23:59 when there was none.
func NextDueSlot(orig string, targetDate, now time.Time) (time.Time, string) {
	adjusted, err := AdjustDueTime(orig, targetDate, now)
	if errors.Is(err, ErrNoTimeToday) {
		dueTime := orig
		if dueTime == "" {
			dueTime = fallbackDueTime
		}
		return startOfDay(targetDate).AddDate(0, 0, 1), dueTime
	}
	return startOfDay(targetDate), adjusted
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
