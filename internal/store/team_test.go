package store

import (
	"testing"

	"habitd/internal/database"
)

func setupTeamTestDB(t *testing.T) *TeamStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTeamStore(db)
}

func TestTeamCreateAndGet(t *testing.T) {
	ts := setupTeamTestDB(t)

	team, err := ts.Create("t1", "Flat 3")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if team.Name != "Flat 3" {
		t.Errorf("name = %q, want Flat 3", team.Name)
	}

	got, err := ts.GetByID("t1")
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if got == nil || got.ID != "t1" {
		t.Errorf("got = %+v", got)
	}
}

func TestTeamGetMissing(t *testing.T) {
	ts := setupTeamTestDB(t)

	team, err := ts.GetByID("nope")
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if team != nil {
		t.Errorf("expected nil, got %+v", team)
	}
}

func TestTeamListIDs(t *testing.T) {
	ts := setupTeamTestDB(t)

	for _, id := range []string{"t1", "t2", "t3"} {
		if _, err := ts.Create(id, "Team "+id); err != nil {
			t.Fatalf("create team: %v", err)
		}
	}

	ids, err := ts.ListIDs()
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("len = %d, want 3", len(ids))
	}
}
