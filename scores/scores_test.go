package scores

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndTop(t *testing.T) {
	db := openTestDB(t)

	seed := []Score{
		{Game: "snake", Player: "ada", Points: 12, Level: 4},
		{Game: "snake", Player: "bo", Points: 30, Level: 10},
		{Game: "snake", Player: "ada", Points: 21, Level: 7},
		{Game: "mines", Player: "ada", Points: 71, Won: true},
	}
	for _, s := range seed {
		if _, err := db.Insert(s); err != nil {
			t.Fatalf("insert %+v: %v", s, err)
		}
	}

	top, err := db.Top("snake", 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("top len=%d want=2", len(top))
	}
	if top[0].Points != 30 || top[0].Player != "bo" {
		t.Fatalf("top[0]=%+v want bo/30", top[0])
	}
	if top[1].Points != 21 {
		t.Fatalf("top[1].Points=%d want=21", top[1].Points)
	}

	// Mines rows must not bleed into the snake leaderboard.
	all, err := db.Top("snake", 100)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("snake rows=%d want=3", len(all))
	}
}

func TestBest(t *testing.T) {
	db := openTestDB(t)

	if _, ok, err := db.Best("snake", "ada"); err != nil || ok {
		t.Fatalf("best on empty db: ok=%v err=%v", ok, err)
	}

	for _, pts := range []int{5, 17, 9} {
		if _, err := db.Insert(Score{Game: "snake", Player: "ada", Points: pts}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	best, ok, err := db.Best("snake", "ada")
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if !ok || best.Points != 17 {
		t.Fatalf("best=%+v ok=%v want points=17", best, ok)
	}
}

func TestInsertRequiresGame(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Insert(Score{Player: "ada", Points: 1}); err == nil {
		t.Fatalf("expected error for missing game")
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)

	for _, s := range []Score{
		{Game: "mines", Points: 71, Won: true},
		{Game: "mines", Points: 12, Won: false},
		{Game: "snake", Points: 4},
	} {
		if _, err := db.Insert(s); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	games, wins, err := db.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if games != 3 || wins != 1 {
		t.Fatalf("games=%d wins=%d want 3/1", games, wins)
	}
}
