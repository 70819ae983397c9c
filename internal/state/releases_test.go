package state

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := Open(ctx, Config{Path: filepath.Join(t.TempDir(), "state.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	j, err := NewJournal(ctx, db)
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	return j
}

func TestJournalAppendAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	first := Release{
		RunID:      "1700000001",
		Registry:   "registry.example.com",
		ImageName:  "billing-api",
		Version:    "20260823-101500",
		Outcome:    OutcomeReleased,
		Descriptor: "deploy.env",
	}
	second := Release{
		RunID:     "1700000002",
		Registry:  "registry.example.com",
		ImageName: "billing-api",
		Version:   "20260823-113000",
		Outcome:   OutcomeDegraded,
	}

	if err := j.Append(ctx, first); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := j.Append(ctx, second); err != nil {
		t.Fatalf("Append: %v", err)
	}

	releases, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("expected 2 releases, got %d", len(releases))
	}

	// newest first
	if releases[0].Version != second.Version {
		t.Errorf("expected newest release first, got version %s", releases[0].Version)
	}
	if releases[0].Outcome != OutcomeDegraded {
		t.Errorf("outcome = %s, want %s", releases[0].Outcome, OutcomeDegraded)
	}
	if releases[0].Descriptor != "" {
		t.Errorf("degraded release should have empty descriptor, got %q", releases[0].Descriptor)
	}
	if releases[1].Descriptor != "deploy.env" {
		t.Errorf("descriptor = %q, want deploy.env", releases[1].Descriptor)
	}
	if releases[1].CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestJournalRecentLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := range 5 {
		r := Release{
			RunID:     "run",
			Registry:  "registry.example.com",
			ImageName: "billing-api",
			Version:   "20260823-10150" + string(rune('0'+i)),
			Outcome:   OutcomeReleased,
		}
		if err := j.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	releases, err := j.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(releases) != 3 {
		t.Fatalf("expected 3 releases, got %d", len(releases))
	}
	if releases[0].Version != "20260823-101504" {
		t.Errorf("expected newest first, got %s", releases[0].Version)
	}
}

func TestJournalClose(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.Append(ctx, Release{
		RunID:     "1700000001",
		Registry:  "registry.example.com",
		ImageName: "billing-api",
		Version:   "20260823-101500",
		Outcome:   OutcomeReleased,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := j.Append(ctx, Release{RunID: "x"}); err == nil {
		t.Fatal("Append succeeded on a closed journal")
	}

	var nilJournal *Journal
	if err := nilJournal.Close(); err != nil {
		t.Fatalf("Close on nil journal: %v", err)
	}
}

func TestJournalRecentEmpty(t *testing.T) {
	j := openTestJournal(t)

	releases, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(releases) != 0 {
		t.Fatalf("expected no releases, got %d", len(releases))
	}
}
