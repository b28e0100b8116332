package history

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return store
}

func TestRecordAndLastRun(t *testing.T) {
	store := openTestStore(t)

	run := Run{
		SpecHash:    "abc123",
		ClientPath:  "internal/api/client.go",
		ServerPath:  "internal/api/server.go",
		ClientBytes: 1024,
		ServerBytes: 2048,
	}
	stored, err := store.RecordRun(run)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if stored.RunID == "" {
		t.Error("RecordRun() did not assign a RunID")
	}

	got, found, err := store.LastRun("abc123")
	if err != nil {
		t.Fatalf("LastRun() error = %v", err)
	}
	if !found {
		t.Fatal("LastRun() found = false, want true")
	}
	if got.RunID != stored.RunID {
		t.Errorf("LastRun().RunID = %q, want %q", got.RunID, stored.RunID)
	}
	if got.ClientPath != run.ClientPath || got.ServerPath != run.ServerPath {
		t.Errorf("LastRun() = %+v, want paths %q/%q", got, run.ClientPath, run.ServerPath)
	}
	if got.ClientBytes != run.ClientBytes || got.ServerBytes != run.ServerBytes {
		t.Errorf("LastRun() byte counts = %d/%d, want %d/%d", got.ClientBytes, got.ServerBytes, run.ClientBytes, run.ServerBytes)
	}
}

func TestLastRun_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.LastRun("does-not-exist")
	if err != nil {
		t.Fatalf("LastRun() error = %v", err)
	}
	if found {
		t.Error("LastRun() found = true, want false for unknown spec hash")
	}
}

func TestLastRun_ReturnsMostRecent(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.RecordRun(Run{SpecHash: "h", ClientPath: "first.go"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if _, err := store.RecordRun(Run{SpecHash: "h", ClientPath: "second.go"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	got, found, err := store.LastRun("h")
	if err != nil {
		t.Fatalf("LastRun() error = %v", err)
	}
	if !found {
		t.Fatal("LastRun() found = false, want true")
	}
	if got.ClientPath != "second.go" {
		t.Errorf("LastRun().ClientPath = %q, want %q (most recent)", got.ClientPath, "second.go")
	}
}
