package database_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/MARK404654/Eather/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return database.NewStore(db, logger)
}

func TestRecordRequest(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(10 * time.Second)

	if err := store.RecordRequest(ctx, "user-1", first); err != nil {
		t.Fatalf("RecordRequest() error = %v", err)
	}
	if err := store.RecordRequest(ctx, "user-1", second); err != nil {
		t.Fatalf("RecordRequest() error = %v", err)
	}

	stat, err := store.GetUsage(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUsage() error = %v", err)
	}
	if stat == nil {
		t.Fatal("GetUsage() = nil, want a usage row")
	}
	if stat.RequestCount != 2 {
		t.Errorf("RequestCount = %d, want 2", stat.RequestCount)
	}
	if !stat.LastRequestAt.Equal(second) {
		t.Errorf("LastRequestAt = %v, want %v", stat.LastRequestAt, second)
	}
}

func TestRecordRequestRejectsEmptyUserID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.RecordRequest(context.Background(), "", time.Now()); err == nil {
		t.Error("RecordRequest() with empty user id should fail")
	}
}

func TestGetUsageUnknownUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	stat, err := store.GetUsage(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetUsage() error = %v", err)
	}
	if stat != nil {
		t.Errorf("GetUsage() = %+v, want nil for unknown user", stat)
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Errorf("RunSQLMaintenance() error = %v", err)
	}
}
