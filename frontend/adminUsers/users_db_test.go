package adminusers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"usersadmin/infrastructure/cache"
	"usersadmin/infrastructure/sqlite"
)

func openAdminUsersTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenSnapshot(context.Background(), filepath.Join(t.TempDir(), "admin-users-test.db"))
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveSnapshotReplacesPreviousRows(t *testing.T) {
	db := openAdminUsersTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)

	_, err := SaveSnapshot(ctx, db, []UserRecord{{ID: "1", Username: "old", FullName: "Old", StatusID: "1", VersionHex: "01"}}, nil, at)
	if err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	rows, err := SaveSnapshot(ctx, db,
		[]UserRecord{
			{ID: "7", Username: "zed", FullName: "Zed Z", StatusID: "2", StatusName: "Inactive", VersionHex: "00000000000007d7"},
			{ID: "5", Username: "bob", FullName: "Bob B", StatusID: "1", StatusName: "Active", VersionHex: "a1b2"},
		},
		[]StatusOption{{ID: "1", Text: "Active"}, {ID: "2", Text: "Inactive"}},
		at,
	)
	if err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 saved rows, got %d", len(rows))
	}

	if _, err := LoadSnapshotUser(ctx, db, "1"); !errors.Is(err, ErrRecordNotDisplayed) {
		t.Fatalf("expected ErrRecordNotDisplayed for replaced row, got %v", err)
	}

	bob, err := LoadSnapshotUser(ctx, db, "5")
	if err != nil {
		t.Fatalf("load bob: %v", err)
	}
	if bob.VersionHex != "a1b2" || bob.StatusName != "Active" {
		t.Fatalf("unexpected bob snapshot: %+v", bob)
	}

	all, err := LoadSnapshotUsers(ctx, db)
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(all) != 2 || all[0].Username != "bob" || all[1].Username != "zed" {
		t.Fatalf("expected [bob zed], got %+v", all)
	}

	statuses, err := LoadSnapshotStatuses(ctx, db)
	if err != nil {
		t.Fatalf("load statuses: %v", err)
	}
	if len(statuses) != 2 || statuses[0].Text != "Active" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
}

func TestEditFormForLeavesPasswordBlank(t *testing.T) {
	form := EditFormFor(UserRecord{ID: "5", Username: "bob", FullName: "Bob B", StatusID: "1", StatusName: "Active", VersionHex: "a1b2"})
	want := UpdatePayload{UserID: "5", Username: "bob", FullName: "Bob B", StatusID: "1", VersionHex: "a1b2"}
	if form != want {
		t.Fatalf("expected %+v, got %+v", want, form)
	}
}

func TestDirectoryRefreshStoresUsersAndStatuses(t *testing.T) {
	var lookups atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case ListPath:
			_, _ = io.WriteString(w, `{"users":[{"id":"5","username":"bob","full_name":"Bob B","status_id":"1","status_name":"Active","version_hex":"a1b2"}]}`)
		case LookupPath:
			lookups.Add(1)
			if r.URL.Query().Get("type") != StatusLookupType {
				http.Error(w, "bad type", http.StatusBadRequest)
				return
			}
			_, _ = io.WriteString(w, `{"results":[{"id":"1","text":"Active"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	db := openAdminUsersTestDB(t)
	users := cache.NewUserCache()
	dir, err := NewDirectory(srv.URL, srv.Client(), db, users, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	if err := dir.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if lookups.Load() != 1 {
		t.Fatalf("expected one lookup call, got %d", lookups.Load())
	}
	if got := users.List(); len(got) != 1 {
		t.Fatalf("expected cache to hold one user, got %d", len(got))
	}

	rec, err := dir.Record(context.Background(), "5")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.VersionHex != "a1b2" {
		t.Fatalf("expected version a1b2, got %s", rec.VersionHex)
	}

	// A fresh directory over the same file sees the persisted snapshot.
	cold, err := NewDirectory(srv.URL, srv.Client(), db, nil, nil)
	if err != nil {
		t.Fatalf("new cold directory: %v", err)
	}
	records, err := cold.Records(context.Background())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 1 || records[0].Username != "bob" {
		t.Fatalf("expected persisted bob, got %+v", records)
	}
	statuses, err := cold.Statuses(context.Background())
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if len(statuses) != 1 || statuses[0].ID != "1" {
		t.Fatalf("expected persisted status, got %+v", statuses)
	}
}

func TestDirectoryRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	db := openAdminUsersTestDB(t)
	if _, err := SaveSnapshot(context.Background(), db, []UserRecord{{ID: "5", Username: "bob", FullName: "Bob B", StatusID: "1", VersionHex: "a1b2"}}, nil, time.Now()); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	dir, err := NewDirectory(srv.URL, srv.Client(), db, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	if err := dir.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}
	if _, err := LoadSnapshotUser(context.Background(), db, "5"); err != nil {
		t.Fatalf("expected previous snapshot to survive, got %v", err)
	}
}
