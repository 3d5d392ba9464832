package http

import (
	"errors"
	"testing"
)

func TestUserStoreUpdateChecksRowVersion(t *testing.T) {
	store := NewUserStore(nil)
	row, err := store.Create("bob", "Bob B", "Initial123!", "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.Update(row.ID, "bob", "Bob Builder", "", "2", row.VersionHex)
	if err != nil {
		t.Fatalf("update with current version: %v", err)
	}
	if updated.VersionHex == row.VersionHex {
		t.Fatalf("expected row version to change")
	}
	if updated.StatusName != "Inactive" {
		t.Fatalf("expected status name Inactive, got %s", updated.StatusName)
	}

	if _, err := store.Update(row.ID, "bob", "Bob Again", "", "1", row.VersionHex); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict for stale version, got %v", err)
	}
	if err := store.Delete(row.ID, row.VersionHex); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected stale delete to be rejected, got %v", err)
	}

	ok, err := store.VerifyPassword(row.ID, "Initial123!")
	if err != nil || !ok {
		t.Fatalf("expected empty password update to keep hash, ok=%v err=%v", ok, err)
	}

	if err := store.Delete(row.ID, updated.VersionHex); err != nil {
		t.Fatalf("delete with current version: %v", err)
	}
	if _, found := store.Get(row.ID); found {
		t.Fatalf("expected user to be gone")
	}
}

func TestUserStoreCreateRules(t *testing.T) {
	store := NewUserStore(nil)
	if _, err := store.Create("", "No Name", "pw", "1"); !errors.Is(err, ErrFieldsRequired) {
		t.Fatalf("expected ErrFieldsRequired, got %v", err)
	}
	if _, err := store.Create("carol", "Carol C", "pw", "99"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if _, err := store.Create("Carol", "Carol C", "pw", "1"); err != nil {
		t.Fatalf("create carol: %v", err)
	}
	if _, err := store.Create("carol", "Other Carol", "pw", "1"); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected case-insensitive ErrUsernameExists, got %v", err)
	}
}

func TestUserStoreLookupFiltersStatuses(t *testing.T) {
	store := NewUserStore(nil)
	if got := store.Lookup("status", ""); len(got) != len(DefaultStatuses) {
		t.Fatalf("expected all statuses, got %+v", got)
	}
	got := store.Lookup("status", "act")
	if len(got) != 2 {
		t.Fatalf("expected Active and Inactive for 'act', got %+v", got)
	}
	if got := store.Lookup("role", ""); len(got) != 0 {
		t.Fatalf("expected no options for unknown lookup type, got %+v", got)
	}
}

func TestUserStoreRightsMatrix(t *testing.T) {
	store := NewUserStore(nil)
	row, err := store.Create("dave", "Dave D", "Dave123!", "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	matrix, err := store.Rights(row.ID)
	if err != nil {
		t.Fatalf("rights: %v", err)
	}
	if len(matrix) != len(DefaultMenus) {
		t.Fatalf("expected one row per menu, got %d", len(matrix))
	}
	for _, r := range matrix {
		if r.RightID != 0 || r.CanView {
			t.Fatalf("expected unsaved rows to be empty, got %+v", r)
		}
	}

	if err := store.SaveRights(row.ID, []RightRow{{MenuID: 20, CanView: true, CanEdit: true}}); err != nil {
		t.Fatalf("save rights: %v", err)
	}
	if err := store.SaveRights(row.ID, []RightRow{{MenuID: 20, CanView: true}, {MenuID: 30, CanView: true}}); err != nil {
		t.Fatalf("save rights again: %v", err)
	}

	matrix, _ = store.Rights(row.ID)
	byMenu := map[int]RightRow{}
	for _, r := range matrix {
		byMenu[r.MenuID] = r
	}
	users := byMenu[20]
	if users.RightID != 1 || !users.CanView || users.CanEdit || users.MenuName != "Users" {
		t.Fatalf("expected menu 20 upserted in place, got %+v", users)
	}
	if byMenu[30].RightID != 2 {
		t.Fatalf("expected a new right id for menu 30, got %+v", byMenu[30])
	}

	err = store.SaveRights(row.ID, []RightRow{{MenuID: 10, CanView: true}, {MenuID: 99}})
	if !errors.Is(err, ErrUnknownMenu) {
		t.Fatalf("expected ErrUnknownMenu, got %v", err)
	}
	matrix, _ = store.Rights(row.ID)
	for _, r := range matrix {
		if r.MenuID == 10 && r.RightID != 0 {
			t.Fatalf("expected rejected batch to write nothing, got %+v", r)
		}
	}

	if _, err := store.Rights("404"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
