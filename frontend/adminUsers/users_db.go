package adminusers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"usersadmin/infrastructure/sqlite"
	"usersadmin/models"
)

// SaveSnapshot replaces the stored users and status options in one write.
func SaveSnapshot(ctx context.Context, db *sqlite.DB, users []UserRecord, statuses []StatusOption, fetchedAt time.Time) ([]models.UserSnapshot, error) {
	userRows := make([]models.UserSnapshot, 0, len(users))
	for _, u := range users {
		userRows = append(userRows, models.UserSnapshot{
			ID:         u.ID,
			Username:   u.Username,
			FullName:   u.FullName,
			StatusID:   u.StatusID,
			StatusName: u.StatusName,
			VersionHex: u.VersionHex,
			FetchedAt:  fetchedAt,
		})
	}
	statusRows := make([]models.StatusOption, 0, len(statuses))
	for _, s := range statuses {
		statusRows = append(statusRows, models.StatusOption{ID: s.ID, Text: s.Text, FetchedAt: fetchedAt})
	}

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_snapshots`); err != nil {
			return fmt.Errorf("clear user snapshot: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM status_options`); err != nil {
			return fmt.Errorf("clear status options: %w", err)
		}
		if len(userRows) > 0 {
			if _, err := tx.NewInsert().Model(&userRows).Exec(ctx); err != nil {
				return fmt.Errorf("insert user snapshot: %w", err)
			}
		}
		if len(statusRows) > 0 {
			if _, err := tx.NewInsert().Model(&statusRows).Exec(ctx); err != nil {
				return fmt.Errorf("insert status options: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return userRows, nil
}

func LoadSnapshotUser(ctx context.Context, db *sqlite.DB, id string) (UserRecord, error) {
	var row models.UserSnapshot
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, fmt.Errorf("user %s: %w", id, ErrRecordNotDisplayed)
	}
	if err != nil {
		return UserRecord{}, err
	}
	return recordFromSnapshot(row), nil
}

func LoadSnapshotUsers(ctx context.Context, db *sqlite.DB) ([]models.UserSnapshot, error) {
	rows := make([]models.UserSnapshot, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&rows).OrderExpr("username ASC").Scan(ctx)
	})
	return rows, err
}

func LoadSnapshotStatuses(ctx context.Context, db *sqlite.DB) ([]StatusOption, error) {
	statuses := make([]StatusOption, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw("SELECT id, text FROM status_options ORDER BY text ASC").Scan(ctx, &statuses)
	})
	return statuses, err
}
