package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserSnapshot is a backend user record as it was last shown to the operator.
type UserSnapshot struct {
	bun.BaseModel `bun:"table:user_snapshots,alias:us"`

	ID         string    `bun:"id,pk"`
	Username   string    `bun:"username,notnull"`
	FullName   string    `bun:"full_name,notnull"`
	StatusID   string    `bun:"status_id,notnull"`
	StatusName string    `bun:"status_name,notnull"`
	VersionHex string    `bun:"version_hex,notnull"`
	FetchedAt  time.Time `bun:"fetched_at,notnull,default:current_timestamp"`
}

// StatusOption is one entry of the status picker.
type StatusOption struct {
	bun.BaseModel `bun:"table:status_options,alias:so"`

	ID        string    `bun:"id,pk"`
	Text      string    `bun:"text,notnull"`
	FetchedAt time.Time `bun:"fetched_at,notnull,default:current_timestamp"`
}
