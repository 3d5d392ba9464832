package adminusers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"usersadmin/infrastructure/cache"
	"usersadmin/infrastructure/sqlite"
)

// StatusLookupType is the lookup type the backend uses for user statuses.
const StatusLookupType = "status"

// Directory re-fetches the user list and status options from the backend and
// keeps them as the operator's current view. It is the Refresher used after a
// successful mutation.
type Directory struct {
	baseURL *url.URL
	http    *http.Client
	db      *sqlite.DB
	users   *cache.UserCache
	logger  *slog.Logger
	now     func() time.Time
}

func NewDirectory(baseURL string, httpClient *http.Client, db *sqlite.DB, users *cache.UserCache, logger *slog.Logger) (*Directory, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.New("directory: snapshot db is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if users == nil {
		users = cache.NewUserCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{baseURL: u, http: httpClient, db: db, users: users, logger: logger, now: time.Now}, nil
}

// Refresh fetches users and statuses concurrently, then replaces the snapshot.
func (d *Directory) Refresh(ctx context.Context) error {
	var users []UserRecord
	var statuses []StatusOption

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = d.FetchUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		statuses, err = d.FetchStatuses(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	rows, err := SaveSnapshot(ctx, d.db, users, statuses, d.now().UTC())
	if err != nil {
		return err
	}
	d.users.Replace(rows)
	d.logger.Debug("admin users: directory refreshed", slog.Int("users", len(rows)), slog.Int("statuses", len(statuses)))
	return nil
}

func (d *Directory) FetchUsers(ctx context.Context) ([]UserRecord, error) {
	var body listResponse
	if err := d.getJSON(ctx, ListPath, nil, &body); err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	return body.Users, nil
}

// FetchStatuses asks the lookup endpoint for status options matching search.
func (d *Directory) FetchStatuses(ctx context.Context, search string) ([]StatusOption, error) {
	var body lookupResponse
	q := url.Values{"type": {StatusLookupType}, "q": {search}}
	if err := d.getJSON(ctx, LookupPath, q, &body); err != nil {
		return nil, fmt.Errorf("fetch statuses: %w", err)
	}
	return body.Results, nil
}

// FetchRights loads the rights matrix of userID, one row per menu.
func (d *Directory) FetchRights(ctx context.Context, userID string) ([]Right, error) {
	var body rightsResponse
	if err := d.getJSON(ctx, RightsPath, url.Values{"user_id": {userID}}, &body); err != nil {
		return nil, fmt.Errorf("fetch rights: %w", err)
	}
	return body.Rights, nil
}

// Record returns the last displayed state of user id.
func (d *Directory) Record(ctx context.Context, id string) (UserRecord, error) {
	if s, ok := d.users.Get(id); ok {
		return recordFromSnapshot(s), nil
	}
	return LoadSnapshotUser(ctx, d.db, id)
}

func (d *Directory) Records(ctx context.Context) ([]UserRecord, error) {
	rows := d.users.List()
	if len(rows) == 0 {
		var err error
		if rows, err = LoadSnapshotUsers(ctx, d.db); err != nil {
			return nil, err
		}
		d.users.Replace(rows)
	}
	out := make([]UserRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, recordFromSnapshot(r))
	}
	return out, nil
}

func (d *Directory) Statuses(ctx context.Context) ([]StatusOption, error) {
	return LoadSnapshotStatuses(ctx, d.db)
}

func (d *Directory) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint(d.baseURL, path, query), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(target)
}
