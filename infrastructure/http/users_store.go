package http

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"usersadmin/infrastructure/argon"
)

var (
	ErrFieldsRequired  = errors.New("all fields are required")
	ErrUsernameExists  = errors.New("username already exists")
	ErrUnknownStatus   = errors.New("unknown status")
	ErrUserNotFound    = errors.New("user not found")
	ErrVersionConflict = errors.New("row version does not match")
	ErrUnknownMenu     = errors.New("unknown menu")
)

type StatusOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

var DefaultStatuses = []StatusOption{
	{ID: "1", Text: "Active"},
	{ID: "2", Text: "Inactive"},
	{ID: "3", Text: "Locked"},
}

// Menu is a screen that rights are granted on.
type Menu struct {
	ID   int
	Name string
}

var DefaultMenus = []Menu{
	{ID: 10, Name: "Dashboard"},
	{ID: 20, Name: "Users"},
	{ID: 21, Name: "User Rights"},
	{ID: 30, Name: "Reports"},
}

// RightRow is one menu of a user's rights matrix.
type RightRow struct {
	RightID   int    `json:"rightid"`
	MenuID    int    `json:"menuid"`
	MenuName  string `json:"menuname"`
	CanView   bool   `json:"canview"`
	CanCreate bool   `json:"cancreate"`
	CanEdit   bool   `json:"canedit"`
	CanDelete bool   `json:"candelete"`
}

// UserRow is the listed shape of a stored user.
type UserRow struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	StatusID   string `json:"status_id"`
	StatusName string `json:"status_name"`
	VersionHex string `json:"version_hex"`
}

type storedUser struct {
	id           int64
	username     string
	fullName     string
	passwordHash string
	statusID     string
	version      uint64
	rights       map[int]RightRow
}

// UserStore keeps users in memory with a database-wide row version that is
// bumped on every write, like a SQL Server rowversion column.
type UserStore struct {
	mu         sync.Mutex
	nextID     int64
	rowVersion uint64
	users      map[int64]*storedUser
	statuses   []StatusOption
	menus      []Menu
	nextRight  int

	Hasher argon.Hasher
}

func NewUserStore(statuses []StatusOption) *UserStore {
	if len(statuses) == 0 {
		statuses = DefaultStatuses
	}
	return &UserStore{
		nextID:     1,
		rowVersion: 2000,
		users:      make(map[int64]*storedUser),
		statuses:   append([]StatusOption(nil), statuses...),
		menus:      append([]Menu(nil), DefaultMenus...),
		nextRight:  1,
		Hasher:     argon.Light,
	}
}

func (s *UserStore) Create(username, fullName, password, statusID string) (UserRow, error) {
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)
	if username == "" || fullName == "" || password == "" {
		return UserRow{}, ErrFieldsRequired
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return UserRow{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownStatusLocked(statusID) {
		return UserRow{}, ErrUnknownStatus
	}
	if s.usernameTakenLocked(username, 0) {
		return UserRow{}, ErrUsernameExists
	}
	u := &storedUser{
		id:           s.nextID,
		username:     username,
		fullName:     fullName,
		passwordHash: hash,
		statusID:     statusID,
		version:      s.bumpLocked(),
		rights:       make(map[int]RightRow),
	}
	s.nextID++
	s.users[u.id] = u
	return s.rowLocked(u), nil
}

// Update applies the change only when versionHex matches the stored row
// version. An empty password keeps the stored hash.
func (s *UserStore) Update(id, username, fullName, password, statusID, versionHex string) (UserRow, error) {
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)
	if username == "" || fullName == "" {
		return UserRow{}, ErrFieldsRequired
	}
	var hash string
	if password != "" {
		var err error
		if hash, err = s.Hasher.Hash(password); err != nil {
			return UserRow{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.matchLocked(id, versionHex)
	if err != nil {
		return UserRow{}, err
	}
	if !s.knownStatusLocked(statusID) {
		return UserRow{}, ErrUnknownStatus
	}
	if s.usernameTakenLocked(username, u.id) {
		return UserRow{}, ErrUsernameExists
	}
	u.username = username
	u.fullName = fullName
	u.statusID = statusID
	if hash != "" {
		u.passwordHash = hash
	}
	u.version = s.bumpLocked()
	return s.rowLocked(u), nil
}

func (s *UserStore) Delete(id, versionHex string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.matchLocked(id, versionHex)
	if err != nil {
		return err
	}
	delete(s.users, u.id)
	s.bumpLocked()
	return nil
}

// List returns users ordered by id.
func (s *UserStore) List() []UserRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]UserRow, 0, len(s.users))
	for _, u := range s.users {
		rows = append(rows, s.rowLocked(u))
	}
	sort.Slice(rows, func(i, j int) bool {
		a, _ := strconv.ParseInt(rows[i].ID, 10, 64)
		b, _ := strconv.ParseInt(rows[j].ID, 10, 64)
		return a < b
	})
	return rows
}

func (s *UserStore) Get(id string) (UserRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return UserRow{}, false
	}
	u, ok := s.users[n]
	if !ok {
		return UserRow{}, false
	}
	return s.rowLocked(u), true
}

// Lookup serves the status picker. Unknown lookup types yield no options.
func (s *UserStore) Lookup(lookupType, search string) []StatusOption {
	if lookupType != "status" {
		return []StatusOption{}
	}
	search = strings.ToLower(strings.TrimSpace(search))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StatusOption, 0, len(s.statuses))
	for _, st := range s.statuses {
		if search == "" || strings.Contains(strings.ToLower(st.Text), search) {
			out = append(out, st)
		}
	}
	return out
}

// Rights returns one row per known menu. Menus without a saved row come back
// with RightID zero and every permission off.
func (s *UserStore) Rights(id string) ([]RightRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.userLocked(id)
	if err != nil {
		return nil, err
	}
	rows := make([]RightRow, 0, len(s.menus))
	for _, m := range s.menus {
		row, ok := u.rights[m.ID]
		if !ok {
			row = RightRow{MenuID: m.ID}
		}
		row.MenuName = m.Name
		rows = append(rows, row)
	}
	return rows, nil
}

// SaveRights upserts each row by menu. Nothing is written unless every menu
// is known.
func (s *UserStore) SaveRights(id string, rows []RightRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.userLocked(id)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if s.menuNameLocked(r.MenuID) == "" {
			return fmt.Errorf("%w: %d", ErrUnknownMenu, r.MenuID)
		}
	}
	for _, r := range rows {
		if prev, ok := u.rights[r.MenuID]; ok {
			r.RightID = prev.RightID
		} else {
			r.RightID = s.nextRight
			s.nextRight++
		}
		r.MenuName = ""
		u.rights[r.MenuID] = r
	}
	return nil
}

func (s *UserStore) VerifyPassword(id, password string) (bool, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return false, ErrUserNotFound
	}
	s.mu.Lock()
	u, ok := s.users[n]
	var hash string
	if ok {
		hash = u.passwordHash
	}
	s.mu.Unlock()
	if !ok {
		return false, ErrUserNotFound
	}
	return argon.Verify(password, hash)
}

func (s *UserStore) userLocked(id string) (*storedUser, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, ok := s.users[n]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) matchLocked(id, versionHex string) (*storedUser, error) {
	u, err := s.userLocked(id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(versionHex), versionHexOf(u.version)) {
		return nil, ErrVersionConflict
	}
	return u, nil
}

func (s *UserStore) knownStatusLocked(id string) bool {
	for _, st := range s.statuses {
		if st.ID == id {
			return true
		}
	}
	return false
}

func (s *UserStore) statusNameLocked(id string) string {
	for _, st := range s.statuses {
		if st.ID == id {
			return st.Text
		}
	}
	return ""
}

func (s *UserStore) menuNameLocked(id int) string {
	for _, m := range s.menus {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}

func (s *UserStore) usernameTakenLocked(username string, except int64) bool {
	for _, u := range s.users {
		if u.id != except && strings.EqualFold(u.username, username) {
			return true
		}
	}
	return false
}

func (s *UserStore) bumpLocked() uint64 {
	s.rowVersion++
	return s.rowVersion
}

func (s *UserStore) rowLocked(u *storedUser) UserRow {
	return UserRow{
		ID:         strconv.FormatInt(u.id, 10),
		Username:   u.username,
		FullName:   u.fullName,
		StatusID:   u.statusID,
		StatusName: s.statusNameLocked(u.statusID),
		VersionHex: versionHexOf(u.version),
	}
}

func versionHexOf(v uint64) string {
	return fmt.Sprintf("%016x", v)
}
