package cache

import (
	"sort"
	"sync"

	"usersadmin/models"
)

// UserCache holds the user records last shown to the operator, keyed by id.
type UserCache struct {
	mu    sync.RWMutex
	users map[string]models.UserSnapshot
}

func NewUserCache() *UserCache {
	return &UserCache{users: make(map[string]models.UserSnapshot)}
}

// Replace swaps the whole cached view for users.
func (c *UserCache) Replace(users []models.UserSnapshot) {
	next := make(map[string]models.UserSnapshot, len(users))
	for _, u := range users {
		next[u.ID] = u
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = next
}

func (c *UserCache) Get(id string) (models.UserSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	return u, ok
}

// List returns cached users ordered by username.
func (c *UserCache) List() []models.UserSnapshot {
	c.mu.RLock()
	out := make([]models.UserSnapshot, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, u)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
