// Package auth keeps the list of Telegram users allowed to talk to the assistant.
package auth

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// DisplayName is the name the assistant addresses the user by.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return ""
	}
}

type Repository interface {
	LoadAll() ([]User, error)
	Save(users []User) error
}

// Allowlist is safe for concurrent use. Changes are written through to the
// repository when one is configured.
type Allowlist struct {
	repo  Repository
	mu    sync.RWMutex
	users map[int64]User
}

// New merges the persisted users with the IDs from the environment.
func New(repo Repository, initial []int64) *Allowlist {
	a := &Allowlist{repo: repo, users: make(map[int64]User)}
	if repo != nil {
		users, err := repo.LoadAll()
		if err != nil {
			log.WithError(err).Warn("⚠️ failed to load allowlist, starting from environment")
		}
		for _, u := range users {
			a.users[u.ID] = u
		}
	}
	for _, id := range initial {
		if _, ok := a.users[id]; !ok {
			a.users[id] = User{ID: id}
		}
	}
	return a
}

func (a *Allowlist) IsAllowed(userID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.users[userID]
	return ok
}

// Grant adds or refreshes a user.
func (a *Allowlist) Grant(u User) error {
	a.mu.Lock()
	a.users[u.ID] = u
	snapshot := a.listLocked()
	a.mu.Unlock()
	return a.persist(snapshot)
}

func (a *Allowlist) Revoke(userID int64) error {
	a.mu.Lock()
	delete(a.users, userID)
	snapshot := a.listLocked()
	a.mu.Unlock()
	return a.persist(snapshot)
}

// List returns the users ordered by ID.
func (a *Allowlist) List() []User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.listLocked()
}

func (a *Allowlist) listLocked() []User {
	out := make([]User, 0, len(a.users))
	for _, u := range a.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (a *Allowlist) persist(users []User) error {
	if a.repo == nil {
		return nil
	}
	return a.repo.Save(users)
}
