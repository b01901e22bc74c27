package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memoryRepository is an in-memory Repository that enforces the same unique
// constraints as the users table.
type memoryRepository struct {
	mu    sync.Mutex
	users map[string]User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: make(map[string]User)}
}

func (m *memoryRepository) holder(field func(User) string, value, excludeID string) bool {
	for id, u := range m.users {
		if id != excludeID && field(u) == value {
			return true
		}
	}
	return false
}

func byUsername(u User) string { return u.Username }
func byEmail(u User) string    { return u.Email }

func (m *memoryRepository) ExistsByUsername(_ context.Context, username, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holder(byUsername, username, excludeID), nil
}

func (m *memoryRepository) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holder(byEmail, email, excludeID), nil
}

func (m *memoryRepository) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holder(byUsername, u.Username, "") {
		return ErrDuplicateUsername
	}
	if m.holder(byEmail, u.Email, "") {
		return ErrDuplicateEmail
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = *u
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memoryRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) List(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]User, 0, len(m.users))
	for _, u := range m.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (m *memoryRepository) Update(_ context.Context, id string, c Changes) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if c.Username != nil && m.holder(byUsername, *c.Username, id) {
		return nil, ErrDuplicateUsername
	}
	if c.Email != nil && m.holder(byEmail, *c.Email, id) {
		return nil, ErrDuplicateEmail
	}
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Username != nil {
		u.Username = *c.Username
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	m.users[id] = u
	return &u, nil
}
