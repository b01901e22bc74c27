package posts

import (
	"context"
	"sort"
	"sync"
)

// memoryRepository is an in-memory Repository. Each method holds the lock for
// its whole body, which gives AddLike the same check-and-append atomicity as
// the conditional UPDATE.
type memoryRepository struct {
	mu    sync.Mutex
	posts map[string]Post
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{posts: make(map[string]Post)}
}

func clonePost(p Post) Post {
	p.Likes = append([]string{}, p.Likes...)
	return p
}

func (m *memoryRepository) sorted(keep func(Post) bool) []Post {
	list := make([]Post, 0, len(m.posts))
	for _, p := range m.posts {
		if keep(p) {
			list = append(list, clonePost(p))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (m *memoryRepository) Create(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = clonePost(*p)
	return nil
}

func (m *memoryRepository) List(_ context.Context) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(Post) bool { return true }), nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (m *memoryRepository) ListByAuthor(_ context.Context, username string) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(p Post) bool { return p.Username == username }), nil
}

func (m *memoryRepository) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memoryRepository) DeleteByAuthor(_ context.Context, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, p := range m.posts {
		if p.Username == username {
			delete(m.posts, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryRepository) Update(_ context.Context, id string, c Changes) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return false, ErrNotFound
	}
	changed := applyChanges(c, &p)
	m.posts[id] = p
	return changed, nil
}

func (m *memoryRepository) AddLike(_ context.Context, id, username string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, u := range p.Likes {
		if u == username {
			return nil, ErrAlreadyLiked
		}
	}
	p.Likes = append(p.Likes, username)
	m.posts[id] = p
	out := clonePost(p)
	return &out, nil
}

func (m *memoryRepository) RemoveLike(_ context.Context, id, username string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	kept := p.Likes[:0]
	for _, u := range p.Likes {
		if u != username {
			kept = append(kept, u)
		}
	}
	p.Likes = kept
	m.posts[id] = p
	out := clonePost(p)
	return &out, nil
}

// applyChanges copies the set fields onto p and reports whether any value changed.
func applyChanges(c Changes, p *Post) bool {
	changed := false
	set := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	set(&p.Name, c.Name)
	set(&p.Username, c.Username)
	set(&p.Title, c.Title)
	set(&p.Description, c.Description)
	set(&p.Content, c.Content)
	return changed
}
