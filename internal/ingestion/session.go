package ingestion

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one user's staging area: files added, metadata edited,
// then committed as a batch. Sessions live in memory only; an
// uncommitted session is lost on restart, which loses nothing durable.
type Session struct {
	ID        string
	OwnerID   string
	OwnerName string
	CreatedAt time.Time

	mu    sync.Mutex
	items []*Item
}

// Snapshot returns copies of all items in insertion order.
func (s *Session) Snapshot() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, cloneItem(it))
	}
	return out
}

// Add stages a new item and returns a copy of it.
func (s *Session) Add(item Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := item
	s.items = append(s.items, &it)
	return cloneItem(&it)
}

// Get returns a copy of one item.
func (s *Session) Get(itemID string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.find(itemID)
	if it == nil {
		return Item{}, ErrItemNotFound
	}
	return cloneItem(it), nil
}

// Apply mutates one item under the session lock. If the item was
// removed between lookup and apply, the mutation is discarded and
// ErrItemNotFound is returned; callers racing a concurrent delete see
// a clean failure instead of writing to an orphan.
func (s *Session) Apply(itemID string, fn func(*Item) error) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.find(itemID)
	if it == nil {
		return Item{}, ErrItemNotFound
	}
	if err := fn(it); err != nil {
		return cloneItem(it), err
	}
	return cloneItem(it), nil
}

// Remove drops an item from the session.
func (s *Session) Remove(itemID string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return cloneItem(it), nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (s *Session) find(itemID string) *Item {
	for _, it := range s.items {
		if it.ID == itemID {
			return it
		}
	}
	return nil
}

func cloneItem(it *Item) Item {
	out := *it
	if it.Tags != nil {
		out.Tags = append([]string(nil), it.Tags...)
	}
	return out
}

// Sessions is the in-memory session registry.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

func (r *Sessions) Create(ownerID, ownerName string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		OwnerName: ownerName,
		CreatedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns a session the given user owns. Other users' sessions are
// invisible, not forbidden.
func (r *Sessions) Get(id, ownerID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Sessions) Remove(id, ownerID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	delete(r.sessions, id)
	return s, nil
}
