package notifications

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound   = errors.New("notification not found")
	ErrValidation = errors.New("invalid notification")
)

// Store persists inbox entries. Create returns the existing row when a
// notification with the same non-empty DedupKey was stored before.
type Store interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id int64, at time.Time) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int64]Notification
	dedup  map[string]int64
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]Notification), dedup: make(map[string]int64)}
}

func (s *MemoryStore) Create(ctx context.Context, n Notification) (Notification, error) {
	if err := ctx.Err(); err != nil {
		return Notification{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.DedupKey != "" {
		if id, ok := s.dedup[n.DedupKey]; ok {
			return s.items[id], nil
		}
	}
	s.nextID++
	n.ID = s.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.items[n.ID] = n
	if n.DedupKey != "" {
		s.dedup[n.DedupKey] = n.ID
	}
	return n, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Notification
	for _, n := range s.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, userID, id int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	if n.ReadAt == nil {
		readAt := at.UTC()
		n.ReadAt = &readAt
		s.items[id] = n
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
