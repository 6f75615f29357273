package violation

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemStore keeps counters in process memory. Entries idle for longer than the
// decay window are evicted since they would reset anyway.
type MemStore struct {
	mu      sync.Mutex
	opts    Options
	clock   Clock
	entries *expirable.LRU[string, Record]
}

func NewMemStore(opts Options, capacity int) *MemStore {
	if capacity <= 0 {
		capacity = 100000
	}
	return &MemStore{
		opts:    opts,
		clock:   realClock{},
		entries: expirable.NewLRU[string, Record](capacity, nil, opts.window()),
	}
}

func (s *MemStore) WithClock(clock Clock) {
	s.mu.Lock()
	s.clock = clock
	s.mu.Unlock()
}

func (s *MemStore) Record(_ context.Context, guildID, userID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.opts.key(guildID, userID)
	now := s.clock.Now()

	item, _ := s.entries.Get(key)
	if expired(item.LastAt, now, s.opts.window()) {
		item.Count = 0
	}
	item.Count++
	item.LastAt = now
	s.entries.Add(key, item)
	return item, nil
}

func (s *MemStore) Get(_ context.Context, guildID, userID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.entries.Peek(s.opts.key(guildID, userID))
	if !ok || expired(item.LastAt, s.clock.Now(), s.opts.window()) {
		return Record{}, nil
	}
	return item, nil
}

func (s *MemStore) Reset(_ context.Context, guildID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Remove(s.opts.key(guildID, userID))
	return nil
}
