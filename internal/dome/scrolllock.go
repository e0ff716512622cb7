package dome

import "sync"

// LockOwner names a contender for the scroll lock.
type LockOwner uint8

const (
	OwnerDrag LockOwner = 1 << iota
	OwnerFocus
)

// ScrollLock suppresses default page scrolling while any owner holds it.
// It may be shared by several galleries.
type ScrollLock struct {
	mu      sync.Mutex
	holders map[*Gallery]LockOwner
}

// NewScrollLock creates an unlocked scroll lock.
func NewScrollLock() *ScrollLock {
	return &ScrollLock{holders: make(map[*Gallery]LockOwner)}
}

func (s *ScrollLock) acquire(g *Gallery, owner LockOwner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holders[g] |= owner
}

func (s *ScrollLock) release(g *Gallery, owner LockOwner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	held := s.holders[g] &^ owner
	if held == 0 {
		delete(s.holders, g)
		return
	}
	s.holders[g] = held
}

func (s *ScrollLock) releaseAll(g *Gallery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holders, g)
}

func (s *ScrollLock) heldBy(g *Gallery) LockOwner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holders[g]
}

// Locked reports whether any owner holds the lock.
func (s *ScrollLock) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holders) > 0
}
