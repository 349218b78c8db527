package feed

import "sync"

// subscribers is the handler registry shared by Simulator and Remote.
type subscribers struct {
	mu   sync.RWMutex
	next uint64
	m    map[Category]map[uint64]Handler
}

func (s *subscribers) add(c Category, h Handler) func() {
	s.mu.Lock()
	if s.m == nil {
		s.m = make(map[Category]map[uint64]Handler)
	}
	if s.m[c] == nil {
		s.m[c] = make(map[uint64]Handler)
	}
	id := s.next
	s.next++
	s.m[c][id] = h
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.m[c], id)
			s.mu.Unlock()
		})
	}
}

func (s *subscribers) handlers(c Category) []Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Handler, 0, len(s.m[c]))
	for _, h := range s.m[c] {
		out = append(out, h)
	}
	return out
}

func (s *subscribers) count(c Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m[c])
}
