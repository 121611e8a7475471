package room

import "sync"

// trackSet records which remote tracks already have a reader so that
// the subscribe callback and the late-join sweep cannot both start one
// for the same track.
type trackSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newTrackSet() *trackSet {
	return &trackSet{ids: make(map[string]struct{})}
}

// claim returns true exactly once per track ID until released.
func (s *trackSet) claim(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[sid]; ok {
		return false
	}
	s.ids[sid] = struct{}{}
	return true
}

func (s *trackSet) release(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, sid)
}

func (s *trackSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
