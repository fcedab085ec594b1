package services

// HeldUserLocks reports how many per-username favourite locks are tracked.
func (s *UserService) HeldUserLocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
