package store

// Subscribe registers a listener that receives a state snapshot after each
// commit. The channel is buffered; a listener that falls behind misses
// intermediate snapshots rather than blocking mutations.
func (s *Store) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 8)
	s.mu.Lock()
	s.listeners = append(s.listeners, ch)
	s.mu.Unlock()
	return ch
}

// notify sends the current snapshot to every listener, dropping sends that
// would block.
func (s *Store) notify() {
	s.mu.RLock()
	snap := Snapshot{
		Settings: s.settings,
		Clips:    copyClips(s.clips),
	}
	listeners := append([]chan Snapshot(nil), s.listeners...)
	s.mu.RUnlock()

	for _, ch := range listeners {
		select {
		case ch <- snap:
		default:
		}
	}
}
