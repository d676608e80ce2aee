package convo

import (
	"context"
	"log"
	"time"
)

// Supervise watches the activity clock and forces termination once the
// idle window elapses without a turn. It runs until the context is
// cancelled, the session ends via any path, or it fires the timeout
// itself. Intended to run in its own goroutine.
func (s *Service) Supervise(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	log.Printf("[supervisor] session=%s watching, idle=%s poll=%s", s.id, s.cfg.IdleTimeout, s.cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[supervisor] session=%s stopping: %v", s.id, ctx.Err())
			return
		case <-s.done:
			// Session ended elsewhere; no further polling needed.
			return
		case <-ticker.C:
			s.mu.Lock()
			ended := s.ended
			idle := time.Since(s.lastActivity)
			s.mu.Unlock()

			if ended {
				return
			}
			if idle > s.cfg.IdleTimeout {
				log.Printf("[supervisor] session=%s idle for %s, ending", s.id, idle.Truncate(time.Millisecond))
				s.End(ReasonTimeout)
				return
			}
		}
	}
}
