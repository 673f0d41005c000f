package reconcile

import "time"

// SetClock fixes the service clock for tests.
func SetClock(s *Service, now func() time.Time) {
	s.now = now
}
