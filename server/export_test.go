// ABOUTME: Test-only hooks into server internals.
// ABOUTME: Lets tests pin the clock used for code version timestamps.
package server

import "time"

func (s *Server) SetClock(now func() time.Time) { s.now = now }
