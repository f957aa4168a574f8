// Package services holds the policy layer of the client: validation,
// defaults, timestamp stamping and the progress/status rules. Services work
// against repository interfaces and never know which backend serves them.
package services

import "time"

// Clock returns the current time. Stamps are truncated to milliseconds, the
// precision both stores keep.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return func() time.Time { return c().UTC().Truncate(time.Millisecond) }
}
