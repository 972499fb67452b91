package model

import "time"

// Stamp returns the updated_at value for a mutation observed at now. The
// result never goes backwards: it is at least created and at least prev.
func Stamp(created time.Time, prev *time.Time, now time.Time) time.Time {
	ts := now
	if ts.Before(created) {
		ts = created
	}
	if prev != nil && ts.Before(*prev) {
		ts = *prev
	}
	return ts
}
