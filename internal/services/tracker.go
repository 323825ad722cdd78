package services

import (
	"sync"
	"time"
)

const trackingIDPrefix = "WEB-"

// Tracker mints tracking IDs of the form WEB-YYYYMMDDHHMMSS (UTC). The format
// is load bearing: it is embedded in gateway email subjects and parsed back
// out of completion notices, so it stays a bare 14-digit timestamp. Uniqueness
// under burst load comes from holding the last issued instant and bumping a
// same-second collision forward one second.
type Tracker struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewTracker returns a Tracker using the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// GenerateTrackingID returns the next tracking ID. IDs are strictly
// increasing per instance and lexically sortable by creation instant.
func (t *Tracker) GenerateTrackingID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	instant := t.now().UTC().Truncate(time.Second)
	if !instant.After(t.last) {
		instant = t.last.Add(time.Second)
	}
	t.last = instant

	return trackingIDPrefix + instant.Format("20060102150405")
}
