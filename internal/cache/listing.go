// Package cache holds the single in-memory entry that guards the published
// recipe listing. The entry is always swapped as a whole unit so a reader can
// never observe a body from one snapshot paired with an ETag from another.
package cache

import (
	"sync"
	"time"
)

// DefaultWindow is how long a populated entry is served without touching the
// database. Writes invalidate immediately, so this only bounds the staleness
// visible to clients racing an external mutation.
const DefaultWindow = 15 * time.Second

// Entry is one captured snapshot of the published listing.
type Entry struct {
	Body         string
	ETag         string
	LastModified string
	CapturedAt   time.Time
}

// Empty reports whether the entry holds no valid snapshot.
func (e Entry) Empty() bool {
	return e.Body == ""
}

// Listing is the process-wide cache slot. The zero value is not usable; use
// NewListing.
type Listing struct {
	mu     sync.Mutex
	entry  Entry
	window time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewListing(window time.Duration) *Listing {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Listing{window: window, now: time.Now}
}

// Snapshot returns a copy of the current entry and whether it is fresh enough
// to serve without recomputation.
func (l *Listing) Snapshot() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entry.Empty() {
		return Entry{}, false
	}
	return l.entry, l.now().Sub(l.entry.CapturedAt) < l.window
}

// Replace installs a freshly computed snapshot, stamping it with the current
// time.
func (l *Listing) Replace(body, etag, lastModified string) {
	entry := Entry{
		Body:         body,
		ETag:         etag,
		LastModified: lastModified,
	}
	l.mu.Lock()
	entry.CapturedAt = l.now()
	l.entry = entry
	l.mu.Unlock()
}

// Invalidate resets the slot to empty. Called after every successful write to
// the published namespace; it cannot fail.
func (l *Listing) Invalidate() {
	l.mu.Lock()
	l.entry = Entry{}
	l.mu.Unlock()
}
