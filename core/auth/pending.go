package auth

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

const codeLength = 5

// Pending verification failures. A mismatched code and an expired code
// collapse into one error so callers cannot probe which it was.
var (
	ErrNoActiveCode          = errors.New("this email address does not have any active codes")
	ErrCodeMismatchOrExpired = errors.New("an incorrect code was entered, or the code has expired")
)

type pendingEntry struct {
	code      string
	expiresAt time.Time
}

// PendingCache holds one-time signup verification codes, one live entry per
// email. Entries are process-local only: a restart voids every outstanding
// code, which is an accepted limitation of the design.
//
// The cache is shared between request handlers and the background sweeper,
// so every mutation takes the lock.
type PendingCache struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewPendingCache creates a cache whose codes live for ttl.
func NewPendingCache(ttl time.Duration) *PendingCache {
	return &PendingCache{
		entries: make(map[string]pendingEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue generates a fixed-length numeric code for the email, overwriting
// any prior pending entry, and returns it.
func (c *PendingCache) Issue(email string) string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = byte('0' + rand.Intn(10))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[email] = pendingEntry{
		code:      string(code),
		expiresAt: c.now().Add(c.ttl),
	}
	return string(code)
}

// Verify checks the entered code for the email. On success the entry is
// consumed; a second verify with the same code fails with ErrNoActiveCode.
func (c *PendingCache) Verify(email, enteredCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[email]
	if !ok {
		return ErrNoActiveCode
	}
	if entry.code != enteredCode || c.now().After(entry.expiresAt) {
		return ErrCodeMismatchOrExpired
	}
	delete(c.entries, email)
	return nil
}

// SweepExpired removes every entry whose expiry has passed and returns the
// count removed. Intended to run on a fixed interval, independent of
// request handling.
func (c *PendingCache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for email, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, email)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries.
func (c *PendingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
