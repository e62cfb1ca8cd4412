package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type localEntry struct {
	token   string
	expires time.Time
}

// Local is an in-process Locker. Expired entries are reclaimed on the next Lock call.
type Local struct {
	mu   sync.Mutex
	held map[string]localEntry
	now  func() time.Time
}

// NewLocal returns an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]localEntry), now: time.Now}
}

// Lock claims key until Unlock or until ttl elapses. A non-positive ttl never expires.
func (l *Local) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.held[key]; ok && (entry.expires.IsZero() || now.Before(entry.expires)) {
		return "", false, nil
	}

	entry := localEntry{token: uuid.NewString()}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}
	l.held[key] = entry
	return entry.token, true, nil
}

// Unlock releases key when it is held under token. Any other call is a no-op.
func (l *Local) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.held[key]; ok && entry.token == token {
		delete(l.held, key)
	}
	return nil
}
