// Package lock provides the mutual exclusion used around whole-collection writes.
package lock

import (
	"context"
	"time"
)

// Locker grants exclusive ownership of a key for a bounded time.
//
// Lock reports false without error when another owner holds the key. On success it
// returns a token naming this acquisition; Unlock releases the key only while it is
// still held under that token, so an owner whose ttl lapsed cannot free a lock that
// has since been taken over.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}
