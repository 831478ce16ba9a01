package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
)

// Locker serialises lifecycle mutations of one identity. The returned unlock func is safe to
// call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

// NewLocalLocker returns an in-process keyed mutex. Entries are dropped once nobody holds or
// waits for them.
func NewLocalLocker() Locker {
	return &localLocker{locks: make(map[string]*keyLock)}
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.release(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, kl)
		return nil, fmt.Errorf("%w: %v", models.ErrLockNotAcquired, ctx.Err())
	}
}

func (l *localLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}
