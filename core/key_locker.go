package core

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

type refLock struct {
	mu  sync.Mutex
	ref int32
}

// KeyLocker hands out per-key mutexes. Entries are dropped once no holder or
// waiter references them.
type KeyLocker struct {
	locks sync.Map
	sep   string
}

// NewKeyLocker creates a new KeyLocker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{sep: ":"}
}

// Lock returns a function that will unlock the key when called
func (kl *KeyLocker) Lock(keys ...any) func() {
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%v", k))
	}
	combinedKey := strings.Join(parts, kl.sep)

	for {
		lockIface, _ := kl.locks.LoadOrStore(combinedKey, &refLock{})
		lock := lockIface.(*refLock)

		atomic.AddInt32(&lock.ref, 1)
		lock.mu.Lock()

		// The entry may have been deleted between LoadOrStore and Lock.
		if current, ok := kl.locks.Load(combinedKey); !ok || current != lock {
			lock.mu.Unlock()
			atomic.AddInt32(&lock.ref, -1)
			continue
		}

		return func() {
			if atomic.AddInt32(&lock.ref, -1) == 0 {
				kl.locks.Delete(combinedKey)
			}
			lock.mu.Unlock()
		}
	}
}
