package history

import (
	"sync"

	"bedrock-chatter/internal/config"
)

// Locker serializes work on conversations. Lock blocks until the caller owns
// the lock for userID and returns the matching unlock function.
type Locker interface {
	Lock(userID string) (unlock func())
}

func NewLocker(policy config.LockPolicy) Locker {
	if policy == config.LockGlobal {
		return &GlobalLocker{}
	}
	return NewUserLocker()
}

// GlobalLocker uses one mutex for every user.
type GlobalLocker struct {
	mu sync.Mutex
}

func (l *GlobalLocker) Lock(string) func() {
	l.mu.Lock()
	return l.mu.Unlock
}

// UserLocker keeps one mutex per user id. An entry lives only while some
// caller holds or waits for it.
type UserLocker struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewUserLocker() *UserLocker {
	return &UserLocker{locks: make(map[string]*userLock)}
}

func (l *UserLocker) Lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// Len reports how many user ids currently have a lock entry.
func (l *UserLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
