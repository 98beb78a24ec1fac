package scheduling

import (
	"fmt"
	"sort"
	"sync"

	"github.com/noah-isme/assist-scheduler-api/internal/models"
)

// KeyLocker serialises work per string key. Keys passed to Lock are acquired in
// sorted order so overlapping key sets cannot deadlock.
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLocker returns an empty locker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[string]*keyLock)}
}

// Lock blocks until every key is held and returns the function releasing them.
func (l *KeyLocker) Lock(keys ...string) func() {
	unique := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, key)
	}
	sort.Strings(unique)

	held := make([]*keyLock, 0, len(unique))
	for _, key := range unique {
		lock := l.acquire(key)
		lock.mu.Lock()
		held = append(held, lock)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
				l.release(unique[i])
			}
		})
	}
}

func (l *KeyLocker) acquire(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &keyLock{}
		l.locks[key] = lock
	}
	lock.refs++
	return lock
}

func (l *KeyLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		return
	}
	lock.refs--
	if lock.refs <= 0 {
		delete(l.locks, key)
	}
}

// LockKeys lists the (subject, day) keys guarding writes of the schedule.
func LockKeys(schedule models.Schedule) []string {
	keys := []string{fmt.Sprintf("section:%s:%d", schedule.SectionID, schedule.Day)}
	if id := models.StringValue(schedule.FacultyID); id != "" {
		keys = append(keys, fmt.Sprintf("faculty:%s:%d", id, schedule.Day))
	}
	if id := models.StringValue(schedule.RoomID); id != "" {
		keys = append(keys, fmt.Sprintf("room:%s:%d", id, schedule.Day))
	}
	return keys
}
