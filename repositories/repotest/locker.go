package repotest

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Locker is an in-process slot locker. Held keys stay held until released;
// TTLs are ignored.
type Locker struct {
	mu     sync.Mutex
	held   map[string]string
	next   int
	err    error
	Events []string
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]string)}
}

// Hold marks key as taken by another owner.
func (l *Locker) Hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = "other"
}

// Fail makes Acquire return err.
func (l *Locker) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *Locker) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.next++
	token := strconv.Itoa(l.next)
	l.held[key] = token
	l.Events = append(l.Events, "acquire "+key)
	return token, true, nil
}

func (l *Locker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.Events = append(l.Events, "release "+key)
	}
	return nil
}

// Held reports whether key is currently locked.
func (l *Locker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}
