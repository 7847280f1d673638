package coinpayments

import "sync"

// orderLocks serializes callback handling per order id within the process.
type orderLocks struct {
	mu    sync.Mutex
	locks map[int64]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{locks: make(map[int64]*orderLock)}
}

// lock blocks until id is free and returns the release func.
func (l *orderLocks) lock(id int64) func() {
	l.mu.Lock()
	ol, ok := l.locks[id]
	if !ok {
		ol = &orderLock{}
		l.locks[id] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()

	return func() {
		ol.mu.Unlock()

		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
