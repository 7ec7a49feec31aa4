package relay

import "sync"

// addressLocks serializes user operation construction per wallet address.
// Two concurrent sends for the same wallet would otherwise read the same
// entry point nonce and the bundler would reject one of them.
type addressLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAddressLocks() *addressLocks {
	return &addressLocks{locks: map[string]*sync.Mutex{}}
}

// acquire blocks until the lock for the given address is held and returns
// the release function.
func (a *addressLocks) acquire(address string) func() {
	a.mu.Lock()
	l, ok := a.locks[address]
	if !ok {
		l = &sync.Mutex{}
		a.locks[address] = l
	}
	a.mu.Unlock()

	l.Lock()
	return l.Unlock
}
