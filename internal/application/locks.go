package application

import "sync"

// facilityLocks serializes reservation writes per facility. The lock is held
// from rule/sibling loading through persistence so two concurrent requests
// cannot both pass validation for the same slot.
type facilityLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFacilityLocks() *facilityLocks {
	return &facilityLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the facility and returns its release function.
func (f *facilityLocks) acquire(facilityID string) func() {
	f.mu.Lock()
	lock, ok := f.locks[facilityID]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[facilityID] = lock
	}
	f.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
