package lock

import (
	"hash/fnv"
	"sync"
)

const stripes = 64

// Keyed serializes work per string key using a fixed set of striped mutexes.
// The clock-event and leave-request paths lock on the employee ID so two
// concurrent scans (or leave requests) for the same employee never interleave
// their read-decide-write sequences.
type Keyed struct {
	mu [stripes]sync.Mutex
}

func NewKeyed() *Keyed {
	return &Keyed{}
}

func (k *Keyed) Lock(key string) {
	k.mu[stripe(key)].Lock()
}

func (k *Keyed) Unlock(key string) {
	k.mu[stripe(key)].Unlock()
}

func stripe(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % stripes
}
