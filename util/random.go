package util

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource draws uniform values for token generation. math/rand is sufficient here:
// tokens are single-use, broker-local, and checked for collision against the live set by
// the caller.
//
type RandomSource struct {
	lock sync.Mutex
	r    *rand.Rand
}

func NewRandomSource() *RandomSource {
	return &RandomSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (self *RandomSource) Uint32() uint32 {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.r.Uint32()
}
