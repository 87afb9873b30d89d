package util

import "sync/atomic"

// Sequence hands out strictly increasing int32 values, safe for concurrent use. It backs
// the process-wide buffer id generator: initialized once at startup, never reset, and
// never wrapped back to its starting value.
//
type Sequence struct {
	nextValue int32
}

func NewSequence(nextValue int32) *Sequence {
	return &Sequence{nextValue: nextValue - 1}
}

func (self *Sequence) Next() int32 {
	return atomic.AddInt32(&self.nextValue, 1)
}
