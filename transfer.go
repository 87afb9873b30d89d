package bufhub

import (
	"os"

	"github.com/sirupsen/logrus"
)

// TransferHandle is the cross-process transport container: zero or more opaque data
// descriptors plus zero or more small integers, with explicit ownership transfer. A
// receiver that takes ownership is responsible for Release.
//
type TransferHandle struct {
	Fds   []int
	Ints  []uint32
	owned bool
}

// newTokenHandle wraps a token value in a transfer container with zero descriptors and
// exactly one integer slot, owned by the caller.
func newTokenHandle(token uint32) *TransferHandle {
	return &TransferHandle{
		Ints:  []uint32{token},
		owned: true,
	}
}

// isToken reports whether the container has the shape of a token: no descriptors, one
// integer.
func (self *TransferHandle) isToken() bool {
	return self != nil && len(self.Fds) == 0 && len(self.Ints) == 1
}

func (self *TransferHandle) Owned() bool {
	return self.owned
}

// Release closes any owned descriptors. Safe to call more than once.
func (self *TransferHandle) Release() {
	if self == nil || !self.owned {
		return
	}
	for _, fd := range self.Fds {
		if err := os.NewFile(uintptr(fd), "transfer").Close(); err != nil {
			logrus.Errorf("error closing transfer descriptor [%d] (%v)", fd, err)
		}
	}
	self.Fds = nil
	self.Ints = nil
	self.owned = false
}
