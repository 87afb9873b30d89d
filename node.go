package bufhub

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const (
	// firstClientBit is held by the client created at allocation time.
	firstClientBit = uint32(1)

	// maxClientBits is the width of the active-client mask; once every bit is assigned no
	// further client may attach to the node.
	maxClientBits = 32
)

// BufferNode is one allocated shared buffer plus its out-of-band metadata. It is owned
// collectively by the clients referencing it: each client holds one reference, and the
// node's resource and metadata are released when the last reference drops.
//
type BufferNode struct {
	id               int32
	desc             BufferDescriptor
	userMetadataSize uint32
	resource         Resource
	metadata         Metadata
	activeClients    uint32
	refs             int32
}

func newBufferNode(id int32, desc BufferDescriptor, userMetadataSize uint32, allocator Allocator) (*BufferNode, error) {
	resource, metadata, err := allocator.Allocate(id, desc, userMetadataSize)
	if err != nil {
		return nil, err
	}
	return &BufferNode{
		id:               id,
		desc:             desc,
		userMetadataSize: userMetadataSize,
		resource:         resource,
		metadata:         metadata,
		activeClients:    firstClientBit,
	}, nil
}

func (self *BufferNode) Id() int32 {
	return self.id
}

func (self *BufferNode) Desc() BufferDescriptor {
	return self.desc
}

func (self *BufferNode) UserMetadataSize() uint32 {
	return self.userMetadataSize
}

func (self *BufferNode) Metadata() Metadata {
	return self.metadata
}

func (self *BufferNode) Resource() Resource {
	return self.resource
}

// addActiveClientBit claims the lowest unset bit of the active-client mask, retrying the
// compare-and-swap on contention so two concurrent imports never claim the same slot.
// Returns 0 when the mask is saturated.
func (self *BufferNode) addActiveClientBit() uint32 {
	for {
		mask := atomic.LoadUint32(&self.activeClients)
		bit := uint32(0)
		for i := 0; i < maxClientBits; i++ {
			candidate := uint32(1) << uint(i)
			if mask&candidate == 0 {
				bit = candidate
				break
			}
		}
		if bit == 0 {
			return 0
		}
		if atomic.CompareAndSwapUint32(&self.activeClients, mask, mask|bit) {
			return bit
		}
	}
}

func (self *BufferNode) clearActiveClientBit(bit uint32) {
	for {
		mask := atomic.LoadUint32(&self.activeClients)
		if atomic.CompareAndSwapUint32(&self.activeClients, mask, mask&^bit) {
			return
		}
	}
}

func (self *BufferNode) activeClientMask() uint32 {
	return atomic.LoadUint32(&self.activeClients)
}

func (self *BufferNode) ref() {
	atomic.AddInt32(&self.refs, 1)
}

// tryRef takes a reference only while at least one other reference is still held, so an
// importer racing the final unref cannot resurrect a node whose resources are being
// released.
func (self *BufferNode) tryRef() bool {
	for {
		refs := atomic.LoadInt32(&self.refs)
		if refs < 1 {
			return false
		}
		if atomic.CompareAndSwapInt32(&self.refs, refs, refs+1) {
			return true
		}
	}
}

func (self *BufferNode) unref() {
	if atomic.AddInt32(&self.refs, -1) < 1 {
		logrus.Debugf("releasing buffer node [#%d]", self.id)
		if self.metadata != nil {
			self.metadata.Release()
		}
		if self.resource != nil {
			self.resource.Release()
		}
	}
}
