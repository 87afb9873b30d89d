package bufhub

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// MemoryAllocator backs buffers with process-heap storage. It serves single-process hubs
// and tests; cross-process hand-off requires the shmem allocator.
//
type MemoryAllocator struct {
	maxBufferSize uint64
}

func NewMemoryAllocator(maxBufferSize uint64) *MemoryAllocator {
	return &MemoryAllocator{maxBufferSize: maxBufferSize}
}

func (self *MemoryAllocator) Allocate(id int32, desc BufferDescriptor, userMetadataSize uint32) (Resource, Metadata, error) {
	if desc.Width == 0 || desc.Height == 0 || desc.Layers == 0 {
		return nil, nil, errors.Errorf("invalid descriptor [%s]", desc.Geometry())
	}
	size := bufferSize(desc)
	if self.maxBufferSize > 0 && size > self.maxBufferSize {
		return nil, nil, errors.Errorf("buffer size [%d] exceeds limit [%d]", size, self.maxBufferSize)
	}
	return &memoryResource{data: make([]byte, size)}, &memoryMetadata{userSize: userMetadataSize, userBytes: make([]byte, userMetadataSize)}, nil
}

// bufferSize is a conservative size estimate; real pixel strides are the concern of the
// consuming graphics stack, not the broker.
func bufferSize(desc BufferDescriptor) uint64 {
	if desc.Format == FORMAT_BLOB {
		return uint64(desc.Width)
	}
	return uint64(desc.Width) * uint64(desc.Height) * uint64(desc.Layers) * 4
}

type memoryResource struct {
	data []byte
}

func (self *memoryResource) Size() uint64 {
	return uint64(len(self.data))
}

func (self *memoryResource) Release() {
	self.data = nil
}

type memoryMetadata struct {
	state     uint32
	queueIdx  uint64
	userSize  uint32
	userBytes []byte
}

func (self *memoryMetadata) State() uint32 {
	return atomic.LoadUint32(&self.state)
}

func (self *memoryMetadata) SetState(state uint32) {
	atomic.StoreUint32(&self.state, state)
}

func (self *memoryMetadata) QueueIndex() uint64 {
	return atomic.LoadUint64(&self.queueIdx)
}

func (self *memoryMetadata) SetQueueIndex(index uint64) {
	atomic.StoreUint64(&self.queueIdx, index)
}

func (self *memoryMetadata) UserSize() uint32 {
	return self.userSize
}

func (self *memoryMetadata) Release() {
	self.userBytes = nil
}
