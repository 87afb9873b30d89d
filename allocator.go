package bufhub

// Allocator produces the shared buffer resource and metadata region backing a BufferNode.
// Implementations complete synchronously; a failed allocation returns an error and leaves
// nothing to release.
//
type Allocator interface {
	Allocate(id int32, desc BufferDescriptor, userMetadataSize uint32) (Resource, Metadata, error)
}

// Resource is the allocator's handle on the underlying shared buffer storage. Identity is
// immutable once created; Release is called exactly once, when the last client detaches.
//
type Resource interface {
	Size() uint64
	Release()
}

// Metadata exposes the shared, cross-process-visible buffer state: an atomically updated
// state word and a queue index counter. State reads carry acquire semantics so diagnostic
// readers observe a consistent snapshot without locking.
//
type Metadata interface {
	State() uint32
	SetState(state uint32)
	QueueIndex() uint64
	SetQueueIndex(index uint64)
	UserSize() uint32
	Release()
}
