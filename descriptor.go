package bufhub

import "fmt"

// FORMAT_BLOB marks a one-dimensional byte buffer; width carries the size in bytes and
// height/layers are fixed at 1.
const FORMAT_BLOB = uint32(0x21)

// BufferDescriptor carries the geometry, format and usage of a buffer. The hub treats it as
// opaque, byte-copyable storage; validation is the allocator's concern.
//
type BufferDescriptor struct {
	Width  uint32
	Height uint32
	Layers uint32
	Format uint32
	Usage  uint64
}

func (self BufferDescriptor) Geometry() string {
	if self.Format == FORMAT_BLOB {
		return fmt.Sprintf("%d B", self.Width)
	}
	return fmt.Sprintf("%dx%dx%d", self.Width, self.Height, self.Layers)
}

// BufferTraits is the description of an allocated buffer returned alongside a client: the
// descriptor echoed back, and a reference to the shared buffer resource.
//
type BufferTraits struct {
	Desc     BufferDescriptor
	Resource Resource
}
