// Package shmem backs bufhub buffers with mmapped shared-memory segment files, so the
// state word and queue index written by one process are visible to every process mapping
// the same segment.
package shmem

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
)

const (
	segmentMagic   = "BUFHUB\x00\x00"
	segmentVersion = uint32(1)

	// header layout, 64 bytes reserved
	offMagic        = 0x00
	offVersion      = 0x08
	offBufferId     = 0x0C
	offState        = 0x10
	offUserMetaSize = 0x14
	offQueueIndex   = 0x18
	offBufferSize   = 0x20
	headerSize      = 64
)

// Segment is one mmapped buffer file: a fixed 64-byte header, the user metadata region,
// then the buffer storage. Header mutation goes through sync/atomic so concurrent mappers
// observe consistent values.
//
type Segment struct {
	path string
	data []byte
}

func (self *Segment) Path() string {
	return self.path
}

func (self *Segment) init(bufferId int32, userMetadataSize uint32, bufferSize uint64) {
	copy(self.data[offMagic:offMagic+8], segmentMagic)
	atomic.StoreUint32(self.uint32At(offVersion), segmentVersion)
	atomic.StoreInt32(self.int32At(offBufferId), bufferId)
	atomic.StoreUint32(self.uint32At(offState), 0)
	atomic.StoreUint32(self.uint32At(offUserMetaSize), userMetadataSize)
	atomic.StoreUint64(self.uint64At(offQueueIndex), 0)
	atomic.StoreUint64(self.uint64At(offBufferSize), bufferSize)
}

func (self *Segment) validate() error {
	if len(self.data) < headerSize {
		return errors.Errorf("segment [%s] truncated", self.path)
	}
	if string(self.data[offMagic:offMagic+8]) != segmentMagic {
		return errors.Errorf("segment [%s] bad magic", self.path)
	}
	if v := atomic.LoadUint32(self.uint32At(offVersion)); v != segmentVersion {
		return errors.Errorf("segment [%s] version [%d != %d]", self.path, v, segmentVersion)
	}
	return nil
}

func (self *Segment) BufferId() int32 {
	return atomic.LoadInt32(self.int32At(offBufferId))
}

func (self *Segment) State() uint32 {
	return atomic.LoadUint32(self.uint32At(offState))
}

func (self *Segment) SetState(state uint32) {
	atomic.StoreUint32(self.uint32At(offState), state)
}

func (self *Segment) QueueIndex() uint64 {
	return atomic.LoadUint64(self.uint64At(offQueueIndex))
}

func (self *Segment) SetQueueIndex(index uint64) {
	atomic.StoreUint64(self.uint64At(offQueueIndex), index)
}

func (self *Segment) UserMetadataSize() uint32 {
	return atomic.LoadUint32(self.uint32At(offUserMetaSize))
}

func (self *Segment) BufferSize() uint64 {
	return atomic.LoadUint64(self.uint64At(offBufferSize))
}

// UserMetadata is the caller-defined metadata region following the header.
func (self *Segment) UserMetadata() []byte {
	sz := self.UserMetadataSize()
	return self.data[headerSize : headerSize+int(sz)]
}

// Buffer is the pixel/byte storage following the user metadata region.
func (self *Segment) Buffer() []byte {
	off := headerSize + int(align8(self.UserMetadataSize()))
	return self.data[off:]
}

func (self *Segment) uint32At(off int) *uint32 {
	return (*uint32)(unsafe.Pointer(&self.data[off]))
}

func (self *Segment) int32At(off int) *int32 {
	return (*int32)(unsafe.Pointer(&self.data[off]))
}

func (self *Segment) uint64At(off int) *uint64 {
	return (*uint64)(unsafe.Pointer(&self.data[off]))
}

func align8(v uint32) uint32 {
	return (v + 7) &^ 7
}

func segmentSize(userMetadataSize uint32, bufferSize uint64) int {
	return headerSize + int(align8(userMetadataSize)) + int(bufferSize)
}
