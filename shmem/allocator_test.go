// +build linux darwin

package shmem

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/openziti/bufhub"
	"github.com/stretchr/testify/assert"
)

func TestAllocateSegment(t *testing.T) {
	root := t.TempDir()
	allocator, err := NewAllocator(root)
	assert.NoError(t, err)

	desc := bufhub.BufferDescriptor{Width: 16, Height: 16, Layers: 1, Format: 1, Usage: 0x300}
	resource, metadata, err := allocator.Allocate(33, desc, 24)
	assert.NoError(t, err)
	assert.Equal(t, uint64(16*16*4), resource.Size())
	assert.Equal(t, uint32(24), metadata.UserSize())

	metadata.SetState(0x5a)
	metadata.SetQueueIndex(9)

	entries, err := ioutil.ReadDir(root)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))

	// a second mapping of the same segment observes the shared header
	other, err := OpenSegment(filepath.Join(root, entries[0].Name()))
	assert.NoError(t, err)
	assert.Equal(t, int32(33), other.BufferId())
	assert.Equal(t, uint32(0x5a), other.State())
	assert.Equal(t, uint64(9), other.QueueIndex())
	assert.Equal(t, 24, len(other.UserMetadata()))
	assert.Equal(t, int(resource.Size()), len(other.Buffer()))

	other.SetState(0xff)
	assert.Equal(t, uint32(0xff), metadata.State())
	assert.NoError(t, other.Unmap())

	// segment file survives until both facets release
	resource.Release()
	entries, err = ioutil.ReadDir(root)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))

	metadata.Release()
	entries, err = ioutil.ReadDir(root)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(entries))
}

func TestAllocateBlobSegment(t *testing.T) {
	allocator, err := NewAllocator(t.TempDir())
	assert.NoError(t, err)

	desc := bufhub.BufferDescriptor{Width: 4096, Height: 1, Layers: 1, Format: bufhub.FORMAT_BLOB, Usage: 0x100}
	resource, metadata, err := allocator.Allocate(7, desc, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(4096), resource.Size())

	resource.Release()
	metadata.Release()
}

func TestAllocateInvalidDescriptor(t *testing.T) {
	allocator, err := NewAllocator(t.TempDir())
	assert.NoError(t, err)

	_, _, err = allocator.Allocate(1, bufhub.BufferDescriptor{}, 0)
	assert.Error(t, err)
}

func TestOpenSegmentRejectsForeignFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "junk.buf")
	assert.NoError(t, ioutil.WriteFile(path, make([]byte, 256), 0600))

	_, err := OpenSegment(path)
	assert.Error(t, err)
}
