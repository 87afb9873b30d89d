package bufhub

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDumpReport(t *testing.T) {
	h := newTestHub()

	blob, _, status := h.Allocate(BufferDescriptor{Width: 4096, Height: 1, Layers: 1, Format: FORMAT_BLOB, Usage: 0x100}, 0)
	assert.Equal(t, NO_ERROR, status)
	image, _, status := h.Allocate(BufferDescriptor{Width: 64, Height: 32, Layers: 1, Format: 1, Usage: 0x300}, 0)
	assert.Equal(t, NO_ERROR, status)

	imported, _, status := h.Import(h.RegisterToken(image))
	assert.Equal(t, NO_ERROR, status)

	image.Node().Metadata().SetState(0xa5)
	image.Node().Metadata().SetQueueIndex(7)
	h.RegisterToken(imported)

	out := new(bytes.Buffer)
	h.Dump(out, nil)
	report := out.String()

	assert.Contains(t, report, "Active Buffers:")
	assert.Contains(t, report, "Unused Tokens:")
	assert.Contains(t, report, "4096 B")
	assert.Contains(t, report, "64x32x1")
	assert.Contains(t, report, "0x000000a5")
	assert.Contains(t, report, fmt.Sprintf("%6d %9d", blob.Node().Id(), 1))
	assert.Contains(t, report, fmt.Sprintf("%6d %9d", image.Node().Id(), 2))
	assert.Contains(t, report, fmt.Sprintf("%9d %6d\n", image.Node().Id(), 1))

	// ordered by buffer id
	assert.True(t, strings.Index(report, fmt.Sprintf("%6d", blob.Node().Id())) < strings.Index(report, fmt.Sprintf("%6d %9d", image.Node().Id(), 2)))
}

func TestDumpSkipsClosedClients(t *testing.T) {
	h := newTestHub()
	client, _, status := h.Allocate(testDesc, 0)
	assert.Equal(t, NO_ERROR, status)
	id := client.Node().Id()
	client.Close()

	out := new(bytes.Buffer)
	h.Dump(out, nil)
	assert.NotContains(t, out.String(), fmt.Sprintf("%6d %9d", id, 1))
}

func TestDumpArgsIgnored(t *testing.T) {
	h := newTestHub()
	out := new(bytes.Buffer)
	h.Dump(out, []string{"--buffers"})
	assert.Contains(t, out.String(), "ignored")
}

// gatedMetadata parks the first State() read until the gate opens, widening the window
// between dump collection and dump formatting.
type gatedMetadata struct {
	entered   chan struct{}
	gate      chan struct{}
	enterOnce sync.Once
	released  int32
}

func (self *gatedMetadata) State() uint32 {
	self.enterOnce.Do(func() { close(self.entered) })
	<-self.gate
	return 0
}

func (self *gatedMetadata) SetState(uint32) {}

func (self *gatedMetadata) QueueIndex() uint64 { return 0 }

func (self *gatedMetadata) SetQueueIndex(uint64) {}

func (self *gatedMetadata) UserSize() uint32 { return 0 }

func (self *gatedMetadata) Release() {
	atomic.AddInt32(&self.released, 1)
}

type gatedAllocator struct {
	metadata *gatedMetadata
}

func (self *gatedAllocator) Allocate(_ int32, _ BufferDescriptor, _ uint32) (Resource, Metadata, error) {
	return &memoryResource{data: make([]byte, 16)}, self.metadata, nil
}

func TestDumpHoldsNodeAcrossConcurrentClose(t *testing.T) {
	metadata := &gatedMetadata{
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	h := NewHub(&gatedAllocator{metadata: metadata}, nil)

	client, _, status := h.Allocate(testDesc, 0)
	assert.Equal(t, NO_ERROR, status)

	done := make(chan struct{})
	go func() {
		h.Dump(new(bytes.Buffer), nil)
		close(done)
	}()

	// close the last client while the dump is parked mid-format; the dump's reference
	// must keep the metadata alive until formatting finishes
	<-metadata.entered
	client.Close()
	assert.Equal(t, int32(0), atomic.LoadInt32(&metadata.released))

	close(metadata.gate)
	<-done
	assert.Equal(t, int32(1), atomic.LoadInt32(&metadata.released))
}

type failingWriter struct{}

func (self *failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink closed")
}

func TestDumpWriteFailure(t *testing.T) {
	h := newTestHub()
	_, _, status := h.Allocate(testDesc, 0)
	assert.Equal(t, NO_ERROR, status)

	// must log and return, not panic
	h.Dump(&failingWriter{}, nil)
}
