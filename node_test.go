package bufhub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestNode(t *testing.T) *BufferNode {
	node, err := newBufferNode(idGenerator.Next(), testDesc, 0, NewMemoryAllocator(0))
	assert.NoError(t, err)
	node.ref()
	return node
}

func TestActiveClientBits(t *testing.T) {
	node := newTestNode(t)
	assert.Equal(t, firstClientBit, node.activeClientMask())

	bit := node.addActiveClientBit()
	assert.Equal(t, uint32(2), bit)
	assert.Equal(t, uint32(3), node.activeClientMask())

	node.clearActiveClientBit(bit)
	assert.Equal(t, firstClientBit, node.activeClientMask())

	again := node.addActiveClientBit()
	assert.Equal(t, bit, again)
}

func TestActiveClientBitsExhaustion(t *testing.T) {
	node := newTestNode(t)
	for i := 1; i < maxClientBits; i++ {
		assert.NotEqual(t, uint32(0), node.addActiveClientBit())
	}
	assert.Equal(t, ^uint32(0), node.activeClientMask())
	assert.Equal(t, uint32(0), node.addActiveClientBit())
}

func TestActiveClientBitsConcurrent(t *testing.T) {
	node := newTestNode(t)

	claimed := make([]uint32, maxClientBits-1)
	wg := new(sync.WaitGroup)
	wg.Add(len(claimed))
	for i := range claimed {
		go func(i int) {
			defer wg.Done()
			claimed[i] = node.addActiveClientBit()
		}(i)
	}
	wg.Wait()

	seen := make(map[uint32]struct{})
	for _, bit := range claimed {
		assert.NotEqual(t, uint32(0), bit)
		_, dup := seen[bit]
		assert.False(t, dup)
		seen[bit] = struct{}{}
	}
	assert.Equal(t, ^uint32(0), node.activeClientMask())
}

func TestTryRef(t *testing.T) {
	node := newTestNode(t)
	assert.True(t, node.tryRef())
	node.unref()
	node.unref()

	// last reference gone; the node must not be resurrected
	assert.False(t, node.tryRef())
}

func BenchmarkAddClearActiveClientBit(b *testing.B) {
	node, err := newBufferNode(idGenerator.Next(), testDesc, 0, NewMemoryAllocator(0))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bit := node.addActiveClientBit()
		node.clearActiveClientBit(bit)
	}
}
