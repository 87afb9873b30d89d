package util

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceNext(t *testing.T) {
	seq := NewSequence(0)
	assert.Equal(t, int32(0), seq.Next())
	assert.Equal(t, int32(1), seq.Next())
	assert.Equal(t, int32(2), seq.Next())
}

func TestSequenceDoesNotRestartFromZero(t *testing.T) {
	seq := NewSequence(math.MaxInt32)
	assert.Equal(t, int32(math.MaxInt32), seq.Next())
	assert.NotEqual(t, int32(0), seq.Next())
}

func TestSequenceConcurrent(t *testing.T) {
	seq := NewSequence(0)
	workers := 8
	perWorker := 1024

	results := make([][]int32, workers)
	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results[w] = append(results[w], seq.Next())
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[int32]struct{})
	for _, values := range results {
		for _, v := range values {
			_, dup := seen[v]
			assert.False(t, dup)
			seen[v] = struct{}{}
		}
	}
	assert.Equal(t, workers*perWorker, len(seen))
}
