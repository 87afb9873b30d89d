package bufhub

import (
	"io/ioutil"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/openziti/bufhub/util"
	"github.com/stretchr/testify/assert"
)

func TestMetricsInstrument(t *testing.T) {
	root := t.TempDir()
	i, err := NewMetricsInstrument(map[string]interface{}{
		"path":        root,
		"snapshot_ms": 60000,
	})
	assert.NoError(t, err)
	mi := i.(*metricsInstrument)

	options := DefaultOptions()
	options.SetInstrument(i)
	h := NewHub(NewMemoryAllocator(0), options)

	origin, _, status := h.Allocate(testDesc, 0)
	assert.Equal(t, NO_ERROR, status)
	imported, _, status := h.Import(h.RegisterToken(origin))
	assert.Equal(t, NO_ERROR, status)
	_, _, status = h.Import(newTokenHandle(0xdead))
	assert.Equal(t, INVALID_TOKEN, status)
	origin.Close()
	imported.Close()

	assert.Equal(t, int64(1), atomic.LoadInt64(&mi.allocations))
	assert.Equal(t, int64(1), atomic.LoadInt64(&mi.imports))
	assert.Equal(t, int64(1), atomic.LoadInt64(&mi.invalidTokens))
	assert.Equal(t, int64(1), atomic.LoadInt64(&mi.tokensMinted))
	assert.Equal(t, int64(2), atomic.LoadInt64(&mi.clientsClosed))

	mi.snapshot()
	assert.NoError(t, mi.writeSamples())

	entries, err := ioutil.ReadDir(root)
	assert.NoError(t, err)

	var snapDir string
	for _, entry := range entries {
		if entry.IsDir() {
			snapDir = filepath.Join(root, entry.Name())
		}
	}
	assert.NotEmpty(t, snapDir)

	mid, err := util.ReadMetricsId(filepath.Join(snapDir, "metrics.id"))
	assert.NoError(t, err)
	assert.Contains(t, mid.Id, "bufhub.")

	data, err := ioutil.ReadFile(filepath.Join(snapDir, "allocations.csv"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), ",1\n")

	// samples drained by the write
	assert.Equal(t, 0, len(mi.allocationsSamples))
}

func TestNewInstrument(t *testing.T) {
	i, err := NewInstrument("nil", nil)
	assert.NoError(t, err)
	assert.NotNil(t, i)

	_, err = NewInstrument("bogus", nil)
	assert.Error(t, err)
}
