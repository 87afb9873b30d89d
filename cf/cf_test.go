package cf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testConfig struct {
	Path       string  `cf:"path"`
	SnapshotMs int     `cf:"snapshot_ms"`
	Scale      float64 `cf:"scale"`
	Enabled    bool    `cf:"enabled"`
}

func TestLoad(t *testing.T) {
	c := &testConfig{SnapshotMs: 1000}
	err := Load(map[string]interface{}{
		"path":    "/tmp/metrics",
		"scale":   0.5,
		"enabled": true,
	}, c)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/metrics", c.Path)
	assert.Equal(t, 1000, c.SnapshotMs)
	assert.Equal(t, 0.5, c.Scale)
	assert.True(t, c.Enabled)
}

func TestLoadTypeMismatch(t *testing.T) {
	c := &testConfig{}
	err := Load(map[string]interface{}{"snapshot_ms": "soon"}, c)
	assert.Error(t, err)
}

func TestLoadNotStruct(t *testing.T) {
	v := 0
	assert.Error(t, Load(map[string]interface{}{}, &v))
}

func TestDump(t *testing.T) {
	out := Dump("config", &testConfig{Path: "/tmp", SnapshotMs: 250})
	assert.Contains(t, out, "path")
	assert.Contains(t, out, "/tmp")
	assert.Contains(t, out, "snapshot_ms")
	assert.Contains(t, out, "250")
}

func TestMapIToMapS(t *testing.T) {
	in := map[interface{}]interface{}{
		"instrument": map[interface{}]interface{}{
			"name": "metrics",
			"config": map[interface{}]interface{}{
				"snapshot_ms": 250,
			},
		},
	}
	out := MapIToMapS(in)
	instrument, ok := out["instrument"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "metrics", instrument["name"])
	config, ok := instrument["config"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, 250, config["snapshot_ms"])
}
