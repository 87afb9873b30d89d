package bufhub

import (
	"testing"

	"github.com/openziti/bufhub/cf"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestOptionsLoad(t *testing.T) {
	options := DefaultOptions()
	err := options.Load(map[string]interface{}{
		"instrument": map[string]interface{}{
			"name": "nil",
		},
	})
	assert.NoError(t, err)
	assert.NotNil(t, options.i)
}

func TestOptionsLoadMissingName(t *testing.T) {
	options := DefaultOptions()
	err := options.Load(map[string]interface{}{
		"instrument": map[string]interface{}{},
	})
	assert.Error(t, err)
}

func TestOptionsLoadFromYaml(t *testing.T) {
	data := []byte("instrument:\n  name: nil\n")
	dataMap := make(map[interface{}]interface{})
	assert.NoError(t, yaml.Unmarshal(data, dataMap))

	options := DefaultOptions()
	assert.NoError(t, options.Load(cf.MapIToMapS(dataMap)))
	assert.NotNil(t, options.i)
}
