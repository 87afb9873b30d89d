package util

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
)

type MetricsId struct {
	Id     string            `json:"id"`
	Values map[string]string `json:"values,omitempty"`
}

// WriteMetricsId marks a metrics snapshot directory with its producer identity, so the
// influx loader can discover and tag it.
func WriteMetricsId(id, outPath string, values map[string]string) error {
	mid := &MetricsId{Id: id, Values: values}
	data, err := json.MarshalIndent(mid, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(outPath, "metrics.id"), data, os.ModePerm)
}

// ReadMetricsId loads the identity marker from a metrics snapshot directory.
func ReadMetricsId(path string) (*MetricsId, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mid := &MetricsId{}
	if err := json.Unmarshal(data, mid); err != nil {
		return nil, err
	}
	return mid, nil
}
