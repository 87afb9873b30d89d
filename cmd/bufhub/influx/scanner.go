package influx

import (
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/openziti/bufhub/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type snapshot struct {
	id   string
	path string
}

// discoverSnapshots finds metrics snapshot directories under root: any directory carrying
// a metrics.id with a broker identity.
func discoverSnapshots(root string) ([]*snapshot, error) {
	entries, err := ioutil.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading metrics root [%s]", root)
	}

	var snapshots []*snapshot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		mid, err := util.ReadMetricsId(filepath.Join(path, "metrics.id"))
		if err != nil {
			logrus.Debugf("skipping [%s] (%v)", path, err)
			continue
		}
		if !strings.HasPrefix(mid.Id, "bufhub.") {
			logrus.Debugf("skipping [%s], foreign id [%s]", path, mid.Id)
			continue
		}
		snapshots = append(snapshots, &snapshot{id: mid.Id, path: path})
	}
	return snapshots, nil
}
