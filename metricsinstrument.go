package bufhub

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openziti/bufhub/cf"
	"github.com/openziti/bufhub/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// metricsInstrument counts hub operations and writes periodic snapshots as CSV samples,
// controlled through a unix-socket ctrl listener (start/stop/write/clean).
//
type metricsInstrument struct {
	lock   *sync.Mutex
	config *metricsInstrumentConfig
	close  chan struct{}

	allocations   int64
	allocFailures int64
	imports       int64
	invalidTokens int64
	buffersFreed  int64
	maxClients    int64
	tokensMinted  int64
	clientsClosed int64

	allocationsSamples   []*util.Sample
	allocFailuresSamples []*util.Sample
	importsSamples       []*util.Sample
	invalidTokensSamples []*util.Sample
	buffersFreedSamples  []*util.Sample
	maxClientsSamples    []*util.Sample
	tokensMintedSamples  []*util.Sample
	clientsClosedSamples []*util.Sample
}

type metricsInstrumentConfig struct {
	Path       string `cf:"path"`
	SnapshotMs int    `cf:"snapshot_ms"`
	Enabled    bool   `cf:"enabled"`
}

func NewMetricsInstrument(config map[string]interface{}) (Instrument, error) {
	i := &metricsInstrument{
		lock: new(sync.Mutex),
		config: &metricsInstrumentConfig{
			SnapshotMs: 1000,
			Enabled:    true,
		},
		close: make(chan struct{}, 1),
	}
	if err := cf.Load(config, i.config); err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}
	cl, err := util.GetCtrlListener(i.config.Path, "bufhub")
	if err != nil {
		return nil, errors.Wrap(err, "unable to get metrics ctrl listener")
	}
	cl.AddCallback("start", func(string) error {
		i.config.Enabled = true
		return nil
	})
	cl.AddCallback("stop", func(string) error {
		i.config.Enabled = false
		return nil
	})
	cl.AddCallback("write", func(string) error {
		if err := i.writeSamples(); err != nil {
			logrus.Errorf("error writing samples (%v)", err)
			return err
		}
		return nil
	})
	cl.AddCallback("clean", func(string) error {
		i.clean()
		return nil
	})
	cl.Start()
	go i.snapshotter(i.config.SnapshotMs)
	logrus.Infof(cf.Dump("config", i.config))
	return i, nil
}

func (self *metricsInstrument) Allocated(_ int32) {
	atomic.AddInt64(&self.allocations, 1)
}

func (self *metricsInstrument) AllocateFailed() {
	atomic.AddInt64(&self.allocFailures, 1)
}

func (self *metricsInstrument) Imported(_ int32) {
	atomic.AddInt64(&self.imports, 1)
}

func (self *metricsInstrument) ImportFailed(status Status) {
	switch status {
	case INVALID_TOKEN:
		atomic.AddInt64(&self.invalidTokens, 1)
	case BUFFER_FREED:
		atomic.AddInt64(&self.buffersFreed, 1)
	case MAX_CLIENT:
		atomic.AddInt64(&self.maxClients, 1)
	}
}

func (self *metricsInstrument) TokenMinted(_ int32) {
	atomic.AddInt64(&self.tokensMinted, 1)
}

func (self *metricsInstrument) ClientClosed(_ int32) {
	atomic.AddInt64(&self.clientsClosed, 1)
}

func (self *metricsInstrument) Shutdown() {
	close(self.close)
	if err := self.writeSamples(); err != nil {
		logrus.Errorf("error writing samples at shutdown (%v)", err)
	}
}

func (self *metricsInstrument) snapshotter(ms int) {
	logrus.Infof("started")
	defer logrus.Warnf("exited")
	for {
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
			if self.config.Enabled {
				self.snapshot()
			}
		case <-self.close:
			return
		}
	}
}

func (self *metricsInstrument) snapshot() {
	self.lock.Lock()
	defer self.lock.Unlock()

	now := time.Now()
	self.allocationsSamples = append(self.allocationsSamples, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.allocations)})
	self.allocFailuresSamples = append(self.allocFailuresSamples, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.allocFailures)})
	self.importsSamples = append(self.importsSamples, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.imports)})
	self.invalidTokensSamples = append(self.invalidTokensSamples, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.invalidTokens)})
	self.buffersFreedSamples = append(self.buffersFreedSamples, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.buffersFreed)})
	self.maxClientsSamples = append(self.maxClientsSamples, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.maxClients)})
	self.tokensMintedSamples = append(self.tokensMintedSamples, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.tokensMinted)})
	self.clientsClosedSamples = append(self.clientsClosedSamples, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.clientsClosed)})
}

func (self *metricsInstrument) writeSamples() error {
	self.lock.Lock()
	defer self.lock.Unlock()

	if err := os.MkdirAll(self.config.Path, os.ModePerm); err != nil {
		return err
	}
	outPath, err := ioutil.TempDir(self.config.Path, "bufhub_")
	if err != nil {
		return err
	}
	logrus.Infof("writing metrics to: %s", outPath)

	if err := util.WriteMetricsId(fmt.Sprintf("bufhub.%d", os.Getpid()), outPath, nil); err != nil {
		return err
	}
	if err := util.WriteSamples("allocations", outPath, self.allocationsSamples); err != nil {
		return err
	}
	if err := util.WriteSamples("allocate_failures", outPath, self.allocFailuresSamples); err != nil {
		return err
	}
	if err := util.WriteSamples("imports", outPath, self.importsSamples); err != nil {
		return err
	}
	if err := util.WriteSamples("invalid_tokens", outPath, self.invalidTokensSamples); err != nil {
		return err
	}
	if err := util.WriteSamples("buffers_freed", outPath, self.buffersFreedSamples); err != nil {
		return err
	}
	if err := util.WriteSamples("max_clients", outPath, self.maxClientsSamples); err != nil {
		return err
	}
	if err := util.WriteSamples("tokens_minted", outPath, self.tokensMintedSamples); err != nil {
		return err
	}
	if err := util.WriteSamples("clients_closed", outPath, self.clientsClosedSamples); err != nil {
		return err
	}
	self.cleanLocked()
	return nil
}

func (self *metricsInstrument) clean() {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.cleanLocked()
}

func (self *metricsInstrument) cleanLocked() {
	self.allocationsSamples = nil
	self.allocFailuresSamples = nil
	self.importsSamples = nil
	self.invalidTokensSamples = nil
	self.buffersFreedSamples = nil
	self.maxClientsSamples = nil
	self.tokensMintedSamples = nil
	self.clientsClosedSamples = nil
}
