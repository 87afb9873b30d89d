package bufhub

import "github.com/pkg/errors"

// Instrument receives hub lifecycle events. Implementations must be safe for concurrent
// use; the hub invokes them inline from whatever worker is executing the operation.
//
type Instrument interface {
	Allocated(nodeId int32)
	AllocateFailed()
	Imported(nodeId int32)
	ImportFailed(status Status)
	TokenMinted(nodeId int32)
	ClientClosed(nodeId int32)
	Shutdown()
}

func NewInstrument(name string, config map[string]interface{}) (i Instrument, err error) {
	switch name {
	case "metrics":
		return NewMetricsInstrument(config)
	case "nil":
		return NewNilInstrument(), nil
	default:
		return nil, errors.Errorf("unknown instrument '%s'", name)
	}
}
