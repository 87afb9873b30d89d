package bufhub

type nilInstrument struct{}

func NewNilInstrument() Instrument {
	return &nilInstrument{}
}

func (n *nilInstrument) Allocated(nodeId int32) {}

func (n *nilInstrument) AllocateFailed() {}

func (n *nilInstrument) Imported(nodeId int32) {}

func (n *nilInstrument) ImportFailed(status Status) {}

func (n *nilInstrument) TokenMinted(nodeId int32) {}

func (n *nilInstrument) ClientClosed(nodeId int32) {}

func (n *nilInstrument) Shutdown() {}
