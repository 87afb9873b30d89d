package bufhub

import "sync/atomic"

// Client is a per-grant capability handle on a BufferNode. Two clients may reference the
// same node; each occupies its own bit of the node's active-client mask and has an
// independent lifetime.
//
type Client struct {
	hub      *Hub
	node     *BufferNode
	stateBit uint32
	closed   int32
}

func newClient(hub *Hub, node *BufferNode, stateBit uint32) *Client {
	node.ref()
	return &Client{
		hub:      hub,
		node:     node,
		stateBit: stateBit,
	}
}

func (self *Client) Node() *BufferNode {
	return self.node
}

func (self *Client) StateBit() uint32 {
	return self.stateBit
}

// Close releases this client's grant: its tokens are invalidated, it leaves the hub's
// registries, and its bit is cleared from the node's active-client mask. The node itself
// is released when the last client referencing it closes. Idempotent.
func (self *Client) Close() {
	if atomic.CompareAndSwapInt32(&self.closed, 0, 1) {
		self.hub.onClientClosed(self)
	}
}

func (self *Client) isClosed() bool {
	return atomic.LoadInt32(&self.closed) == 1
}
