package bufhub

import (
	"sync"

	"github.com/openziti/bufhub/util"
	"github.com/sirupsen/logrus"
)

// idGenerator hands out buffer node ids, strictly unique across the process lifetime.
var idGenerator = util.NewSequence(0)

// Hub mediates shared buffer allocation and token-based hand-off between otherwise
// unrelated clients. It keeps two independent registries: the set of live clients
// (bookkeeping and diagnostics) and the map of outstanding one-time tokens. Neither
// registry owns its entries; ownership of a node rests solely with its clients.
//
// The two registry locks are never held simultaneously.
//
type Hub struct {
	allocator Allocator
	i         Instrument

	clientsLock sync.Mutex
	clients     map[*Client]struct{}

	tokensLock sync.Mutex
	tokens     map[uint32]*Client
	tokenRand  *util.RandomSource
}

func NewHub(allocator Allocator, options *Options) *Hub {
	if options == nil {
		options = DefaultOptions()
	}
	i := options.i
	if i == nil {
		i = NewNilInstrument()
	}
	return &Hub{
		allocator: allocator,
		i:         i,
		clients:   make(map[*Client]struct{}),
		tokens:    make(map[uint32]*Client),
		tokenRand: util.NewRandomSource(),
	}
}

// Allocate creates a fresh buffer node for the descriptor and returns its first client,
// holding bit 0 of the node's active-client mask.
func (self *Hub) Allocate(desc BufferDescriptor, userMetadataSize uint32) (*Client, *BufferTraits, Status) {
	node, err := newBufferNode(idGenerator.Next(), desc, userMetadataSize, self.allocator)
	if err != nil {
		logrus.Errorf("creating buffer node failed (%v)", err)
		self.i.AllocateFailed()
		return nil, nil, ALLOCATION_FAILED
	}

	client := newClient(self, node, firstClientBit)

	self.clientsLock.Lock()
	self.clients[client] = struct{}{}
	self.clientsLock.Unlock()

	self.i.Allocated(node.id)
	return client, &BufferTraits{Desc: node.desc, Resource: node.resource}, NO_ERROR
}

// RegisterToken mints a one-time token for the client and returns it wrapped in a
// transfer container with zero descriptors and one integer slot. The token maps to a
// non-owning reference; redemption or closure of the client invalidates it.
func (self *Hub) RegisterToken(client *Client) *TransferHandle {
	self.tokensLock.Lock()
	var token uint32
	for {
		token = self.tokenRand.Uint32()
		if _, found := self.tokens[token]; !found {
			break
		}
	}
	self.tokens[token] = client
	self.tokensLock.Unlock()

	self.i.TokenMinted(client.node.id)
	return newTokenHandle(token)
}

// Import redeems a token for a new client on the same buffer node. The token is consumed
// by the lookup whether or not the remaining steps succeed; a second redemption of the
// same value reports INVALID_TOKEN.
func (self *Hub) Import(th *TransferHandle) (*Client, *BufferTraits, Status) {
	if !th.isToken() {
		// nil container or wrong shape
		self.i.ImportFailed(INVALID_TOKEN)
		return nil, nil, INVALID_TOKEN
	}
	token := th.Ints[0]

	self.tokensLock.Lock()
	origin, found := self.tokens[token]
	if !found {
		self.tokensLock.Unlock()
		self.i.ImportFailed(INVALID_TOKEN)
		return nil, nil, INVALID_TOKEN
	}
	delete(self.tokens, token)
	self.tokensLock.Unlock()

	// Closing a client excises its tokens first, so resolving a closed origin here means
	// the bookkeeping is broken, not that we lost a race.
	if origin.isClosed() || !origin.node.tryRef() {
		logrus.Errorf("origin client for token already gone, buffer node [#%d]", origin.node.id)
		self.i.ImportFailed(BUFFER_FREED)
		return nil, nil, BUFFER_FREED
	}

	node := origin.node
	bit := node.addActiveClientBit()
	if bit == 0 {
		node.unref()
		logrus.Errorf("import failed, buffer node [#%d] reached maximum clients", node.id)
		self.i.ImportFailed(MAX_CLIENT)
		return nil, nil, MAX_CLIENT
	}

	// tryRef above already took the new client's reference
	client := &Client{hub: self, node: node, stateBit: bit}

	self.clientsLock.Lock()
	self.clients[client] = struct{}{}
	self.clientsLock.Unlock()

	self.i.Imported(node.id)
	return client, &BufferTraits{Desc: node.desc, Resource: node.resource}, NO_ERROR
}

// onClientClosed tears a client out of both registries and releases its mask bit. The
// token registry is scanned in full; there is at most one live token per client in
// normal use, but stale entries are excised defensively.
func (self *Hub) onClientClosed(client *Client) {
	self.removeTokensByClient(client)

	self.clientsLock.Lock()
	delete(self.clients, client)
	self.clientsLock.Unlock()

	client.node.clearActiveClientBit(client.stateBit)
	client.node.unref()

	self.i.ClientClosed(client.node.id)
}

func (self *Hub) removeTokensByClient(client *Client) {
	self.tokensLock.Lock()
	for token, candidate := range self.tokens {
		if candidate == client {
			delete(self.tokens, token)
		}
	}
	self.tokensLock.Unlock()
}
