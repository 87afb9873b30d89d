package bufhub

import (
	"fmt"
	"io"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/sirupsen/logrus"
)

type nodeClients struct {
	node  *BufferNode
	count uint32
}

// Dump writes a diagnostic report of every buffer reachable through a live client, and of
// every buffer with outstanding unredeemed tokens, ordered by buffer id. It mutates no
// state and tolerates concurrent closure: entries that no longer resolve are skipped.
// args is accepted for the surrounding dispatch layer but currently ignored.
func (self *Hub) Dump(w io.Writer, args []string) {
	if len(args) != 0 {
		if _, err := fmt.Fprintf(w, "Note: dump does not support args. Input arguments are ignored.\n"); err != nil {
			logrus.Errorf("error writing dump (%v)", err)
			return
		}
	}

	// each collected node is ref'd while the registry lock still pins its clients, so the
	// formatting reads below cannot race the last client's close releasing the metadata
	clientCounts := treemap.NewWith(utils.Int32Comparator)
	self.clientsLock.Lock()
	for client := range self.clients {
		if client.isClosed() {
			continue
		}
		node := client.node
		if v, found := clientCounts.Get(node.id); found {
			v.(*nodeClients).count++
		} else {
			if !node.tryRef() {
				continue
			}
			clientCounts.Put(node.id, &nodeClients{node: node, count: 1})
		}
	}
	self.clientsLock.Unlock()

	out := "Active Buffers:\n"
	out += fmt.Sprintf("%6s %9s %14s %6s %10s %10s %10s\n", "Id", "Clients", "Geometry", "Format", "Usage", "State", "Index")
	it := clientCounts.Iterator()
	for it.Next() {
		nc := it.Value().(*nodeClients)
		desc := nc.node.desc
		state := nc.node.metadata.State()
		index := nc.node.metadata.QueueIndex()
		out += fmt.Sprintf("%6d %9d %14s %6d 0x%08x 0x%08x %8d\n",
			nc.node.id, nc.count, desc.Geometry(), desc.Format, desc.Usage, state, index)
		nc.node.unref()
	}
	out += "\n"

	tokenCounts := treemap.NewWith(utils.Int32Comparator)
	self.tokensLock.Lock()
	for _, client := range self.tokens {
		if client.isClosed() {
			continue
		}
		id := client.node.id
		if v, found := tokenCounts.Get(id); found {
			tokenCounts.Put(id, v.(uint32)+1)
		} else {
			tokenCounts.Put(id, uint32(1))
		}
	}
	self.tokensLock.Unlock()

	out += "Unused Tokens:\n"
	out += fmt.Sprintf("%9s %6s\n", "Buffer Id", "Tokens")
	it = tokenCounts.Iterator()
	for it.Next() {
		out += fmt.Sprintf("%9d %6d\n", it.Key().(int32), it.Value().(uint32))
	}

	if _, err := io.WriteString(w, out); err != nil {
		logrus.Errorf("error writing dump (%v)", err)
	}
}
