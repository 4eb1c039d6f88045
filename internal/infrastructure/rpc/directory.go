package rpc

import (
	"time"

	"github.com/yuzvak/retail-coordination-service/internal/config"
	"github.com/yuzvak/retail-coordination-service/internal/domain/dispatch"
	"github.com/yuzvak/retail-coordination-service/internal/pkg/logger"
)

// Directory is the static enterprise topology built from configuration: the
// local store plus one client per configured peer.
type Directory struct {
	stores  map[int]dispatch.StoreInfo
	clients map[int]*StoreClient
}

func NewDirectory(storeCfg config.StoreConfig, queryTimeout time.Duration, log *logger.Logger) *Directory {
	d := &Directory{
		stores:  make(map[int]dispatch.StoreInfo, len(storeCfg.Peers)+1),
		clients: make(map[int]*StoreClient, len(storeCfg.Peers)),
	}

	d.stores[storeCfg.ID] = dispatch.StoreInfo{
		ID:       storeCfg.ID,
		Name:     storeCfg.Name,
		Location: storeCfg.Location,
	}

	for _, peer := range storeCfg.Peers {
		info := dispatch.StoreInfo{
			ID:       peer.ID,
			Name:     peer.Name,
			Location: peer.Location,
		}
		d.stores[peer.ID] = info
		d.clients[peer.ID] = NewStoreClient(info, peer.BaseURL, queryTimeout, log)
	}

	return d
}

func (d *Directory) Store(id int) (dispatch.StoreInfo, bool) {
	info, ok := d.stores[id]
	return info, ok
}

// Siblings returns clients for every enterprise store except the given one.
func (d *Directory) Siblings(id int) []dispatch.RemoteStore {
	siblings := make([]dispatch.RemoteStore, 0, len(d.clients))
	for peerID, client := range d.clients {
		if peerID == id {
			continue
		}
		siblings = append(siblings, client)
	}
	return siblings
}
