package socket

import (
	pkgif "github.com/dep2p/go-zmsg/pkg/interfaces"
	"github.com/dep2p/go-zmsg/pkg/types"
)

// emitters socket 发布的事件发射器，总线为 nil 时全部为空操作
type emitters struct {
	conn, disc, rej, drop pkgif.Emitter
}

func newEmitters(bus pkgif.EventBus) (*emitters, error) {
	e := &emitters{}
	if bus == nil {
		return e, nil
	}

	targets := []struct {
		typ interface{}
		dst *pkgif.Emitter
	}{
		{new(types.EvtPeerConnected), &e.conn},
		{new(types.EvtPeerDisconnected), &e.disc},
		{new(types.EvtPeerRejected), &e.rej},
		{new(types.EvtMessageDropped), &e.drop},
	}
	for _, t := range targets {
		em, err := bus.Emitter(t.typ)
		if err != nil {
			e.close()
			return nil, err
		}
		*t.dst = em
	}
	return e, nil
}

func emit(em pkgif.Emitter, evt interface{}) {
	if em == nil {
		return
	}
	if err := em.Emit(evt); err != nil {
		logger.Debug("事件发射失败", "err", err)
	}
}

func (e *emitters) connected(evt types.EvtPeerConnected)       { emit(e.conn, evt) }
func (e *emitters) disconnected(evt types.EvtPeerDisconnected) { emit(e.disc, evt) }
func (e *emitters) rejected(evt types.EvtPeerRejected)         { emit(e.rej, evt) }
func (e *emitters) dropped(evt types.EvtMessageDropped)        { emit(e.drop, evt) }

func (e *emitters) close() {
	for _, em := range []pkgif.Emitter{e.conn, e.disc, e.rej, e.drop} {
		if em != nil {
			_ = em.Close()
		}
	}
}
