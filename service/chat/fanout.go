package chat

import (
	"ChatProject/logger"
	"ChatProject/metrics"
)

// Relay forwards an event to the other gateway nodes, best effort.
// Implemented by natsx; nil when the gateway runs standalone.
type Relay interface {
	PublishEvent(userID, event string, payload any)
}

type fanoutJob struct {
	conns []*Client
	frame []byte
}

// Notifier delivers one logical event to all of a user's live connections.
// Delivery is best effort: a slow or half-closed connection never blocks the
// caller and never affects sibling connections. Errors do not reach the CRUD
// layer — its mutation is already committed by the time Notify runs.
type Notifier struct {
	reg   *Registry
	relay Relay
	jobs  chan fanoutJob
}

// NewNotifier 创建通知器；workers 只服务于批量广播（NotifyMany）
func NewNotifier(reg *Registry, relay Relay, workers, queue int) *Notifier {
	if workers <= 0 {
		workers = 4
	}
	if queue <= 0 {
		queue = 256
	}
	n := &Notifier{reg: reg, relay: relay, jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		go func() {
			for job := range n.jobs {
				deliver(job.conns, job.frame)
			}
		}()
	}
	return n
}

// Notify pushes (event, payload) to every local connection of userID and
// returns the local delivery count. Offline target is a silent no-op.
// The event is additionally relayed so other nodes can deliver their share.
func (n *Notifier) Notify(userID, event string, payload any) int {
	delivered := n.NotifyLocal(userID, event, payload)
	if n.relay != nil {
		n.relay.PublishEvent(userID, event, payload)
	}
	return delivered
}

// NotifyLocal 只投递本节点连接；中继消费端用它避免回环
func (n *Notifier) NotifyLocal(userID, event string, payload any) int {
	conns := n.reg.ConnectionsFor(userID)
	if len(conns) == 0 {
		return 0
	}
	frame, err := EncodeEvent(event, payload)
	if err != nil {
		logger.Errorf("[fanout] encode event=%s err: %v", event, err)
		return 0
	}
	return deliver(conns, frame)
}

// NotifyMany 批量广播（群事件）；经 worker 池异步投递
func (n *Notifier) NotifyMany(userIDs []string, event string, payload any) {
	if len(userIDs) == 0 {
		return
	}
	frame, err := EncodeEvent(event, payload)
	if err != nil {
		logger.Errorf("[fanout] encode event=%s err: %v", event, err)
		return
	}
	for _, uid := range userIDs {
		if n.relay != nil {
			n.relay.PublishEvent(uid, event, payload)
		}
		conns := n.reg.ConnectionsFor(uid)
		if len(conns) == 0 {
			continue
		}
		select {
		case n.jobs <- fanoutJob{conns: conns, frame: frame}:
		default:
			// 队列满时退化为同步投递，不丢事件
			deliver(conns, frame)
		}
	}
}

func deliver(conns []*Client, frame []byte) int {
	delivered := 0
	for _, c := range conns {
		if c.enqueue(frame) {
			delivered++
			metrics.FanoutDelivered.Inc()
		} else {
			// Slow client: frame dropped for this connection only
			metrics.FanoutDropped.Inc()
		}
	}
	return delivered
}
