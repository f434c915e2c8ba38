package natsx

import (
	"encoding/json"

	"ChatProject/logger"
	"ChatProject/metrics"
)

// SubjectEvents 所有网关节点共享的事件主题
const SubjectEvents = "chat.events"

// EventEnvelope 跨节点事件信封；Payload 原样透传
type EventEnvelope struct {
	Node    string          `json:"node"`
	UserID  string          `json:"user_id"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Relay mirrors notify calls to the other gateway nodes. A user's devices may
// be connected to different nodes; each node delivers to its local registry
// and relays the event so the rest can deliver theirs.
type Relay struct {
	c    *NatsxClient
	node string
}

func NewRelay(c *NatsxClient, nodeID string) *Relay {
	return &Relay{c: c, node: nodeID}
}

// PublishEvent 广播事件到其它节点；失败只记日志（通知是 best effort）
func (r *Relay) PublishEvent(userID, event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("[relay] marshal event=%s err: %v", event, err)
		return
	}
	env := EventEnvelope{Node: r.node, UserID: userID, Event: event, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		logger.Errorf("[relay] marshal envelope err: %v", err)
		return
	}
	if err := r.c.Publish(SubjectEvents, data); err != nil {
		logger.Warnf("[relay] publish event=%s user=%s err: %v", event, userID, err)
		return
	}
	metrics.EventsRelayed.Inc()
}

// Start 订阅事件主题，把其它节点的事件投递到本地连接。
// deliver 应为本地投递（如 Notifier.NotifyLocal），避免再次中继造成回环。
func (r *Relay) Start(deliver func(userID, event string, payload any) int) error {
	return r.c.Subscribe(SubjectEvents, "", func(data []byte) {
		var env EventEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Warnf("[relay] bad envelope: %v", err)
			return
		}
		if env.Node == r.node {
			return // 本节点已经投递过
		}
		deliver(env.UserID, env.Event, env.Payload)
	})
}
