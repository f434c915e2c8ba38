package chat

import (
	"encoding/json"
	"time"

	decode "ChatProject/tools/decode"
)

// 客户端上行帧类型
const (
	FrameAuth   = "auth"
	FrameTyping = "typing"
	FramePing   = "ping"
)

// 服务端下行事件名（payload 对本层透明，原样转发）
const (
	EventRequest  = "request"  // 新的好友申请，payload=发起者ID
	EventContact  = "contact"  // 申请被接受，payload=接受者ID
	EventRemoved  = "removed"  // 联系人被删除，payload=删除者ID
	EventMessage  = "message"  // 新私聊消息，payload=消息体
	EventReceived = "received" // 消息转为已送达，payload=对端ID
	EventRead     = "read"     // 消息转为已读，payload=对端ID
	EventTyping   = "typing"   // 输入中透传
	EventGroup    = "group"    // 群成员变更
	EventPong     = "pong"
)

// Frame 上行帧：{"type":"auth","payload":{...}}
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, err
	}
	return f, nil
}

// AuthPayload 连接建立后的首个业务载荷；令牌走连接内消息而不是握手头，
// 因为部署环境的升级请求不携带自定义头。
type AuthPayload struct {
	Token    string `json:"token"`
	DeviceID string `json:"device_id,omitempty"`
}

func ExtractAuthPayload(f *Frame) (*AuthPayload, error) {
	return decode.Raw[AuthPayload](f.Payload)
}

// TypingPayload 输入状态透传：不落库，仅转发
type TypingPayload struct {
	To    string `json:"to"`
	State string `json:"state"` // start | stop
}

func ExtractTypingPayload(f *Frame) (*TypingPayload, error) {
	return decode.Raw[TypingPayload](f.Payload)
}

// EventFrame 下行事件帧
type EventFrame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
	Ts      int64  `json:"ts"`
}

// EncodeEvent 构造下行事件帧
func EncodeEvent(event string, payload any) ([]byte, error) {
	return json.Marshal(EventFrame{
		Event:   event,
		Payload: payload,
		Ts:      time.Now().UnixMilli(),
	})
}
