package model

// 消息状态机：sent -> received -> read
const (
	StateSent     = "sent"
	StateReceived = "received"
	StateRead     = "read"
)

// Message 一条私聊消息；存 MongoDB，_id 为雪花ID（字符串序可比较，
// 分页用 id 游标而不是时间戳）
type Message struct {
	ID     string `json:"id" bson:"_id"`
	FromID string `json:"from_id" bson:"from_id"`
	ToID   string `json:"to_id" bson:"to_id"`
	Body   string `json:"message" bson:"body"`
	State  string `json:"state" bson:"state"`
	Ts     int64  `json:"time" bson:"ts"` // unix 秒
}

// ChatDigest 会话摘要：联系人 + 最后一条消息
type ChatDigest struct {
	UserID   string `json:"id"`
	Name     string `json:"name"`     // 联系人别名
	RealName string `json:"realname"` // 真实姓名
	Message  string `json:"message"`
	FromID   string `json:"from_id"`
	State    string `json:"state"`
	Ts       int64  `json:"time"`
}
