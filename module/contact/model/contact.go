package model

import "time"

// Contact 一条联系人关系记录：FromID 发起申请，Accepted=false 时是待处理申请。
// 双方各有一份别名与气泡颜色，存在同一行上。
type Contact struct {
	ID         string    `json:"id"`
	FromID     string    `json:"from_id"`
	ToID       string    `json:"to_id"`
	Accepted   bool      `json:"accepted"`
	FromAlias  string    `json:"from_alias"`
	ToAlias    string    `json:"to_alias"`
	FromColor  string    `json:"from_color"`
	ToColor    string    `json:"to_color"`
	CreateTime time.Time `json:"create_time"`
}

// Other 返回相对 userID 的对端ID
func (c *Contact) Other(userID string) string {
	if c.FromID == userID {
		return c.ToID
	}
	return c.FromID
}

// Relationship 关系查询结果
type Relationship struct {
	Contact bool `json:"contact"` // 已是联系人
	Request bool `json:"request"` // 存在待处理申请
	Type    bool `json:"type"`    // 申请方向：true=我发起
}

// Colors 双方气泡颜色（相对查询者）
type Colors struct {
	Me    string `json:"me"`
	Other string `json:"other"`
}
