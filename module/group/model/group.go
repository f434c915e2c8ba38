package model

import "time"

// Group 群组；创建者即管理员
type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Photo      string    `json:"photo"`
	AdminID    string    `json:"admin_id"`
	CreateTime time.Time `json:"create_time"`
}

// GroupMember 群成员关系
type GroupMember struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

// MemberEvent 成员变更事件载荷（推送用）
type MemberEvent struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
	Action  string `json:"action"` // added | removed | left | admin
}
