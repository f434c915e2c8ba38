package message

import (
	"context"
	"strings"
	"time"

	contactmodel "ChatProject/module/contact/model"
	msgmodel "ChatProject/module/message/model"
	usermodel "ChatProject/module/user/model"
	"ChatProject/service/chat"
	"ChatProject/tools/errs"
	"ChatProject/tools/ids"
)

// Store 消息存取依赖；mgo.MessageStore 实现
type Store interface {
	Insert(ctx context.Context, m *msgmodel.Message) error
	List(ctx context.Context, a, b, beforeID string, limit int64) ([]msgmodel.Message, error)
	Last(ctx context.Context, a, b string) (*msgmodel.Message, error)
	MarkReceived(ctx context.Context, me, other string) (bool, error)
	MarkRead(ctx context.Context, me, other string) (bool, error)
}

// Contacts 联系人关系子集
type Contacts interface {
	IsContact(ctx context.Context, a, b string) (bool, error)
	ListAcceptedRows(ctx context.Context, userID string) ([]contactmodel.Contact, error)
	GetBetween(ctx context.Context, a, b string) (*contactmodel.Contact, error)
}

// Users 用户档案子集
type Users interface {
	GetByID(ctx context.Context, id string) (*usermodel.User, error)
}

// Notifier 事件推送
type Notifier interface {
	Notify(userID, event string, payload any) int
}

type Service struct {
	store    Store
	contacts Contacts
	users    Users
	notifier Notifier
}

func NewService(store Store, contacts Contacts, users Users, notifier Notifier) *Service {
	return &Service{store: store, contacts: contacts, users: users, notifier: notifier}
}

// mustContact 消息操作都要求已接受的联系人关系
func (s *Service) mustContact(ctx context.Context, me, other string) error {
	if me == other {
		return errs.ErrArgs.WithDetail("cannot target self")
	}
	ok, err := s.contacts.IsContact(ctx, me, other)
	if err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}
	if !ok {
		return errs.ErrRecordAbsent.WithDetail("not a contact")
	}
	return nil
}

// Send 发送私聊消息：先落库，成功后对端收到一次 message 事件。
// 对端离线时投递是空操作，消息照常入库，发送方照常拿到结果。
func (s *Service) Send(ctx context.Context, me, to, body string) (*msgmodel.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errs.ErrArgs.WithDetail("empty message")
	}
	if err := s.mustContact(ctx, me, to); err != nil {
		return nil, err
	}

	m := &msgmodel.Message{
		ID:     ids.GenerateString(),
		FromID: me,
		ToID:   to,
		Body:   body,
		State:  msgmodel.StateSent,
		Ts:     time.Now().Unix(),
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}

	s.notifier.Notify(to, chat.EventMessage, m)
	return m, nil
}

// List 分页取历史；start 为空或 "-1" 从最新开始，否则取 start 之前的一页
func (s *Service) List(ctx context.Context, me, other, start string, number int64) ([]msgmodel.Message, error) {
	if err := s.mustContact(ctx, me, other); err != nil {
		return nil, err
	}
	if start == "-1" {
		start = ""
	}
	out, err := s.store.List(ctx, me, other, start, number)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	return out, nil
}

// Receive 把 other 发给我的 sent 消息置为 received；
// 有消息真的变更时对端收到一次 received 事件
func (s *Service) Receive(ctx context.Context, me, other string) error {
	if err := s.mustContact(ctx, me, other); err != nil {
		return err
	}
	changed, err := s.store.MarkReceived(ctx, me, other)
	if err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}
	if changed {
		s.notifier.Notify(other, chat.EventReceived, me)
	}
	return nil
}

// Read 把 other 发给我的未读消息置为 read；变更时对端收到一次 read 事件
func (s *Service) Read(ctx context.Context, me, other string) error {
	if err := s.mustContact(ctx, me, other); err != nil {
		return err
	}
	changed, err := s.store.MarkRead(ctx, me, other)
	if err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}
	if changed {
		s.notifier.Notify(other, chat.EventRead, me)
	}
	return nil
}

// Digests 每个有聊天记录的联系人一条摘要：别名、真名、最后一条消息
func (s *Service) Digests(ctx context.Context, me string) ([]msgmodel.ChatDigest, error) {
	rows, err := s.contacts.ListAcceptedRows(ctx, me)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}

	out := make([]msgmodel.ChatDigest, 0, len(rows))
	for i := range rows {
		d, err := s.digestFor(ctx, me, &rows[i])
		if err != nil {
			return nil, err
		}
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Digest 单个联系人的会话摘要；没有聊天记录返回 ErrRecordAbsent
func (s *Service) Digest(ctx context.Context, me, other string) (*msgmodel.ChatDigest, error) {
	if me == other {
		return nil, errs.ErrArgs.WithDetail("cannot target self")
	}
	row, err := s.contacts.GetBetween(ctx, me, other)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if row == nil || !row.Accepted {
		return nil, errs.ErrRecordAbsent.WithDetail("not a contact")
	}
	d, err := s.digestFor(ctx, me, row)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errs.ErrRecordAbsent.WithDetail("no messages")
	}
	return d, nil
}

func (s *Service) digestFor(ctx context.Context, me string, row *contactmodel.Contact) (*msgmodel.ChatDigest, error) {
	other := row.Other(me)
	last, err := s.store.Last(ctx, me, other)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if last == nil {
		return nil, nil // 没聊过，摘要里不出现
	}
	u, err := s.users.GetByID(ctx, other)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if u == nil {
		return nil, nil
	}

	alias := row.ToAlias
	if row.FromID == other {
		alias = row.FromAlias
	}
	return &msgmodel.ChatDigest{
		UserID:   other,
		Name:     alias,
		RealName: u.FullName(),
		Message:  last.Body,
		FromID:   last.FromID,
		State:    last.State,
		Ts:       last.Ts,
	}, nil
}
