package contact

import (
	"context"
	"time"

	contactmodel "ChatProject/module/contact/model"
	usermodel "ChatProject/module/user/model"
	"ChatProject/service/chat"
	"ChatProject/service/storage"
	"ChatProject/tools/errs"
	"ChatProject/tools/ids"
)

// 新关系的默认气泡颜色（申请方 / 接收方）
const (
	defaultFromColor = "#987654"
	defaultToColor   = "#123456"
)

// Store 联系人表依赖；pgstore.ContactStore 实现
type Store interface {
	Insert(ctx context.Context, c *contactmodel.Contact) error
	GetBetween(ctx context.Context, a, b string) (*contactmodel.Contact, error)
	GetPendingFrom(ctx context.Context, from, to string) (*contactmodel.Contact, error)
	SetAccepted(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	UpdateAlias(ctx context.Context, id string, fromSide bool, alias string) error
	UpdateColor(ctx context.Context, id string, fromSide bool, color string) error
	IsContact(ctx context.Context, a, b string) (bool, error)
	ListContacts(ctx context.Context, userID string) ([]usermodel.Public, error)
	ListRequests(ctx context.Context, userID string) ([]usermodel.Public, error)
}

// Users 用户表子集
type Users interface {
	GetByID(ctx context.Context, id string) (*usermodel.User, error)
}

// Presence 在线查询
type Presence interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
	ActiveWithin(ctx context.Context, userID string, window time.Duration) (bool, error)
}

// Notifier 事件推送；投递失败不影响业务结果
type Notifier interface {
	Notify(userID, event string, payload any) int
}

type Service struct {
	store    Store
	users    Users
	presence Presence
	notifier Notifier
}

func NewService(store Store, users Users, presence Presence, notifier Notifier) *Service {
	return &Service{store: store, users: users, presence: presence, notifier: notifier}
}

// bothUsers 两个ID都必须是存在的不同用户
func (s *Service) bothUsers(ctx context.Context, me, other string) (*usermodel.User, *usermodel.User, error) {
	if me == other {
		return nil, nil, errs.ErrArgs.WithDetail("cannot target self")
	}
	a, err := s.users.GetByID(ctx, me)
	if err != nil {
		return nil, nil, errs.ErrInternal.WithDetail(err.Error())
	}
	b, err := s.users.GetByID(ctx, other)
	if err != nil {
		return nil, nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if a == nil || b == nil {
		return nil, nil, errs.ErrRecordAbsent.WithDetail("user not found")
	}
	return a, b, nil
}

// Add 发起好友申请；对端收到一次 request 事件
func (s *Service) Add(ctx context.Context, me, other string) (*contactmodel.Contact, error) {
	meUser, otherUser, err := s.bothUsers(ctx, me, other)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetBetween(ctx, me, other)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if existing != nil {
		return nil, errs.ErrRecordIsExist.WithDetail("contact or request already exists")
	}

	c := &contactmodel.Contact{
		ID:         ids.GenerateString(),
		FromID:     me,
		ToID:       other,
		Accepted:   false,
		FromAlias:  meUser.FullName(),
		ToAlias:    otherUser.FullName(),
		FromColor:  defaultFromColor,
		ToColor:    defaultToColor,
		CreateTime: time.Now(),
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}

	s.notifier.Notify(other, chat.EventRequest, me)
	return c, nil
}

// Accept 接受 other 发给我的申请；对端收到一次 contact 事件
func (s *Service) Accept(ctx context.Context, me, other string) (*contactmodel.Contact, error) {
	if _, _, err := s.bothUsers(ctx, me, other); err != nil {
		return nil, err
	}

	pending, err := s.store.GetPendingFrom(ctx, other, me)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if pending == nil {
		return nil, errs.ErrRecordAbsent.WithDetail("no pending request")
	}
	if err := s.store.SetAccepted(ctx, pending.ID); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	pending.Accepted = true

	s.notifier.Notify(other, chat.EventContact, me)
	return pending, nil
}

// Decline 拒绝申请（任一方向的待处理记录），硬删除
func (s *Service) Decline(ctx context.Context, me, other string) (*contactmodel.Contact, error) {
	if _, _, err := s.bothUsers(ctx, me, other); err != nil {
		return nil, err
	}

	existing, err := s.store.GetBetween(ctx, me, other)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if existing == nil || existing.Accepted {
		return nil, errs.ErrRecordAbsent.WithDetail("no pending request")
	}
	if err := s.store.Delete(ctx, existing.ID); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	return existing, nil
}

// Remove 删除已接受的联系人；对端收到一次 removed 事件。
// 关系行直接删掉，别名颜色不保留，重新加好友从默认值开始。
func (s *Service) Remove(ctx context.Context, me, other string) (*contactmodel.Contact, error) {
	if _, _, err := s.bothUsers(ctx, me, other); err != nil {
		return nil, err
	}

	existing, err := s.store.GetBetween(ctx, me, other)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if existing == nil || !existing.Accepted {
		return nil, errs.ErrRecordAbsent.WithDetail("not a contact")
	}
	if err := s.store.Delete(ctx, existing.ID); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}

	s.notifier.Notify(other, chat.EventRemoved, me)
	return existing, nil
}

// acceptedBetween 已接受关系行；没有则 ErrRecordAbsent
func (s *Service) acceptedBetween(ctx context.Context, me, other string) (*contactmodel.Contact, error) {
	if _, _, err := s.bothUsers(ctx, me, other); err != nil {
		return nil, err
	}
	existing, err := s.store.GetBetween(ctx, me, other)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if existing == nil || !existing.Accepted {
		return nil, errs.ErrRecordAbsent.WithDetail("not a contact")
	}
	return existing, nil
}

// SetAlias 改 idToChange 那一侧的显示别名
func (s *Service) SetAlias(ctx context.Context, me, other, idToChange, alias string) (*contactmodel.Contact, error) {
	c, err := s.acceptedBetween(ctx, me, other)
	if err != nil {
		return nil, err
	}
	fromSide := c.FromID == idToChange
	if err := s.store.UpdateAlias(ctx, c.ID, fromSide, alias); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if fromSide {
		c.FromAlias = alias
	} else {
		c.ToAlias = alias
	}
	return c, nil
}

// SetColor 改 idToChange 那一侧的气泡颜色
func (s *Service) SetColor(ctx context.Context, me, other, idToChange, color string) (*contactmodel.Contact, error) {
	c, err := s.acceptedBetween(ctx, me, other)
	if err != nil {
		return nil, err
	}
	fromSide := c.FromID == idToChange
	if err := s.store.UpdateColor(ctx, c.ID, fromSide, color); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if fromSide {
		c.FromColor = color
	} else {
		c.ToColor = color
	}
	return c, nil
}

// Relationship 我和 other 的关系状态
func (s *Service) Relationship(ctx context.Context, me, other string) (*contactmodel.Relationship, error) {
	if _, _, err := s.bothUsers(ctx, me, other); err != nil {
		return nil, err
	}
	existing, err := s.store.GetBetween(ctx, me, other)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	rel := &contactmodel.Relationship{}
	switch {
	case existing == nil:
	case existing.Accepted:
		rel.Contact = true
	default:
		rel.Request = true
		rel.Type = existing.FromID == me
	}
	return rel, nil
}

func (s *Service) Requests(ctx context.Context, me string) ([]usermodel.Public, error) {
	out, err := s.store.ListRequests(ctx, me)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	return out, nil
}

func (s *Service) Contacts(ctx context.Context, me string) ([]usermodel.Public, error) {
	out, err := s.store.ListContacts(ctx, me)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	return out, nil
}

func (s *Service) GetContact(ctx context.Context, me, other string) (*contactmodel.Contact, error) {
	return s.acceptedBetween(ctx, me, other)
}

// Colors 双方气泡颜色，相对查询者
func (s *Service) Colors(ctx context.Context, me, other string) (*contactmodel.Colors, error) {
	c, err := s.acceptedBetween(ctx, me, other)
	if err != nil {
		return nil, err
	}
	if c.FromID == me {
		return &contactmodel.Colors{Me: c.FromColor, Other: c.ToColor}, nil
	}
	return &contactmodel.Colors{Me: c.ToColor, Other: c.FromColor}, nil
}

// Online 联系人是否在线：有活的 socket 连接，或最近活动在窗口内
func (s *Service) Online(ctx context.Context, me, other string) (bool, error) {
	if _, err := s.acceptedBetween(ctx, me, other); err != nil {
		return false, err
	}
	live, err := s.presence.IsOnline(ctx, other)
	if err != nil {
		return false, errs.ErrInternal.WithDetail(err.Error())
	}
	if live {
		return true, nil
	}
	active, err := s.presence.ActiveWithin(ctx, other, storage.OnlineWindow)
	if err != nil {
		return false, errs.ErrInternal.WithDetail(err.Error())
	}
	return active, nil
}
