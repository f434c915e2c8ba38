package group

import (
	"context"
	"strings"
	"time"

	groupmodel "ChatProject/module/group/model"
	usermodel "ChatProject/module/user/model"
	"ChatProject/service/chat"
	"ChatProject/tools/errs"
	"ChatProject/tools/ids"
)

// Store 群组表依赖；pgstore.GroupStore 实现
type Store interface {
	Insert(ctx context.Context, g *groupmodel.Group) error
	GetByID(ctx context.Context, id string) (*groupmodel.Group, error)
	InsertMember(ctx context.Context, m *groupmodel.GroupMember) error
	GetMember(ctx context.Context, groupID, userID string) (*groupmodel.GroupMember, error)
	DeleteMember(ctx context.Context, id string) error
	UpdateAdmin(ctx context.Context, groupID, adminID string) error
	ListMemberIDs(ctx context.Context, groupID string) ([]string, error)
}

// Users 用户档案子集
type Users interface {
	GetByID(ctx context.Context, id string) (*usermodel.User, error)
}

// Contacts 联系人关系子集；只能拉自己的联系人进群
type Contacts interface {
	IsContact(ctx context.Context, a, b string) (bool, error)
}

// Notifier 事件推送
type Notifier interface {
	Notify(userID, event string, payload any) int
	NotifyMany(userIDs []string, event string, payload any)
}

type Service struct {
	store    Store
	users    Users
	contacts Contacts
	notifier Notifier
}

func NewService(store Store, users Users, contacts Contacts, notifier Notifier) *Service {
	return &Service{store: store, users: users, contacts: contacts, notifier: notifier}
}

// Create 建群；创建者即管理员，不占成员表一行
func (s *Service) Create(ctx context.Context, me, name string) (*groupmodel.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.ErrArgs.WithDetail("empty group name")
	}
	g := &groupmodel.Group{
		ID:         ids.GenerateString(),
		Name:       name,
		Photo:      "default.png",
		AdminID:    me,
		CreateTime: time.Now(),
	}
	if err := s.store.Insert(ctx, g); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	return g, nil
}

// mustAdmin 群存在且 me 是管理员
func (s *Service) mustAdmin(ctx context.Context, me, groupID string) (*groupmodel.Group, error) {
	g, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if g == nil {
		return nil, errs.ErrRecordAbsent.WithDetail("group not found")
	}
	if g.AdminID != me {
		return nil, errs.ErrNotPermitted.WithDetail("not the group admin")
	}
	return g, nil
}

// AddMember 管理员拉自己的联系人进群；全群收到一次 group 事件
func (s *Service) AddMember(ctx context.Context, me, groupID, userID string) (*groupmodel.GroupMember, error) {
	if me == userID {
		return nil, errs.ErrArgs.WithDetail("cannot add self")
	}
	g, err := s.mustAdmin(ctx, me, groupID)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if u == nil {
		return nil, errs.ErrRecordAbsent.WithDetail("user not found")
	}
	isContact, err := s.contacts.IsContact(ctx, me, userID)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if !isContact {
		return nil, errs.ErrNotPermitted.WithDetail("can only add contacts")
	}
	if existing, err := s.store.GetMember(ctx, groupID, userID); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	} else if existing != nil {
		return nil, errs.ErrRecordIsExist.WithDetail("already a member")
	}

	m := &groupmodel.GroupMember{
		ID:      ids.GenerateString(),
		GroupID: groupID,
		UserID:  userID,
	}
	if err := s.store.InsertMember(ctx, m); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}

	s.broadcast(ctx, g, groupmodel.MemberEvent{GroupID: groupID, UserID: userID, Action: "added"})
	return m, nil
}

// RemoveMember 管理员移除成员；全群（含被移除者）收到一次 group 事件
func (s *Service) RemoveMember(ctx context.Context, me, groupID, userID string) (*groupmodel.GroupMember, error) {
	if me == userID {
		return nil, errs.ErrArgs.WithDetail("cannot remove self")
	}
	g, err := s.mustAdmin(ctx, me, groupID)
	if err != nil {
		return nil, err
	}

	m, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if m == nil {
		return nil, errs.ErrRecordAbsent.WithDetail("not a member")
	}
	if err := s.store.DeleteMember(ctx, m.ID); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}

	s.broadcast(ctx, g, groupmodel.MemberEvent{GroupID: groupID, UserID: userID, Action: "removed"})
	s.notifier.Notify(userID, chat.EventGroup,
		groupmodel.MemberEvent{GroupID: groupID, UserID: userID, Action: "removed"})
	return m, nil
}

// Leave 成员退群；剩余成员收到一次 group 事件
func (s *Service) Leave(ctx context.Context, me, groupID string) (*groupmodel.GroupMember, error) {
	g, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if g == nil {
		return nil, errs.ErrRecordAbsent.WithDetail("group not found")
	}

	m, err := s.store.GetMember(ctx, groupID, me)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if m == nil {
		return nil, errs.ErrRecordAbsent.WithDetail("not a member")
	}
	if err := s.store.DeleteMember(ctx, m.ID); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}

	s.broadcast(ctx, g, groupmodel.MemberEvent{GroupID: groupID, UserID: me, Action: "left"})
	return m, nil
}

// ChangeAdmin 移交管理员：新管理员退出成员表，旧管理员补进去
func (s *Service) ChangeAdmin(ctx context.Context, me, groupID, userID string) error {
	if me == userID {
		return errs.ErrArgs.WithDetail("already the admin")
	}
	g, err := s.mustAdmin(ctx, me, groupID)
	if err != nil {
		return err
	}

	m, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}
	if m == nil {
		return errs.ErrRecordAbsent.WithDetail("not a member")
	}
	if err := s.store.DeleteMember(ctx, m.ID); err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}
	if err := s.store.InsertMember(ctx, &groupmodel.GroupMember{
		ID:      ids.GenerateString(),
		GroupID: groupID,
		UserID:  me,
	}); err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}
	if err := s.store.UpdateAdmin(ctx, groupID, userID); err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}

	s.broadcast(ctx, g, groupmodel.MemberEvent{GroupID: groupID, UserID: userID, Action: "admin"})
	return nil
}

// broadcast 给全群（成员 + 管理员）推 group 事件
func (s *Service) broadcast(ctx context.Context, g *groupmodel.Group, ev groupmodel.MemberEvent) {
	members, err := s.store.ListMemberIDs(ctx, g.ID)
	if err != nil {
		// 成员表读不出来就只能放弃广播，业务写入已经完成
		return
	}
	recipients := append(members, g.AdminID)
	s.notifier.NotifyMany(recipients, chat.EventGroup, ev)
}
