package contact

import (
	"context"
	"testing"
	"time"

	contactmodel "ChatProject/module/contact/model"
	usermodel "ChatProject/module/user/model"
	"ChatProject/tools/errs"
)

type fakeStore struct {
	rows map[string]*contactmodel.Contact // id -> row
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]*contactmodel.Contact{}}
}

func (f *fakeStore) Insert(_ context.Context, c *contactmodel.Contact) error {
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetBetween(_ context.Context, a, b string) (*contactmodel.Contact, error) {
	for _, c := range f.rows {
		if (c.FromID == a && c.ToID == b) || (c.FromID == b && c.ToID == a) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetPendingFrom(_ context.Context, from, to string) (*contactmodel.Contact, error) {
	for _, c := range f.rows {
		if c.FromID == from && c.ToID == to && !c.Accepted {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SetAccepted(_ context.Context, id string) error {
	f.rows[id].Accepted = true
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) UpdateAlias(_ context.Context, id string, fromSide bool, alias string) error {
	if fromSide {
		f.rows[id].FromAlias = alias
	} else {
		f.rows[id].ToAlias = alias
	}
	return nil
}

func (f *fakeStore) UpdateColor(_ context.Context, id string, fromSide bool, color string) error {
	if fromSide {
		f.rows[id].FromColor = color
	} else {
		f.rows[id].ToColor = color
	}
	return nil
}

func (f *fakeStore) IsContact(ctx context.Context, a, b string) (bool, error) {
	c, _ := f.GetBetween(ctx, a, b)
	return c != nil && c.Accepted, nil
}

func (f *fakeStore) ListContacts(context.Context, string) ([]usermodel.Public, error) {
	return nil, nil
}

func (f *fakeStore) ListRequests(context.Context, string) ([]usermodel.Public, error) {
	return nil, nil
}

type fakeUsers struct{ known map[string]*usermodel.User }

func (f *fakeUsers) GetByID(_ context.Context, id string) (*usermodel.User, error) {
	return f.known[id], nil
}

type fakePresence struct {
	online bool
	active bool
}

func (f *fakePresence) IsOnline(context.Context, string) (bool, error) { return f.online, nil }
func (f *fakePresence) ActiveWithin(context.Context, string, time.Duration) (bool, error) {
	return f.active, nil
}

type fakeNotifier struct {
	calls []string // "user/event"
}

func (f *fakeNotifier) Notify(userID, event string, _ any) int {
	f.calls = append(f.calls, userID+"/"+event)
	return 1
}

func newTestService() (*Service, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	users := &fakeUsers{known: map[string]*usermodel.User{
		"u1": {ID: "u1", Firstname: "Ana", Surname: "Silva"},
		"u2": {ID: "u2", Firstname: "Rui", Surname: "Costa"},
	}}
	notifier := &fakeNotifier{}
	svc := NewService(store, users, &fakePresence{}, notifier)
	return svc, store, notifier
}

func TestAddCreatesPendingAndNotifiesOnce(t *testing.T) {
	svc, _, notifier := newTestService()

	c, err := svc.Add(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.Accepted {
		t.Errorf("new contact must start as pending")
	}
	if c.FromAlias != "Ana Silva" || c.ToAlias != "Rui Costa" {
		t.Errorf("aliases = %q / %q", c.FromAlias, c.ToAlias)
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "u2/request" {
		t.Fatalf("notify calls = %v, want exactly [u2/request]", notifier.calls)
	}
}

func TestAddRejectsSelfAndDuplicate(t *testing.T) {
	svc, _, notifier := newTestService()

	if _, err := svc.Add(context.Background(), "u1", "u1"); !errs.Is(err, errs.ErrArgs) {
		t.Errorf("self add: err = %v, want ErrArgs", err)
	}
	if _, err := svc.Add(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.Add(context.Background(), "u2", "u1"); !errs.Is(err, errs.ErrRecordIsExist) {
		t.Errorf("reverse duplicate: err = %v, want ErrRecordIsExist", err)
	}
	if len(notifier.calls) != 1 {
		t.Errorf("failed adds must not notify, calls = %v", notifier.calls)
	}
}

func TestAcceptNotifiesRequesterExactlyOnce(t *testing.T) {
	svc, _, notifier := newTestService()
	if _, err := svc.Add(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	notifier.calls = nil

	c, err := svc.Accept(context.Background(), "u2", "u1")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !c.Accepted {
		t.Errorf("contact must be accepted")
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "u1/contact" {
		t.Fatalf("notify calls = %v, want exactly [u1/contact]", notifier.calls)
	}
}

func TestAcceptRequiresPendingTowardsMe(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Add(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// 发起方不能替对方接受
	if _, err := svc.Accept(context.Background(), "u1", "u2"); !errs.Is(err, errs.ErrRecordAbsent) {
		t.Errorf("requester accept: err = %v, want ErrRecordAbsent", err)
	}
}

func TestRemoveDeletesRowAndNotifies(t *testing.T) {
	svc, store, notifier := newTestService()
	if _, err := svc.Add(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Accept(context.Background(), "u2", "u1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	notifier.calls = nil

	if _, err := svc.Remove(context.Background(), "u1", "u2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(store.rows) != 0 {
		t.Errorf("remove must hard-delete the relation row")
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "u2/removed" {
		t.Fatalf("notify calls = %v, want exactly [u2/removed]", notifier.calls)
	}

	// 重新加好友从默认值开始
	c, err := svc.Add(context.Background(), "u2", "u1")
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if c.Accepted || c.FromColor != defaultFromColor {
		t.Errorf("re-added contact = %+v, want fresh defaults", c)
	}
}

func TestRelationshipStates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rel, err := svc.Relationship(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Relationship: %v", err)
	}
	if rel.Contact || rel.Request {
		t.Errorf("no relation yet, got %+v", rel)
	}

	if _, err := svc.Add(ctx, "u1", "u2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	rel, _ = svc.Relationship(ctx, "u1", "u2")
	if !rel.Request || !rel.Type {
		t.Errorf("after add from u1: %+v, want outgoing request", rel)
	}
	rel, _ = svc.Relationship(ctx, "u2", "u1")
	if !rel.Request || rel.Type {
		t.Errorf("after add seen from u2: %+v, want incoming request", rel)
	}

	if _, err := svc.Accept(ctx, "u2", "u1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	rel, _ = svc.Relationship(ctx, "u1", "u2")
	if !rel.Contact || rel.Request {
		t.Errorf("after accept: %+v, want contact", rel)
	}
}

func TestColorsRelativeToCaller(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Add(ctx, "u1", "u2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Accept(ctx, "u2", "u1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	mine, err := svc.Colors(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}
	theirs, _ := svc.Colors(ctx, "u2", "u1")
	if mine.Me != theirs.Other || mine.Other != theirs.Me {
		t.Errorf("colors not symmetric: %+v vs %+v", mine, theirs)
	}
}

func TestOnlineFallsBackToActivityWindow(t *testing.T) {
	store := newFakeStore()
	users := &fakeUsers{known: map[string]*usermodel.User{
		"u1": {ID: "u1"}, "u2": {ID: "u2"},
	}}
	presence := &fakePresence{online: false, active: true}
	svc := NewService(store, users, presence, &fakeNotifier{})
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "u2"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Accept(ctx, "u2", "u1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	on, err := svc.Online(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Online: %v", err)
	}
	if !on {
		t.Errorf("recently active user should count as online")
	}

	presence.active = false
	on, _ = svc.Online(ctx, "u1", "u2")
	if on {
		t.Errorf("inactive offline user must not count as online")
	}
}
