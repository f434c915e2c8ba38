package message

import (
	"context"
	"testing"

	contactmodel "ChatProject/module/contact/model"
	msgmodel "ChatProject/module/message/model"
	usermodel "ChatProject/module/user/model"
	"ChatProject/tools/errs"
)

type fakeMsgStore struct {
	msgs []msgmodel.Message
}

func (f *fakeMsgStore) Insert(_ context.Context, m *msgmodel.Message) error {
	f.msgs = append(f.msgs, *m)
	return nil
}

func (f *fakeMsgStore) List(_ context.Context, a, b, beforeID string, limit int64) ([]msgmodel.Message, error) {
	var out []msgmodel.Message
	for _, m := range f.msgs {
		pair := (m.FromID == a && m.ToID == b) || (m.FromID == b && m.ToID == a)
		if pair && (beforeID == "" || m.ID < beforeID) {
			out = append(out, m)
		}
	}
	if int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (f *fakeMsgStore) Last(_ context.Context, a, b string) (*msgmodel.Message, error) {
	for i := len(f.msgs) - 1; i >= 0; i-- {
		m := f.msgs[i]
		if (m.FromID == a && m.ToID == b) || (m.FromID == b && m.ToID == a) {
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeMsgStore) MarkReceived(_ context.Context, me, other string) (bool, error) {
	changed := false
	for i := range f.msgs {
		m := &f.msgs[i]
		if m.FromID == other && m.ToID == me && m.State == msgmodel.StateSent {
			m.State = msgmodel.StateReceived
			changed = true
		}
	}
	return changed, nil
}

func (f *fakeMsgStore) MarkRead(_ context.Context, me, other string) (bool, error) {
	changed := false
	for i := range f.msgs {
		m := &f.msgs[i]
		if m.FromID == other && m.ToID == me && m.State != msgmodel.StateRead {
			m.State = msgmodel.StateRead
			changed = true
		}
	}
	return changed, nil
}

type fakeContacts struct {
	rows []contactmodel.Contact
}

func (f *fakeContacts) IsContact(_ context.Context, a, b string) (bool, error) {
	for _, c := range f.rows {
		if c.Accepted && ((c.FromID == a && c.ToID == b) || (c.FromID == b && c.ToID == a)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContacts) ListAcceptedRows(_ context.Context, userID string) ([]contactmodel.Contact, error) {
	var out []contactmodel.Contact
	for _, c := range f.rows {
		if c.Accepted && (c.FromID == userID || c.ToID == userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContacts) GetBetween(_ context.Context, a, b string) (*contactmodel.Contact, error) {
	for _, c := range f.rows {
		if (c.FromID == a && c.ToID == b) || (c.FromID == b && c.ToID == a) {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeUsers struct{ known map[string]*usermodel.User }

func (f *fakeUsers) GetByID(_ context.Context, id string) (*usermodel.User, error) {
	return f.known[id], nil
}

type fakeNotifier struct {
	calls     []string // "user/event"
	delivered int      // 每次 Notify 的返回值
}

func (f *fakeNotifier) Notify(userID, event string, _ any) int {
	f.calls = append(f.calls, userID+"/"+event)
	return f.delivered
}

func newTestService() (*Service, *fakeMsgStore, *fakeNotifier) {
	store := &fakeMsgStore{}
	contacts := &fakeContacts{rows: []contactmodel.Contact{
		{ID: "r1", FromID: "u1", ToID: "u2", Accepted: true, FromAlias: "Ana Silva", ToAlias: "Rui Costa"},
	}}
	users := &fakeUsers{known: map[string]*usermodel.User{
		"u1": {ID: "u1", Firstname: "Ana", Surname: "Silva"},
		"u2": {ID: "u2", Firstname: "Rui", Surname: "Costa"},
	}}
	notifier := &fakeNotifier{}
	return NewService(store, contacts, users, notifier), store, notifier
}

func TestSendPersistsAndNotifies(t *testing.T) {
	svc, store, notifier := newTestService()

	m, err := svc.Send(context.Background(), "u1", "u2", "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.State != msgmodel.StateSent || m.ID == "" {
		t.Errorf("message = %+v", m)
	}
	if len(store.msgs) != 1 {
		t.Fatalf("stored %d messages, want 1", len(store.msgs))
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "u2/message" {
		t.Fatalf("notify calls = %v, want [u2/message]", notifier.calls)
	}
}

func TestSendToOfflineContactStillSucceeds(t *testing.T) {
	svc, store, notifier := newTestService()
	notifier.delivered = 0 // 对端离线，投递数为 0

	m, err := svc.Send(context.Background(), "u1", "u2", "hello")
	if err != nil {
		t.Fatalf("Send to offline contact: %v", err)
	}
	if m == nil || len(store.msgs) != 1 {
		t.Fatalf("message must be persisted regardless of delivery")
	}
}

func TestSendRequiresContact(t *testing.T) {
	svc, _, notifier := newTestService()

	if _, err := svc.Send(context.Background(), "u1", "stranger", "hi"); !errs.Is(err, errs.ErrRecordAbsent) {
		t.Errorf("err = %v, want ErrRecordAbsent", err)
	}
	if _, err := svc.Send(context.Background(), "u1", "u1", "hi"); !errs.Is(err, errs.ErrArgs) {
		t.Errorf("self send: err = %v, want ErrArgs", err)
	}
	if _, err := svc.Send(context.Background(), "u1", "u2", "   "); !errs.Is(err, errs.ErrArgs) {
		t.Errorf("blank body: err = %v, want ErrArgs", err)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("failed sends must not notify, calls = %v", notifier.calls)
	}
}

func TestReceiveNotifiesOnlyOnChange(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "u1", "u2", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	notifier.calls = nil

	// u2 上线领取，u1 收到一次 received
	if err := svc.Receive(ctx, "u2", "u1"); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "u1/received" {
		t.Fatalf("notify calls = %v, want [u1/received]", notifier.calls)
	}

	// 没有新消息时不再通知
	notifier.calls = nil
	if err := svc.Receive(ctx, "u2", "u1"); err != nil {
		t.Fatalf("Receive (idempotent): %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("no state change must mean no notify, calls = %v", notifier.calls)
	}
}

func TestReadTransitionsAndNotifies(t *testing.T) {
	svc, store, notifier := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "u1", "u2", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	notifier.calls = nil

	if err := svc.Read(ctx, "u2", "u1"); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if store.msgs[0].State != msgmodel.StateRead {
		t.Errorf("state = %q, want read", store.msgs[0].State)
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "u1/read" {
		t.Fatalf("notify calls = %v, want [u1/read]", notifier.calls)
	}
}

func TestDigestsSkipContactsWithoutMessages(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	out, err := svc.Digests(ctx, "u1")
	if err != nil {
		t.Fatalf("Digests: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("no chats yet, digests = %v", out)
	}

	if _, err := svc.Send(ctx, "u1", "u2", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	out, err = svc.Digests(ctx, "u1")
	if err != nil {
		t.Fatalf("Digests: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("digests = %v, want 1 entry", out)
	}
	d := out[0]
	if d.UserID != "u2" || d.Name != "Rui Costa" || d.RealName != "Rui Costa" || d.Message != "hello" {
		t.Errorf("digest = %+v", d)
	}
}

func TestListPagesBackwards(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, body := range []string{"one", "two", "three"} {
		if _, err := svc.Send(ctx, "u1", "u2", body); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	page, err := svc.List(ctx, "u2", "u1", "-1", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].Body != "two" || page[1].Body != "three" {
		t.Fatalf("latest page = %v", page)
	}

	older, err := svc.List(ctx, "u2", "u1", page[0].ID, 2)
	if err != nil {
		t.Fatalf("List older: %v", err)
	}
	if len(older) != 1 || older[0].Body != "one" {
		t.Fatalf("older page = %v", older)
	}
}
