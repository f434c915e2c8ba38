package chat

import (
	"fmt"
	"sync"
	"testing"
)

func newTestClient(connID string) *Client {
	return NewClient(connID, nil, 4)
}

func TestAdmitAndIsOnline(t *testing.T) {
	reg := NewRegistry()
	if reg.IsOnline("u1") {
		t.Fatalf("expected u1 offline before admit")
	}

	c := newTestClient("c1")
	reg.Admit("u1", c)

	if !reg.IsOnline("u1") {
		t.Fatalf("expected u1 online after admit")
	}
	if c.UserID != "u1" {
		t.Errorf("client UserID = %q, want u1", c.UserID)
	}
	if got := len(reg.ConnectionsFor("u1")); got != 1 {
		t.Errorf("ConnectionsFor(u1) = %d conns, want 1", got)
	}
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	reg := NewRegistry()
	c1 := newTestClient("c1")
	c2 := newTestClient("c2")
	reg.Admit("u1", c1)
	reg.Admit("u1", c2)

	if got := len(reg.ConnectionsFor("u1")); got != 2 {
		t.Fatalf("ConnectionsFor(u1) = %d conns, want 2", got)
	}

	// 关一个设备，另一个不受影响
	reg.Remove(c1)
	if !reg.IsOnline("u1") {
		t.Fatalf("u1 should stay online while c2 lives")
	}
	reg.Remove(c2)
	if reg.IsOnline("u1") {
		t.Fatalf("u1 should be offline after last conn removed")
	}
	if reg.OnlineUsers() != 0 || reg.Connections() != 0 {
		t.Errorf("registry not empty: users=%d conns=%d", reg.OnlineUsers(), reg.Connections())
	}
}

func TestAdmitIdempotentReplace(t *testing.T) {
	reg := NewRegistry()
	c := newTestClient("c1")
	reg.Admit("u1", c)
	reg.Admit("u1", c) // 重复 admit 同一连接

	if got := len(reg.ConnectionsFor("u1")); got != 1 {
		t.Fatalf("duplicate admit must not duplicate the slot, got %d", got)
	}
}

func TestAdmitMovesConnBetweenUsers(t *testing.T) {
	reg := NewRegistry()
	c := newTestClient("c1")
	reg.Admit("u1", c)
	reg.Admit("u2", c)

	if reg.IsOnline("u1") {
		t.Errorf("u1 should be offline after conn moved to u2")
	}
	if !reg.IsOnline("u2") {
		t.Errorf("u2 should be online")
	}
	if c.UserID != "u2" {
		t.Errorf("client UserID = %q, want u2", c.UserID)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	reg := NewRegistry()
	reg.Remove(nil)
	reg.Remove(newTestClient("never-admitted"))

	// 同 conn_id 的陈旧指针也不能误删在册连接
	live := newTestClient("c1")
	reg.Admit("u1", live)
	stale := newTestClient("c1")
	stale.UserID = "u1"
	reg.Remove(stale)

	if !reg.IsOnline("u1") {
		t.Fatalf("stale pointer remove must not evict the live connection")
	}
}

func TestConnectionsForOffline(t *testing.T) {
	reg := NewRegistry()
	if conns := reg.ConnectionsFor("nobody"); conns != nil {
		t.Fatalf("offline user must yield empty set, got %v", conns)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := fmt.Sprintf("u%d", i%4)
			c := newTestClient(fmt.Sprintf("c%d", i))
			reg.Admit(uid, c)
			reg.IsOnline(uid)
			reg.ConnectionsFor(uid)
			reg.Remove(c)
		}(i)
	}
	wg.Wait()

	if reg.Connections() != 0 {
		t.Fatalf("expected empty registry, got %d conns", reg.Connections())
	}
}
