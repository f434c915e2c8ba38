package chat

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"ChatProject/tools/security"
)

func testKeys(t *testing.T) *security.KeyPair {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &security.KeyPair{Pub: &priv.PublicKey, Priv: priv}
}

func TestAdmitValidToken(t *testing.T) {
	kp := testKeys(t)
	reg := NewRegistry()
	a := NewAuthenticator(kp.Pub, reg, nil)

	token, _, err := security.Generate(kp, security.DefaultOptions(), "u1", "u1@test")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	c := newTestClient("c1")
	uid, ok := a.Admit(context.Background(), c, token)
	if !ok || uid != "u1" {
		t.Fatalf("Admit = (%q, %v), want (u1, true)", uid, ok)
	}
	if !reg.IsOnline("u1") {
		t.Fatalf("u1 should be registered after admission")
	}
}

func TestAdmitRejectsSilently(t *testing.T) {
	kp := testKeys(t)
	reg := NewRegistry()
	a := NewAuthenticator(kp.Pub, reg, nil)

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"wrong-key": mustToken(t, testKeys(t), "u1"),
	}
	for name, token := range cases {
		c := newTestClient("c-" + name)
		uid, ok := a.Admit(context.Background(), c, token)
		if ok || uid != "" {
			t.Errorf("%s: Admit = (%q, %v), want rejection", name, uid, ok)
		}
		if c.UserID != "" {
			t.Errorf("%s: client must stay unauthenticated", name)
		}
	}
	if reg.Connections() != 0 {
		t.Fatalf("registry must stay empty after rejected admissions")
	}
}

func TestAdmitRejectsExpiredToken(t *testing.T) {
	kp := testKeys(t)
	reg := NewRegistry()
	a := NewAuthenticator(kp.Pub, reg, nil)

	token, _, err := security.Generate(kp, security.Options{TTL: -time.Minute}, "u1", "")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, ok := a.Admit(context.Background(), newTestClient("c1"), token); ok {
		t.Fatalf("expired token must be rejected")
	}
}

func mustToken(t *testing.T, kp *security.KeyPair, uid string) string {
	t.Helper()
	token, _, err := security.Generate(kp, security.DefaultOptions(), uid, "")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}
