package security

import (
	"crypto/rand"
	"crypto/rsa"
	"path/filepath"
	"testing"
	"time"
)

func newKeys(t *testing.T) *KeyPair {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &KeyPair{Pub: &priv.PublicKey, Priv: priv}
}

func TestGenerateVerifyRoundtrip(t *testing.T) {
	kp := newKeys(t)
	token, expireAt, err := Generate(kp, DefaultOptions(), "u1", "u1@test")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if time.Until(expireAt) < 9*time.Hour {
		t.Errorf("expireAt too soon: %v", expireAt)
	}

	claims, err := Verify(kp.Pub, token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "u1@test" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	kp := newKeys(t)
	other := newKeys(t)
	token, _, err := Generate(kp, DefaultOptions(), "u1", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := Verify(other.Pub, token); err == nil {
		t.Fatalf("token signed with another key must fail verification")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	kp := newKeys(t)
	token, _, err := Generate(kp, Options{TTL: -time.Minute}, "u1", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := Verify(kp.Pub, token); err == nil {
		t.Fatalf("expired token must fail verification")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	kp := newKeys(t)
	if _, err := Verify(kp.Pub, "not.a.token"); err == nil {
		t.Fatalf("garbage token must fail verification")
	}
}

func TestLoadKeyPairGeneratesAndReloads(t *testing.T) {
	dir := t.TempDir()
	pubFile := filepath.Join(dir, "pub.pem")
	privFile := filepath.Join(dir, "priv.pem")

	first, err := LoadKeyPair(pubFile, privFile)
	if err != nil {
		t.Fatalf("LoadKeyPair (generate): %v", err)
	}
	second, err := LoadKeyPair(pubFile, privFile)
	if err != nil {
		t.Fatalf("LoadKeyPair (reload): %v", err)
	}
	if first.Pub.N.Cmp(second.Pub.N) != 0 {
		t.Fatalf("reload must return the same key")
	}

	// 跨次加载签发/校验要互通
	token, _, err := Generate(first, DefaultOptions(), "u1", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := Verify(second.Pub, token); err != nil {
		t.Fatalf("Verify with reloaded key: %v", err)
	}
}
