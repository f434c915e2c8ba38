package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Options 控制签名与TTL等参数。凭证使用 RSA 非对称签名：
// 私钥只在签发端，推送网关只需要公钥即可校验。
type Options struct {
	TTL time.Duration // 令牌有效期（默认 10h）
}

func DefaultOptions() Options {
	return Options{TTL: 10 * time.Hour}
}

// KeyPair RSA 密钥对
type KeyPair struct {
	Pub  *rsa.PublicKey
	Priv *rsa.PrivateKey
}

// Claims 凭证声明；id 为用户ID
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

// LoadKeyPair 读取 PEM 密钥文件；文件不存在时生成 2048 位密钥对并落盘。
func LoadKeyPair(pubFile, privFile string) (*KeyPair, error) {
	if fileExists(pubFile) && fileExists(privFile) {
		return readKeyPair(pubFile, privFile)
	}
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, errors.Wrap(err, "generate rsa key")
	}
	privDer, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, errors.Wrap(err, "marshal private key")
	}
	pubDer, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "marshal public key")
	}
	privPem := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDer})
	pubPem := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDer})
	if err := os.WriteFile(privFile, privPem, 0o600); err != nil {
		return nil, errors.Wrap(err, "write private key")
	}
	if err := os.WriteFile(pubFile, pubPem, 0o644); err != nil {
		return nil, errors.Wrap(err, "write public key")
	}
	return &KeyPair{Pub: &priv.PublicKey, Priv: priv}, nil
}

func readKeyPair(pubFile, privFile string) (*KeyPair, error) {
	pubPem, err := os.ReadFile(pubFile)
	if err != nil {
		return nil, errors.Wrap(err, "read public key")
	}
	privPem, err := os.ReadFile(privFile)
	if err != nil {
		return nil, errors.Wrap(err, "read private key")
	}
	pub, err := jwtlib.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, errors.Wrap(err, "parse public key")
	}
	priv, err := jwtlib.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return &KeyPair{Pub: pub, Priv: priv}, nil
}

// Generate 签发 RS256 令牌
func Generate(kp *KeyPair, opts Options, userID, email string) (token string, expireAt time.Time, err error) {
	if kp == nil || kp.Priv == nil {
		return "", time.Time{}, errors.New("private key missing")
	}
	if opts.TTL == 0 {
		opts.TTL = 10 * time.Hour
	}
	now := time.Now()
	exp := now.Add(opts.TTL)

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
			Subject:   userID,
		},
	}

	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	signed, err := tok.SignedString(kp.Priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify 校验令牌并提取声明。过期、签名错误、格式错误都作为普通 error 返回。
func Verify(pub *rsa.PublicKey, token string) (*Claims, error) {
	if pub == nil {
		return nil, errors.New("public key missing")
	}
	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		// 仅允许 RSA 家族
		if _, ok := t.Method.(*jwtlib.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return pub, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token missing id claim")
	}
	return claims, nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
