package chat

import (
	"context"
	"crypto/rsa"

	"ChatProject/logger"
	"ChatProject/metrics"
	security "ChatProject/tools/security"
)

// PresenceStore mirrors admissions into the shared presence cache so other
// nodes can answer IsOnline. Both calls are best effort.
type PresenceStore interface {
	Online(ctx context.Context, userID, connID string) error
	Offline(ctx context.Context, userID, connID string) error
}

// Authenticator gates admission to the registry. The credential arrives as
// the first payload after connect, not at handshake time.
type Authenticator struct {
	pub      *rsa.PublicKey
	reg      *Registry
	presence PresenceStore // nil 时跳过共享在线状态
}

func NewAuthenticator(pub *rsa.PublicKey, reg *Registry, presence PresenceStore) *Authenticator {
	return &Authenticator{pub: pub, reg: reg, presence: presence}
}

// Admit verifies the presented credential and on success registers the
// connection under the verified identity. Any failure (malformed token, bad
// signature, expired) leaves the connection open but unauthenticated and
// unregistered; nothing is echoed back to the client.
func (a *Authenticator) Admit(ctx context.Context, c *Client, token string) (string, bool) {
	if c == nil || token == "" {
		metrics.AuthFailures.Inc()
		return "", false
	}
	claims, err := security.Verify(a.pub, token)
	if err != nil {
		logger.Debugf("[auth] reject conn=%s: %v", c.ConnID, err)
		metrics.AuthFailures.Inc()
		return "", false
	}

	a.reg.Admit(claims.UserID, c)
	metrics.WSConnections.Inc()
	metrics.OnlineUsers.Set(float64(a.reg.OnlineUsers()))

	if a.presence != nil {
		if err := a.presence.Online(ctx, claims.UserID, c.ConnID); err != nil {
			logger.Warnf("[auth] presence online user=%s: %v", claims.UserID, err)
		}
	}
	logger.Infof("[auth] admitted user=%s conn=%s", claims.UserID, c.ConnID)
	return claims.UserID, true
}
