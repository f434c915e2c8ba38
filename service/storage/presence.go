package storage

import (
	"context"
	"strconv"
	"time"

	redisc "ChatProject/service/storage/redis"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// OnlineWindow 软在线判定窗口：最近一次 REST 活动在窗口内即视为活跃。
// 与实时 socket 在线态相互独立（历史上存在 120s/300s 两套口径，统一为 120s）。
const OnlineWindow = 120 * time.Second

// presence key: im:presence:<user>  成员为该用户的 conn_id 集合
// activity key: im:lastactive:<user>  值为 unix 秒
func presenceKey(user string) string { return "im:presence:" + user }
func activityKey(user string) string { return "im:lastactive:" + user }

const activityTTL = 24 * time.Hour

// PresenceStore keeps the shared (cross-node) view of live connections plus
// the softer last-activity signal. The in-process registry stays the source
// of truth for local fan-out; this cache only answers remote lookups.
type PresenceStore struct {
	rdb *redis.Client
}

func NewPresenceStore() *PresenceStore {
	return &PresenceStore{rdb: redisc.GetRedis()}
}

// Online 登记一条已授权连接，并顺带刷新活跃时间
func (p *PresenceStore) Online(ctx context.Context, userID, connID string) error {
	if p.rdb == nil {
		return errors.New("redis not initialized")
	}
	pipe := p.rdb.Pipeline()
	pipe.SAdd(ctx, presenceKey(userID), connID)
	pipe.Set(ctx, activityKey(userID), strconv.FormatInt(time.Now().Unix(), 10), activityTTL)
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "presence online")
}

// Offline 注销一条连接；最后一条连接离线时清掉集合
func (p *PresenceStore) Offline(ctx context.Context, userID, connID string) error {
	if p.rdb == nil {
		return errors.New("redis not initialized")
	}
	if err := p.rdb.SRem(ctx, presenceKey(userID), connID).Err(); err != nil {
		return errors.Wrap(err, "presence offline")
	}
	n, err := p.rdb.SCard(ctx, presenceKey(userID)).Result()
	if err != nil {
		return errors.Wrap(err, "presence card")
	}
	if n == 0 {
		return errors.Wrap(p.rdb.Del(ctx, presenceKey(userID)).Err(), "presence del")
	}
	return nil
}

// IsOnline 共享视角的实时在线：任一节点有活连接即在线
func (p *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	if p.rdb == nil {
		return false, errors.New("redis not initialized")
	}
	n, err := p.rdb.SCard(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, errors.Wrap(err, "presence lookup")
	}
	return n > 0, nil
}

// Touch 刷新最近活跃时间；每次授权 REST 调用后触发
func (p *PresenceStore) Touch(ctx context.Context, userID string) error {
	if p.rdb == nil {
		return errors.New("redis not initialized")
	}
	err := p.rdb.Set(ctx, activityKey(userID), strconv.FormatInt(time.Now().Unix(), 10), activityTTL).Err()
	return errors.Wrap(err, "activity touch")
}

// ActiveWithin 软在线：最近活跃时间是否在窗口内
func (p *PresenceStore) ActiveWithin(ctx context.Context, userID string, window time.Duration) (bool, error) {
	if p.rdb == nil {
		return false, errors.New("redis not initialized")
	}
	val, err := p.rdb.Get(ctx, activityKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "activity lookup")
	}
	ts, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, errors.Wrap(err, "activity parse")
	}
	return time.Now().Unix()-ts < int64(window/time.Second), nil
}
