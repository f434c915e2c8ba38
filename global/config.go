package global

import (
	"context"
	"crypto/rsa"
	"hash/fnv"

	"ChatProject/logger"
	"ChatProject/service/mgo"
	"ChatProject/service/natsx"
	"ChatProject/service/pgstore"
	redisc "ChatProject/service/storage/redis"
	"ChatProject/tools/ids"
	"ChatProject/tools/security"

	"github.com/pkg/errors"
)

// App 进程级依赖；ConfigAll 之后可用
type App struct {
	Conf *AppConfig
	Keys *security.KeyPair
	Nats *natsx.NatsxClient
}

// ConfigAll 按配置初始化所有基础设施；任何一项失败直接返回错误，
// 由 main 决定退出。
func ConfigAll(ctx context.Context, conf *AppConfig) (*App, error) {
	ConfigIds(conf.Server.GatewayNodeID)

	if err := redisc.InitRedis(redisc.Config{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
		PoolSize: conf.Redis.PoolSize,
	}); err != nil {
		return nil, errors.Wrap(err, "init redis")
	}

	if err := pgstore.InitPg(ctx, pgstore.Config{
		URL:      conf.Postgres.URL,
		MaxConns: conf.Postgres.MaxConns,
	}); err != nil {
		return nil, errors.Wrap(err, "init postgres")
	}

	if err := mgo.InitMongo(ctx, mgo.Config{
		URI:      conf.Mongo.URI,
		Database: conf.Mongo.Database,
	}); err != nil {
		return nil, errors.Wrap(err, "init mongo")
	}

	kp, err := security.LoadKeyPair(conf.Jwt.PublicKeyFile, conf.Jwt.PrivateKeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "load jwt keys")
	}

	nc, err := natsx.NewNatsxClient(natsx.NatsxConfig{
		Servers: conf.Nats.Servers,
		Name:    "chat-" + conf.Server.GatewayNodeID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}

	logger.Infof("[boot] node=%s port=%d", conf.Server.GatewayNodeID, conf.Server.Port)
	return &App{Conf: conf, Keys: kp, Nats: nc}, nil
}

// ConfigIds 雪花节点号从网关节点ID散列得出，多节点不碰撞的概率足够
func ConfigIds(nodeID string) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(nodeID))
	ids.SetNodeID(int64(h.Sum32() % 1024))
}

// JwtPublicKey 校验用公钥
func (a *App) JwtPublicKey() *rsa.PublicKey {
	return a.Keys.Pub
}

// Shutdown 逆序释放资源
func (a *App) Shutdown(ctx context.Context) {
	if a.Nats != nil {
		_ = a.Nats.Close()
	}
	mgo.CloseMongo(ctx)
	pgstore.ClosePg()
	redisc.CloseRedis()
	logger.Sync()
}
