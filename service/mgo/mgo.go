package mgo

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config Mongo 连接配置
type Config struct {
	URI      string // mongodb://host:27017
	Database string
}

var (
	mgoOnce sync.Once
	client  *mongo.Client
	db      *mongo.Database
)

// InitMongo 初始化客户端（单例）
func InitMongo(ctx context.Context, c Config) error {
	var initErr error
	mgoOnce.Do(func() {
		connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		cli, err := mongo.Connect(connCtx, options.Client().ApplyURI(c.URI))
		if err != nil {
			initErr = errors.Wrap(err, "connect mongo")
			return
		}
		if err := cli.Ping(connCtx, readpref.Primary()); err != nil {
			initErr = errors.Wrap(err, "ping mongo")
			return
		}
		client = cli
		db = cli.Database(c.Database)
	})
	return initErr
}

// GetDB 获取数据库句柄
func GetDB() *mongo.Database {
	if db == nil {
		panic("Mongo not initialized, call InitMongo first")
	}
	return db
}

// CloseMongo 断开连接
func CloseMongo(ctx context.Context) {
	if client != nil {
		_ = client.Disconnect(ctx)
	}
}
