package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChatProject/global"
	"ChatProject/logger"
	"ChatProject/middleware"
	"ChatProject/middleware/security"
	"ChatProject/module/contact"
	"ChatProject/module/group"
	"ChatProject/module/message"
	"ChatProject/module/user"
	"ChatProject/service/chat"
	"ChatProject/service/mgo"
	"ChatProject/service/natsx"
	"ChatProject/service/pgstore"
	"ChatProject/service/storage"
	"ChatProject/tools"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	conf, err := global.LoadConfig(tools.GetEnv("CHAT_CONFIG", "config.yaml"))
	if err != nil {
		logger.Errorf("[boot] load config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := global.ConfigAll(ctx, conf)
	if err != nil {
		logger.Errorf("[boot] init: %v", err)
		os.Exit(1)
	}
	defer app.Shutdown(context.Background())

	// ===== 存储层 =====
	pool := pgstore.GetPool()
	userStore := pgstore.NewUserStore(pool)
	contactStore := pgstore.NewContactStore(pool)
	groupStore := pgstore.NewGroupStore(pool)
	msgStore := mgo.NewMessageStore(mgo.GetDB())
	if err := msgStore.EnsureIndexes(ctx); err != nil {
		logger.Warnf("[boot] message indexes: %v", err)
	}
	presence := storage.NewPresenceStore()

	// ===== 推送核心 =====
	registry := chat.NewRegistry()
	relay := natsx.NewRelay(app.Nats, conf.Server.GatewayNodeID)
	notifier := chat.NewNotifier(registry, relay, conf.Server.FanoutWorkers, 0)
	if err := relay.Start(notifier.NotifyLocal); err != nil {
		logger.Errorf("[boot] relay subscribe: %v", err)
		os.Exit(1)
	}
	authn := chat.NewAuthenticator(app.JwtPublicKey(), registry, presence)
	wsServer := chat.NewServer(chat.ServerConf{
		SendQueueSize: conf.Server.SendQueue,
	}, registry, authn, notifier, presence)

	// ===== 业务层 =====
	userSvc := user.NewService(userStore, app.Keys, presence)
	contactSvc := contact.NewService(contactStore, userStore, presence, notifier)
	groupSvc := group.NewService(groupStore, userStore, contactStore, notifier)
	msgSvc := message.NewService(msgStore, contactStore, userStore, notifier)

	// ===== 路由 =====
	gin.SetMode(tools.GetEnv("GIN_MODE", gin.ReleaseMode))
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Origin(), middleware.Metrics())

	public := engine.Group("/api")
	auth := engine.Group("/api")
	auth.Use(security.Middleware(security.Options{Pub: app.JwtPublicKey(), Toucher: presence}))

	user.NewHandler(userSvc).Register(public, auth)
	contact.NewHandler(contactSvc).Register(auth)
	group.NewHandler(groupSvc).Register(auth)
	message.NewHandler(msgSvc).Register(auth)

	engine.GET("/ws", wsServer.HandleWS)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("[boot] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("[boot] serve: %v", err)
			cancel()
		}
	}()

	// ===== 优雅退出 =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Infof("[boot] signal %v, shutting down", sig)
	case <-ctx.Done():
	}

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Warnf("[boot] shutdown: %v", err)
	}
}
