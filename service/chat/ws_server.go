package chat

import (
	"context"
	"net"
	"net/http"
	"time"

	"ChatProject/logger"
	"ChatProject/metrics"
	"ChatProject/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ===== 配置 =====

type ServerConf struct {
	SendQueueSize int           // 每连接发送队列长度（默认 64）
	PingInterval  time.Duration // 服务端 ping 周期（默认 25s）
	PongTimeout   time.Duration // 读超时（默认 60s）
	WriteTimeout  time.Duration // 单帧写超时（默认 5s）
}

func (c *ServerConf) norm() {
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 64
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 60 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
}

// Server ties the registry, the authenticator and the fan-out together and
// owns the websocket endpoint.
type Server struct {
	conf     ServerConf
	reg      *Registry
	auth     *Authenticator
	notifier *Notifier
	presence PresenceStore
}

func NewServer(conf ServerConf, reg *Registry, auth *Authenticator, notifier *Notifier, presence PresenceStore) *Server {
	conf.norm()
	return &Server{conf: conf, reg: reg, auth: auth, notifier: notifier, presence: presence}
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Notifier() *Notifier { return s.notifier }

// HandleWS ===== WebSocket 入口 =====
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// 常见：非 WebSocket 请求/握手失败
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	client := NewClient(ids.GenerateString(), ws, s.conf.SendQueueSize)
	logger.Infof("[ws] connected conn=%s remote=%s", client.ConnID, ws.RemoteAddr())

	writerDone := make(chan struct{})
	go s.writeLoop(client, writerDone)

	s.readLoop(client)

	// ---- 退出阶段：注销、清共享在线态、收写协程 ----
	wasAdmitted := client.UserID != ""
	s.reg.Remove(client) // 未授权断开时为 no-op
	if wasAdmitted {
		metrics.WSConnections.Dec()
		metrics.OnlineUsers.Set(float64(s.reg.OnlineUsers()))
		if s.presence != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := s.presence.Offline(ctx, client.UserID, client.ConnID); err != nil {
				logger.Warnf("[ws] presence offline user=%s: %v", client.UserID, err)
			}
			cancel()
		}
	}
	client.Close()
	<-writerDone
	logger.Infof("[ws] closed conn=%s user=%s", client.ConnID, client.UserID)
}

// readLoop 只读不写；出错即退出（写协程收尾）
func (s *Server) readLoop(client *Client) {
	ws := client.WS
	ws.SetReadLimit(1 << 20) // 1MB
	_ = ws.SetReadDeadline(time.Now().Add(s.conf.PongTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.conf.PongTimeout))
	})

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s err=%v", client.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", client.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[ws] bad frame conn=%s err=%v sample=%q", client.ConnID, perr, sample)
			continue
		}

		s.handleFrame(client, frame)
	}
}

func (s *Server) handleFrame(client *Client, frame *Frame) {
	switch frame.Type {
	case FrameAuth:
		if client.UserID != "" {
			// 连接生命周期内只认证一次，重复 auth 帧忽略
			return
		}
		ap, err := ExtractAuthPayload(frame)
		if err != nil {
			logger.Debugf("[ws] auth payload conn=%s err=%v", client.ConnID, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		s.auth.Admit(ctx, client, ap.Token)
		cancel()

	case FrameTyping:
		if client.UserID == "" {
			return // 未授权连接不允许透传
		}
		tp, err := ExtractTypingPayload(frame)
		if err != nil || tp.To == "" {
			return
		}
		s.notifier.Notify(tp.To, EventTyping, map[string]any{
			"from":  client.UserID,
			"state": tp.State,
		})

	case FramePing:
		if data, err := EncodeEvent(EventPong, nil); err == nil {
			client.enqueue(data)
		}

	default:
		logger.Debugf("[ws] unknown frame type=%q conn=%s", frame.Type, client.ConnID)
	}
}

// writeLoop 唯一写者：发送队列 + 周期 ping；写失败即关连接让读循环退出
func (s *Server) writeLoop(client *Client, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.conf.PingInterval)
	defer ticker.Stop()
	defer func() { _ = client.WS.Close() }()

	for {
		select {
		case data := <-client.Send:
			if err := s.writeFrame(client, websocket.TextMessage, data); err != nil {
				logger.Infof("[ws] write err conn=%s err=%v", client.ConnID, err)
				return
			}
		case <-ticker.C:
			if err := s.writeFrame(client, websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.Done():
			return
		}
	}
}

func (s *Server) writeFrame(client *Client, mt int, data []byte) error {
	if err := client.WS.SetWriteDeadline(time.Now().Add(s.conf.WriteTimeout)); err != nil {
		return err
	}
	return client.WS.WriteMessage(mt, data)
}
