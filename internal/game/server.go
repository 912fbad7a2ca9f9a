// server.go

package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/sathunter/SatHunter-Server/config"
	"github.com/sathunter/SatHunter-Server/internal/payment"
	"github.com/sathunter/SatHunter-Server/internal/protocol"
)

// GameServer 游戏服务器
// 所有游戏状态变更由单个调度协程串行执行(见dispatch.go)，
// connections/registry/sessions上的锁只服务于HTTP接口的只读访问
type GameServer struct {
	config   *config.Config
	registry *PlayerRegistry
	sessions *SessionManager
	bridge   payment.Bridge

	httpServer  *http.Server
	connections map[string]*PlayerConn
	connMutex   sync.RWMutex

	// 调度收件箱，承载客户端意图与异步支付完成事件
	inbox chan interface{}

	// 等待确认的发票，仅调度协程访问，无需加锁
	pendingInvoices map[string]pendingInvoice

	// 关闭信号
	shutdown  chan struct{}
	isRunning bool
}

// pendingInvoice 等待支付确认的发票记录
type pendingInvoice struct {
	playerID string
	amount   int64
	isRebuy  bool
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg *config.Config, bridge payment.Bridge) *GameServer {
	return &GameServer{
		config:          cfg,
		registry:        NewPlayerRegistry(),
		sessions:        NewSessionManager(cfg.Server.MaxPlayersPerSession),
		bridge:          bridge,
		connections:     make(map[string]*PlayerConn),
		inbox:           make(chan interface{}, 1024),
		pendingInvoices: make(map[string]pendingInvoice),
		shutdown:        make(chan struct{}),
	}
}

// Start 启动游戏服务器
func (s *GameServer) Start() error {
	if s.isRunning {
		return fmt.Errorf("服务器已经在运行")
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.Port),
		Handler: s.createHandler(),
	}

	go func() {
		log.Printf("游戏服务器启动，监听端口: %d", s.config.Server.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	// 启动调度协程
	go s.run()

	s.isRunning = true
	return nil
}

// Stop 停止游戏服务器
func (s *GameServer) Stop() error {
	if !s.isRunning {
		return nil
	}

	close(s.shutdown)

	// 关闭所有连接，走与慢客户端相同的守护关闭路径，
	// 避免与并发中的广播竞争
	s.connMutex.Lock()
	for _, conn := range s.connections {
		conn.shutdown()
	}
	s.connections = make(map[string]*PlayerConn)
	s.connMutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}

	s.isRunning = false
	log.Println("游戏服务器已停止")
	return nil
}

// NotifyPaymentConfirmed 接收带外支付确认通知(NATS回调协程调用)
// 只做投递，实际处理在调度协程中进行
func (s *GameServer) NotifyPaymentConfirmed(confirmation payment.Confirmation) {
	s.post(paymentNotification{checkingID: confirmation.CheckingID})
}

// post 向调度收件箱投递事件
// 服务器关闭后投递被丢弃而非阻塞
func (s *GameServer) post(event interface{}) {
	select {
	case s.inbox <- event:
	case <-s.shutdown:
	}
}

// createHandler 创建HTTP处理器
func (s *GameServer) createHandler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket 连接端点
	mux.HandleFunc("/ws", s.handleWSConnection)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
			"players":   s.registry.Count(),
			"sessions":  s.sessions.Count(),
		})
	})

	// 可加入会话列表端点
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sessions": s.sessions.AvailableSessions(),
		})
	})

	// 中间件链: 日志 -> CORS -> 频率限制
	limiter := NewRateLimiter(300)
	return LoggingMiddleware(CORSMiddleware(limiter.Middleware(mux)))
}

// send 向单个连接发送事件
func (s *GameServer) send(conn *PlayerConn, eventType string, payload interface{}) {
	data, err := protocol.Encode(eventType, payload)
	if err != nil {
		log.Printf("序列化消息失败: %v", err)
		return
	}
	if !conn.enqueue(data) {
		s.closeConnection(conn)
	}
}

// sendError 向发起方连接发送错误事件
func (s *GameServer) sendError(conn *PlayerConn, code, message string) {
	s.send(conn, protocol.EventError, protocol.ErrorEvent{Code: code, Message: message})
}

// broadcast 向会话订阅者广播事件，excludeID非空时跳过该玩家
func (s *GameServer) broadcast(sessionID, excludeID, eventType string, payload interface{}) {
	data, err := protocol.Encode(eventType, payload)
	if err != nil {
		log.Printf("序列化消息失败: %v", err)
		return
	}

	for _, conn := range s.sessions.Subscribers(sessionID, excludeID) {
		if !conn.enqueue(data) {
			s.closeConnection(conn)
		}
	}
}
