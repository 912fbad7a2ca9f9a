// websocket.go

package game

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 64 * 1024 // 64KB
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PlayerConn 玩家连接
// ID为连接作用域的玩家标识：注册后注册表中的玩家ID与其一致
type PlayerConn struct {
	ID         string
	LastActive time.Time

	// 出站通道，由writePump独占消费
	Send chan []byte

	// closed与Send的写入/关闭由mu互斥：
	// 发送方永远不会撞上已关闭的通道
	mu     sync.Mutex
	closed bool
}

// enqueue 将消息放入出站通道
// 连接已关闭时丢弃消息(订阅者集合的清理在断开事件中稍后完成，
// 期间的广播必须安全落空)；通道已满说明客户端消费过慢，
// 返回false由调用方关闭连接而非阻塞调度
func (c *PlayerConn) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// shutdown 关闭出站通道，幂等
// 与enqueue共用mu，保证关闭后不可能再有发送
func (c *PlayerConn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// handleWSConnection 处理WebSocket连接
func (s *GameServer) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	playerConn := &PlayerConn{
		ID:         uuid.New().String(),
		LastActive: time.Now(),
		Send:       make(chan []byte, 256),
	}

	s.connMutex.Lock()
	s.connections[playerConn.ID] = playerConn
	s.connMutex.Unlock()

	log.Printf("连接 %s 已建立", playerConn.ID)

	go s.readPump(conn, playerConn)
	go s.writePump(conn, playerConn)
}

// readPump 从WebSocket读取数据
// 读取到的意图统一投递给调度协程，断开事件同样经由调度处理，
// 保证清理逻辑与游戏状态变更在同一协程上串行
func (s *GameServer) readPump(conn *websocket.Conn, player *PlayerConn) {
	defer func() {
		s.post(connClosed{conn: player})
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket错误: %v", err)
			}
			break
		}

		player.LastActive = time.Now()
		s.post(clientIntent{conn: player, data: message})
	}
}

// writePump 向WebSocket写入数据
func (s *GameServer) writePump(conn *websocket.Conn, player *PlayerConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-player.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection 关闭玩家连接
// 只负责通道关闭与连接表清理；会话成员/订阅者的移除统一
// 走断开事件的调度路径(handleDisconnect)
func (s *GameServer) closeConnection(player *PlayerConn) {
	s.connMutex.Lock()
	defer s.connMutex.Unlock()

	// 检查连接是否已关闭
	if _, ok := s.connections[player.ID]; !ok {
		return
	}

	player.shutdown()
	delete(s.connections, player.ID)

	log.Printf("连接 %s 已断开", player.ID)
}
