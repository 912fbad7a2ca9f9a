// sessions.go

package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sathunter/SatHunter-Server/internal/models"
)

// sessionState 会话内部状态
// 成员按加入顺序保存，出生点由加入序号对出生点表取模得出
type sessionState struct {
	session     *models.Session
	members     []string               // 加入顺序
	subscribers map[string]*PlayerConn // 玩家ID -> 出站连接
	joinSeq     int                    // 单调递增的加入序号
}

// SessionManager 会话管理器，独占管理会话生命周期与成员关系
// 每个会话持有显式的订阅者集合，广播即对该集合的显式遍历
type SessionManager struct {
	sessions    map[string]*sessionState // 键为小写会话ID
	autoCounter int                      // 自动命名计数器，只增不减，保证不复用
	maxPlayers  int
	mutex       sync.RWMutex
}

// NewSessionManager 创建会话管理器
func NewSessionManager(maxPlayers int) *SessionManager {
	if maxPlayers <= 0 {
		maxPlayers = models.MaxPlayersPerSession
	}
	return &SessionManager{
		sessions:   make(map[string]*sessionState),
		maxPlayers: maxPlayers,
	}
}

// sessionKey 会话ID的大小写不敏感键
func sessionKey(id string) string {
	return strings.ToLower(id)
}

// CreateSession 创建自定义会话
// 名称大小写不敏感冲突时返回错误
func (m *SessionManager) CreateSession(name string) (*models.Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.sessions[sessionKey(name)]; exists {
		return nil, fmt.Errorf("会话名称 %s 已被占用", name)
	}

	return m.createLocked(name), nil
}

// createLocked 创建会话，调用方必须持有写锁
func (m *SessionManager) createLocked(name string) *models.Session {
	session := &models.Session{
		ID:         name,
		Status:     models.SessionWaiting,
		MaxPlayers: m.maxPlayers,
		CreatedAt:  time.Now(),
	}

	m.sessions[sessionKey(name)] = &sessionState{
		session:     session,
		subscribers: make(map[string]*PlayerConn),
	}

	return session
}

// FindOrCreateAutoSession 自动匹配会话
// 返回第一个有空位的等待中会话；没有则用单调计数器创建新会话。
// 多个候选时取先找到的即可，会话数量少且生命周期短
func (m *SessionManager) FindOrCreateAutoSession() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, state := range m.sessions {
		s := state.session
		if s.Status == models.SessionWaiting && len(state.members) < s.MaxPlayers {
			return s.ID
		}
	}

	m.autoCounter++
	session := m.createLocked(fmt.Sprintf("Lobby-%d", m.autoCounter))
	return session.ID
}

// Get 获取会话
func (m *SessionManager) Get(sessionID string) (*models.Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	state, exists := m.sessions[sessionKey(sessionID)]
	if !exists {
		return nil, false
	}
	return state.session, true
}

// JoinStatus 加入会话结果
type JoinStatus int

const (
	// JoinOK 加入成功
	JoinOK JoinStatus = iota
	// JoinSessionNotFound 会话不存在
	JoinSessionNotFound
	// JoinSessionFull 会话已满
	JoinSessionFull
	// JoinAlreadyStarted 对局已开始
	JoinAlreadyStarted
)

// Join 玩家加入会话
// 成功时分配出生点(加入序号对出生点表取模)并登记订阅者
func (m *SessionManager) Join(sessionID string, player *models.Player, conn *PlayerConn) JoinStatus {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	state, exists := m.sessions[sessionKey(sessionID)]
	if !exists {
		return JoinSessionNotFound
	}

	session := state.session
	if session.Status != models.SessionWaiting {
		return JoinAlreadyStarted
	}
	if len(state.members) >= session.MaxPlayers {
		return JoinSessionFull
	}

	state.members = append(state.members, player.ID)
	state.subscribers[player.ID] = conn
	player.SessionID = session.ID
	player.Position = models.SpawnPosition(state.joinSeq)
	state.joinSeq++

	return JoinOK
}

// Leave 玩家离开会话
// 成员集合为空时删除会话，会话不独立于其成员存在
func (m *SessionManager) Leave(sessionID, playerID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := sessionKey(sessionID)
	state, exists := m.sessions[key]
	if !exists {
		return
	}

	for i, id := range state.members {
		if id == playerID {
			state.members = append(state.members[:i], state.members[i+1:]...)
			break
		}
	}
	delete(state.subscribers, playerID)

	if len(state.members) == 0 {
		delete(m.sessions, key)
	}
}

// NextSpawn 取会话的下一个出生点(重生用)
// 与加入时共用同一单调序号，对出生点表取模循环复用
func (m *SessionManager) NextSpawn(sessionID string) models.Vector3D {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	state, exists := m.sessions[sessionKey(sessionID)]
	if !exists {
		return models.SpawnPosition(0)
	}

	spawn := models.SpawnPosition(state.joinSeq)
	state.joinSeq++
	return spawn
}

// StartStatus 开始会话结果
type StartStatus int

const (
	// StartOK 开始成功
	StartOK StartStatus = iota
	// StartSessionNotFound 会话不存在
	StartSessionNotFound
	// StartNotEnoughPlayers 玩家数不足
	StartNotEnoughPlayers
	// StartAlreadyStarted 对局已开始
	StartAlreadyStarted
)

// Start 开始会话
// 状态转换为active并返回按加入顺序排列的成员ID，
// 成员的血量/出生点重置由调用方通过玩家注册表执行
func (m *SessionManager) Start(sessionID string) ([]string, StartStatus) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	state, exists := m.sessions[sessionKey(sessionID)]
	if !exists {
		return nil, StartSessionNotFound
	}

	session := state.session
	if session.Status != models.SessionWaiting {
		return nil, StartAlreadyStarted
	}
	if len(state.members) < 2 {
		return nil, StartNotEnoughPlayers
	}

	session.Status = models.SessionActive
	session.StartedAt = time.Now()

	members := make([]string, len(state.members))
	copy(members, state.members)
	return members, StartOK
}

// End 结束会话并记录胜者
// 会话保持可寻址(用于展示最终排行榜)，直到所有成员断开
func (m *SessionManager) End(sessionID, winnerID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	state, exists := m.sessions[sessionKey(sessionID)]
	if !exists {
		return
	}

	state.session.Status = models.SessionEnded
	state.session.EndedAt = time.Now()
	state.session.WinnerID = winnerID
}

// Members 返回会话成员ID(加入顺序)
func (m *SessionManager) Members(sessionID string) []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	state, exists := m.sessions[sessionKey(sessionID)]
	if !exists {
		return nil
	}

	members := make([]string, len(state.members))
	copy(members, state.members)
	return members
}

// Subscribers 返回会话订阅者连接，广播即对返回集合的遍历
// excludeID非空时跳过该玩家
func (m *SessionManager) Subscribers(sessionID, excludeID string) []*PlayerConn {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	state, exists := m.sessions[sessionKey(sessionID)]
	if !exists {
		return nil
	}

	conns := make([]*PlayerConn, 0, len(state.subscribers))
	for id, conn := range state.subscribers {
		if id == excludeID {
			continue
		}
		conns = append(conns, conn)
	}
	return conns
}

// AvailableSessions 可加入会话的只读投影(供HTTP接口)
func (m *SessionManager) AvailableSessions() []models.SessionInfo {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	infos := make([]models.SessionInfo, 0)
	for _, state := range m.sessions {
		s := state.session
		if s.Status == models.SessionWaiting && len(state.members) < s.MaxPlayers {
			infos = append(infos, models.SessionInfo{
				ID:          s.ID,
				PlayerCount: len(state.members),
				MaxPlayers:  s.MaxPlayers,
				Status:      s.Status,
			})
		}
	}
	return infos
}

// Count 当前会话数量
func (m *SessionManager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.sessions)
}
