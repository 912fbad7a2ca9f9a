// sessions_test.go

package game

import (
	"fmt"
	"testing"

	"github.com/sathunter/SatHunter-Server/internal/models"
)

func testConn(id string) *PlayerConn {
	return &PlayerConn{ID: id, Send: make(chan []byte, 64)}
}

func testPlayer(id string) *models.Player {
	return &models.Player{ID: id, Name: "p-" + id, IsAlive: true}
}

func TestCreateSessionNameTaken(t *testing.T) {
	m := NewSessionManager(10)

	if _, err := m.CreateSession("arena"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	// 名称大小写不敏感
	if _, err := m.CreateSession("ARENA"); err == nil {
		t.Error("大小写变体应视为同名冲突")
	}

	if _, ok := m.Get("Arena"); !ok {
		t.Error("大小写变体应能找到同一会话")
	}
}

func TestJoinLifecycle(t *testing.T) {
	m := NewSessionManager(2)
	m.CreateSession("arena")

	p1, p2, p3 := testPlayer("a"), testPlayer("b"), testPlayer("c")

	if got := m.Join("arena", p1, testConn("a")); got != JoinOK {
		t.Fatalf("加入: %v", got)
	}
	if p1.SessionID != "arena" {
		t.Errorf("SessionID = %q", p1.SessionID)
	}
	// 首个加入者拿到0号出生点
	if p1.Position != models.SpawnPosition(0) {
		t.Errorf("出生点 = %+v", p1.Position)
	}

	if got := m.Join("arena", p2, testConn("b")); got != JoinOK {
		t.Fatalf("第二人加入: %v", got)
	}
	if p2.Position != models.SpawnPosition(1) {
		t.Errorf("第二人出生点 = %+v", p2.Position)
	}

	// 容量2已满
	if got := m.Join("arena", p3, testConn("c")); got != JoinSessionFull {
		t.Errorf("满员加入: %v", got)
	}

	if got := m.Join("nowhere", p3, testConn("c")); got != JoinSessionNotFound {
		t.Errorf("不存在会话: %v", got)
	}

	// 开始后禁止加入
	if _, status := m.Start("arena"); status != StartOK {
		t.Fatalf("开始: %v", status)
	}
	m.Leave("arena", "a")
	if got := m.Join("arena", p3, testConn("c")); got != JoinAlreadyStarted {
		t.Errorf("已开始会话加入: %v", got)
	}
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	m := NewSessionManager(10)
	m.CreateSession("arena")
	m.Join("arena", testPlayer("a"), testConn("a"))

	if _, status := m.Start("arena"); status != StartNotEnoughPlayers {
		t.Errorf("单人开始: %v", status)
	}

	m.Join("arena", testPlayer("b"), testConn("b"))
	members, status := m.Start("arena")
	if status != StartOK {
		t.Fatalf("开始: %v", status)
	}
	// 成员按加入顺序返回
	if len(members) != 2 || members[0] != "a" || members[1] != "b" {
		t.Errorf("成员顺序 = %v", members)
	}

	if _, status := m.Start("arena"); status != StartAlreadyStarted {
		t.Errorf("重复开始: %v", status)
	}
	if _, status := m.Start("nowhere"); status != StartSessionNotFound {
		t.Errorf("不存在会话开始: %v", status)
	}

	session, _ := m.Get("arena")
	if session.Status != models.SessionActive || session.StartedAt.IsZero() {
		t.Errorf("开始后状态: %+v", session)
	}
}

func TestLeaveDeletesEmptySession(t *testing.T) {
	m := NewSessionManager(10)
	m.CreateSession("arena")
	m.Join("arena", testPlayer("a"), testConn("a"))
	m.Join("arena", testPlayer("b"), testConn("b"))

	m.Leave("arena", "a")
	if _, ok := m.Get("arena"); !ok {
		t.Fatal("仍有成员时会话不应删除")
	}

	m.Leave("arena", "b")
	if _, ok := m.Get("arena"); ok {
		t.Error("空会话应被删除")
	}
}

func TestAutoSessionNaming(t *testing.T) {
	m := NewSessionManager(2)

	id1 := m.FindOrCreateAutoSession()
	if id1 != "Lobby-1" {
		t.Fatalf("首个自动会话 = %q", id1)
	}

	// 有空位时复用现有会话
	m.Join(id1, testPlayer("a"), testConn("a"))
	if got := m.FindOrCreateAutoSession(); got != id1 {
		t.Errorf("应复用有空位的会话: %q", got)
	}

	// 满员后创建新会话
	m.Join(id1, testPlayer("b"), testConn("b"))
	id2 := m.FindOrCreateAutoSession()
	if id2 != "Lobby-2" {
		t.Fatalf("第二个自动会话 = %q", id2)
	}

	// 删除后计数器不回退，命名不复用
	m.Leave(id1, "a")
	m.Leave(id1, "b")
	m.Join(id2, testPlayer("c"), testConn("c"))
	m.Join(id2, testPlayer("d"), testConn("d"))
	id3 := m.FindOrCreateAutoSession()
	if id3 != "Lobby-3" {
		t.Errorf("第三个自动会话 = %q, 计数器不应复用已删除会话的编号", id3)
	}
}

func TestNextSpawnContinuesSequence(t *testing.T) {
	m := NewSessionManager(10)
	m.CreateSession("arena")
	m.Join("arena", testPlayer("a"), testConn("a"))
	m.Join("arena", testPlayer("b"), testConn("b"))

	// 重生出生点延续加入序号
	if got := m.NextSpawn("arena"); got != models.SpawnPosition(2) {
		t.Errorf("重生出生点 = %+v, 期望序号2", got)
	}
	if got := m.NextSpawn("arena"); got != models.SpawnPosition(3) {
		t.Errorf("重生出生点 = %+v, 期望序号3", got)
	}

	// 不存在的会话回落到0号出生点
	if got := m.NextSpawn("nowhere"); got != models.SpawnPosition(0) {
		t.Errorf("缺省出生点 = %+v", got)
	}
}

func TestSubscribersExclude(t *testing.T) {
	m := NewSessionManager(10)
	m.CreateSession("arena")
	m.Join("arena", testPlayer("a"), testConn("a"))
	m.Join("arena", testPlayer("b"), testConn("b"))
	m.Join("arena", testPlayer("c"), testConn("c"))

	if got := len(m.Subscribers("arena", "")); got != 3 {
		t.Errorf("订阅者数量 = %d, 期望 3", got)
	}
	if got := len(m.Subscribers("arena", "b")); got != 2 {
		t.Errorf("排除后订阅者数量 = %d, 期望 2", got)
	}
	for _, conn := range m.Subscribers("arena", "b") {
		if conn.ID == "b" {
			t.Error("排除的玩家不应出现在订阅者中")
		}
	}
}

func TestEndKeepsSessionAddressable(t *testing.T) {
	m := NewSessionManager(10)
	m.CreateSession("arena")
	m.Join("arena", testPlayer("a"), testConn("a"))
	m.Join("arena", testPlayer("b"), testConn("b"))
	m.Start("arena")

	m.End("arena", "a")

	session, ok := m.Get("arena")
	if !ok {
		t.Fatal("结束后会话应保持可寻址")
	}
	if session.Status != models.SessionEnded || session.WinnerID != "a" || session.EndedAt.IsZero() {
		t.Errorf("结束状态: %+v", session)
	}
}

func TestAvailableSessions(t *testing.T) {
	m := NewSessionManager(2)
	m.CreateSession("open")
	m.CreateSession("full")
	m.CreateSession("running")

	m.Join("open", testPlayer("a"), testConn("a"))
	m.Join("full", testPlayer("b"), testConn("b"))
	m.Join("full", testPlayer("c"), testConn("c"))
	m.Join("running", testPlayer("d"), testConn("d"))
	m.Join("running", testPlayer("e"), testConn("e"))

	m.Start("running")

	available := m.AvailableSessions()
	names := make(map[string]bool)
	for _, info := range available {
		names[info.ID] = true
	}

	if !names["open"] {
		t.Error("有空位的等待会话应可加入")
	}
	if names["full"] {
		t.Error("满员会话不应出现在可加入列表")
	}
	if names["running"] {
		t.Error("已开始会话不应出现在可加入列表")
	}
	if len(available) != 1 {
		t.Errorf("可加入会话数量 = %d: %v", len(available), fmt.Sprint(available))
	}
}
