// dispatch.go

package game

import (
	"encoding/json"
	"log"

	"github.com/sathunter/SatHunter-Server/internal/payment"
	"github.com/sathunter/SatHunter-Server/internal/protocol"
)

// 调度收件箱事件。客户端意图、连接断开与异步支付完成
// 全部汇入同一个通道，由单个调度协程串行处理，
// 游戏状态因此不存在跨意图的竞态

// clientIntent 客户端意图
type clientIntent struct {
	conn *PlayerConn
	data []byte
}

// connClosed 连接断开
type connClosed struct {
	conn *PlayerConn
}

// invoiceOutcome 发票创建完成(支付边界协程投递)
type invoiceOutcome struct {
	conn    *PlayerConn
	invoice *payment.Invoice
	err     error
	isRebuy bool
}

// verifyOutcome 支付状态查询完成(支付边界协程投递)
type verifyOutcome struct {
	conn       *PlayerConn
	checkingID string
	paid       bool
	err        error
}

// withdrawOutcome 提现付款完成(支付边界协程投递)
type withdrawOutcome struct {
	conn   *PlayerConn
	result *payment.PayResult
	err    error
}

// paymentNotification 带外支付确认(NATS通道投递)
type paymentNotification struct {
	checkingID string
}

// run 调度协程主循环
func (s *GameServer) run() {
	for {
		select {
		case event := <-s.inbox:
			s.dispatch(event)
		case <-s.shutdown:
			return
		}
	}
}

// dispatch 分发单个收件箱事件
func (s *GameServer) dispatch(event interface{}) {
	switch e := event.(type) {
	case clientIntent:
		s.handleIntent(e.conn, e.data)
	case connClosed:
		s.handleDisconnect(e.conn)
	case invoiceOutcome:
		s.completeInvoiceCreated(e)
	case verifyOutcome:
		s.completePaymentVerify(e)
	case withdrawOutcome:
		s.completeWithdraw(e)
	case paymentNotification:
		s.completeNotification(e)
	default:
		log.Printf("未知调度事件: %T", event)
	}
}

// handleIntent 解析并分发客户端意图
func (s *GameServer) handleIntent(conn *PlayerConn, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("解析消息失败: %v", err)
		s.sendError(conn, protocol.ErrInvalidPayload, "无法解析消息")
		return
	}

	switch msg.Type {
	case protocol.IntentPlayerInit:
		s.handlePlayerInit(conn, msg.Payload)
	case protocol.IntentPaymentCreate:
		s.handlePaymentCreate(conn)
	case protocol.IntentPaymentVerify:
		s.handlePaymentVerify(conn, msg.Payload)
	case protocol.IntentSessionCreate:
		s.handleSessionCreate(conn, msg.Payload)
	case protocol.IntentSessionJoin:
		s.handleSessionJoin(conn, msg.Payload)
	case protocol.IntentSessionStart:
		s.handleSessionStart(conn)
	case protocol.IntentPlayerClass:
		s.handlePlayerClass(conn, msg.Payload)
	case protocol.IntentCombatShoot:
		s.handleCombatShoot(conn, msg.Payload)
	case protocol.IntentPlayerMove:
		s.handlePlayerMove(conn, msg.Payload)
	case protocol.IntentShopPurchase:
		s.handleShopPurchase(conn, msg.Payload)
	case protocol.IntentPlayerEquip:
		s.handlePlayerEquip(conn, msg.Payload)
	case protocol.IntentPlayerRebuy:
		s.handlePlayerRebuy(conn)
	case protocol.IntentPlayerWithdraw:
		s.handlePlayerWithdraw(conn, msg.Payload)
	case protocol.IntentLeaderboardGet:
		s.handleLeaderboardGet(conn)
	default:
		log.Printf("未知消息类型: %s", msg.Type)
	}
}
