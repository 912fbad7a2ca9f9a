// handlers.go

package game

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sathunter/SatHunter-Server/internal/models"
	"github.com/sathunter/SatHunter-Server/internal/protocol"
)

// registeredPlayer 取发起方对应的已注册玩家
// 未注册时向发起方发送错误并返回false
func (s *GameServer) registeredPlayer(conn *PlayerConn) (*models.Player, bool) {
	player, exists := s.registry.Get(conn.ID)
	if !exists {
		s.sendError(conn, protocol.ErrNotRegistered, "请先注册玩家")
		return nil, false
	}
	return player, true
}

// connFor 按玩家ID查找出站连接
func (s *GameServer) connFor(playerID string) (*PlayerConn, bool) {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()

	conn, exists := s.connections[playerID]
	return conn, exists
}

// sessionPlayers 取会话全部成员的玩家模型(加入顺序)
func (s *GameServer) sessionPlayers(sessionID string) []*models.Player {
	members := s.sessions.Members(sessionID)
	players := make([]*models.Player, 0, len(members))
	for _, id := range members {
		if player, exists := s.registry.Get(id); exists {
			players = append(players, player)
		}
	}
	return players
}

// sessionInfos 取会话全部成员的公开信息
func (s *GameServer) sessionInfos(sessionID string) []models.PlayerInfo {
	players := s.sessionPlayers(sessionID)
	infos := make([]models.PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, p.Info())
	}
	return infos
}

// ============================================================================
// 注册
// ============================================================================

// handlePlayerInit 玩家注册
func (s *GameServer) handlePlayerInit(conn *PlayerConn, payload json.RawMessage) {
	var req protocol.PlayerInitRequest
	if err := protocol.Decode(payload, &req); err != nil {
		s.sendError(conn, protocol.ErrInvalidPayload, "无法解析注册请求")
		return
	}

	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		s.sendError(conn, protocol.ErrInvalidPayload, "玩家名称不能为空")
		return
	}

	if _, exists := s.registry.Get(conn.ID); exists {
		s.sendError(conn, protocol.ErrAlreadyRegistered, "该连接已注册玩家")
		return
	}

	wallet := s.bridge.ProvisionWallet(name)
	player, err := s.registry.CreatePlayer(conn.ID, name, wallet)
	if err != nil {
		s.sendError(conn, protocol.ErrAlreadyRegistered, "该连接已注册玩家")
		return
	}

	log.Printf("玩家 %s (%s) 已注册", player.Name, player.ID)

	var result protocol.PlayerInitResult
	result.Player.ID = player.ID
	result.Player.Name = player.Name
	result.Player.WalletID = player.Wallet.WalletID
	result.Player.InvoiceKey = player.Wallet.InvoiceKey
	result.Player.Balance = player.Balance
	result.Player.Health = player.Health
	result.Player.MaxHealth = player.MaxHealth
	result.Player.ClassType = player.ClassType
	result.Player.Simulated = player.Wallet.Simulated
	s.send(conn, protocol.EventPlayerInitResult, result)
}

// ============================================================================
// 支付
// ============================================================================

// handlePaymentCreate 创建入场发票
// 支付边界调用在独立协程执行，完成后经收件箱回到调度协程
func (s *GameServer) handlePaymentCreate(conn *PlayerConn) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	wallet := player.Wallet
	memo := fmt.Sprintf("SatHunter 入场 - %s", player.Name)
	go func() {
		invoice, err := s.bridge.CreateInvoice(wallet, models.EntryCost, memo)
		s.post(invoiceOutcome{conn: conn, invoice: invoice, err: err})
	}()
}

// handlePaymentVerify 验证支付状态
func (s *GameServer) handlePaymentVerify(conn *PlayerConn, payload json.RawMessage) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	var req protocol.PaymentVerifyRequest
	if err := protocol.Decode(payload, &req); err != nil || req.CheckingID == "" {
		s.sendError(conn, protocol.ErrInvalidPayload, "缺少checkingId")
		return
	}

	wallet := player.Wallet
	go func() {
		paid, err := s.bridge.CheckPaid(wallet, req.CheckingID)
		s.post(verifyOutcome{conn: conn, checkingID: req.CheckingID, paid: paid, err: err})
	}()
}

// handlePlayerRebuy 死亡后重新买入
func (s *GameServer) handlePlayerRebuy(conn *PlayerConn) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	if player.IsAlive {
		s.sendError(conn, protocol.ErrStillAlive, "存活状态下不能重新买入")
		return
	}

	wallet := player.Wallet
	memo := fmt.Sprintf("SatHunter 重新买入 - %s", player.Name)
	go func() {
		invoice, err := s.bridge.CreateInvoice(wallet, models.EntryCost, memo)
		s.post(invoiceOutcome{conn: conn, invoice: invoice, err: err, isRebuy: true})
	}()
}

// completeInvoiceCreated 发票创建完成，回到调度协程
func (s *GameServer) completeInvoiceCreated(e invoiceOutcome) {
	if e.err != nil {
		log.Printf("[支付] 创建发票失败: %v", e.err)
		s.sendError(e.conn, protocol.ErrPaymentFailed, "创建发票失败")
		return
	}

	// 等待期间玩家可能已断开
	if _, exists := s.registry.Get(e.conn.ID); !exists {
		return
	}

	s.pendingInvoices[e.invoice.CheckingID] = pendingInvoice{
		playerID: e.conn.ID,
		amount:   e.invoice.Amount,
		isRebuy:  e.isRebuy,
	}

	s.send(e.conn, protocol.EventInvoiceCreated, protocol.InvoiceCreated{
		PaymentHash:    e.invoice.PaymentHash,
		PaymentRequest: e.invoice.PaymentRequest,
		CheckingID:     e.invoice.CheckingID,
		Amount:         e.invoice.Amount,
		IsRebuy:        e.isRebuy,
	})
}

// completePaymentVerify 支付状态查询完成
// 传输层失败与"未支付"严格区分：前者报告服务不可用，
// 后者报告等待中，都不会错误地拒绝一笔已到账的支付
func (s *GameServer) completePaymentVerify(e verifyOutcome) {
	if _, exists := s.registry.Get(e.conn.ID); !exists {
		return
	}

	if e.err != nil {
		log.Printf("[支付] 查询支付状态失败: %v", e.err)
		s.sendError(e.conn, protocol.ErrProviderUnavailable, "支付服务暂时不可用")
		return
	}

	if !e.paid {
		s.send(e.conn, protocol.EventPaymentPending, map[string]interface{}{
			"checkingId": e.checkingID,
		})
		return
	}

	s.applyPaymentConfirmed(e.conn, e.checkingID)
}

// completeNotification 带外支付确认(NATS)
// 未登记的checking_id直接忽略，通知通道不具备创建状态的权力
func (s *GameServer) completeNotification(e paymentNotification) {
	pending, exists := s.pendingInvoices[e.checkingID]
	if !exists {
		return
	}

	conn, exists := s.connFor(pending.playerID)
	if !exists {
		delete(s.pendingInvoices, e.checkingID)
		return
	}

	s.applyPaymentConfirmed(conn, e.checkingID)
}

// applyPaymentConfirmed 应用一笔已确认的支付
// 入场发票确认后玩家余额重置为入场费；重新买入发票确认后
// 执行重生流程。重复确认同一发票是幂等的
func (s *GameServer) applyPaymentConfirmed(conn *PlayerConn, checkingID string) {
	pending, known := s.pendingInvoices[checkingID]
	if known {
		delete(s.pendingInvoices, checkingID)
	} else {
		// 服务重启后发票登记丢失，按发起方的入场支付处理
		pending = pendingInvoice{playerID: conn.ID, amount: models.EntryCost}
	}

	player, exists := s.registry.Get(pending.playerID)
	if !exists {
		return
	}

	if pending.isRebuy {
		s.applyRebuy(conn, player)
		return
	}

	balance, _ := s.registry.ConfirmPayment(player.ID)
	log.Printf("[支付] 玩家 %s 入场支付已确认", player.Name)
	s.send(conn, protocol.EventPaymentConfirmed, protocol.PaymentConfirmed{Balance: balance})
}

// applyRebuy 重新买入确认后的重生流程
// 生涯统计保留，血量与余额重置，在会话内时广播重生事件
func (s *GameServer) applyRebuy(conn *PlayerConn, player *models.Player) {
	spawn := models.SpawnPosition(0)
	if player.SessionID != "" {
		spawn = s.sessions.NextSpawn(player.SessionID)
	}

	if !s.registry.ResetForRespawn(player.ID, spawn) {
		return
	}

	log.Printf("[支付] 玩家 %s 重新买入，已重生", player.Name)
	s.send(conn, protocol.EventPaymentConfirmed, protocol.PaymentConfirmed{
		Balance: player.Balance,
		IsRebuy: true,
	})

	if player.SessionID != "" {
		s.broadcast(player.SessionID, "", protocol.EventPlayerRespawned, protocol.PlayerRespawnedEvent{
			Player:  player.Info(),
			Balance: player.Balance,
		})
	}
}

// ============================================================================
// 会话
// ============================================================================

// handleSessionCreate 创建自定义会话
func (s *GameServer) handleSessionCreate(conn *PlayerConn, payload json.RawMessage) {
	if _, ok := s.registeredPlayer(conn); !ok {
		return
	}

	var req protocol.SessionCreateRequest
	if err := protocol.Decode(payload, &req); err != nil {
		s.sendError(conn, protocol.ErrInvalidPayload, "无法解析创建会话请求")
		return
	}

	name := strings.TrimSpace(req.SessionName)
	if name == "" {
		s.sendError(conn, protocol.ErrInvalidPayload, "会话名称不能为空")
		return
	}

	session, err := s.sessions.CreateSession(name)
	if err != nil {
		s.sendError(conn, protocol.ErrNameTaken, "会话名称已被占用")
		return
	}

	log.Printf("创建会话: %s", session.ID)
	s.send(conn, protocol.EventSessionCreated, protocol.SessionState{
		ID:         session.ID,
		Status:     session.Status,
		Players:    []models.PlayerInfo{},
		MaxPlayers: session.MaxPlayers,
	})
}

// handleSessionJoin 加入会话
// sessionId为空或"auto"时自动匹配；指定ID不存在时按需创建，
// 会话随首个加入请求而诞生
func (s *GameServer) handleSessionJoin(conn *PlayerConn, payload json.RawMessage) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	if player.SessionID != "" {
		s.sendError(conn, protocol.ErrAlreadyInSession, "已在会话中")
		return
	}

	// 入场资格: 支付已验证，或余额足以覆盖入场费
	if !player.PaymentVerified && player.Balance < models.EntryCost {
		s.sendError(conn, protocol.ErrPaymentRequired, "请先支付入场费")
		return
	}

	var req protocol.SessionJoinRequest
	if len(payload) > 0 {
		if err := protocol.Decode(payload, &req); err != nil {
			s.sendError(conn, protocol.ErrInvalidPayload, "无法解析加入会话请求")
			return
		}
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" || strings.EqualFold(sessionID, "auto") {
		sessionID = s.sessions.FindOrCreateAutoSession()
	} else if _, exists := s.sessions.Get(sessionID); !exists {
		if _, err := s.sessions.CreateSession(sessionID); err != nil {
			s.sendError(conn, protocol.ErrNameTaken, "会话名称已被占用")
			return
		}
	}

	switch s.sessions.Join(sessionID, player, conn) {
	case JoinSessionNotFound:
		s.sendError(conn, protocol.ErrSessionNotFound, "会话不存在")
		return
	case JoinSessionFull:
		s.sendError(conn, protocol.ErrSessionFull, "会话已满")
		return
	case JoinAlreadyStarted:
		s.sendError(conn, protocol.ErrAlreadyStarted, "对局已开始")
		return
	}

	session, _ := s.sessions.Get(player.SessionID)
	log.Printf("玩家 %s 加入会话 %s", player.Name, session.ID)

	s.send(conn, protocol.EventSessionJoined, protocol.SessionState{
		ID:         session.ID,
		Status:     session.Status,
		Players:    s.sessionInfos(session.ID),
		MaxPlayers: session.MaxPlayers,
	})
	s.broadcast(session.ID, player.ID, protocol.EventPlayerJoined, protocol.PlayerJoinedEvent{
		Player: player.Info(),
	})
}

// handleSessionStart 开始会话
// 成员按加入顺序重置: 血量回满、复活、按序号分配出生点
func (s *GameServer) handleSessionStart(conn *PlayerConn) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	if player.SessionID == "" {
		s.sendError(conn, protocol.ErrNotInSession, "不在会话中")
		return
	}

	members, status := s.sessions.Start(player.SessionID)
	switch status {
	case StartSessionNotFound:
		s.sendError(conn, protocol.ErrSessionNotFound, "会话不存在")
		return
	case StartNotEnoughPlayers:
		s.sendError(conn, protocol.ErrNotEnoughPlayers, "至少需要2名玩家")
		return
	case StartAlreadyStarted:
		s.sendError(conn, protocol.ErrAlreadyStarted, "对局已开始")
		return
	}

	for i, id := range members {
		s.registry.ResetForStart(id, models.SpawnPosition(i))
	}

	log.Printf("会话 %s 开始，%d 名玩家", player.SessionID, len(members))
	s.broadcast(player.SessionID, "", protocol.EventGameStarted, protocol.GameStartedEvent{
		StartTime: time.Now().UnixMilli(),
		Players:   s.sessionInfos(player.SessionID),
	})
}

// ============================================================================
// 战斗
// ============================================================================

// handlePlayerClass 切换职业
func (s *GameServer) handlePlayerClass(conn *PlayerConn, payload json.RawMessage) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	var req protocol.PlayerClassRequest
	if err := protocol.Decode(payload, &req); err != nil {
		s.sendError(conn, protocol.ErrInvalidPayload, "无法解析职业请求")
		return
	}

	maxHealth, changed := s.registry.ChangeClass(player.ID, req.ClassType)
	if !changed {
		s.sendError(conn, protocol.ErrInvalidClass, "未知职业")
		return
	}

	s.send(conn, protocol.EventClassChanged, protocol.ClassChangedEvent{
		ClassType: req.ClassType,
		MaxHealth: maxHealth,
	})
}

// handleCombatShoot 射击
// 前置条件不满足时静默忽略: 战斗事件高频且客户端可能基于
// 过期状态开火，逐条报错只会淹没错误通道
func (s *GameServer) handleCombatShoot(conn *PlayerConn, payload json.RawMessage) {
	attacker, exists := s.registry.Get(conn.ID)
	if !exists || !attacker.IsAlive || attacker.SessionID == "" {
		return
	}

	session, exists := s.sessions.Get(attacker.SessionID)
	if !exists || session.Status != models.SessionActive {
		return
	}

	var req protocol.CombatShootRequest
	if err := protocol.Decode(payload, &req); err != nil {
		return
	}

	target, exists := s.registry.Get(req.TargetID)
	if !exists || !target.IsAlive || target.ID == attacker.ID {
		return
	}
	if target.SessionID != attacker.SessionID {
		return
	}

	weapon, exists := models.WeaponByID(req.WeaponID)
	if !exists {
		return
	}

	// 射速闸门先于伤害计算，拒绝时本次射击不产生任何效果
	if !s.registry.TryFireRateGate(attacker.ID, weapon, time.Now()) {
		return
	}

	class, exists := models.ClassByID(attacker.ClassType)
	if !exists {
		return
	}

	damage := Damage(weapon, req.HitZone, class, req.IsBackstab)
	sats := SatsForDamage(damage)

	// 战利品按致命一击前的剩余血量计价
	healthBefore := target.Health
	result := s.registry.ApplyDamage(target.ID, damage)
	s.registry.AddDamageDealt(attacker.ID, damage)

	s.send(conn, protocol.EventCombatHit, protocol.CombatHitEvent{
		TargetID:        target.ID,
		Damage:          damage,
		HitZone:         req.HitZone,
		SatsTransferred: sats,
		TargetHealth:    result.NewHealth,
	})

	if targetConn, ok := s.connFor(target.ID); ok {
		s.send(targetConn, protocol.EventCombatDamage, protocol.CombatDamageEvent{
			AttackerID:      attacker.ID,
			Damage:          damage,
			HitZone:         req.HitZone,
			SatsTransferred: sats,
			TargetHealth:    result.NewHealth,
		})
	}

	if !result.Killed {
		return
	}

	loot := LootForKill(healthBefore)
	s.registry.CreditKill(attacker.ID, loot)

	log.Printf("玩家 %s 击杀 %s，战利品 %d sats", attacker.Name, target.Name, loot)
	s.broadcast(attacker.SessionID, "", protocol.EventCombatKill, protocol.CombatKillEvent{
		KillerID:   attacker.ID,
		KillerName: attacker.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
		SatsLooted: loot,
		WeaponID:   weapon.ID,
	})
	s.broadcast(attacker.SessionID, "", protocol.EventLeaderboard, protocol.LeaderboardEvent{
		Entries: ProjectLeaderboard(s.sessionPlayers(attacker.SessionID)),
	})

	s.checkGameEnd(attacker.SessionID)
}

// checkGameEnd 检查最后一名猎人规则
// 活跃会话中存活成员不超过1名时结束对局并广播最终排行榜
func (s *GameServer) checkGameEnd(sessionID string) {
	session, exists := s.sessions.Get(sessionID)
	if !exists || session.Status != models.SessionActive {
		return
	}

	var winner *models.Player
	alive := 0
	for _, p := range s.sessionPlayers(sessionID) {
		if p.IsAlive {
			alive++
			winner = p
		}
	}
	if alive > 1 {
		return
	}

	var winnerID, winnerName string
	if winner != nil {
		winnerID = winner.ID
		winnerName = winner.Name
	}

	s.sessions.End(sessionID, winnerID)
	log.Printf("会话 %s 结束，胜者: %s", sessionID, winnerName)

	s.broadcast(sessionID, "", protocol.EventGameEnded, protocol.GameEndedEvent{
		WinnerID:    winnerID,
		WinnerName:  winnerName,
		Leaderboard: ProjectLeaderboard(s.sessionPlayers(sessionID)),
	})
}

// handlePlayerMove 位置更新
// 位置是幂等覆盖，失败静默忽略(与射击同理)
func (s *GameServer) handlePlayerMove(conn *PlayerConn, payload json.RawMessage) {
	player, exists := s.registry.Get(conn.ID)
	if !exists || !player.IsAlive {
		return
	}

	var req protocol.PlayerMoveRequest
	if err := protocol.Decode(payload, &req); err != nil {
		return
	}

	if !s.registry.SetPosition(player.ID, req.Position, req.Rotation) {
		return
	}

	if player.SessionID != "" {
		s.broadcast(player.SessionID, player.ID, protocol.EventPlayerUpdate, protocol.PlayerUpdateEvent{
			ID:       player.ID,
			Position: req.Position,
			Rotation: req.Rotation,
		})
	}
}

// ============================================================================
// 商店与装备
// ============================================================================

// handleShopPurchase 购买武器
func (s *GameServer) handleShopPurchase(conn *PlayerConn, payload json.RawMessage) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	var req protocol.ShopPurchaseRequest
	if err := protocol.Decode(payload, &req); err != nil {
		s.sendError(conn, protocol.ErrInvalidPayload, "无法解析购买请求")
		return
	}

	status := s.registry.PurchaseWeapon(player.ID, req.WeaponID)
	if status == PurchaseOK {
		log.Printf("玩家 %s 购买武器 %s，余额 %d", player.Name, req.WeaponID, player.Balance)
		s.send(conn, protocol.EventPurchaseResult, protocol.PurchaseResult{
			Success:  true,
			WeaponID: req.WeaponID,
			Balance:  player.Balance,
		})
		return
	}

	code := protocol.ErrInvalidPayload
	switch status {
	case PurchaseUnknownWeapon:
		code = protocol.ErrWeaponNotFound
	case PurchaseAlreadyOwned:
		code = protocol.ErrAlreadyOwned
	case PurchaseInsufficientBalance:
		code = protocol.ErrInsufficientBalance
	case PurchaseGradeTooLow:
		code = protocol.ErrGradeTooLow
	}

	s.send(conn, protocol.EventPurchaseResult, protocol.PurchaseResult{
		Success:  false,
		Code:     code,
		WeaponID: req.WeaponID,
		Balance:  player.Balance,
	})
}

// handlePlayerEquip 装备武器
func (s *GameServer) handlePlayerEquip(conn *PlayerConn, payload json.RawMessage) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	var req protocol.PlayerEquipRequest
	if err := protocol.Decode(payload, &req); err != nil {
		s.sendError(conn, protocol.ErrInvalidPayload, "无法解析装备请求")
		return
	}

	if s.registry.EquipWeapon(player.ID, req.WeaponID) {
		s.send(conn, protocol.EventEquipResult, protocol.EquipResult{WeaponID: req.WeaponID})
		return
	}

	if _, exists := models.WeaponByID(req.WeaponID); !exists {
		s.sendError(conn, protocol.ErrWeaponNotFound, "未知武器")
		return
	}
	s.sendError(conn, protocol.ErrWeaponNotOwned, "未拥有该武器")
}

// ============================================================================
// 提现与排行榜
// ============================================================================

// handlePlayerWithdraw 提现
// 提现金额由bolt11发票本身编码，服务器不扣减游戏内余额，
// 资金权威在支付服务侧的钱包。活跃对局中禁止提现
func (s *GameServer) handlePlayerWithdraw(conn *PlayerConn, payload json.RawMessage) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	var req protocol.PlayerWithdrawRequest
	if err := protocol.Decode(payload, &req); err != nil {
		s.sendError(conn, protocol.ErrInvalidPayload, "无法解析提现请求")
		return
	}

	bolt11 := strings.TrimSpace(req.Bolt11)
	if !strings.HasPrefix(strings.ToLower(bolt11), "lnbc") {
		s.sendError(conn, protocol.ErrInvalidInvoice, "无效的Lightning发票")
		return
	}

	if player.SessionID != "" {
		if session, exists := s.sessions.Get(player.SessionID); exists && session.Status == models.SessionActive {
			s.sendError(conn, protocol.ErrSessionActive, "对局进行中不能提现")
			return
		}
	}

	wallet := player.Wallet
	go func() {
		result, err := s.bridge.PayInvoice(wallet, bolt11)
		s.post(withdrawOutcome{conn: conn, result: result, err: err})
	}()
}

// completeWithdraw 提现付款完成
func (s *GameServer) completeWithdraw(e withdrawOutcome) {
	if _, exists := s.registry.Get(e.conn.ID); !exists {
		return
	}

	if e.err != nil {
		log.Printf("[支付] 提现失败: %v", e.err)
		s.send(e.conn, protocol.EventWithdrawResult, protocol.WithdrawResult{
			Success: false,
			Message: "提现失败，请稍后重试",
		})
		return
	}

	s.send(e.conn, protocol.EventWithdrawResult, protocol.WithdrawResult{
		Success:     true,
		PaymentHash: e.result.PaymentHash,
		Fee:         e.result.FeeSats,
	})
}

// handleLeaderboardGet 获取排行榜
func (s *GameServer) handleLeaderboardGet(conn *PlayerConn) {
	player, ok := s.registeredPlayer(conn)
	if !ok {
		return
	}

	if player.SessionID == "" {
		s.sendError(conn, protocol.ErrNotInSession, "不在会话中")
		return
	}

	s.send(conn, protocol.EventLeaderboard, protocol.LeaderboardEvent{
		Entries: ProjectLeaderboard(s.sessionPlayers(player.SessionID)),
	})
}

// ============================================================================
// 断开
// ============================================================================

// handleDisconnect 连接断开清理
// 离开会话并广播，然后判定最后一名猎人规则：活跃对局中
// 对手全部掉线时，幸存者即胜者
func (s *GameServer) handleDisconnect(conn *PlayerConn) {
	if player, exists := s.registry.Get(conn.ID); exists {
		if player.SessionID != "" {
			sessionID := player.SessionID
			s.sessions.Leave(sessionID, player.ID)
			player.SessionID = ""

			s.broadcast(sessionID, "", protocol.EventPlayerLeft, protocol.PlayerLeftEvent{
				ID:   player.ID,
				Name: player.Name,
			})
			s.checkGameEnd(sessionID)
		}

		// 清理该玩家的待确认发票
		for checkingID, pending := range s.pendingInvoices {
			if pending.playerID == player.ID {
				delete(s.pendingInvoices, checkingID)
			}
		}

		s.registry.Remove(player.ID)
		log.Printf("玩家 %s (%s) 已离线", player.Name, player.ID)
	}

	s.closeConnection(conn)
}
