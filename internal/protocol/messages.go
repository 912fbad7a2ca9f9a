// messages.go

package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/sathunter/SatHunter-Server/internal/models"
)

// Message 消息结构，所有客户端与服务器通信的统一信封
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// 客户端意图类型
const (
	// IntentPlayerInit 玩家注册
	IntentPlayerInit = "player_init"
	// IntentPaymentCreate 创建入场发票
	IntentPaymentCreate = "payment_create"
	// IntentPaymentVerify 验证支付状态
	IntentPaymentVerify = "payment_verify"
	// IntentSessionCreate 创建自定义会话
	IntentSessionCreate = "session_create"
	// IntentSessionJoin 加入会话(指定ID或自动匹配)
	IntentSessionJoin = "session_join"
	// IntentSessionStart 开始会话
	IntentSessionStart = "session_start"
	// IntentPlayerClass 切换职业
	IntentPlayerClass = "player_class"
	// IntentCombatShoot 射击
	IntentCombatShoot = "combat_shoot"
	// IntentPlayerMove 移动
	IntentPlayerMove = "player_move"
	// IntentShopPurchase 购买武器
	IntentShopPurchase = "shop_purchase"
	// IntentPlayerEquip 装备武器
	IntentPlayerEquip = "player_equip"
	// IntentPlayerRebuy 死亡后重新买入
	IntentPlayerRebuy = "player_rebuy"
	// IntentPlayerWithdraw 提现
	IntentPlayerWithdraw = "player_withdraw"
	// IntentLeaderboardGet 获取排行榜
	IntentLeaderboardGet = "leaderboard_get"
)

// 服务器事件类型
const (
	EventPlayerInitResult = "player_init_result"
	EventInvoiceCreated   = "invoice_created"
	EventPaymentConfirmed = "payment_confirmed"
	EventPaymentPending   = "payment_pending"
	EventSessionCreated   = "session_created"
	EventSessionJoined    = "session_joined"
	EventPlayerJoined     = "player_joined"
	EventPlayerLeft       = "player_left"
	EventGameStarted      = "game_started"
	EventGameEnded        = "game_ended"
	EventClassChanged     = "class_changed"
	EventPlayerUpdate     = "player_update"
	EventCombatHit        = "combat_hit"
	EventCombatDamage     = "combat_damage"
	EventCombatKill       = "combat_kill"
	EventPlayerRespawned  = "player_respawned"
	EventPurchaseResult   = "purchase_result"
	EventEquipResult      = "equip_result"
	EventWithdrawResult   = "withdraw_result"
	EventLeaderboard      = "leaderboard_update"
	EventError            = "error"
)

// 错误原因码，前置条件校验失败时返回给发起方客户端
const (
	ErrNotRegistered       = "NOT_REGISTERED"
	ErrAlreadyRegistered   = "ALREADY_REGISTERED"
	ErrInvalidPayload      = "INVALID_PAYLOAD"
	ErrPaymentRequired     = "PAYMENT_REQUIRED"
	ErrPaymentFailed       = "PAYMENT_FAILED"
	ErrSessionNotFound     = "SESSION_NOT_FOUND"
	ErrSessionFull         = "SESSION_FULL"
	ErrAlreadyStarted      = "ALREADY_STARTED"
	ErrNotEnoughPlayers    = "NOT_ENOUGH_PLAYERS"
	ErrNotInSession        = "NOT_IN_SESSION"
	ErrAlreadyInSession    = "ALREADY_IN_SESSION"
	ErrNameTaken           = "NAME_TAKEN"
	ErrInvalidClass        = "INVALID_CLASS"
	ErrWeaponNotFound      = "WEAPON_NOT_FOUND"
	ErrWeaponNotOwned      = "WEAPON_NOT_OWNED"
	ErrAlreadyOwned        = "ALREADY_OWNED"
	ErrInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrGradeTooLow         = "GRADE_TOO_LOW"
	ErrStillAlive          = "STILL_ALIVE"
	ErrInvalidInvoice      = "INVALID_INVOICE"
	ErrSessionActive       = "SESSION_ACTIVE"
	ErrProviderUnavailable = "PROVIDER_UNAVAILABLE"
)

// ============================================================================
// 意图载荷
// ============================================================================

// PlayerInitRequest 玩家注册请求
type PlayerInitRequest struct {
	PlayerName string `json:"playerName"`
}

// PaymentVerifyRequest 支付验证请求
type PaymentVerifyRequest struct {
	CheckingID string `json:"checkingId"`
}

// SessionCreateRequest 创建会话请求
type SessionCreateRequest struct {
	SessionName string `json:"sessionName"`
}

// SessionJoinRequest 加入会话请求，SessionID为"auto"或空时自动匹配
type SessionJoinRequest struct {
	SessionID string `json:"sessionId"`
}

// PlayerClassRequest 切换职业请求
type PlayerClassRequest struct {
	ClassType models.ClassID `json:"classType"`
}

// CombatShootRequest 射击请求
type CombatShootRequest struct {
	TargetID   string          `json:"targetId"`
	HitZone    models.HitZone  `json:"hitZone"`
	WeaponID   models.WeaponID `json:"weaponId"`
	IsBackstab bool            `json:"isBackstab"`
}

// PlayerMoveRequest 移动请求，位置为幂等覆盖而非增量
type PlayerMoveRequest struct {
	Position models.Vector3D `json:"position"`
	Rotation models.Vector3D `json:"rotation"`
}

// ShopPurchaseRequest 购买武器请求
type ShopPurchaseRequest struct {
	WeaponID models.WeaponID `json:"weaponId"`
}

// PlayerEquipRequest 装备武器请求
type PlayerEquipRequest struct {
	WeaponID models.WeaponID `json:"weaponId"`
}

// PlayerWithdrawRequest 提现请求
type PlayerWithdrawRequest struct {
	Bolt11 string `json:"bolt11"`
}

// ============================================================================
// 事件载荷
// ============================================================================

// ErrorEvent 错误事件，仅发给发起方客户端
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// PlayerInitResult 注册结果
type PlayerInitResult struct {
	Player struct {
		ID         string         `json:"id"`
		Name       string         `json:"name"`
		WalletID   string         `json:"walletId"`
		InvoiceKey string         `json:"invoiceKey"`
		Balance    int64          `json:"balance"`
		Health     float64        `json:"health"`
		MaxHealth  float64        `json:"maxHealth"`
		ClassType  models.ClassID `json:"classType"`
		Simulated  bool           `json:"simulated"`
	} `json:"player"`
}

// InvoiceCreated 发票已创建
type InvoiceCreated struct {
	PaymentHash    string `json:"paymentHash"`
	PaymentRequest string `json:"paymentRequest"`
	CheckingID     string `json:"checkingId"`
	Amount         int64  `json:"amount"`
	IsRebuy        bool   `json:"isRebuy,omitempty"`
}

// PaymentConfirmed 支付已确认
type PaymentConfirmed struct {
	Balance int64 `json:"balance"`
	IsRebuy bool  `json:"isRebuy,omitempty"`
}

// SessionState 会话状态快照
type SessionState struct {
	ID         string               `json:"id"`
	Status     models.SessionStatus `json:"status"`
	Players    []models.PlayerInfo  `json:"players"`
	MaxPlayers int                  `json:"maxPlayers"`
}

// PlayerJoinedEvent 玩家加入事件
type PlayerJoinedEvent struct {
	Player models.PlayerInfo `json:"player"`
}

// PlayerLeftEvent 玩家离开事件
type PlayerLeftEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameStartedEvent 对局开始事件
type GameStartedEvent struct {
	StartTime int64               `json:"startTime"`
	Players   []models.PlayerInfo `json:"players"`
}

// GameEndedEvent 对局结束事件
type GameEndedEvent struct {
	WinnerID    string                    `json:"winnerId,omitempty"`
	WinnerName  string                    `json:"winnerName,omitempty"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
}

// ClassChangedEvent 职业切换结果
type ClassChangedEvent struct {
	ClassType models.ClassID `json:"classType"`
	MaxHealth float64        `json:"maxHealth"`
}

// PlayerUpdateEvent 位置更新广播
type PlayerUpdateEvent struct {
	ID       string          `json:"id"`
	Position models.Vector3D `json:"position"`
	Rotation models.Vector3D `json:"rotation"`
}

// CombatHitEvent 命中事件(发给攻击者)
type CombatHitEvent struct {
	TargetID        string         `json:"targetId"`
	Damage          float64        `json:"damage"`
	HitZone         models.HitZone `json:"hitZone"`
	SatsTransferred int64          `json:"satsTransferred"`
	TargetHealth    float64        `json:"targetHealth"`
}

// CombatDamageEvent 受伤事件(发给目标)
type CombatDamageEvent struct {
	AttackerID      string         `json:"attackerId"`
	Damage          float64        `json:"damage"`
	HitZone         models.HitZone `json:"hitZone"`
	SatsTransferred int64          `json:"satsTransferred"`
	TargetHealth    float64        `json:"targetHealth"`
}

// CombatKillEvent 击杀事件(会话广播)
type CombatKillEvent struct {
	KillerID   string          `json:"killerId"`
	KillerName string          `json:"killerName"`
	TargetID   string          `json:"targetId"`
	TargetName string          `json:"targetName"`
	SatsLooted int64           `json:"satsLooted"`
	WeaponID   models.WeaponID `json:"weaponId"`
}

// PlayerRespawnedEvent 重生事件
type PlayerRespawnedEvent struct {
	Player  models.PlayerInfo `json:"player"`
	Balance int64             `json:"balance"`
}

// PurchaseResult 购买结果
type PurchaseResult struct {
	Success  bool            `json:"success"`
	Code     string          `json:"code,omitempty"`
	WeaponID models.WeaponID `json:"weaponId"`
	Balance  int64           `json:"balance"`
}

// EquipResult 装备结果
type EquipResult struct {
	WeaponID models.WeaponID `json:"weaponId"`
}

// WithdrawResult 提现结果
type WithdrawResult struct {
	Success     bool   `json:"success"`
	PaymentHash string `json:"paymentHash,omitempty"`
	Fee         int64  `json:"fee,omitempty"`
	Message     string `json:"message,omitempty"`
}

// LeaderboardEvent 排行榜事件
type LeaderboardEvent struct {
	Entries []models.LeaderboardEntry `json:"entries"`
}

// ============================================================================
// 编解码辅助
// ============================================================================

// Encode 将事件载荷封装为消息字节
func Encode(msgType string, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("序列化载荷失败: %w", err)
		}
		raw = data
	}
	return json.Marshal(Message{Type: msgType, Payload: raw})
}

// Decode 解析消息载荷到目标结构
func Decode(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return fmt.Errorf("空载荷")
	}
	return json.Unmarshal(payload, v)
}
