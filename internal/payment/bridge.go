// bridge.go

// Package payment 把外部Lightning支付服务接到游戏逻辑的边界层
package payment

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sathunter/SatHunter-Server/config"
	"github.com/sathunter/SatHunter-Server/internal/models"
	"github.com/sathunter/SatHunter-Server/pkg/lnbits"
)

// Invoice 入场/重新买入发票
type Invoice struct {
	PaymentHash    string
	PaymentRequest string
	CheckingID     string
	Amount         int64
}

// PayResult 提现付款结果
type PayResult struct {
	PaymentHash string
	FeeSats     int64
}

// Bridge 支付服务边界接口
// 所有方法可能阻塞在网络IO上，调用方必须在独立协程中调用，
// 不得在持有游戏状态锁时等待返回
type Bridge interface {
	// ProvisionWallet 为玩家分配钱包凭证，纯本地操作
	ProvisionWallet(playerName string) models.WalletInfo
	// CreateInvoice 创建收款发票
	CreateInvoice(wallet models.WalletInfo, amount int64, memo string) (*Invoice, error)
	// CheckPaid 查询发票支付状态
	// 传输层失败返回错误，调用方不得把错误当作"未支付"
	CheckPaid(wallet models.WalletInfo, checkingID string) (bool, error)
	// PayInvoice 对外支付bolt11发票
	PayInvoice(wallet models.WalletInfo, bolt11 string) (*PayResult, error)
}

// 模拟模式的checking_id前缀，用于识别无需真实支付的发票
const simulatedPrefix = "sim_"

// LNbitsBridge 基于LNbits的支付边界实现
// 未配置密钥时降级为模拟模式：发票立即视为已支付，提现直接成功。
// 模拟模式只用于本地联调，不触碰真实资金
type LNbitsBridge struct {
	client     *lnbits.Client
	adminKey   string
	invoiceKey string
}

// NewLNbitsBridge 创建LNbits支付边界
func NewLNbitsBridge(cfg config.LNbitsConfig) *LNbitsBridge {
	return &LNbitsBridge{
		client:     lnbits.NewClient(cfg.URL, cfg.RequestTimeout),
		adminKey:   cfg.AdminKey,
		invoiceKey: cfg.InvoiceKey,
	}
}

// simulated 是否处于模拟模式
func (b *LNbitsBridge) simulated() bool {
	return b.adminKey == "" || b.invoiceKey == ""
}

// ProvisionWallet 为玩家分配钱包凭证
// 共享LNbits钱包：每个玩家拿到同一组密钥和独立的逻辑钱包ID
func (b *LNbitsBridge) ProvisionWallet(playerName string) models.WalletInfo {
	if b.simulated() {
		log.Printf("[支付] 未配置LNbits密钥，玩家 %s 使用模拟钱包", playerName)
	}
	return models.WalletInfo{
		WalletID:   uuid.New().String(),
		AdminKey:   b.adminKey,
		InvoiceKey: b.invoiceKey,
		Simulated:  b.simulated(),
	}
}

// CreateInvoice 创建收款发票
func (b *LNbitsBridge) CreateInvoice(wallet models.WalletInfo, amount int64, memo string) (*Invoice, error) {
	if wallet.Simulated {
		ref := simulatedPrefix + uuid.New().String()
		return &Invoice{
			PaymentHash:    ref,
			PaymentRequest: "SIMULATED",
			CheckingID:     ref,
			Amount:         amount,
		}, nil
	}

	invoice, err := b.client.CreateInvoice(wallet.InvoiceKey, amount, memo)
	if err != nil {
		return nil, fmt.Errorf("创建发票失败: %w", err)
	}

	return &Invoice{
		PaymentHash:    invoice.PaymentHash,
		PaymentRequest: invoice.PaymentRequest,
		CheckingID:     invoice.CheckingID,
		Amount:         amount,
	}, nil
}

// CheckPaid 查询发票支付状态
func (b *LNbitsBridge) CheckPaid(wallet models.WalletInfo, checkingID string) (bool, error) {
	if strings.HasPrefix(checkingID, simulatedPrefix) {
		return true, nil
	}

	return b.client.CheckPaid(wallet.InvoiceKey, checkingID)
}

// PayInvoice 对外支付bolt11发票
func (b *LNbitsBridge) PayInvoice(wallet models.WalletInfo, bolt11 string) (*PayResult, error) {
	if wallet.Simulated {
		return &PayResult{
			PaymentHash: simulatedPrefix + uuid.New().String(),
			FeeSats:     0,
		}, nil
	}

	start := time.Now()
	result, err := b.client.PayInvoice(wallet.AdminKey, bolt11)
	if err != nil {
		return nil, fmt.Errorf("对外付款失败: %w", err)
	}
	log.Printf("[支付] 对外付款完成，耗时 %v", time.Since(start))

	return &PayResult{
		PaymentHash: result.PaymentHash,
		FeeSats:     result.FeeMsat / 1000,
	}, nil
}
