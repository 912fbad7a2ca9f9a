// bridge_test.go

package payment

import (
	"strings"
	"testing"

	"github.com/sathunter/SatHunter-Server/config"
)

func TestSimulatedMode(t *testing.T) {
	// 未配置密钥时降级为模拟模式
	bridge := NewLNbitsBridge(config.LNbitsConfig{URL: "https://demo.lnbits.com"})

	wallet := bridge.ProvisionWallet("alice")
	if !wallet.Simulated {
		t.Fatal("无密钥时应为模拟钱包")
	}
	if wallet.WalletID == "" {
		t.Error("模拟钱包也应有钱包ID")
	}

	invoice, err := bridge.CreateInvoice(wallet, 1000, "entry")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if !strings.HasPrefix(invoice.CheckingID, simulatedPrefix) {
		t.Errorf("模拟发票的checking_id应带前缀: %q", invoice.CheckingID)
	}
	if invoice.Amount != 1000 {
		t.Errorf("发票金额 = %d", invoice.Amount)
	}

	// 模拟发票立即视为已支付
	paid, err := bridge.CheckPaid(wallet, invoice.CheckingID)
	if err != nil || !paid {
		t.Errorf("模拟发票应立即确认: paid=%v err=%v", paid, err)
	}

	result, err := bridge.PayInvoice(wallet, "lnbc100n1abc")
	if err != nil {
		t.Fatalf("PayInvoice: %v", err)
	}
	if result.FeeSats != 0 {
		t.Errorf("模拟提现手续费 = %d, 期望 0", result.FeeSats)
	}
}

func TestRealModeWalletCredentials(t *testing.T) {
	bridge := NewLNbitsBridge(config.LNbitsConfig{
		URL:        "https://demo.lnbits.com",
		AdminKey:   "admin",
		InvoiceKey: "invoice",
	})

	wallet := bridge.ProvisionWallet("bob")
	if wallet.Simulated {
		t.Error("配置完整密钥时不应降级")
	}
	if wallet.AdminKey != "admin" || wallet.InvoiceKey != "invoice" {
		t.Errorf("钱包凭证: %+v", wallet)
	}

	// 不同玩家拿到各自的逻辑钱包ID
	other := bridge.ProvisionWallet("carol")
	if other.WalletID == wallet.WalletID {
		t.Error("逻辑钱包ID不应重复")
	}
}
