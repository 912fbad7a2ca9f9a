// client_test.go

package lnbits

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/payments" || r.Method != http.MethodPost {
			t.Errorf("请求 = %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "invoice-key" {
			t.Errorf("X-Api-Key = %s", r.Header.Get("X-Api-Key"))
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["out"] != false || body["amount"] != float64(1000) {
			t.Errorf("请求体: %v", body)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"payment_hash":    "hash-1",
			"payment_request": "lnbc10u1...",
			"checking_id":     "chk-1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	invoice, err := client.CreateInvoice("invoice-key", 1000, "entry")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if invoice.PaymentHash != "hash-1" || invoice.CheckingID != "chk-1" {
		t.Errorf("发票: %+v", invoice)
	}
}

func TestCreateInvoiceBolt11Fallback(t *testing.T) {
	// 部分版本不返回payment_request/checking_id
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"payment_hash": "hash-2",
			"bolt11":       "lnbc20u1...",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	invoice, err := client.CreateInvoice("k", 2000, "entry")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if invoice.PaymentRequest != "lnbc20u1..." {
		t.Errorf("付款请求应回落到bolt11字段: %q", invoice.PaymentRequest)
	}
	if invoice.CheckingID != "hash-2" {
		t.Errorf("checking_id应回落到payment_hash: %q", invoice.CheckingID)
	}
}

func TestCreateInvoiceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.CreateInvoice("bad-key", 1000, "entry"); err == nil {
		t.Error("非2xx响应应返回错误")
	}
}

func TestCheckPaid(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantPaid bool
		wantErr  bool
	}{
		{"已支付", http.StatusOK, `{"paid": true}`, true, false},
		{"未支付", http.StatusOK, `{"paid": false}`, false, false},
		{"发票未找到按未支付处理", http.StatusNotFound, ``, false, false},
		{"服务器错误", http.StatusInternalServerError, ``, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/payments/chk-1" {
					t.Errorf("路径 = %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second)
			paid, err := client.CheckPaid("key", "chk-1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if paid != tt.wantPaid {
				t.Errorf("paid = %v, 期望 %v", paid, tt.wantPaid)
			}
		})
	}
}

func TestPayInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "admin-key" {
			t.Errorf("提现应使用admin key: %s", r.Header.Get("X-Api-Key"))
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["out"] != true || body["bolt11"] != "lnbc100n1abc" {
			t.Errorf("请求体: %v", body)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"payment_hash": "payhash-1",
			"fee_msat":     2500,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	result, err := client.PayInvoice("admin-key", "lnbc100n1abc")
	if err != nil {
		t.Fatalf("PayInvoice: %v", err)
	}
	if result.PaymentHash != "payhash-1" || result.FeeMsat != 2500 {
		t.Errorf("付款结果: %+v", result)
	}
}

func TestWalletBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/wallet" {
			t.Errorf("路径 = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]int64{"balance": 123000})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	balance, err := client.WalletBalance("key")
	if err != nil {
		t.Fatalf("WalletBalance: %v", err)
	}
	// msats换算为sats
	if balance != 123 {
		t.Errorf("余额 = %d, 期望 123", balance)
	}
}
