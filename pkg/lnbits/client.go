// client.go

// Package lnbits 提供LNbits支付服务的REST客户端
package lnbits

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client LNbits REST客户端
// 密钥通过请求头X-Api-Key传递：invoice key只能开票/查询，
// admin key才能对外付款
type Client struct {
	baseURL string
	http    *http.Client
	payHTTP *http.Client // 对外付款需要等待路由，超时放宽一倍
}

// NewClient 创建LNbits客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		payHTTP: &http.Client{Timeout: 2 * timeout},
	}
}

// Invoice 发票信息
type Invoice struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
	CheckingID     string `json:"checking_id"`
}

// PaymentResult 对外付款结果
type PaymentResult struct {
	PaymentHash string `json:"payment_hash"`
	FeeMsat     int64  `json:"fee_msat"`
}

// CreateInvoice 创建收款发票，金额单位为sats
func (c *Client) CreateInvoice(invoiceKey string, amount int64, memo string) (*Invoice, error) {
	body := map[string]interface{}{
		"out":    false,
		"amount": amount,
		"memo":   memo,
	}

	data, err := c.post("/api/v1/payments", invoiceKey, body, c.http)
	if err != nil {
		return nil, err
	}

	var result struct {
		PaymentHash    string `json:"payment_hash"`
		PaymentRequest string `json:"payment_request"`
		CheckingID     string `json:"checking_id"`
		Bolt11         string `json:"bolt11"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("解析发票响应失败: %w", err)
	}

	// 部分LNbits版本用bolt11字段返回付款请求
	request := result.PaymentRequest
	if request == "" {
		request = result.Bolt11
	}
	// checking_id缺失时用payment_hash代替
	checkingID := result.CheckingID
	if checkingID == "" {
		checkingID = result.PaymentHash
	}

	return &Invoice{
		PaymentHash:    result.PaymentHash,
		PaymentRequest: request,
		CheckingID:     checkingID,
	}, nil
}

// CheckPaid 查询发票支付状态
// 发票未找到(404)视为未支付而非错误；传输层失败返回错误，
// 调用方必须将其与"未支付"区分开
func (c *Client) CheckPaid(invoiceKey, checkingID string) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/payments/%s", c.baseURL, checkingID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("构造查询请求失败: %w", err)
	}
	req.Header.Set("X-Api-Key", invoiceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("查询支付状态失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("查询支付状态失败: HTTP %d", resp.StatusCode)
	}

	var result struct {
		Paid bool `json:"paid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("解析支付状态失败: %w", err)
	}

	return result.Paid, nil
}

// PayInvoice 对外支付bolt11发票(提现)
func (c *Client) PayInvoice(adminKey, bolt11 string) (*PaymentResult, error) {
	body := map[string]interface{}{
		"out":    true,
		"bolt11": bolt11,
	}

	data, err := c.post("/api/v1/payments", adminKey, body, c.payHTTP)
	if err != nil {
		return nil, err
	}

	var result PaymentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("解析付款响应失败: %w", err)
	}

	return &result, nil
}

// WalletBalance 查询钱包余额，单位sats
func (c *Client) WalletBalance(invoiceKey string) (int64, error) {
	url := c.baseURL + "/api/v1/wallet"
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("构造余额请求失败: %w", err)
	}
	req.Header.Set("X-Api-Key", invoiceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("查询钱包余额失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("查询钱包余额失败: HTTP %d", resp.StatusCode)
	}

	var result struct {
		Balance int64 `json:"balance"` // 单位msats
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("解析钱包余额失败: %w", err)
	}

	return result.Balance / 1000, nil
}

// post 发送JSON POST请求并返回响应体
func (c *Client) post(path, apiKey string, body interface{}, client *http.Client) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求LNbits失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("LNbits返回错误: HTTP %d: %s", resp.StatusCode, string(data))
	}

	return data, nil
}
