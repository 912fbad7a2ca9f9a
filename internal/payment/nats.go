// nats.go

package payment

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Confirmation 支付确认通知
// 由外部的发票监听服务在链下支付到账时发布
type Confirmation struct {
	CheckingID  string `json:"checking_id"`
	PaymentHash string `json:"payment_hash"`
}

// Listener NATS支付确认订阅器
// 作为轮询验证之外的带外确认通道：到账通知直接推进等待中的
// 支付流程，客户端无需反复发起payment_verify
type Listener struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

// StartListener 连接NATS并订阅支付确认主题
// handle在NATS回调协程中执行，必须只做投递、不做阻塞处理
func StartListener(url, subject string, handle func(Confirmation)) (*Listener, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}

	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		var confirmation Confirmation
		if err := json.Unmarshal(msg.Data, &confirmation); err != nil {
			log.Printf("[支付] 无法解析确认通知: %v", err)
			return
		}
		if confirmation.CheckingID == "" {
			return
		}
		handle(confirmation)
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("订阅主题 %s 失败: %w", subject, err)
	}

	log.Printf("[支付] 已订阅确认通知: %s @ %s", subject, url)
	return &Listener{conn: conn, sub: sub}, nil
}

// Close 取消订阅并断开连接
func (l *Listener) Close() {
	if l.sub != nil {
		l.sub.Unsubscribe()
	}
	if l.conn != nil {
		l.conn.Close()
	}
}
