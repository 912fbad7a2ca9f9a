// main.go

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sathunter/SatHunter-Server/config"
	"github.com/sathunter/SatHunter-Server/internal/game"
	"github.com/sathunter/SatHunter-Server/internal/payment"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 创建支付边界与游戏服务器
	bridge := payment.NewLNbitsBridge(config.GlobalConfig.LNbits)
	server := game.NewGameServer(&config.GlobalConfig, bridge)

	if err := server.Start(); err != nil {
		log.Fatalf("启动游戏服务器失败: %v", err)
	}

	// 启动NATS支付确认订阅(可选)
	var listener *payment.Listener
	if url := config.GlobalConfig.NATS.URL; url != "" {
		var err error
		listener, err = payment.StartListener(url, config.GlobalConfig.NATS.Subject, server.NotifyPaymentConfirmed)
		if err != nil {
			// 订阅失败不致命，轮询验证仍然可用
			log.Printf("启动NATS订阅失败: %v", err)
		}
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("接收到关闭信号，正在关闭服务器...")

	if listener != nil {
		listener.Close()
	}
	if err := server.Stop(); err != nil {
		log.Printf("关闭服务器出错: %v", err)
	}

	log.Println("服务器已安全关闭")
}
