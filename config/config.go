// config.go

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	LNbits LNbitsConfig `mapstructure:"lnbits"`
	NATS   NATSConfig   `mapstructure:"nats"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	Port                 int    `mapstructure:"port"`
	Debug                bool   `mapstructure:"debug"`
	LogLevel             string `mapstructure:"log_level"`
	MaxPlayersPerSession int    `mapstructure:"max_players_per_session"`
}

// LNbitsConfig LNbits支付服务配置
// AdminKey和InvoiceKey为空时，钱包服务降级为模拟模式
type LNbitsConfig struct {
	URL            string        `mapstructure:"url"`
	AdminKey       string        `mapstructure:"admin_key"`
	InvoiceKey     string        `mapstructure:"invoice_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// NATSConfig NATS通知通道配置
// URL为空时不启动支付确认订阅
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) error {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		return fmt.Errorf("无法解析配置文件: %w", err)
	}

	return nil
}

// setDefaults 设置默认配置
func setDefaults() {
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.debug", false)
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.max_players_per_session", 10)
	viper.SetDefault("lnbits.url", "https://demo.lnbits.com")
	viper.SetDefault("lnbits.request_timeout", 15*time.Second)
	viper.SetDefault("nats.subject", "lightning.payments")
}
