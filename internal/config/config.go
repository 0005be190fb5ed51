package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Business  BusinessConfig  `mapstructure:"business"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	BookingEvents string `mapstructure:"booking_events"`
}

type TwilioConfig struct {
	AccountSID   string `mapstructure:"account_sid"`
	AuthToken    string `mapstructure:"auth_token"`
	FromNumber   string `mapstructure:"from_number"`
	WhatsAppFrom string `mapstructure:"whatsapp_from"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	PerMinute int  `mapstructure:"per_minute"`
}

type BusinessConfig struct {
	// 定金比例默认值（百分比），表演者服务可按条覆盖
	DepositPercentDefault float64 `mapstructure:"deposit_percent_default"`
	// 超过该小时数仍未上传定金凭证的预约由扫描任务自动取消
	StaleAfterHours int `mapstructure:"stale_after_hours"`
	// 已读通知保留天数
	NotificationRetentionDays int `mapstructure:"notification_retention_days"`
	// 非安全类审计日志保留天数
	AuditRetentionDays int `mapstructure:"audit_retention_days"`
	SweepBatchSize     int `mapstructure:"sweep_batch_size"`
	MaxRetryCount      int `mapstructure:"max_retry_count"`
}

var GlobalConfig *Config

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	applyDefaults(config)

	GlobalConfig = config
	return config
}

func applyDefaults(c *Config) {
	if c.Business.DepositPercentDefault <= 0 {
		c.Business.DepositPercentDefault = 15
	}
	if c.Business.StaleAfterHours <= 0 {
		c.Business.StaleAfterHours = 24
	}
	if c.Business.NotificationRetentionDays <= 0 {
		c.Business.NotificationRetentionDays = 30
	}
	if c.Business.AuditRetentionDays <= 0 {
		c.Business.AuditRetentionDays = 90
	}
	if c.Business.SweepBatchSize <= 0 {
		c.Business.SweepBatchSize = 100
	}
	if c.Business.MaxRetryCount <= 0 {
		c.Business.MaxRetryCount = 3
	}
	if c.RateLimit.PerMinute <= 0 {
		c.RateLimit.PerMinute = 60
	}
	if c.JWT.ExpiryHours <= 0 {
		c.JWT.ExpiryHours = 24
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
}
