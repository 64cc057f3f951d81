package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config 应用配置，环境变量前缀为 FUNNEL_
type Config struct {
	Port     int    `default:"8080"`
	Debug    bool   `default:"false"`
	LogLevel string `split_words:"true" default:"info"`

	// JWTKey 会话令牌签名密钥，为空时每次启动随机生成
	JWTKey     string        `envconfig:"JWT_KEY"`
	SessionTTL time.Duration `split_words:"true" default:"30m"`

	MaxUploadBytes int64    `split_words:"true" default:"20971520"`
	AllowedOrigins []string `split_words:"true" default:"http://localhost:3001,http://localhost:5173"`

	// MongoURI 为空时不持久化操作日志
	MongoURI string `envconfig:"MONGO_URI"`
	MongoDB  string `envconfig:"MONGO_DB" default:"kpi_funnel"`
	// AdminToken 访问操作日志接口的令牌，为空时关闭该接口
	AdminToken string `envconfig:"ADMIN_TOKEN"`
	// AuditRetention 操作日志保留时长，每天凌晨清理一次
	AuditRetention time.Duration `split_words:"true" default:"720h"`

	DefaultLayout string `split_words:"true" default:"bottom-driven"`
	FailurePolicy string `split_words:"true" default:"abort"`
	ReportYear    int    `split_words:"true" default:"2025"`

	ChartWidth  int `split_words:"true" default:"1200"`
	ChartHeight int `split_words:"true" default:"800"`

	ShutdownTimeout time.Duration `split_words:"true" default:"5s"`
}

// LoadConfig 从环境变量加载配置，存在 .env 文件时先载入
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// .env 不存在时忽略
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := envconfig.Process("funnel", &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &cfg, nil
}
