package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Log             LogConfig             `mapstructure:"log"`
	Minio           MinioConfig           `mapstructure:"minio"`
	Compose         ComposeConfig         `mapstructure:"compose"`
	Worker          WorkerConfig          `mapstructure:"worker"`
	Delivery        DeliveryConfig        `mapstructure:"delivery"`
	Sweeper         SweeperConfig         `mapstructure:"sweeper"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
	Public          PublicConfig          `mapstructure:"public"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
}

// ServiceRegistryConfig registration configuration.
type ServiceRegistryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoints       []string      `mapstructure:"endpoints"`
	ServiceName     string        `mapstructure:"service_name"`
	ServiceID       string        `mapstructure:"service_id"`
	RegisterHost    string        `mapstructure:"register_host"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// MinioConfig MinIO配置
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// PublicConfig 对外访问配置
type PublicConfig struct {
	// BaseURL 追踪链接的对外基础地址，例如 https://gifts.example.com
	BaseURL string `mapstructure:"base_url"`
}

// ComposeConfig 视频合成配置
type ComposeConfig struct {
	FFmpeg           FFmpegConfig  `mapstructure:"ffmpeg"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay    time.Duration `mapstructure:"retry_max_delay"`
	RenderTimeout    time.Duration `mapstructure:"render_timeout"`
	RetentionDefault time.Duration `mapstructure:"retention_default"`
	StickerAssetDir  string        `mapstructure:"sticker_asset_dir"`
}

// FFmpegConfig FFmpeg相关配置
type FFmpegConfig struct {
	BinaryPath string `mapstructure:"binary_path"`
	TempDir    string `mapstructure:"temp_dir"`
	VideoCodec string `mapstructure:"video_codec"`
	Preset     string `mapstructure:"video_preset"`
	Threads    int    `mapstructure:"threads"`
	FontFile   string `mapstructure:"font_file"`
}

// WorkerConfig Worker相关配置
type WorkerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	WorkerID            string        `mapstructure:"worker_id"`
	MaxConcurrentTasks  int           `mapstructure:"max_concurrent_tasks"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// DeliveryConfig 通知投递配置
type DeliveryConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
	SMS  SMSConfig  `mapstructure:"sms"`
}

// SMTPConfig 邮件投递配置
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SMSConfig 短信投递配置
type SMSConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Sender   string        `mapstructure:"sender"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SweeperConfig 过期清理配置
type SweeperConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	ExpireTime time.Duration `mapstructure:"expire_time"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("service_registry.enabled", true)
	viper.SetDefault("kafka.enabled", true)
	viper.SetDefault("kafka.client_id", "giftvideo-service")
	viper.SetDefault("kafka.group_id", "giftvideo-service-group")
	viper.SetDefault("kafka.bootstrap_servers", []string{"localhost:29092"})
	viper.SetDefault("kafka.topics.gift_video_jobs", "gift.video.jobs")

	// 设置环境变量前缀
	viper.SetEnvPrefix("GIFT_VIDEO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	// 解析配置
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	// 兼容不同的密钥字段
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}

	// 合成重试参考配置：3次尝试，1s起步，上限10s，倍率2
	if c.Compose.MaxAttempts <= 0 {
		c.Compose.MaxAttempts = 3
	}
	if c.Compose.RetryBaseDelay <= 0 {
		c.Compose.RetryBaseDelay = time.Second
	}
	if c.Compose.RetryMaxDelay <= 0 {
		c.Compose.RetryMaxDelay = 10 * time.Second
	}
	if c.Compose.RenderTimeout <= 0 {
		c.Compose.RenderTimeout = 5 * time.Minute
	}
	if c.Compose.RetentionDefault <= 0 {
		c.Compose.RetentionDefault = 24 * time.Hour
	}
	if c.Compose.FFmpeg.TempDir == "" {
		c.Compose.FFmpeg.TempDir = "/tmp/giftvideo"
	}
	if c.Compose.FFmpeg.BinaryPath == "" {
		c.Compose.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.Compose.FFmpeg.VideoCodec == "" {
		c.Compose.FFmpeg.VideoCodec = "libx264"
	}
	if c.Compose.FFmpeg.Preset == "" {
		c.Compose.FFmpeg.Preset = "medium"
	}
	if c.Compose.FFmpeg.Threads < 0 {
		c.Compose.FFmpeg.Threads = 0
	}

	// Worker相关默认值
	if c.Worker.MaxConcurrentTasks <= 0 {
		c.Worker.MaxConcurrentTasks = 2
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.MaxConcurrentTasks * 10
		if c.Worker.QueueCapacity <= 0 {
			c.Worker.QueueCapacity = 100
		}
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}

	// Sweeper默认每日一次
	if c.Sweeper.SweepInterval <= 0 {
		c.Sweeper.SweepInterval = 24 * time.Hour
	}
	if c.Sweeper.BatchSize <= 0 {
		c.Sweeper.BatchSize = 200
	}
	if c.Sweeper.LockTTL <= 0 {
		c.Sweeper.LockTTL = 10 * time.Minute
	}

	if c.Delivery.SMS.Timeout <= 0 {
		c.Delivery.SMS.Timeout = 15 * time.Second
	}

	if c.ServiceRegistry.ServiceName == "" {
		c.ServiceRegistry.ServiceName = "giftvideo-service"
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if c.ServiceRegistry.RefreshInterval == 0 {
		c.ServiceRegistry.RefreshInterval = 10 * time.Second
	}

	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "giftvideo-service"
	}
	if c.Kafka.Topics.GiftVideoJobs == "" {
		c.Kafka.Topics.GiftVideoJobs = "gift.video.jobs"
	}
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// GetRedisAddr 获取Redis地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	BootstrapServers []string          `mapstructure:"bootstrap_servers"`
	ClientID         string            `mapstructure:"client_id"`
	GroupID          string            `mapstructure:"group_id"`
	Enabled          bool              `mapstructure:"enabled"`
	Topics           KafkaTopicsConfig `mapstructure:"topics"`
}

type KafkaTopicsConfig struct {
	GiftVideoJobs string `mapstructure:"gift_video_jobs"`
}
