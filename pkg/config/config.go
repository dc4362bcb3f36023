package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Notifications struct {
		Channels   []string `mapstructure:"CHANNELS"`
		DayOffsets []int    `mapstructure:"DAY_OFFSETS"`
		RunHour    int      `mapstructure:"RUN_HOUR"`
		SMTP       struct {
			Host     string `mapstructure:"HOST"`
			Port     int    `mapstructure:"PORT"`
			User     string `mapstructure:"USER"`
			Password string `mapstructure:"PASSWORD"`
			From     string `mapstructure:"FROM"`
		} `mapstructure:"SMTP"`
		WhatsApp struct {
			BaseURL         string        `mapstructure:"BASE_URL"`
			APIKey          string        `mapstructure:"API_KEY"`
			CountryCode     string        `mapstructure:"COUNTRY_CODE"`
			MinSendInterval time.Duration `mapstructure:"MIN_SEND_INTERVAL"`
		} `mapstructure:"WHATSAPP"`
		VAPID struct {
			PublicKey  string `mapstructure:"PUBLIC_KEY"`
			PrivateKey string `mapstructure:"PRIVATE_KEY"`
			Subject    string `mapstructure:"SUBJECT"`
		} `mapstructure:"VAPID"`
	} `mapstructure:"NOTIFICATIONS"`
	Billing struct {
		BaseURL string `mapstructure:"BASE_URL"`
		APIKey  string `mapstructure:"API_KEY"`
	} `mapstructure:"BILLING"`
	AccessControl struct {
		Model  string `mapstructure:"MODEL"`
		Policy string `mapstructure:"POLICY"`
	} `mapstructure:"ACCESS_CONTROL"`
	Flagsmith struct {
		Addr   string `mapstructure:"ADDR"`
		ApiKey string `mapstructure:"API_KEY"`
	} `mapstructure:"FLAGSMITH"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

// LoadConfig reads config.yaml from the working directory and overlays
// environment variables. A missing file is not fatal; env alone is enough.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		zap.L().Warn("[Config] no config file found, using environment only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "clubevantagens-backend")
	v.SetDefault("HTTP_SERVER.ADDR", ":8080")
	v.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.SSLMODE", "disable")
	v.SetDefault("REDIS.ADDR", "127.0.0.1:6379")
	v.SetDefault("NOTIFICATIONS.CHANNELS", []string{"email", "whatsapp", "push"})
	v.SetDefault("NOTIFICATIONS.DAY_OFFSETS", []int{7, 3, 1, 0})
	v.SetDefault("NOTIFICATIONS.RUN_HOUR", 1)
	v.SetDefault("NOTIFICATIONS.WHATSAPP.COUNTRY_CODE", "55")
	v.SetDefault("NOTIFICATIONS.WHATSAPP.MIN_SEND_INTERVAL", time.Second)
}
