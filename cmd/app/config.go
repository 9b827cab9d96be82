package main

import "github.com/spf13/viper"

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`

	DBHost     string `mapstructure:"POSTGRES_HOST"`
	DBPort     string `mapstructure:"POSTGRES_PORT"`
	DBUser     string `mapstructure:"POSTGRES_USER"`
	DBPassword string `mapstructure:"POSTGRES_PASSWORD"`
	DBName     string `mapstructure:"POSTGRES_DB"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	// Registration endpoint rate limit, requests per window per client IP.
	RegisterLimit        int `mapstructure:"REGISTER_LIMIT"`
	RegisterWindowMin    int `mapstructure:"REGISTER_WINDOW_MIN"`
	LoginMaxAttempts     int `mapstructure:"LOGIN_MAX_ATTEMPTS"`
	LoginLockoutWindowMn int `mapstructure:"LOGIN_LOCKOUT_WINDOW_MIN"`

	// CommentParentCheck rejects replies whose parent comment belongs to a
	// different blog. Off by default.
	CommentParentCheck bool `mapstructure:"COMMENT_PARENT_CHECK"`
}

func loadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)

	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("RABBITMQ_PORT", "5672")
	viper.SetDefault("JWT_TTL_HOURS", 168)
	viper.SetDefault("REGISTER_LIMIT", 5)
	viper.SetDefault("REGISTER_WINDOW_MIN", 15)
	viper.SetDefault("LOGIN_MAX_ATTEMPTS", 3)
	viper.SetDefault("LOGIN_LOCKOUT_WINDOW_MIN", 15)
	viper.SetDefault("COMMENT_PARENT_CHECK", false)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
