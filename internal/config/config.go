package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Port             string `mapstructure:"PORT"`
	DBURL            string `mapstructure:"DB_URL"`
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	JWTSecret        string `mapstructure:"JWT_SECRET"`
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	OpenAIAPIKey     string `mapstructure:"OPENAI_API_KEY"`
	MQTTBroker       string `mapstructure:"MQTT_BROKER"`
	MQTTClientID     string `mapstructure:"MQTT_CLIENT_ID"`
	MQTTTopic        string `mapstructure:"MQTT_TOPIC"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
}

// LoadConfig reads configuration from .env, config.yaml, or env vars
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		println("Error loading .env file: ", err)
	}

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	cfg := &Config{
		Port:             viper.GetString("PORT"),
		DBURL:            viper.GetString("DB_URL"),
		RedisAddr:        viper.GetString("REDIS_ADDR"),
		JWTSecret:        viper.GetString("JWT_SECRET"),
		TelegramBotToken: viper.GetString("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:     viper.GetString("OPENAI_API_KEY"),
		MQTTBroker:       viper.GetString("MQTT_BROKER"),
		MQTTClientID:     viper.GetString("MQTT_CLIENT_ID"),
		MQTTTopic:        viper.GetString("MQTT_TOPIC"),
		LogLevel:         viper.GetString("LOG_LEVEL"),
	}
	if cfg.Port == "" {
		cfg.Port = "5069"
	}
	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = "hookrelay-backend"
	}
	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = "hookrelay/events"
	}
	return cfg, nil
}

// DefaultBotToken returns the process-wide Telegram token, or nil when none
// is configured. An explicit nil avoids treating placeholder strings as real
// tokens; rules without their own token then fail with a clear reason.
func (c *Config) DefaultBotToken() *string {
	if c.TelegramBotToken == "" {
		return nil
	}
	t := c.TelegramBotToken
	return &t
}
