package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит все настройки приложения
type Config struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Bot      BotConfig      `mapstructure:"bot"`
}

// PostgresConfig содержит настройки для PostgreSQL
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит настройки для Redis
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPConfig содержит настройки HTTP сервера API
type HTTPConfig struct {
	Port int `mapstructure:"port"`

	// AllowedOrigins задает список источников для CORS:
	// фронтенд мини-приложения и адреса локальной разработки
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BotConfig содержит настройки Telegram-бота
type BotConfig struct {
	Token     string `mapstructure:"token"`
	WebAppURL string `mapstructure:"webapp_url"`
}

// LoadConfig загружает настройки из файла или переменных окружения
func LoadConfig() (*Config, error) {
	// Подхватываем .env, если он есть (локальная разработка)
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Значения по умолчанию
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Если файл конфигурации не найден, используем переменные окружения
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Переменные окружения переопределяют значения конфигурации
	loadFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// PostgreSQL defaults
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.username", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.dbname", "need_for_party")
	viper.SetDefault("postgres.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// HTTP defaults
	viper.SetDefault("http.port", 8000)
	viper.SetDefault("http.allowed_origins", []string{
		"https://karina0409.github.io",
		"http://localhost",
		"http://localhost:8080",
	})

	// Bot defaults
	viper.SetDefault("bot.token", "")
	viper.SetDefault("bot.webapp_url", "https://karina0409.github.io/need-for-party/")
}

func loadFromEnv() {
	// PostgreSQL from env
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		viper.Set("postgres.host", dbHost)
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			viper.Set("postgres.port", port)
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		viper.Set("postgres.username", dbUser)
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		viper.Set("postgres.password", dbPassword)
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		viper.Set("postgres.dbname", dbName)
	}

	// Redis from env
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		redisPort := "6379" // Default Redis port
		if port := os.Getenv("REDIS_PORT"); port != "" {
			redisPort = port
		}
		viper.Set("redis.addr", redisHost+":"+redisPort)
	}

	// HTTP from env
	if httpPort := os.Getenv("HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			viper.Set("http.port", port)
		}
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		viper.Set("http.allowed_origins", strings.Split(origins, ","))
	}

	// Bot from env
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		viper.Set("bot.token", token)
	}
	if webAppURL := os.Getenv("WEBAPP_URL"); webAppURL != "" {
		viper.Set("bot.webapp_url", webAppURL)
	}
}
