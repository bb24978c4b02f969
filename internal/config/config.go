package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Shop holds the shop-service configuration.
type Shop struct {
	Address     string `env:"SHOP_ADDRESS" envDefault:":8080"`
	BotURL      string `env:"BOT_URL" envDefault:"http://localhost:8081"`
	APISecret   string `env:"API_SECRET"`
	OrdersFile  string `env:"ORDERS_FILE" envDefault:"orders.json"`
	CatalogFile string `env:"CATALOG_FILE"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Bot holds the bot-service configuration.
type Bot struct {
	Address         string        `env:"BOT_ADDRESS" envDefault:":8081"`
	ShopURL         string        `env:"SHOP_URL" envDefault:"http://localhost:8080"`
	APISecret       string        `env:"API_SECRET"`
	TelegramToken   string        `env:"TELEGRAM_BOT_TOKEN"`
	AdminChatID     int64         `env:"ADMIN_CHAT_ID"`
	ReviewRetention time.Duration `env:"REVIEW_RETENTION" envDefault:"24h"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
	CatalogFile     string        `env:"CATALOG_FILE"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadShop reads the shop-service config from the environment, loading a .env
// file first when one exists.
func LoadShop() (*Shop, error) {
	loadDotenv()

	cfg := &Shop{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment: %w", err)
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("config: API_SECRET is required")
	}

	return cfg, nil
}

// LoadBot reads the bot-service config from the environment, loading a .env
// file first when one exists.
func LoadBot() (*Bot, error) {
	loadDotenv()

	cfg := &Bot{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment: %w", err)
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("config: API_SECRET is required")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("config: TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.AdminChatID == 0 {
		return nil, fmt.Errorf("config: ADMIN_CHAT_ID is required")
	}

	return cfg, nil
}

func loadDotenv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}
