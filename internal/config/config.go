package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
)

type Config struct {
	BotToken    string
	WebhookAddr string
	WebhookPath string
}

// Load reads an optional .env file and the environment. WebhookAddr selects
// webhook mode when set; the bot polls otherwise.
func Load() (c Config, err error) {
	if err = godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}

	c = Config{
		BotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookAddr: os.Getenv("WEBHOOK_ADDR"),
		WebhookPath: os.Getenv("WEBHOOK_PATH"),
	}

	if c.BotToken == "" {
		return c, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	return c, nil
}
