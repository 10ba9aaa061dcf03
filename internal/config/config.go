package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// BotToken: token Telegram. Obligatoire pour démarrer le bot.
	BotToken string `env:"DRACIN_BOT_TOKEN"`

	// Addr: adresse du endpoint liveness/status (lecture seule).
	Addr string `env:"DRACIN_ADDR" envDefault:"127.0.0.1:8080"`

	// AdminIDs: allow-list statique, figée au démarrage.
	// Liste vide = aucun admin (fail-closed).
	AdminIDs []int64 `env:"DRACIN_ADMIN_IDS" envSeparator:","`

	// LockThreshold: premier numéro d'épisode verrouillé.
	LockThreshold int `env:"DRACIN_LOCK_THRESHOLD" envDefault:"5"`

	// WarnWindow: fenêtre d'avertissement avant expiration.
	WarnWindow time.Duration `env:"DRACIN_WARN_WINDOW" envDefault:"72h"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LockThreshold < 1 {
		return Config{}, fmt.Errorf("lock threshold must be >= 1, got %d", cfg.LockThreshold)
	}
	return cfg, nil
}

func (c Config) AdminSet() map[int64]bool {
	set := make(map[int64]bool, len(c.AdminIDs))
	for _, id := range c.AdminIDs {
		set[id] = true
	}
	return set
}
