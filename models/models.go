package models

import "time"

// Config holds all application configuration
type Config struct {
	TwelveAPIKey     string  `env:"TWELVE_API_KEY" envDefault:"-"`
	Symbol           string  `env:"SYMBOL" envDefault:"EUR/USD"`
	Interval         string  `env:"INTERVAL" envDefault:"15min"`
	CandleCount      int     `env:"CANDLE_COUNT" envDefault:"60"`
	LookbackWindow   int     `env:"LOOKBACK_WINDOW" envDefault:"100"`
	DecayFactor      float64 `env:"DECAY_FACTOR" envDefault:"1.0"`
	PriorStrength    float64 `env:"PRIOR_STRENGTH" envDefault:"1.0"`
	RegimeHistoryLen int     `env:"REGIME_HISTORY_LEN" envDefault:"96"`
	HeatmapSize      int     `env:"HEATMAP_SIZE" envDefault:"50"`
	LogLevel         string  `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout   int     `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	DatabaseURL      string  `env:"DATABASE_URL" envDefault:"-"`
	TelegramToken    string  `env:"TELEGRAM_TOKEN" envDefault:"-"`
	TelegramChatID   int64   `env:"TELEGRAM_CHAT_ID" envDefault:"0"`
}

// Candle represents a single price candle
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume,omitempty"`
}
