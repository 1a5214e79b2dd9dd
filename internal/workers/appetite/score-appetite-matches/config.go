// internal/workers/appetite/score-appetite-matches/config.go
package scoreappetitematches

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
