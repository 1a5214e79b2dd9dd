// internal/workers/appetite/persist-appetite-matches/config.go
package persistappetitematches

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
