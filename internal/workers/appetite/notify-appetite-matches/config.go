// internal/workers/appetite/notify-appetite-matches/config.go
package notifyappetitematches

import "time"

type Config struct {
	EmailEnabled  bool
	FromEmail     string
	SubjectPrefix string
	EventsEnabled bool
	TopicARN      string
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		SubjectPrefix: "[Appetite]",
		Timeout:       20 * time.Second,
	}
}
