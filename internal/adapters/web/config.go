package web

import "time"

// Config is loaded without a prefix.
type Config struct {
	Port           string        `envconfig:"SERVER_PORT" default:"8080"`
	AllowedOrigins string        `envconfig:"ALLOWED_ORIGINS"`
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	AuthRequired   bool          `envconfig:"AUTH_REQUIRED" default:"false"`
	QueryRateLimit float64       `envconfig:"QUERY_RATE_LIMIT" default:"1"`
	QueryRateBurst int           `envconfig:"QUERY_RATE_BURST" default:"5"`
	AccessTTL      time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"30m"`
	RefreshTTL     time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`
}

func (c Config) withDefaults() Config {
	if c.AccessTTL <= 0 {
		c.AccessTTL = 30 * time.Minute
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.QueryRateLimit <= 0 {
		c.QueryRateLimit = 1
	}
	if c.QueryRateBurst <= 0 {
		c.QueryRateBurst = 5
	}
	return c
}
